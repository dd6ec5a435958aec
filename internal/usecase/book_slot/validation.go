package book_slot

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxNoteLength int) error {
	if req.Subject.IsZero() {
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}

	if req.TimeslotID <= 0 {
		return fmt.Errorf("%w: timeslotID must be positive", ErrInvalidInput)
	}

	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		if utf8.RuneCountInString(note) > maxNoteLength {
			return fmt.Errorf("%w: note is longer than %d characters", ErrInvalidInput, maxNoteLength)
		}
		if note == "" {
			req.Note = nil
		} else {
			req.Note = &note
		}
	}

	return nil
}
