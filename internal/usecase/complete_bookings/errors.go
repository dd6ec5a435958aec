package complete_bookings

import "errors"

var (
	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("complete_bookings: internal error")
)
