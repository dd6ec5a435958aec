package domain

import "errors"

// Error kinds shared by the booking engine. Storage and usecase layers wrap
// them, callers classify with errors.Is.
var (
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotBlocked       = errors.New("slot is blocked")
	ErrSlotFull          = errors.New("slot is full")
	ErrSlotInPast        = errors.New("slot has already started")
	ErrAlreadyBooked     = errors.New("subject already holds a booking on this slot")
	ErrQuotaExceeded     = errors.New("tenant daily quota exceeded")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrCannotCancel      = errors.New("booking cannot be cancelled")
	ErrAccessDenied      = errors.New("booking belongs to another subject")
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrInvalidSubject    = errors.New("invalid booking subject")
	ErrInvalidRuleConfig = errors.New("invalid rule config")

	// ErrStoreUnavailable transient storage failure, retryable
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConcurrencyBusy lock was not acquired within the bounded wait, retryable
	ErrConcurrencyBusy = errors.New("concurrency busy, retry later")
)

// IsBusinessOutcome reports whether err is an expected booking outcome
// rather than an infrastructure fault.
func IsBusinessOutcome(err error) bool {
	for _, kind := range []error{
		ErrSlotNotFound, ErrSlotBlocked, ErrSlotFull, ErrSlotInPast,
		ErrAlreadyBooked, ErrQuotaExceeded, ErrBookingNotFound, ErrCannotCancel,
		ErrAccessDenied, ErrTenantNotFound, ErrInvalidSubject,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether the caller may retry with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConcurrencyBusy)
}

// OutcomeLabel short machine-readable kind for logs and metrics
func OutcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSlotNotFound):
		return "slot_not_found"
	case errors.Is(err, ErrSlotBlocked):
		return "slot_blocked"
	case errors.Is(err, ErrSlotFull):
		return "slot_full"
	case errors.Is(err, ErrSlotInPast):
		return "slot_in_past"
	case errors.Is(err, ErrAlreadyBooked):
		return "already_booked"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrBookingNotFound):
		return "booking_not_found"
	case errors.Is(err, ErrCannotCancel):
		return "cannot_cancel"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrTenantNotFound):
		return "tenant_not_found"
	case errors.Is(err, ErrInvalidSubject):
		return "invalid_subject"
	case errors.Is(err, ErrInvalidRuleConfig):
		return "invalid_rule_config"
	case errors.Is(err, ErrConcurrencyBusy):
		return "concurrency_busy"
	default:
		return "store_unavailable"
	}
}
