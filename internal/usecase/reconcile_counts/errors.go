package reconcile_counts

import "errors"

var (
	// ErrListSlots возвращается, когда не удалось получить список слотов
	ErrListSlots = errors.New("reconcile_counts: failed to list slots")
)
