package timeslot

import "errors"

var (
	// ErrTimeslotNotFound возвращается, когда слот не найден
	ErrTimeslotNotFound = errors.New("timeslot.repository: timeslot not found")

	// ErrCapacityExhausted возвращается, когда инкремент нарушил бы booked_count <= capacity
	ErrCapacityExhausted = errors.New("timeslot.repository: capacity exhausted")

	// ErrCounterUnderflow возвращается, когда декремент нарушил бы booked_count >= 0
	ErrCounterUnderflow = errors.New("timeslot.repository: booked count underflow")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("timeslot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("timeslot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("timeslot.repository: failed to scan row")
)
