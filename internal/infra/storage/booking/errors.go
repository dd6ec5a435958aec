package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrDuplicateLiveBooking у субъекта уже есть неотмененное бронирование на этот слот
	ErrDuplicateLiveBooking = errors.New("booking.repository: live booking already exists for subject and slot")

	// ErrStatusConflict статус изменился и переход больше недопустим
	ErrStatusConflict = errors.New("booking.repository: booking status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrInvalidSubject строка содержит некорректную комбинацию колонок субъекта
	ErrInvalidSubject = errors.New("booking.repository: invalid subject columns")
)
