package notifier

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifier: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе получателя
	ErrInvalidResponse = errors.New("notifier: invalid response")

	// ErrPublish возвращается, когда событие не удалось опубликовать
	ErrPublish = errors.New("notifier: publish failed")
)
