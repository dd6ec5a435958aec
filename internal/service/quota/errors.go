package quota

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("quota: invalid input data")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("quota: internal error")
)
