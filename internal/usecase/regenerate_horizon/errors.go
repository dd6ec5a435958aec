package regenerate_horizon

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("regenerate_horizon: invalid input data")

	// ErrLoadRules возвращается, когда правила не удалось прочитать
	ErrLoadRules = errors.New("regenerate_horizon: failed to load rules")
)
