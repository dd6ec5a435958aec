package reconcile_counts

import "github.com/m04kA/SMC-PhysioBooking/pkg/types"

// Request модель запроса на сверку счетчиков
type Request struct {
	FromDay types.Date // нулевая дата означает "сегодня"
}

// Response итог сверки
type Response struct {
	FromDay   types.Date
	Checked   int
	Corrected int
	Oversold  int // слоты, где живых бронирований больше вместимости
	Errors    []string
}
