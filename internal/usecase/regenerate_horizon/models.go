package regenerate_horizon

import "github.com/m04kA/SMC-PhysioBooking/pkg/types"

// Request модель запроса на перегенерацию
type Request struct {
	StartDay types.Date // нулевая дата означает "завтра"
	Days     int
}

// Response итог перегенерации всех дней окна
type Response struct {
	StartDay     types.Date
	Days         int
	Created      int
	DeletedEmpty int
	Kept         int      // слоты, совпавшие с правилами или занятые бронированиями
	Errors       []string // по одной строке на неудачный день
}

// dayResult итог одного дня
type dayResult struct {
	created int
	deleted int
	kept    int
}
