package get_available_slots

import (
	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date          types.Date       // День по календарю региона
	Kind          *domain.SlotKind // Фильтр по типу слота (опционально)
	OnlyAvailable bool             // Скрыть заполненные слоты
}

// Response модель ответа со списком слотов дня
type Response struct {
	Date  types.Date
	Slots []Slot
}

// Slot модель временного слота
type Slot struct {
	ID             int64
	StartTime      types.TimeString // Время начала слота (например, "10:00")
	EndTime        types.TimeString
	Kind           domain.SlotKind
	AvailableSpots int // Количество свободных мест
	TotalSpots     int // Общее количество мест
}
