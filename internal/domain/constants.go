package domain

// Default scheduling values, overridden by [scheduling] config
const (
	DefaultSlotStepMinutes  = 30
	DefaultNormalCapacity   = 6
	DefaultAnalysisCapacity = 1
	DefaultHorizonDays      = 14
)

// Business validation constants
const (
	MinSlotStepMinutes = 5
	MaxSlotStepMinutes = 240
	MaxNoteLength      = 500
	MaxHorizonDays     = 366
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// QuotaStatuses statuses that consume a tenant's daily quota
var QuotaStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
}

// LiveStatuses statuses that occupy a seat in a timeslot
var LiveStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
}
