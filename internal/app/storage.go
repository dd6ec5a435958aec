package app

import (
	blockSlotUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/block_slot"
	bookSlotUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/book_slot"
	cancelBookingUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/cancel_booking"
	completeBookingsUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/complete_bookings"
	getAvailableSlotsUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/get_available_slots"
	reconcileCountsUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	regenerateHorizonUC "github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
	bookingsService "github.com/m04kA/SMC-PhysioBooking/internal/service/bookings"
	quotaService "github.com/m04kA/SMC-PhysioBooking/internal/service/quota"
	rulesService "github.com/m04kA/SMC-PhysioBooking/internal/service/rules"
)

// Хранилища, которыми пользуются все потребители. PostgreSQL и in-memory
// реализации обязаны удовлетворять каждому из контрактов.

type timeslotStore interface {
	bookSlotUC.TimeslotRepository
	cancelBookingUC.TimeslotRepository
	blockSlotUC.TimeslotRepository
	getAvailableSlotsUC.TimeslotRepository
	reconcileCountsUC.TimeslotRepository
	regenerateHorizonUC.TimeslotRepository
	bookingsService.TimeslotRepository
}

type bookingStore interface {
	bookSlotUC.BookingRepository
	cancelBookingUC.BookingRepository
	completeBookingsUC.BookingRepository
	reconcileCountsUC.BookingRepository
	bookingsService.BookingRepository
	quotaService.BookingRepository
}

type tenantStore interface {
	cancelBookingUC.TenantRepository
	quotaService.TenantRepository
}

type ruleStore interface {
	regenerateHorizonUC.RuleRepository
	rulesService.RuleRepository
}

type txManager interface {
	bookSlotUC.TransactionManager
	cancelBookingUC.TransactionManager
	blockSlotUC.TransactionManager
	reconcileCountsUC.TransactionManager
	regenerateHorizonUC.TransactionManager
	rulesService.TransactionManager
}

type notifierBackend interface {
	bookSlotUC.Notifier
	cancelBookingUC.Notifier
}

type storage struct {
	timeslots timeslotStore
	bookings  bookingStore
	tenants   tenantStore
	rules     ruleStore
	txManager txManager
}
