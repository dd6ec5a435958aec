package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addAnalysisScheduleHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/add_analysis_schedule"
	blockSlotHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/block_slot"
	bookSlotHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/book_slot"
	cancelBookingHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/cancel_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/get_booking"
	getQuotaHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/get_quota"
	getRulesHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/get_rules"
	getSubjectBookingsHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/get_subject_bookings"
	getTenantBookingsHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/get_tenant_bookings"
	markNoShowHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/mark_no_show"
	reconcileHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/reconcile"
	regenerateHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/regenerate"
	setAnalysisScheduleActiveHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/set_analysis_schedule_active"
	setOpeningHoursHandler "github.com/m04kA/SMC-PhysioBooking/internal/api/handlers/set_opening_hours"
	"github.com/m04kA/SMC-PhysioBooking/internal/api/middleware"
)

// Router HTTP маршруты сервиса
func (a *App) Router() *mux.Router {
	log := a.Logger

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(a.GetAvailableSlots, log)
	getRules := getRulesHandler.NewHandler(a.Rules, log)
	bookSlot := bookSlotHandler.NewHandler(a.BookSlot, log)
	cancelBooking := cancelBookingHandler.NewHandler(a.CancelBooking, log)
	getBooking := getBookingHandler.NewHandler(a.Bookings, log)
	getSubjectBookings := getSubjectBookingsHandler.NewHandler(a.Bookings, log)
	getTenantBookings := getTenantBookingsHandler.NewHandler(a.Bookings, log)
	getQuota := getQuotaHandler.NewHandler(a.Quota, log)
	regenerate := regenerateHandler.NewHandler(a.RegenerateHorizon, log)
	reconcile := reconcileHandler.NewHandler(a.ReconcileCounts, log)
	setOpeningHours := setOpeningHoursHandler.NewHandler(a.Rules, a.Scheduler, log)
	addAnalysisSchedule := addAnalysisScheduleHandler.NewHandler(a.Rules, a.Scheduler, log)
	setAnalysisScheduleActive := setAnalysisScheduleActiveHandler.NewHandler(a.Rules, a.Scheduler, log)
	blockSlot := blockSlotHandler.NewHandler(a.BlockSlot, log)
	markNoShow := markNoShowHandler.NewHandler(a.Bookings, log)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if a.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.Metrics, a.Config.Metrics.ServiceName))
		r.Handle(a.Config.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", a.Config.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (субъект или администратор необязательны)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.OptionalAuth)

	public.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	public.HandleFunc("/rules", getRules.Handle).Methods(http.MethodGet)

	// Субъект или администратор, права проверяются в handler
	public.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	public.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	public.HandleFunc("/tenants/{tenantId}/quota", getQuota.Handle).Methods(http.MethodGet)
	public.HandleFunc("/tenants/{tenantId}/bookings", getTenantBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют заголовки субъекта)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/bookings", bookSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/me/bookings", getSubjectBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-ID)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Admin)

	admin.HandleFunc("/regenerate", regenerate.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/reconcile", reconcile.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/opening-hours/{weekday}", setOpeningHours.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/analysis-schedules", addAnalysisSchedule.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/analysis-schedules/{scheduleId}", setAnalysisScheduleActive.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/slots/{slotId}/block", blockSlot.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}/no-show", markNoShow.Handle).Methods(http.MethodPatch)

	return r
}
