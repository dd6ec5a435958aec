package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	BookingOutcomes      *prometheus.CounterVec
	SlotsRegenerated     *prometheus.CounterVec
	RegenerationErrors   *prometheus.CounterVec
	CounterCorrections   *prometheus.CounterVec
	BookingsAutoComplete *prometheus.CounterVec
}

// New создает и регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer создает метрики в указанном реестре (для тестов)
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query latency",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"service", "operation", "status"},
		),
		DBOpenConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_open_connections",
				Help: "Number of established connections",
			},
			[]string{"service"},
		),
		DBInUseConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_in_use_connections",
				Help: "Number of connections currently in use",
			},
			[]string{"service"},
		),
		DBWaitCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_wait_count",
				Help: "Total number of connections waited for",
			},
			[]string{"service"},
		),
		BookingOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_outcomes_total",
				Help: "Booking and cancellation attempts by operation and outcome kind",
			},
			[]string{"service", "operation", "outcome"},
		),
		SlotsRegenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slots_regenerated_total",
				Help: "Timeslots created or deleted by regeneration",
			},
			[]string{"service", "action"},
		),
		RegenerationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_regeneration_errors_total",
				Help: "Days that failed to regenerate",
			},
			[]string{"service"},
		),
		CounterCorrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booked_count_corrections_total",
				Help: "Timeslots whose booked_count drifted and was repaired",
			},
			[]string{"service"},
		),
		BookingsAutoComplete: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_completed_total",
				Help: "Bookings moved to completed after their slot ended",
			},
			[]string{"service"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBWaitCount,
		m.BookingOutcomes,
		m.SlotsRegenerated,
		m.RegenerationErrors,
		m.CounterCorrections,
		m.BookingsAutoComplete,
	)

	return m
}

// Recorder привязывает метрики к имени сервиса и реализует узкие интерфейсы usecase'ов.
// Нулевой *Recorder безопасен и ничего не делает.
type Recorder struct {
	m       *Metrics
	service string
}

// NewRecorder создает Recorder, m может быть nil (метрики выключены)
func NewRecorder(m *Metrics, serviceName string) *Recorder {
	return &Recorder{m: m, service: serviceName}
}

func (r *Recorder) ObserveBooking(operation, outcome string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.BookingOutcomes.WithLabelValues(r.service, operation, outcome).Inc()
}

func (r *Recorder) ObserveRegeneration(created, deleted, failedDays int) {
	if r == nil || r.m == nil {
		return
	}
	r.m.SlotsRegenerated.WithLabelValues(r.service, "created").Add(float64(created))
	r.m.SlotsRegenerated.WithLabelValues(r.service, "deleted").Add(float64(deleted))
	r.m.RegenerationErrors.WithLabelValues(r.service).Add(float64(failedDays))
}

func (r *Recorder) ObserveCorrections(n int) {
	if r == nil || r.m == nil {
		return
	}
	r.m.CounterCorrections.WithLabelValues(r.service).Add(float64(n))
}

func (r *Recorder) ObserveCompleted(n int) {
	if r == nil || r.m == nil {
		return
	}
	r.m.BookingsAutoComplete.WithLabelValues(r.service).Add(float64(n))
}
