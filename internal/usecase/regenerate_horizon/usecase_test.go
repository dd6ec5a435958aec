package regenerate_horizon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/internal/slots"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/metrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

var (
	monday  = types.MustDate("2026-10-19")
	tuesday = types.MustDate("2026-10-20")
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func tsv(s string) types.TimeString { return types.MustTimeString(s) }

func newUseCase(t *testing.T, store *memory.Store, step int) *UseCase {
	t.Helper()
	return NewUseCase(
		store.Rules(),
		store.Timeslots(),
		store.TxManager(),
		metrics.NewRecorder(nil, "test"),
		domain.NewCalendar(time.UTC),
		slots.Params{StepMinutes: step, NormalCapacity: 6, AnalysisCapacity: 1},
		logger.NewNop(),
	).WithTimeProvider(fixedTime{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)})
}

func setHours(t *testing.T, store *memory.Store, weekday time.Weekday, open, close string, breaks ...domain.BreakRule) {
	t.Helper()
	_, err := store.Rules().UpsertOpeningHours(context.Background(), &domain.OpeningHoursRule{
		Weekday:   weekday,
		OpenTime:  tsv(open),
		CloseTime: tsv(close),
		Breaks:    breaks,
	})
	require.NoError(t, err)
}

func starts(t *testing.T, store *memory.Store, day types.Date) []string {
	t.Helper()
	list, err := store.Timeslots().ListByDay(context.Background(), day)
	require.NoError(t, err)
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.StartTime.String()
	}
	return out
}

func TestExecute_BreakScenario(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	setHours(t, store, time.Monday, "08:00", "10:00", domain.BreakRule{StartTime: tsv("09:00"), EndTime: tsv("09:30")})
	uc := newUseCase(t, store, 30)

	resp, err := uc.Execute(context.Background(), &Request{StartDay: monday, Days: 1})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Created)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, []string{"08:00", "08:30", "09:30"}, starts(t, store, monday))
}

func TestExecute_Idempotent(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	setHours(t, store, time.Monday, "08:00", "12:00")
	uc := newUseCase(t, store, 30)

	_, err := uc.Execute(context.Background(), &Request{StartDay: monday, Days: 7})
	require.NoError(t, err)
	before, err := store.Timeslots().ListByDay(context.Background(), monday)
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{StartDay: monday, Days: 7})
	require.NoError(t, err)
	assert.Zero(t, resp.Created)
	assert.Zero(t, resp.DeletedEmpty)
	assert.Equal(t, 8, resp.Kept)

	after, err := store.Timeslots().ListByDay(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExecute_RuleEditAppliedOnNextRun(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	setHours(t, store, time.Monday, "08:00", "09:00")
	uc := newUseCase(t, store, 30)

	_, err := uc.Execute(context.Background(), &Request{StartDay: monday, Days: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"08:00", "08:30"}, starts(t, store, monday))

	setHours(t, store, time.Monday, "10:00", "11:00")
	resp, err := uc.Execute(context.Background(), &Request{StartDay: monday, Days: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 2, resp.DeletedEmpty)
	assert.Equal(t, []string{"10:00", "10:30"}, starts(t, store, monday))
}

func TestExecute_PreservesBookedSlots(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	ctx := context.Background()
	setHours(t, store, time.Monday, "08:00", "10:00")
	uc := newUseCase(t, store, 30)

	_, err := uc.Execute(ctx, &Request{StartDay: monday, Days: 1})
	require.NoError(t, err)

	list, err := store.Timeslots().ListByDay(ctx, monday)
	require.NoError(t, err)
	booked := list[0]
	consumer, err := domain.NewConsumer(1)
	require.NoError(t, err)
	_, err = store.Bookings().Create(ctx, &domain.Booking{TimeslotID: booked.ID, Subject: consumer, Status: domain.StatusConfirmed})
	require.NoError(t, err)
	require.NoError(t, store.Timeslots().IncrementBooked(ctx, booked.ID))

	setHours(t, store, time.Monday, "12:00", "13:00")
	resp, err := uc.Execute(ctx, &Request{StartDay: monday, Days: 1})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 3, resp.DeletedEmpty)
	assert.Equal(t, 1, resp.Kept)
	assert.Equal(t, []string{"08:00", "12:00", "12:30"}, starts(t, store, monday))

	got, err := store.Timeslots().GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BookedCount)
	assert.Equal(t, 6, got.Capacity)
}

func TestExecute_CapacityChangeReplacesEmptySlots(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	ctx := context.Background()
	setHours(t, store, time.Monday, "08:00", "09:00")

	_, err := newUseCase(t, store, 30).Execute(ctx, &Request{StartDay: monday, Days: 1})
	require.NoError(t, err)

	bigger := NewUseCase(store.Rules(), store.Timeslots(), store.TxManager(), metrics.NewRecorder(nil, "test"),
		domain.NewCalendar(time.UTC), slots.Params{StepMinutes: 30, NormalCapacity: 10, AnalysisCapacity: 1}, logger.NewNop()).
		WithTimeProvider(fixedTime{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)})
	resp, err := bigger.Execute(ctx, &Request{StartDay: monday, Days: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 2, resp.DeletedEmpty)

	list, err := store.Timeslots().ListByDay(ctx, monday)
	require.NoError(t, err)
	for _, s := range list {
		assert.Equal(t, 10, s.Capacity)
	}
}

func TestExecute_AnalysisOnClosedDay(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	ctx := context.Background()
	_, err := store.Rules().UpsertOpeningHours(ctx, &domain.OpeningHoursRule{Weekday: time.Tuesday, IsClosed: true})
	require.NoError(t, err)
	_, err = store.Rules().CreateAnalysisSchedule(ctx, &domain.AnalysisScheduleRule{
		Weekday: time.Tuesday, StartTime: tsv("16:00"), EndTime: tsv("17:00"), IsActive: true,
	})
	require.NoError(t, err)

	resp, err := newUseCase(t, store, 10).Execute(ctx, &Request{StartDay: tuesday, Days: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Created)

	list, err := store.Timeslots().ListByDay(ctx, tuesday)
	require.NoError(t, err)
	for _, s := range list {
		assert.Equal(t, domain.SlotKindAnalysis, s.Kind)
		assert.Equal(t, 1, s.Capacity)
	}
}

func TestExecute_InvalidDayDoesNotStopOthers(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	setHours(t, store, time.Monday, "08:00", "09:00")
	setHours(t, store, time.Tuesday, "10:00", "09:00")

	resp, err := newUseCase(t, store, 30).Execute(context.Background(), &Request{StartDay: monday, Days: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], tuesday.String())
	assert.Empty(t, starts(t, store, tuesday))
}

func TestExecute_StartClampedToTomorrow(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	setHours(t, store, time.Wednesday, "08:00", "09:00")

	resp, err := newUseCase(t, store, 30).Execute(context.Background(), &Request{StartDay: types.MustDate("2026-10-10"), Days: 1})

	require.NoError(t, err)
	assert.Equal(t, types.MustDate("2026-10-15"), resp.StartDay)
	// сегодня (среда 14-го) не генерируется
	assert.Empty(t, starts(t, store, types.MustDate("2026-10-14")))
	assert.Zero(t, resp.Created)

	resp, err = newUseCase(t, store, 30).Execute(context.Background(), &Request{Days: 7})
	require.NoError(t, err)
	assert.Equal(t, types.MustDate("2026-10-15"), resp.StartDay)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, []string{"08:00", "08:30"}, starts(t, store, types.MustDate("2026-10-21")))
}

func TestExecute_InvalidRequest(t *testing.T) {
	uc := newUseCase(t, memory.NewStore(memory.Options{}), 30)

	_, err := uc.Execute(context.Background(), &Request{Days: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{Days: domain.MaxHorizonDays + 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
