package reconcile_counts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/metrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func seed(t *testing.T, store *memory.Store, day string, start string, capacity, live, counter int) int64 {
	t.Helper()
	ctx := context.Background()
	begin := types.MustTimeString(start)
	end, err := begin.AddMinutes(30)
	require.NoError(t, err)

	_, err = store.Timeslots().InsertIfAbsent(ctx, domain.TimeslotSpec{
		Day: types.MustDate(day), StartTime: begin, EndTime: end, Capacity: capacity, Kind: domain.SlotKindNormal,
	})
	require.NoError(t, err)
	list, err := store.Timeslots().ListByDay(ctx, types.MustDate(day))
	require.NoError(t, err)
	var id int64
	for _, s := range list {
		if s.StartTime.Equal(begin) {
			id = s.ID
		}
	}

	for i := 0; i < live; i++ {
		c, err := domain.NewConsumer(int64(1000*id) + int64(i))
		require.NoError(t, err)
		_, err = store.Bookings().Create(ctx, &domain.Booking{TimeslotID: id, Subject: c, Status: domain.StatusConfirmed})
		require.NoError(t, err)
	}
	// отмененные не считаются
	c, err := domain.NewConsumer(int64(1000*id) + 999)
	require.NoError(t, err)
	cancelled, err := store.Bookings().Create(ctx, &domain.Booking{TimeslotID: id, Subject: c, Status: domain.StatusConfirmed})
	require.NoError(t, err)
	require.NoError(t, store.Bookings().Cancel(ctx, cancelled.ID, time.Now()))

	require.NoError(t, store.Timeslots().SetBookedCount(ctx, id, counter))
	return id
}

func count(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	s, err := store.Timeslots().GetByID(context.Background(), id)
	require.NoError(t, err)
	return s.BookedCount
}

func newUseCase(store *memory.Store) *UseCase {
	return NewUseCase(
		store.Timeslots(),
		store.Bookings(),
		store.TxManager(),
		metrics.NewRecorder(nil, "test"),
		domain.NewCalendar(time.UTC),
		logger.NewNop(),
	).WithTimeProvider(fixedTime{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)})
}

func TestExecute_CorrectsDrift(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	drifted := seed(t, store, "2026-10-15", "09:00", 6, 2, 5)
	correct := seed(t, store, "2026-10-15", "10:00", 6, 3, 3)
	zeroed := seed(t, store, "2026-10-16", "09:00", 6, 1, 0)
	past := seed(t, store, "2026-10-13", "09:00", 6, 1, 4)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{})

	require.NoError(t, err)
	assert.Equal(t, types.MustDate("2026-10-14"), resp.FromDay)
	assert.Equal(t, 3, resp.Checked)
	assert.Equal(t, 2, resp.Corrected)
	assert.Empty(t, resp.Errors)

	assert.Equal(t, 2, count(t, store, drifted))
	assert.Equal(t, 3, count(t, store, correct))
	assert.Equal(t, 1, count(t, store, zeroed))
	assert.Equal(t, 4, count(t, store, past))
}

func TestExecute_Idempotent(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	seed(t, store, "2026-10-15", "09:00", 6, 2, 5)
	uc := newUseCase(store)

	_, err := uc.Execute(context.Background(), &Request{})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Zero(t, resp.Corrected)
}

func TestExecute_OversoldClampedToCapacity(t *testing.T) {
	store := memory.NewStore(memory.Options{})
	id := seed(t, store, "2026-10-15", "09:00", 2, 3, 0)

	resp, err := newUseCase(store).Execute(context.Background(), &Request{FromDay: types.MustDate("2026-10-15")})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Oversold)
	assert.Equal(t, 1, resp.Corrected)
	assert.Equal(t, 2, count(t, store, id))
}
