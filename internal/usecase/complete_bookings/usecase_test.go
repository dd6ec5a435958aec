package complete_bookings

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

func TestExecute_CompletesEndedInRegionTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	store := memory.NewStore(memory.Options{})
	ctx := context.Background()
	day := types.MustDate("2026-10-14")

	ids := make([]int64, 0, 2)
	for _, start := range []string{"09:00", "09:30"} {
		begin := types.MustTimeString(start)
		end, err := begin.AddMinutes(30)
		require.NoError(t, err)
		_, err = store.Timeslots().InsertIfAbsent(ctx, domain.TimeslotSpec{Day: day, StartTime: begin, EndTime: end, Capacity: 6, Kind: domain.SlotKindNormal})
		require.NoError(t, err)
	}
	slots, err := store.Timeslots().ListByDay(ctx, day)
	require.NoError(t, err)
	consumer, err := domain.NewConsumer(1)
	require.NoError(t, err)
	for _, s := range slots {
		b, err := store.Bookings().Create(ctx, &domain.Booking{TimeslotID: s.ID, Subject: consumer, Status: domain.StatusConfirmed})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	// 06:45 UTC это 09:45 в Москве: закончился только слот 09:00-09:30
	now := time.Date(2026, 10, 14, 6, 45, 0, 0, time.UTC)
	uc := NewUseCase(store.Bookings(), metrics.NewRecorder(nil, "test"), domain.NewCalendar(loc), logger.NewNop()).
		WithTimeProvider(fixedTime{t: now})

	resp, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Completed)

	first, err := store.Bookings().GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, first.Status)
	second, err := store.Bookings().GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, second.Status)

	resp, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, resp.Completed)
}
