package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	store := memory.NewStore(memory.Options{})
	_, err = store.Tenants().Upsert(context.Background(), domain.Tenant{ID: 7, Name: "ACME", DailyLimit: 2})
	require.NoError(t, err)

	// 2026-10-14 22:30 UTC это уже 15 октября в Москве
	now := time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC)
	svc := NewService(store.Tenants(), store.Bookings(), domain.NewCalendar(loc), logger.NewNop()).
		WithTimeProvider(fixedTime{t: now})
	return svc, store
}

func book(t *testing.T, store *memory.Store, day string, start string, userID int64) *domain.Booking {
	t.Helper()
	ctx := context.Background()
	begin := types.MustTimeString(start)
	end, err := begin.AddMinutes(30)
	require.NoError(t, err)

	_, err = store.Timeslots().InsertIfAbsent(ctx, domain.TimeslotSpec{
		Day: types.MustDate(day), StartTime: begin, EndTime: end, Capacity: 6, Kind: domain.SlotKindNormal,
	})
	require.NoError(t, err)

	slots, err := store.Timeslots().ListByDay(ctx, types.MustDate(day))
	require.NoError(t, err)
	var slotID int64
	for _, s := range slots {
		if s.StartTime.Equal(begin) {
			slotID = s.ID
		}
	}

	user, err := domain.NewTenantUser(userID, 7)
	require.NoError(t, err)
	b, err := store.Bookings().Create(ctx, &domain.Booking{TimeslotID: slotID, Subject: user, Status: domain.StatusConfirmed})
	require.NoError(t, err)
	return b
}

func TestGetQuotaUsage_UsesOperatingRegionToday(t *testing.T) {
	svc, store := newTestService(t)
	book(t, store, "2026-10-15", "09:00", 1)
	book(t, store, "2026-10-14", "09:00", 2)

	usage, err := svc.GetQuotaUsage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, types.MustDate("2026-10-15"), usage.Day)
	assert.Equal(t, 2, usage.Limit)
	assert.Equal(t, 1, usage.Used)
	assert.Equal(t, 1, usage.Available())
}

func TestGetQuotaUsage_CancelledNotCounted(t *testing.T) {
	svc, store := newTestService(t)
	b := book(t, store, "2026-10-15", "09:00", 1)
	require.NoError(t, store.Bookings().Cancel(context.Background(), b.ID, time.Now()))

	usage, err := svc.GetQuotaUsage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
}

func TestGetQuotaUsage_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetQuotaUsage(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetQuotaUsage(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestEnsureAvailable(t *testing.T) {
	svc, store := newTestService(t)
	day := types.MustDate("2026-10-16")
	book(t, store, day.String(), "09:00", 1)

	err := store.TxManager().Do(context.Background(), func(ctx context.Context) error {
		usage, err := svc.EnsureAvailable(ctx, 7, day)
		require.NotNil(t, usage)
		assert.Equal(t, 1, usage.Used)
		return err
	})
	require.NoError(t, err)

	book(t, store, day.String(), "10:00", 2)
	err = store.TxManager().Do(context.Background(), func(ctx context.Context) error {
		_, err := svc.EnsureAvailable(ctx, 7, day)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestEnsureAvailable_RequiresTransaction(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.EnsureAvailable(context.Background(), 7, types.MustDate("2026-10-16"))
	assert.ErrorIs(t, err, ErrInternal)
}
