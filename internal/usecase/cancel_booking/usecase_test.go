package cancel_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-PhysioBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/metrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, event notifier.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fixture struct {
	store    *memory.Store
	notifier *mockNotifier
	uc       *UseCase
	slotID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(memory.Options{})

	_, err := store.Timeslots().InsertIfAbsent(ctx, domain.TimeslotSpec{
		Day:       types.MustDate("2026-10-15"),
		StartTime: types.MustTimeString("09:00"),
		EndTime:   types.MustTimeString("09:30"),
		Capacity:  6,
		Kind:      domain.SlotKindNormal,
	})
	require.NoError(t, err)
	slots, err := store.Timeslots().ListByDay(ctx, types.MustDate("2026-10-15"))
	require.NoError(t, err)

	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	uc := NewUseCase(
		store.Bookings(),
		store.Timeslots(),
		store.Tenants(),
		store.TxManager(),
		n,
		metrics.NewRecorder(nil, "test"),
		domain.NewCalendar(time.UTC),
		time.Second,
		logger.NewNop(),
	).WithTimeProvider(fixedTime{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)})

	return &fixture{store: store, notifier: n, uc: uc, slotID: slots[0].ID}
}

// book создает подтвержденное бронирование тем же путем, что и book_slot
func (f *fixture) book(t *testing.T, subject domain.Subject) *domain.Booking {
	t.Helper()
	var created *domain.Booking
	err := f.store.TxManager().Do(context.Background(), func(ctx context.Context) error {
		var err error
		created, err = f.store.Bookings().Create(ctx, &domain.Booking{
			TimeslotID: f.slotID,
			Subject:    subject,
			Status:     domain.StatusConfirmed,
		})
		if err != nil {
			return err
		}
		return f.store.Timeslots().IncrementBooked(ctx, f.slotID)
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) bookedCount(t *testing.T) int {
	t.Helper()
	s, err := f.store.Timeslots().GetByID(context.Background(), f.slotID)
	require.NoError(t, err)
	return s.BookedCount
}

func TestExecute_CancelsAndDecrementsOnce(t *testing.T) {
	f := newFixture(t)
	user, err := domain.NewTenantUser(42, 7)
	require.NoError(t, err)
	b := f.book(t, user)
	f.book(t, mustConsumer(t, 1))
	require.Equal(t, 2, f.bookedCount(t))

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID, Actor: &user})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, resp.Status)
	assert.False(t, resp.AlreadyCancelled)
	require.NotNil(t, resp.CancelledAt)
	assert.Equal(t, 1, f.bookedCount(t))

	resp, err = f.uc.Execute(context.Background(), &Request{BookingID: b.ID})
	require.NoError(t, err)
	assert.True(t, resp.AlreadyCancelled)
	assert.Equal(t, 1, f.bookedCount(t))

	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(e notifier.Event) bool {
		return e.Outcome == notifier.OutcomeCancelled && e.BookingID == b.ID
	}))
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture(t)
	owner := mustConsumer(t, 1)
	other := mustConsumer(t, 2)
	b := f.book(t, owner)

	completed := f.book(t, mustConsumer(t, 3))
	n, err := f.store.Bookings().CompleteEnded(context.Background(), types.MustDate("2026-10-16"), types.MustTimeString("00:00"), time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "not found", req: &Request{BookingID: 9999}, wantErr: domain.ErrBookingNotFound},
		{name: "invalid id", req: &Request{}, wantErr: ErrInvalidInput},
		{name: "foreign booking", req: &Request{BookingID: b.ID, Actor: &other}, wantErr: domain.ErrAccessDenied},
		{name: "completed", req: &Request{BookingID: completed.ID}, wantErr: domain.ErrCannotCancel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 2, f.bookedCount(t))
}

func TestExecute_UnderflowStillCancels(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, mustConsumer(t, 1))
	require.NoError(t, f.store.Timeslots().SetBookedCount(context.Background(), f.slotID, 0))

	resp, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, resp.Status)
	assert.Equal(t, 0, f.bookedCount(t))
}

func TestExecute_ConcurrentCancelDecrementsOnce(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, mustConsumer(t, 1))
	f.book(t, mustConsumer(t, 2))

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), &Request{BookingID: b.ID})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.bookedCount(t))
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestExecute_NotifierErrorIgnored(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, mustConsumer(t, 1))
	f.notifier.ExpectedCalls = nil
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	_, err := f.uc.Execute(context.Background(), &Request{BookingID: b.ID})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.bookedCount(t))
}

func mustConsumer(t *testing.T, id int64) domain.Subject {
	t.Helper()
	s, err := domain.NewConsumer(id)
	require.NoError(t, err)
	return s
}
