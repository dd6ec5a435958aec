package book_slot

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
	"github.com/m04kA/SMC-PhysioBooking/internal/service/quota"
	"github.com/m04kA/SMC-PhysioBooking/pkg/logger"
	"github.com/m04kA/SMC-PhysioBooking/pkg/metrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/ptr"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

const tenantID = 7

var tomorrow = types.MustDate("2026-10-15")

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
}

func newFixture(t *testing.T, dailyLimit int, lockTimeout time.Duration) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	cal := domain.NewCalendar(loc)
	now := fixedTime{t: time.Date(2026, 10, 14, 10, 0, 0, 0, loc)}

	store := memory.NewStore(memory.Options{LockTimeout: lockTimeout})
	_, err = store.Tenants().Upsert(context.Background(), domain.Tenant{ID: tenantID, Name: "ACME", DailyLimit: dailyLimit})
	require.NoError(t, err)

	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	log := logger.NewNop()
	quotaSvc := quota.NewService(store.Tenants(), store.Bookings(), cal, log).WithTimeProvider(now)
	uc := NewUseCase(
		store.Timeslots(),
		store.Bookings(),
		quotaSvc,
		store.TxManager(),
		n,
		metrics.NewRecorder(nil, "test"),
		cal,
		Options{MaxNoteLength: 20},
		log,
	).WithTimeProvider(now)

	return &fixture{store: store, notifier: n, uc: uc}
}

func (f *fixture) slot(t *testing.T, day types.Date, start string, capacity int) int64 {
	t.Helper()
	ctx := context.Background()
	begin := types.MustTimeString(start)
	end, err := begin.AddMinutes(30)
	require.NoError(t, err)

	_, err = f.store.Timeslots().InsertIfAbsent(ctx, domain.TimeslotSpec{
		Day: day, StartTime: begin, EndTime: end, Capacity: capacity, Kind: domain.SlotKindNormal,
	})
	require.NoError(t, err)

	slots, err := f.store.Timeslots().ListByDay(ctx, day)
	require.NoError(t, err)
	for _, s := range slots {
		if s.StartTime.Equal(begin) {
			return s.ID
		}
	}
	t.Fatalf("slot %s %s not found", day, start)
	return 0
}

func (f *fixture) bookedCount(t *testing.T, slotID int64) int {
	t.Helper()
	s, err := f.store.Timeslots().GetByID(context.Background(), slotID)
	require.NoError(t, err)
	return s.BookedCount
}

func consumer(t *testing.T, id int64) domain.Subject {
	t.Helper()
	s, err := domain.NewConsumer(id)
	require.NoError(t, err)
	return s
}

func tenantUser(t *testing.T, id int64) domain.Subject {
	t.Helper()
	s, err := domain.NewTenantUser(id, tenantID)
	require.NoError(t, err)
	return s
}

func TestExecute_ConsumerSuccess(t *testing.T) {
	f := newFixture(t, 5, 0)
	slotID := f.slot(t, tomorrow, "09:00", 6)

	resp, err := f.uc.Execute(context.Background(), &Request{
		Subject:    consumer(t, 100),
		TimeslotID: slotID,
		Note:       ptr.Ptr("  knee  "),
	})

	require.NoError(t, err)
	assert.Equal(t, slotID, resp.TimeslotID)
	assert.Equal(t, domain.StatusConfirmed, resp.Status)
	assert.Equal(t, "knee", *resp.Note)
	assert.Nil(t, resp.Quota)
	assert.Equal(t, 1, f.bookedCount(t, slotID))

	f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(e notifier.Event) bool {
		return e.Outcome == notifier.OutcomeBooked && e.BookingID == resp.BookingID && e.SlotStart == "09:00"
	}))
}

func TestExecute_TenantUserReportsQuota(t *testing.T) {
	f := newFixture(t, 5, 0)
	slotID := f.slot(t, tomorrow, "09:00", 6)

	resp, err := f.uc.Execute(context.Background(), &Request{Subject: tenantUser(t, 1), TimeslotID: slotID})

	require.NoError(t, err)
	require.NotNil(t, resp.Quota)
	assert.Equal(t, 1, resp.Quota.Used)
	assert.Equal(t, 5, resp.Quota.Limit)
	assert.Equal(t, tomorrow, resp.Quota.Day)
}

func TestExecute_Rejections(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()

	blocked := f.slot(t, tomorrow, "09:00", 6)
	require.NoError(t, f.store.Timeslots().SetBlocked(ctx, blocked, true))

	past := f.slot(t, types.MustDate("2026-10-14"), "09:30", 6)

	single := f.slot(t, tomorrow, "10:00", 1)
	_, err := f.uc.Execute(ctx, &Request{Subject: consumer(t, 1), TimeslotID: single})
	require.NoError(t, err)

	twice := f.slot(t, tomorrow, "11:00", 6)
	_, err = f.uc.Execute(ctx, &Request{Subject: consumer(t, 1), TimeslotID: twice})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "slot not found", req: &Request{Subject: consumer(t, 2), TimeslotID: 9999}, wantErr: domain.ErrSlotNotFound},
		{name: "slot blocked", req: &Request{Subject: consumer(t, 2), TimeslotID: blocked}, wantErr: domain.ErrSlotBlocked},
		{name: "slot already started", req: &Request{Subject: consumer(t, 2), TimeslotID: past}, wantErr: domain.ErrSlotInPast},
		{name: "slot full", req: &Request{Subject: consumer(t, 2), TimeslotID: single}, wantErr: domain.ErrSlotFull},
		{name: "already booked", req: &Request{Subject: consumer(t, 1), TimeslotID: twice}, wantErr: domain.ErrAlreadyBooked},
		{name: "empty subject", req: &Request{TimeslotID: twice}, wantErr: ErrInvalidInput},
		{name: "bad timeslot id", req: &Request{Subject: consumer(t, 2)}, wantErr: ErrInvalidInput},
		{name: "note too long", req: &Request{Subject: consumer(t, 2), TimeslotID: twice, Note: ptr.Ptr("this note is definitely too long")}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsBusinessOutcome(err) || errors.Is(err, ErrInvalidInput))
		})
	}

	assert.Equal(t, 1, f.bookedCount(t, single))
	assert.Equal(t, 1, f.bookedCount(t, twice))
}

func TestExecute_UnknownTenant(t *testing.T) {
	f := newFixture(t, 5, 0)
	slotID := f.slot(t, tomorrow, "09:00", 6)
	stranger, err := domain.NewTenantUser(1, 404)
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), &Request{Subject: stranger, TimeslotID: slotID})

	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Equal(t, 0, f.bookedCount(t, slotID))
}

func TestExecute_NotifierFailureKeepsBooking(t *testing.T) {
	f := newFixture(t, 5, 0)
	slotID := f.slot(t, tomorrow, "09:00", 6)
	f.notifier.ExpectedCalls = nil
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	resp, err := f.uc.Execute(context.Background(), &Request{Subject: consumer(t, 1), TimeslotID: slotID})

	require.NoError(t, err)
	assert.Positive(t, resp.BookingID)
	assert.Equal(t, 1, f.bookedCount(t, slotID))
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestExecute_LockTimeoutIsBusy(t *testing.T) {
	f := newFixture(t, 5, 20*time.Millisecond)
	slotID := f.slot(t, tomorrow, "09:00", 6)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = f.store.TxManager().Do(context.Background(), func(ctx context.Context) error {
			if _, err := f.store.Timeslots().GetByIDForUpdate(ctx, slotID); err != nil {
				return err
			}
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	_, err := f.uc.Execute(context.Background(), &Request{Subject: consumer(t, 1), TimeslotID: slotID})
	close(release)

	assert.ErrorIs(t, err, domain.ErrConcurrencyBusy)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, 0, f.bookedCount(t, slotID))
}

func runConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func countOutcomes(errs []error, kind error) (ok, matched, other int) {
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, kind):
			matched++
		default:
			other++
		}
	}
	return ok, matched, other
}

func TestExecute_ConcurrentCapacity(t *testing.T) {
	const capacity, callers = 3, 12
	f := newFixture(t, 100, 5*time.Second)
	slotID := f.slot(t, tomorrow, "09:00", capacity)

	subjects := make([]domain.Subject, callers)
	for i := range subjects {
		subjects[i] = consumer(t, int64(i+1))
	}

	errs := runConcurrently(callers, func(i int) error {
		_, err := f.uc.Execute(context.Background(), &Request{Subject: subjects[i], TimeslotID: slotID})
		return err
	})

	ok, full, other := countOutcomes(errs, domain.ErrSlotFull)
	assert.Equal(t, capacity, ok)
	assert.Equal(t, callers-capacity, full)
	assert.Zero(t, other)
	assert.Equal(t, capacity, f.bookedCount(t, slotID))
}

func TestExecute_ConcurrentTenantQuotaAcrossSlots(t *testing.T) {
	const limit, callers = 4, 10
	f := newFixture(t, limit, 5*time.Second)

	slotIDs := make([]int64, callers)
	for i := range slotIDs {
		start, err := types.FromMinutes(8*60 + i*30)
		require.NoError(t, err)
		slotIDs[i] = f.slot(t, tomorrow, start.String(), callers)
	}

	subjects := make([]domain.Subject, callers)
	for i := range subjects {
		subjects[i] = tenantUser(t, int64(i+1))
	}

	errs := runConcurrently(callers, func(i int) error {
		_, err := f.uc.Execute(context.Background(), &Request{Subject: subjects[i], TimeslotID: slotIDs[i]})
		return err
	})

	ok, exceeded, other := countOutcomes(errs, domain.ErrQuotaExceeded)
	assert.Equal(t, limit, ok)
	assert.Equal(t, callers-limit, exceeded)
	assert.Zero(t, other)

	used, err := f.store.Bookings().CountQuotaForTenantOnDay(context.Background(), tenantID, tomorrow)
	require.NoError(t, err)
	assert.Equal(t, limit, used)
}

func TestExecute_ConcurrentTenantQuotaOneSlot(t *testing.T) {
	const limit, callers = 3, 8
	f := newFixture(t, limit, 5*time.Second)
	slotID := f.slot(t, tomorrow, "09:00", callers)

	subjects := make([]domain.Subject, callers)
	for i := range subjects {
		subjects[i] = tenantUser(t, int64(i+1))
	}

	errs := runConcurrently(callers, func(i int) error {
		_, err := f.uc.Execute(context.Background(), &Request{Subject: subjects[i], TimeslotID: slotID})
		return err
	})

	ok, exceeded, other := countOutcomes(errs, domain.ErrQuotaExceeded)
	assert.Equal(t, limit, ok)
	assert.Equal(t, callers-limit, exceeded)
	assert.Zero(t, other)
	assert.Equal(t, limit, f.bookedCount(t, slotID))
}

func TestExecute_QuotaFreedByCancellation(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()
	slotID := f.slot(t, tomorrow, "09:00", 10)

	var first int64
	for i := 1; i <= 5; i++ {
		resp, err := f.uc.Execute(ctx, &Request{Subject: tenantUser(t, int64(i)), TimeslotID: slotID})
		require.NoError(t, err)
		if i == 1 {
			first = resp.BookingID
		}
	}

	_, err := f.uc.Execute(ctx, &Request{Subject: tenantUser(t, 6), TimeslotID: slotID})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)

	require.NoError(t, f.store.TxManager().Do(ctx, func(txCtx context.Context) error {
		if err := f.store.Bookings().Cancel(txCtx, first, time.Now()); err != nil {
			return err
		}
		return f.store.Timeslots().DecrementBooked(txCtx, slotID)
	}))

	resp, err := f.uc.Execute(ctx, &Request{Subject: tenantUser(t, 6), TimeslotID: slotID})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Quota.Used)
	assert.Equal(t, 5, f.bookedCount(t, slotID))
}

func TestExecute_QuotaIsPerDay(t *testing.T) {
	f := newFixture(t, 1, 0)
	ctx := context.Background()
	a := f.slot(t, tomorrow, "09:00", 6)
	b := f.slot(t, tomorrow.AddDays(1), "09:00", 6)

	_, err := f.uc.Execute(ctx, &Request{Subject: tenantUser(t, 1), TimeslotID: a})
	require.NoError(t, err)
	_, err = f.uc.Execute(ctx, &Request{Subject: tenantUser(t, 1), TimeslotID: b})
	require.NoError(t, err)

	// прямые клиенты квоту не расходуют
	_, err = f.uc.Execute(ctx, &Request{Subject: consumer(t, 1), TimeslotID: a})
	assert.NoError(t, err)
}
