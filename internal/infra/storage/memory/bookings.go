package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// BookingRepository бронирования в памяти, ошибки из пакета booking
type BookingRepository struct {
	s *Store
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.Subject.IsZero() {
		return nil, fmt.Errorf("%w: empty subject", booking.ErrInvalidSubject)
	}
	if _, ok := r.s.slots[b.TimeslotID]; !ok {
		return nil, fmt.Errorf("%w: Create - timeslot %d does not exist", booking.ErrExecQuery, b.TimeslotID)
	}
	for _, existing := range r.s.bookings {
		if existing.TimeslotID == b.TimeslotID && existing.IsLive() && existing.Subject.Equal(b.Subject) {
			return nil, booking.ErrDuplicateLiveBooking
		}
	}

	now := r.s.now()
	b.ID = r.s.nextID()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.bookings[b.ID] = copyBooking(*b)

	id := b.ID
	r.s.record(ctx, func() {
		delete(r.s.bookings, id)
	})
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	out := copyBooking(b)
	return &out, nil
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	if err := r.s.lock(ctx, bookingLockKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *BookingRepository) HasLiveBooking(ctx context.Context, timeslotID int64, subject domain.Subject) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.TimeslotID == timeslotID && b.IsLive() && sameHolder(b.Subject, subject) {
			return true, nil
		}
	}
	return false, nil
}

func (r *BookingRepository) CountLiveBySlot(ctx context.Context, timeslotID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, b := range r.s.bookings {
		if b.TimeslotID == timeslotID && b.IsLive() {
			count++
		}
	}
	return count, nil
}

func (r *BookingRepository) CountQuotaForTenantOnDay(ctx context.Context, tenantID int64, day types.Date) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, b := range r.s.bookings {
		t, ok := b.Subject.TenantID()
		if !ok || t != tenantID || !b.ConsumesQuota() {
			continue
		}
		if slot, ok := r.s.slots[b.TimeslotID]; ok && slot.Day.Equal(day) {
			count++
		}
	}
	return count, nil
}

func (r *BookingRepository) ListBySubject(ctx context.Context, subject domain.Subject) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking, _ domain.Timeslot) bool {
		return sameHolder(b.Subject, subject)
	}), nil
}

func (r *BookingRepository) ListByTenantOnDay(ctx context.Context, tenantID int64, day types.Date) ([]*domain.Booking, error) {
	return r.list(func(b *domain.Booking, slot domain.Timeslot) bool {
		t, ok := b.Subject.TenantID()
		return ok && t == tenantID && slot.Day.Equal(day)
	}), nil
}

func (r *BookingRepository) list(keep func(b *domain.Booking, slot domain.Timeslot) bool) []*domain.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type row struct {
		b    *domain.Booking
		slot domain.Timeslot
	}
	rows := make([]row, 0)
	for _, b := range r.s.bookings {
		b := copyBooking(b)
		slot := r.s.slots[b.TimeslotID]
		if keep(&b, slot) {
			rows = append(rows, row{b: &b, slot: slot})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, c := rows[i], rows[j]
		if !a.slot.Day.Equal(c.slot.Day) {
			return a.slot.Day.After(c.slot.Day)
		}
		if a.slot.StartTime.Minutes() != c.slot.StartTime.Minutes() {
			return a.slot.StartTime.Minutes() > c.slot.StartTime.Minutes()
		}
		return a.b.ID > c.b.ID
	})

	result := make([]*domain.Booking, len(rows))
	for i, rw := range rows {
		result[i] = rw.b
	}
	return result
}

func (r *BookingRepository) Cancel(ctx context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	before, ok := r.s.bookings[id]
	if !ok || before.Status != domain.StatusConfirmed {
		return booking.ErrStatusConflict
	}

	after := copyBooking(before)
	after.Status = domain.StatusCancelled
	cancelledAt := at
	after.CancelledAt = &cancelledAt
	after.UpdatedAt = at
	r.s.bookings[id] = after

	r.s.record(ctx, func() {
		r.s.bookings[id] = before
	})
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	before, ok := r.s.bookings[id]
	if !ok || before.Status != from {
		return booking.ErrStatusConflict
	}

	after := copyBooking(before)
	after.Status = to
	after.UpdatedAt = at
	r.s.bookings[id] = after

	r.s.record(ctx, func() {
		r.s.bookings[id] = before
	})
	return nil
}

func (r *BookingRepository) CompleteEnded(ctx context.Context, today types.Date, wallClock types.TimeString, at time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	completed := 0
	for id, b := range r.s.bookings {
		if b.Status != domain.StatusConfirmed {
			continue
		}
		slot, ok := r.s.slots[b.TimeslotID]
		if !ok {
			continue
		}
		ended := slot.Day.Before(today) ||
			(slot.Day.Equal(today) && slot.EndTime.Minutes() <= wallClock.Minutes())
		if !ended {
			continue
		}

		before := b
		b.Status = domain.StatusCompleted
		b.UpdatedAt = at
		r.s.bookings[id] = b
		completed++

		bookingID := id
		r.s.record(ctx, func() {
			r.s.bookings[bookingID] = before
		})
	}
	return completed, nil
}

// sameHolder совпадение субъекта так же, как в частичных уникальных индексах
func sameHolder(a, b domain.Subject) bool {
	return a.Kind() == b.Kind() && a.ID() == b.ID()
}

func copyBooking(b domain.Booking) domain.Booking {
	if b.Note != nil {
		note := *b.Note
		b.Note = &note
	}
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		b.CancelledAt = &at
	}
	return b
}
