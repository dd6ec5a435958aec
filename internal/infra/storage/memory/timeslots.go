package memory

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// TimeslotRepository слоты в памяти, ошибки из пакета timeslot
type TimeslotRepository struct {
	s *Store
}

func (r *TimeslotRepository) GetByID(ctx context.Context, id int64) (*domain.Timeslot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, timeslot.ErrTimeslotNotFound
	}
	return &slot, nil
}

func (r *TimeslotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error) {
	if err := r.s.lock(ctx, slotLockKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TimeslotRepository) ListByDay(ctx context.Context, day types.Date) ([]*domain.Timeslot, error) {
	return r.filter(func(s *domain.Timeslot) bool { return s.Day.Equal(day) }), nil
}

// ListByDayForUpdate блокирует день и все его слоты в порядке id
func (r *TimeslotRepository) ListByDayForUpdate(ctx context.Context, day types.Date) ([]*domain.Timeslot, error) {
	if err := r.s.lock(ctx, dayLockKey(day)); err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	for _, slot := range r.filter(func(s *domain.Timeslot) bool { return s.Day.Equal(day) }) {
		ids = append(ids, slot.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := r.s.lock(ctx, slotLockKey(id)); err != nil {
			return nil, err
		}
	}
	return r.ListByDay(ctx, day)
}

func (r *TimeslotRepository) ListFrom(ctx context.Context, from types.Date) ([]*domain.Timeslot, error) {
	return r.filter(func(s *domain.Timeslot) bool { return !s.Day.Before(from) }), nil
}

func (r *TimeslotRepository) filter(keep func(s *domain.Timeslot) bool) []*domain.Timeslot {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Timeslot, 0)
	for _, slot := range r.s.slots {
		slot := slot
		if keep(&slot) {
			result = append(result, &slot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		return result[i].StartTime.Minutes() < result[j].StartTime.Minutes()
	})
	return result
}

func (r *TimeslotRepository) InsertIfAbsent(ctx context.Context, spec domain.TimeslotSpec) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := slotKey{day: spec.Day, start: spec.StartTime.Minutes()}
	if _, exists := r.s.slotIndex[key]; exists {
		return false, nil
	}

	now := r.s.now()
	slot := domain.Timeslot{
		ID:        r.s.nextID(),
		Day:       spec.Day,
		StartTime: spec.StartTime,
		EndTime:   spec.EndTime,
		Capacity:  spec.Capacity,
		Kind:      spec.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.slots[slot.ID] = slot
	r.s.slotIndex[key] = slot.ID

	r.s.record(ctx, func() {
		delete(r.s.slots, slot.ID)
		delete(r.s.slotIndex, key)
	})
	return true, nil
}

func (r *TimeslotRepository) DeleteIfEmpty(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok || slot.BookedCount != 0 {
		return false, nil
	}
	for _, b := range r.s.bookings {
		if b.TimeslotID == id {
			return false, nil
		}
	}

	key := slotKey{day: slot.Day, start: slot.StartTime.Minutes()}
	delete(r.s.slots, id)
	delete(r.s.slotIndex, key)

	r.s.record(ctx, func() {
		r.s.slots[id] = slot
		r.s.slotIndex[key] = id
	})
	return true, nil
}

func (r *TimeslotRepository) IncrementBooked(ctx context.Context, id int64) error {
	return r.update(ctx, id, func(s *domain.Timeslot) error {
		if s.BookedCount >= s.Capacity {
			return timeslot.ErrCapacityExhausted
		}
		s.BookedCount++
		return nil
	})
}

func (r *TimeslotRepository) DecrementBooked(ctx context.Context, id int64) error {
	return r.update(ctx, id, func(s *domain.Timeslot) error {
		if s.BookedCount <= 0 {
			return timeslot.ErrCounterUnderflow
		}
		s.BookedCount--
		return nil
	})
}

func (r *TimeslotRepository) SetBookedCount(ctx context.Context, id int64, count int) error {
	return r.update(ctx, id, func(s *domain.Timeslot) error {
		s.BookedCount = count
		return nil
	})
}

func (r *TimeslotRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	return r.update(ctx, id, func(s *domain.Timeslot) error {
		s.IsBlocked = blocked
		return nil
	})
}

func (r *TimeslotRepository) update(ctx context.Context, id int64, apply func(s *domain.Timeslot) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	before, ok := r.s.slots[id]
	if !ok {
		return timeslot.ErrTimeslotNotFound
	}

	after := before
	if err := apply(&after); err != nil {
		return err
	}
	after.UpdatedAt = r.s.now()
	r.s.slots[id] = after

	r.s.record(ctx, func() {
		r.s.slots[id] = before
	})
	return nil
}
