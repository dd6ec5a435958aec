// Package memory хранилище в памяти процесса: те же контракты, что у PostgreSQL репозиториев.
// Сериализация через блокировки по ключу (слот, тенант+день), которые держатся до конца
// транзакции; откат через журнал обратных операций.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/txmanager"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// DefaultLockTimeout ожидание блокировки ключа по умолчанию
const DefaultLockTimeout = 2 * time.Second

// Options параметры хранилища
type Options struct {
	LockTimeout time.Duration
}

type slotKey struct {
	day   types.Date
	start int
}

// Store состояние всех репозиториев
type Store struct {
	mu          sync.Mutex
	locks       *keyLocks
	lockTimeout time.Duration
	now         func() time.Time

	seq int64

	tenants      map[int64]domain.Tenant
	openingHours map[time.Weekday]domain.OpeningHoursRule
	analysis     map[int64]domain.AnalysisScheduleRule
	slots        map[int64]domain.Timeslot
	slotIndex    map[slotKey]int64
	bookings     map[int64]domain.Booking
}

// NewStore создает пустое хранилище
func NewStore(opts Options) *Store {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	return &Store{
		locks:        newKeyLocks(),
		lockTimeout:  opts.LockTimeout,
		now:          time.Now,
		tenants:      make(map[int64]domain.Tenant),
		openingHours: make(map[time.Weekday]domain.OpeningHoursRule),
		analysis:     make(map[int64]domain.AnalysisScheduleRule),
		slots:        make(map[int64]domain.Timeslot),
		slotIndex:    make(map[slotKey]int64),
		bookings:     make(map[int64]domain.Booking),
	}
}

func (s *Store) Rules() *RuleRepository {
	return &RuleRepository{s: s}
}

func (s *Store) Timeslots() *TimeslotRepository {
	return &TimeslotRepository{s: s}
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{s: s}
}

func (s *Store) Tenants() *TenantRepository {
	return &TenantRepository{s: s}
}

func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

// nextID вызывается под s.mu
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// record добавляет обратную операцию в журнал транзакции, вызывается под s.mu
func (s *Store) record(ctx context.Context, undo func()) {
	if t := txFrom(ctx); t != nil {
		t.undo = append(t.undo, undo)
	}
}

// lock берет блокировку ключа до конца транзакции. Вне транзакции ничего не делает.
func (s *Store) lock(ctx context.Context, key string) error {
	t := txFrom(ctx)
	if t == nil {
		return nil
	}
	if _, ok := t.held[key]; ok {
		return nil
	}
	if err := s.locks.acquire(ctx, key, s.lockTimeout); err != nil {
		return err
	}
	t.held[key] = struct{}{}
	t.order = append(t.order, key)
	return nil
}

type tx struct {
	held  map[string]struct{}
	order []string
	undo  []func()
}

type txKey struct{}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// TxManager единица работы над Store, совместима с интерфейсами usecase
type TxManager struct {
	s *Store
}

// Do выполняет fn атомарно: при ошибке все изменения откатываются
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoSerializable то же, что Do: блокировки по ключу уже дают сериализацию
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	t := &tx{held: make(map[string]struct{})}
	defer func() {
		if p := recover(); p != nil {
			m.s.rollback(t)
			m.s.release(t)
			panic(p)
		}
		if err != nil {
			m.s.rollback(t)
		}
		m.s.release(t)
	}()

	return fn(context.WithValue(ctx, txKey{}, t))
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (s *Store) release(t *tx) {
	for i := len(t.order) - 1; i >= 0; i-- {
		s.locks.release(t.order[i])
	}
	t.order = nil
	t.held = nil
}

// keyLocks мьютексы по строковому ключу с ограниченным ожиданием
type keyLocks struct {
	mu sync.Mutex
	m  map[string]chan struct{}
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]chan struct{})}
}

func (k *keyLocks) get(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.m[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.m[key] = ch
	}
	return ch
}

func (k *keyLocks) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := k.get(key)

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: key %s after %s", txmanager.ErrLockTimeout, key, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *keyLocks) release(key string) {
	ch := k.get(key)
	select {
	case <-ch:
	default:
	}
}

func slotLockKey(id int64) string {
	return fmt.Sprintf("slot:%d", id)
}

func dayLockKey(day types.Date) string {
	return "day:" + day.String()
}

func bookingLockKey(id int64) string {
	return fmt.Sprintf("booking:%d", id)
}

func quotaLockKey(tenantID int64, day types.Date) string {
	return fmt.Sprintf("quota:%d:%s", tenantID, day)
}

func weekdayLockKey(weekday time.Weekday) string {
	return fmt.Sprintf("rules:%d", weekday)
}
