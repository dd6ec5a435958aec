package memory

import (
	"context"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/internal/infra/storage/tenant"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// TenantRepository тенанты в памяти, ошибки из пакета tenant
type TenantRepository struct {
	s *Store
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return &t, nil
}

// LockQuotaDay блокировка квоты тенанта на день до конца транзакции
func (r *TenantRepository) LockQuotaDay(ctx context.Context, tenantID int64, day types.Date) error {
	if txFrom(ctx) == nil {
		return tenant.ErrNoTransaction
	}
	return r.s.lock(ctx, quotaLockKey(tenantID, day))
}

// Upsert заводит или обновляет тенанта
func (r *TenantRepository) Upsert(ctx context.Context, t domain.Tenant) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t.ID == 0 {
		t.ID = r.s.nextID()
	} else if t.ID > r.s.seq {
		r.s.seq = t.ID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.s.now()
	}
	before, existed := r.s.tenants[t.ID]
	r.s.tenants[t.ID] = t

	id := t.ID
	r.s.record(ctx, func() {
		if existed {
			r.s.tenants[id] = before
		} else {
			delete(r.s.tenants, id)
		}
	})
	return &t, nil
}
