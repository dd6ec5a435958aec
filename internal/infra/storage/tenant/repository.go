package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Repository репозиторий тенантов и блокировок их дневной квоты
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория тенантов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает тенанта по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "daily_limit", "created_at").
		From("tenants").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var t domain.Tenant
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Name, &t.DailyLimit, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan tenant: %w", ErrScanRow, err)
	}
	t.CreatedAt = createdAt.Time
	return &t, nil
}

// LockQuotaDay сериализует проверку квоты тенанта на день через
// pg_advisory_xact_lock. Блокировка держится до конца транзакции,
// ожидание ограничено lock_timeout транзакции.
func (r *Repository) LockQuotaDay(ctx context.Context, tenantID int64, day types.Date) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	classID, objectID := quotaLockKey(tenantID, day)
	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(?::int4, ?::int4)", classID, objectID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockQuotaDay - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockQuotaDay - acquire advisory lock: %w", ErrExecQuery, err)
	}
	return nil
}

// quotaLockKey пара int4 для advisory-блокировки.
// Совпадение ключей у разных тенантов лишь сериализует их лишний раз.
func quotaLockKey(tenantID int64, day types.Date) (int32, int32) {
	return int32(tenantID & 0x7fffffff), int32(day.Key())
}

// Upsert создает тенанта или обновляет имя и дневной лимит существующего
func (r *Repository) Upsert(ctx context.Context, t domain.Tenant) (*domain.Tenant, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert("tenants")
	if t.ID == 0 {
		insert = insert.Columns("name", "daily_limit").Values(t.Name, t.DailyLimit)
	} else {
		insert = insert.Columns("id", "name", "daily_limit").Values(t.ID, t.Name, t.DailyLimit)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, daily_limit = EXCLUDED.daily_limit " +
			"RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}
	return &t, nil
}
