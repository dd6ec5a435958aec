package timeslot

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

var columns = []string{
	"id",
	"day",
	"start_time",
	"end_time",
	"capacity",
	"booked_count",
	"kind",
	"is_blocked",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов.
// booked_count меняется только через IncrementBooked/DecrementBooked/SetBookedCount.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает слот по ID без блокировки
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Timeslot, error) {
	return r.get(ctx, "GetByID", id, false)
}

// GetByIDForUpdate получает слот и блокирует строку до конца транзакции
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Timeslot, error) {
	return r.get(ctx, "GetByIDForUpdate", id, true)
}

func (r *Repository) get(ctx context.Context, op string, id int64, forUpdate bool) (*domain.Timeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("timeslots").
		Where(squirrel.Eq{"id": id})
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	slot, err := scanTimeslot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeslotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan timeslot: %w", ErrScanRow, op, err)
	}
	return slot, nil
}

// ListByDay возвращает слоты дня в порядке времени начала
func (r *Repository) ListByDay(ctx context.Context, day types.Date) ([]*domain.Timeslot, error) {
	return r.list(ctx, "ListByDay", squirrel.Eq{"day": day}, false)
}

// ListByDayForUpdate возвращает слоты дня и блокирует их до конца транзакции
func (r *Repository) ListByDayForUpdate(ctx context.Context, day types.Date) ([]*domain.Timeslot, error) {
	return r.list(ctx, "ListByDayForUpdate", squirrel.Eq{"day": day}, true)
}

// ListFrom возвращает слоты начиная с дня from
func (r *Repository) ListFrom(ctx context.Context, from types.Date) ([]*domain.Timeslot, error) {
	return r.list(ctx, "ListFrom", squirrel.GtOrEq{"day": from}, false)
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Sqlizer, forUpdate bool) ([]*domain.Timeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("timeslots").
		Where(where).
		OrderBy("day ASC", "start_time ASC")
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		// порядок блокировок совпадает с порядком id, чтобы не ловить deadlock
		builder = psqlbuilder.Select(columns...).
			From("timeslots").
			Where(where).
			OrderBy("id ASC").
			Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make([]*domain.Timeslot, 0)
	for rows.Next() {
		slot, err := scanTimeslot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan timeslot: %v", ErrScanRow, op, err)
		}
		result = append(result, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}
	return result, nil
}

// InsertIfAbsent вставляет слот, если на (day, start_time) слота еще нет.
// Возвращает true, если слот создан.
func (r *Repository) InsertIfAbsent(ctx context.Context, spec domain.TimeslotSpec) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("timeslots").
		Columns("day", "start_time", "end_time", "capacity", "booked_count", "kind", "is_blocked").
		Values(spec.Day, spec.StartTime, spec.EndTime, spec.Capacity, 0, spec.Kind, false).
		Suffix("ON CONFLICT (day, start_time) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - execute insert: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: InsertIfAbsent - get rows affected: %v", ErrExecQuery, err)
	}
	return rowsAffected == 1, nil
}

// DeleteIfEmpty удаляет слот только если на него нет ни одного бронирования,
// включая отмененные. Возвращает true, если слот удален.
func (r *Repository) DeleteIfEmpty(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("timeslots").
		Where(squirrel.Eq{"id": id, "booked_count": 0}).
		Where("NOT EXISTS (SELECT 1 FROM bookings b WHERE b.timeslot_id = timeslots.id)").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: DeleteIfEmpty - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: DeleteIfEmpty - execute delete: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: DeleteIfEmpty - get rows affected: %v", ErrExecQuery, err)
	}
	return rowsAffected == 1, nil
}

// IncrementBooked занимает одно место, не превышая capacity
func (r *Repository) IncrementBooked(ctx context.Context, id int64) error {
	return r.shiftBooked(ctx, "IncrementBooked", id,
		"booked_count + 1", squirrel.Expr("booked_count < capacity"), ErrCapacityExhausted)
}

// DecrementBooked освобождает одно место, не опускаясь ниже нуля
func (r *Repository) DecrementBooked(ctx context.Context, id int64) error {
	return r.shiftBooked(ctx, "DecrementBooked", id,
		"booked_count - 1", squirrel.Gt{"booked_count": 0}, ErrCounterUnderflow)
}

func (r *Repository) shiftBooked(ctx context.Context, op string, id int64, expr string, guard squirrel.Sqlizer, guardErr error) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timeslots").
		Set("booked_count", squirrel.Expr(expr)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(guard).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return guardErr
	}
	return nil
}

// SetBookedCount выставляет счетчик при сверке с фактическими бронированиями
func (r *Repository) SetBookedCount(ctx context.Context, id int64, count int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timeslots").
		Set("booked_count", count).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetBookedCount - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetBookedCount - execute update: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetBookedCount - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}

// SetBlocked блокирует или разблокирует слот для новых бронирований
func (r *Repository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timeslots").
		Set("is_blocked", blocked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - execute update: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetBlocked - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTimeslot(row rowScanner) (*domain.Timeslot, error) {
	var slot domain.Timeslot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.Day,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Capacity,
		&slot.BookedCount,
		&slot.Kind,
		&slot.IsBlocked,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time
	return &slot, nil
}
