package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

const pgUniqueViolation = "23505"

var columns = []string{
	"b.id",
	"b.timeslot_id",
	"b.tenant_user_id",
	"b.tenant_id",
	"b.consumer_id",
	"b.status",
	"b.note",
	"b.cancelled_at",
	"b.created_at",
	"b.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование.
// Частичные уникальные индексы не дают субъекту держать два живых бронирования на слот.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	userID, tenantID, consumerID := subjectColumns(booking.Subject)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"timeslot_id",
			"tenant_user_id",
			"tenant_id",
			"consumer_id",
			"status",
			"note",
		).
		Values(
			booking.TimeslotID,
			userID,
			tenantID,
			consumerID,
			booking.Status,
			booking.Note,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.ID, &createdAt, &updatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateLiveBooking
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time
	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, "GetByID", id, false)
}

// GetByIDForUpdate получает бронирование и блокирует строку до конца транзакции
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, "GetByIDForUpdate", id, true)
}

func (r *Repository) get(ctx context.Context, op string, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From("bookings b").
		Where(squirrel.Eq{"b.id": id})
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, op, err)
	}
	return booking, nil
}

// HasLiveBooking проверяет, держит ли субъект неотмененное бронирование на слоте
func (r *Repository) HasLiveBooking(ctx context.Context, timeslotID int64, subject domain.Subject) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	where := squirrel.And{
		squirrel.Eq{"timeslot_id": timeslotID},
		squirrel.NotEq{"status": domain.StatusCancelled},
	}
	if subject.IsTenantUser() {
		where = append(where, squirrel.Eq{"tenant_user_id": subject.ID()})
	} else {
		where = append(where, squirrel.Eq{"consumer_id": subject.ID()})
	}

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(where).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasLiveBooking - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasLiveBooking - scan count: %w", ErrScanRow, err)
	}
	return count > 0, nil
}

// CountLiveBySlot считает неотмененные бронирования слота, источник истины для booked_count
func (r *Repository) CountLiveBySlot(ctx context.Context, timeslotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"timeslot_id": timeslotID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountLiveBySlot - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountLiveBySlot - scan count: %w", ErrScanRow, err)
	}
	return count, nil
}

// CountQuotaForTenantOnDay считает бронирования тенанта, расходующие квоту дня day
func (r *Repository) CountQuotaForTenantOnDay(ctx context.Context, tenantID int64, day types.Date) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings b").
		Join("timeslots t ON t.id = b.timeslot_id").
		Where(squirrel.Eq{
			"b.tenant_id": tenantID,
			"b.status":    statusStrings(domain.QuotaStatuses),
			"t.day":       day,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountQuotaForTenantOnDay - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountQuotaForTenantOnDay - scan count: %w", ErrScanRow, err)
	}
	return count, nil
}

// ListBySubject возвращает бронирования субъекта, новые первыми
func (r *Repository) ListBySubject(ctx context.Context, subject domain.Subject) ([]*domain.Booking, error) {
	where := squirrel.Eq{"b.consumer_id": subject.ID()}
	if subject.IsTenantUser() {
		where = squirrel.Eq{"b.tenant_user_id": subject.ID()}
	}
	return r.list(ctx, "ListBySubject", where)
}

// ListByTenantOnDay возвращает бронирования пользователей тенанта на день
func (r *Repository) ListByTenantOnDay(ctx context.Context, tenantID int64, day types.Date) ([]*domain.Booking, error) {
	return r.list(ctx, "ListByTenantOnDay", squirrel.Eq{"b.tenant_id": tenantID, "t.day": day})
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Sqlizer) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("bookings b").
		Join("timeslots t ON t.id = b.timeslot_id").
		Where(where).
		OrderBy("t.day DESC", "t.start_time DESC", "b.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}
	return bookings, nil
}

// Cancel переводит CONFIRMED в CANCELLED.
// Возвращает ErrStatusConflict, если бронирование уже не в статусе CONFIRMED.
func (r *Repository) Cancel(ctx context.Context, id int64, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": domain.StatusConfirmed}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UpdateStatus переводит бронирование из статуса from в статус to.
// Возвращает ErrStatusConflict, если текущий статус отличается от from.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// CompleteEnded переводит CONFIRMED в COMPLETED для слотов, закончившихся к моменту
// (today, wallClock) по календарю региона. Возвращает число обновленных бронирований.
func (r *Repository) CompleteEnded(ctx context.Context, today types.Date, wallClock types.TimeString, at time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("updated_at", at).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Expr(
			"timeslot_id IN (SELECT t.id FROM timeslots t WHERE t.day < ? OR (t.day = ? AND t.end_time <= ?))",
			today, today, wallClock,
		)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteEnded - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteEnded - execute update: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteEnded - get rows affected: %v", ErrExecQuery, err)
	}
	return int(rowsAffected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var userID, tenantID, consumerID sql.NullInt64
	var note sql.NullString
	var cancelledAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.TimeslotID,
		&userID,
		&tenantID,
		&consumerID,
		&booking.Status,
		&note,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Subject, err = subjectFromColumns(userID, tenantID, consumerID)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		booking.Note = &note.String
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time
	return &booking, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
