package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-PhysioBooking/internal/domain"
	"github.com/m04kA/SMC-PhysioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-PhysioBooking/pkg/psqlbuilder"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

// Repository хранилище правил расписания: часы работы, перерывы, окна анализов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListOpeningHours возвращает часы работы всех дней недели вместе с перерывами
func (r *Repository) ListOpeningHours(ctx context.Context) ([]domain.OpeningHoursRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"weekday",
		"is_closed",
		"open_time",
		"close_time",
		"updated_at",
	).
		From("opening_hours").
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpeningHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpeningHours - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]domain.OpeningHoursRule, 0, 7)
	index := make(map[int64]int)
	for rows.Next() {
		rule, err := scanOpeningHours(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListOpeningHours - scan row: %v", ErrScanRow, err)
		}
		index[rule.ID] = len(result)
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOpeningHours - rows error: %v", ErrScanRow, err)
	}

	if len(result) == 0 {
		return result, nil
	}

	breaks, err := r.listBreaks(ctx, executor, nil)
	if err != nil {
		return nil, err
	}
	for ohID, list := range breaks {
		if i, ok := index[ohID]; ok {
			result[i].Breaks = list
		}
	}

	return result, nil
}

// GetOpeningHours возвращает часы работы для дня недели
func (r *Repository) GetOpeningHours(ctx context.Context, weekday time.Weekday) (*domain.OpeningHoursRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"weekday",
		"is_closed",
		"open_time",
		"close_time",
		"updated_at",
	).
		From("opening_hours").
		Where(squirrel.Eq{"weekday": int(weekday)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpeningHours - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanOpeningHours(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpeningHours - scan row: %w", ErrScanRow, err)
	}

	breaks, err := r.listBreaks(ctx, executor, &rule.ID)
	if err != nil {
		return nil, err
	}
	rule.Breaks = breaks[rule.ID]

	return &rule, nil
}

// UpsertOpeningHours сохраняет часы работы дня недели и полностью заменяет его перерывы.
// Вызывается внутри транзакции.
func (r *Repository) UpsertOpeningHours(ctx context.Context, rule *domain.OpeningHoursRule) (*domain.OpeningHoursRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var openTime, closeTime interface{}
	if !rule.IsClosed {
		openTime, closeTime = rule.OpenTime, rule.CloseTime
	}

	query, args, err := psqlbuilder.Insert("opening_hours").
		Columns("weekday", "is_closed", "open_time", "close_time").
		Values(int(rule.Weekday), rule.IsClosed, openTime, closeTime).
		Suffix("ON CONFLICT (weekday) DO UPDATE SET " +
			"is_closed = EXCLUDED.is_closed, open_time = EXCLUDED.open_time, " +
			"close_time = EXCLUDED.close_time, updated_at = NOW() " +
			"RETURNING id, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &rule.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - execute insert: %w", ErrExecQuery, err)
	}

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("opening_hours_breaks").
		Where(squirrel.Eq{"opening_hours_id": rule.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - build delete breaks query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - delete breaks: %w", ErrExecQuery, err)
	}

	if rule.IsClosed || len(rule.Breaks) == 0 {
		rule.Breaks = nil
		return rule, nil
	}

	insert := psqlbuilder.Insert("opening_hours_breaks").
		Columns("opening_hours_id", "start_time", "end_time")
	for _, b := range rule.Breaks {
		insert = insert.Values(rule.ID, b.StartTime, b.EndTime)
	}
	insertQuery, insertArgs, err := insert.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - build insert breaks query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - insert breaks: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for i := 0; rows.Next() && i < len(rule.Breaks); i++ {
		if err := rows.Scan(&rule.Breaks[i].ID); err != nil {
			return nil, fmt.Errorf("%w: UpsertOpeningHours - scan break id: %v", ErrScanRow, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: UpsertOpeningHours - rows error: %v", ErrScanRow, err)
	}

	return rule, nil
}

// ListActiveAnalysisSchedules возвращает активные окна анализов дня недели
func (r *Repository) ListActiveAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error) {
	return r.listAnalysis(ctx, "ListActiveAnalysisSchedules", squirrel.Eq{"weekday": int(weekday), "is_active": true})
}

// ListAnalysisSchedules возвращает все окна анализов дня недели, включая неактивные
func (r *Repository) ListAnalysisSchedules(ctx context.Context, weekday time.Weekday) ([]domain.AnalysisScheduleRule, error) {
	return r.listAnalysis(ctx, "ListAnalysisSchedules", squirrel.Eq{"weekday": int(weekday)})
}

// GetAnalysisSchedule возвращает окно анализов по ID
func (r *Repository) GetAnalysisSchedule(ctx context.Context, id int64) (*domain.AnalysisScheduleRule, error) {
	result, err := r.listAnalysis(ctx, "GetAnalysisSchedule", squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrRuleNotFound
	}
	return &result[0], nil
}

// CreateAnalysisSchedule добавляет окно анализов
func (r *Repository) CreateAnalysisSchedule(ctx context.Context, rule *domain.AnalysisScheduleRule) (*domain.AnalysisScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("analysis_schedules").
		Columns("weekday", "start_time", "end_time", "is_active").
		Values(int(rule.Weekday), rule.StartTime, rule.EndTime, rule.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateAnalysisSchedule - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &rule.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateAnalysisSchedule - execute insert: %w", ErrExecQuery, err)
	}
	return rule, nil
}

// SetAnalysisScheduleActive включает или выключает окно анализов
func (r *Repository) SetAnalysisScheduleActive(ctx context.Context, id int64, active bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("analysis_schedules").
		Set("is_active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetAnalysisScheduleActive - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAnalysisScheduleActive - execute update: %w", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAnalysisScheduleActive - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *Repository) listAnalysis(ctx context.Context, op string, where squirrel.Eq) ([]domain.AnalysisScheduleRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"weekday",
		"start_time",
		"end_time",
		"is_active",
		"created_at",
	).
		From("analysis_schedules").
		Where(where).
		OrderBy("start_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make([]domain.AnalysisScheduleRule, 0)
	for rows.Next() {
		var rule domain.AnalysisScheduleRule
		var weekday int
		if err := rows.Scan(&rule.ID, &weekday, &rule.StartTime, &rule.EndTime, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		rule.Weekday = time.Weekday(weekday)
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}
	return result, nil
}

// listBreaks возвращает перерывы, сгруппированные по opening_hours_id
func (r *Repository) listBreaks(ctx context.Context, executor DBExecutor, openingHoursID *int64) (map[int64][]domain.BreakRule, error) {
	builder := psqlbuilder.Select("id", "opening_hours_id", "start_time", "end_time").
		From("opening_hours_breaks").
		OrderBy("start_time ASC")
	if openingHoursID != nil {
		builder = builder.Where(squirrel.Eq{"opening_hours_id": *openingHoursID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listBreaks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listBreaks - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[int64][]domain.BreakRule)
	for rows.Next() {
		var b domain.BreakRule
		var ohID int64
		if err := rows.Scan(&b.ID, &ohID, &b.StartTime, &b.EndTime); err != nil {
			return nil, fmt.Errorf("%w: listBreaks - scan row: %v", ErrScanRow, err)
		}
		result[ohID] = append(result[ohID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listBreaks - rows error: %v", ErrScanRow, err)
	}

	for id := range result {
		list := result[id]
		sort.Slice(list, func(i, j int) bool { return list[i].StartTime.Minutes() < list[j].StartTime.Minutes() })
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOpeningHours(row rowScanner) (domain.OpeningHoursRule, error) {
	var rule domain.OpeningHoursRule
	var weekday int
	var openTime, closeTime types.TimeString
	var updatedAt sql.NullTime

	if err := row.Scan(&rule.ID, &weekday, &rule.IsClosed, &openTime, &closeTime, &updatedAt); err != nil {
		return rule, err
	}
	rule.Weekday = time.Weekday(weekday)
	rule.OpenTime = openTime
	rule.CloseTime = closeTime
	rule.UpdatedAt = updatedAt.Time
	return rule, nil
}

// LockWeekday сериализует перегенерацию и правки правил одного дня недели.
// Без транзакции advisory-блокировка сразу отпускается, поэтому ничего не делает.
func (r *Repository) LockWeekday(ctx context.Context, weekday time.Weekday) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(0, ?::int4)", int32(weekday))).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockWeekday - build query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockWeekday - acquire advisory lock: %w", ErrExecQuery, err)
	}
	return nil
}
