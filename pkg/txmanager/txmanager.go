// Package txmanager выполняет функции внутри транзакции PostgreSQL.
// Транзакция передается в репозитории через context (см. dbmetrics.GetExecutor).
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-PhysioBooking/pkg/dbmetrics"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

var (
	// ErrBeginTx ошибка начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrLockTimeout блокировка не получена за lock_timeout
	ErrLockTimeout = errors.New("txmanager: lock wait timeout")

	// ErrMaxRetriesExceeded сериализуемая транзакция не прошла после всех повторов
	ErrMaxRetriesExceeded = errors.New("txmanager: transaction failed after max retries")
)

// TxBeginner интерфейс для начала транзакций, реализуется *dbmetrics.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// Options параметры менеджера
type Options struct {
	// LockTimeout ограничивает ожидание блокировок строк и advisory-блокировок, 0 - без ограничения
	LockTimeout time.Duration
	// MaxRetries количество повторов при serialization_failure / deadlock
	MaxRetries int
	// RetryBackoff базовая пауза между повторами, растет линейно
	RetryBackoff time.Duration
}

// TransactionManager менеджер транзакций
type TransactionManager struct {
	db   TxBeginner
	opts Options
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner, opts Options) *TransactionManager {
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 50 * time.Millisecond
	}
	return &TransactionManager{db: db, opts: opts}
}

// Do выполняет fn в транзакции READ COMMITTED, повторяет при deadlock
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.withRetry(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции с повторами
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.withRetry(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (m *TransactionManager) withRetry(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// внутри внешней транзакции повтор невозможен, ошибку отдаем наверх
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt <= m.opts.MaxRetries; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !isRetryable(err) {
			return err
		}

		if attempt == m.opts.MaxRetries {
			break
		}

		wait := time.Duration(attempt+1) * m.opts.RetryBackoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, err)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if m.opts.LockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.opts.LockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return classify(err)
		}
	}

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		return classify(fmt.Errorf("%w: %w", ErrCommitTx, err))
	}
	return nil
}

// classify помечает ошибку таймаута блокировки sentinel-ошибкой, остальное возвращает как есть
func classify(err error) error {
	if IsLockTimeout(err) && !errors.Is(err, ErrLockTimeout) {
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}
	return err
}

// IsLockTimeout возвращает true для lock_not_available (SET lock_timeout)
func IsLockTimeout(err error) bool {
	if errors.Is(err, ErrLockTimeout) {
		return true
	}
	return pgCode(err) == pgLockNotAvailable
}

func isRetryable(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	default:
		return false
	}
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
