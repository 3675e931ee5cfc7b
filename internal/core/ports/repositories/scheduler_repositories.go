package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// SchedulerReader defines read operations for scheduler data
type SchedulerReader interface {
	// FindSchedulerByID retrieves a specific scheduler.
	FindSchedulerByID(ctx context.Context, schedulerID string) (*domain.Scheduler, error)

	// ListSchedulersByAccount retrieves a paginated list of an account's schedulers.
	ListSchedulersByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Scheduler, error)

	// FindAwaitingSchedulers selects the schedulers due for a clone: waiting ones, and finished
	// ones whose last action is before the current period start of their type.
	// Oldest last action first, never-run first. A limit <= 0 means no limit.
	FindAwaitingSchedulers(ctx context.Context, monthStart, weekStart time.Time, limit int) ([]domain.Scheduler, error)

	// SumSchedulersByType returns the credit and debit totals of an account's active schedulers per type.
	SumSchedulersByType(ctx context.Context, accountID string) (map[domain.SchedulerType]domain.SchedulerSummary, error)
}

// SchedulerWriter defines write operations for scheduler data
type SchedulerWriter interface {
	// SaveScheduler persists a new scheduler.
	SaveScheduler(ctx context.Context, scheduler domain.Scheduler) error

	// DeleteScheduler removes a scheduler.
	DeleteScheduler(ctx context.Context, schedulerID string) error

	// MarkSchedulerFailed forces state to failed with a single statement outside any transaction.
	MarkSchedulerFailed(ctx context.Context, schedulerID string) error

	// ResetScheduler moves a failed scheduler back to waiting. It returns ErrConflict when the
	// scheduler exists but is not failed.
	ResetScheduler(ctx context.Context, schedulerID string, userID string, now time.Time) error
}

// SchedulerTransactionSupport defines the clone engine writes that run inside a caller-owned transaction.
type SchedulerTransactionSupport interface {
	// FindSchedulerByIDForUpdate selects one scheduler and locks its row.
	FindSchedulerByIDForUpdate(ctx context.Context, tx pgx.Tx, schedulerID string) (*domain.Scheduler, error)

	// UpdateSchedulerFieldsInTx rewrites the user-editable columns of a locked scheduler.
	// State and last action are left alone.
	UpdateSchedulerFieldsInTx(ctx context.Context, tx pgx.Tx, scheduler domain.Scheduler) error

	// UpdateSchedulerInTx saves date, recurrence, last action and state after a clone.
	UpdateSchedulerInTx(ctx context.Context, tx pgx.Tx, scheduler domain.Scheduler) error

	// DeleteSchedulerInTx removes an exhausted scheduler.
	DeleteSchedulerInTx(ctx context.Context, tx pgx.Tx, schedulerID string) error
}

// SchedulerRepositoryFacade combines all scheduler-related repository interfaces
type SchedulerRepositoryFacade interface {
	SchedulerReader
	SchedulerWriter
	SchedulerTransactionSupport
}

// SchedulerRepositoryWithTx extends SchedulerRepositoryFacade with transaction capabilities
type SchedulerRepositoryWithTx interface {
	SchedulerRepositoryFacade
	TransactionManager
}
