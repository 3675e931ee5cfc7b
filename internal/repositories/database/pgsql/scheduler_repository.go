package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	"github.com/SscSPs/mymoney_app/internal/models"
	"github.com/SscSPs/mymoney_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxSchedulerRepository struct {
	BaseRepository
}

func newPgxSchedulerRepository(pool *pgxpool.Pool) portsrepo.SchedulerRepositoryWithTx {
	return &PgxSchedulerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SchedulerRepositoryWithTx = (*PgxSchedulerRepository)(nil)

const schedulerColumns = `scheduler_id, account_id, label, date, amount, currency_code, status, reconciled,
	payment_method, memo, tag_id, type, recurrence, last_action, state,
	created_at, created_by, last_updated_at, last_updated_by`

func scanScheduler(row rowScanner) (domain.Scheduler, error) {
	var m models.Scheduler
	err := row.Scan(
		&m.SchedulerID,
		&m.AccountID,
		&m.Label,
		&m.Date,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.Reconciled,
		&m.PaymentMethod,
		&m.Memo,
		&m.TagID,
		&m.Type,
		&m.Recurrence,
		&m.LastAction,
		&m.State,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Scheduler{}, err
	}
	return mapping.ToDomainScheduler(m), nil
}

func collectSchedulers(rows pgx.Rows) ([]domain.Scheduler, error) {
	defer rows.Close()
	scheds := []domain.Scheduler{}
	for rows.Next() {
		s, err := scanScheduler(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduler row: %w", err)
		}
		scheds = append(scheds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduler rows: %w", err)
	}
	return scheds, nil
}

func (r *PgxSchedulerRepository) findByID(ctx context.Context, q querier, schedulerID string, forUpdate bool) (*domain.Scheduler, error) {
	query := `SELECT ` + schedulerColumns + ` FROM schedulers WHERE scheduler_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	s, err := scanScheduler(q.QueryRow(ctx, query, schedulerID))
	if err != nil {
		return nil, mapReadError(err, "scheduler "+schedulerID)
	}
	return &s, nil
}

func (r *PgxSchedulerRepository) FindSchedulerByID(ctx context.Context, schedulerID string) (*domain.Scheduler, error) {
	return r.findByID(ctx, r.Pool, schedulerID, false)
}

func (r *PgxSchedulerRepository) FindSchedulerByIDForUpdate(ctx context.Context, tx pgx.Tx, schedulerID string) (*domain.Scheduler, error) {
	return r.findByID(ctx, tx, schedulerID, true)
}

func (r *PgxSchedulerRepository) ListSchedulersByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Scheduler, error) {
	query := `SELECT ` + schedulerColumns + ` FROM schedulers
		WHERE account_id = $1
		ORDER BY date, scheduler_id
		LIMIT $2 OFFSET $3`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedulers for account %s: %w", accountID, err)
	}
	return collectSchedulers(rows)
}

// FindAwaitingSchedulers selects schedulers due for a clone: never cloned, or
// last cloned before the start of the current period of their type. Failed
// schedulers are never selected. Least recently cloned come first.
func (r *PgxSchedulerRepository) FindAwaitingSchedulers(ctx context.Context, monthStart, weekStart time.Time, limit int) ([]domain.Scheduler, error) {
	query := `SELECT ` + schedulerColumns + ` FROM schedulers
		WHERE state = 'waiting'
		   OR (state = 'finished' AND type = 'monthly' AND (last_action IS NULL OR last_action < $1))
		   OR (state = 'finished' AND type = 'weekly' AND (last_action IS NULL OR last_action < $2))
		ORDER BY last_action ASC NULLS FIRST, scheduler_id`
	args := []any{monthStart, weekStart}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query awaiting schedulers: %w", err)
	}
	return collectSchedulers(rows)
}

// SumSchedulersByType splits the active schedulers' amounts into credit and debit per type.
func (r *PgxSchedulerRepository) SumSchedulersByType(ctx context.Context, accountID string) (map[domain.SchedulerType]domain.SchedulerSummary, error) {
	query := `
		SELECT type,
		       COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0) AS credit,
		       COALESCE(SUM(amount) FILTER (WHERE amount < 0), 0) AS debit
		FROM schedulers
		WHERE account_id = $1 AND status = 'active'
		GROUP BY type;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum schedulers of account %s: %w", accountID, err)
	}
	defer rows.Close()

	sums := make(map[domain.SchedulerType]domain.SchedulerSummary)
	for rows.Next() {
		var typ string
		var credit, debit decimal.Decimal
		if err := rows.Scan(&typ, &credit, &debit); err != nil {
			return nil, fmt.Errorf("failed to scan scheduler sum row: %w", err)
		}
		t := domain.SchedulerType(typ)
		sums[t] = domain.SchedulerSummary{Type: t, Credit: credit, Debit: debit}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduler sum rows: %w", err)
	}
	return sums, nil
}

func (r *PgxSchedulerRepository) SaveScheduler(ctx context.Context, scheduler domain.Scheduler) error {
	m := mapping.ToModelScheduler(scheduler)
	query := `
		INSERT INTO schedulers (` + schedulerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SchedulerID,
		m.AccountID,
		m.Label,
		m.Date,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.Reconciled,
		m.PaymentMethod,
		m.Memo,
		m.TagID,
		m.Type,
		m.Recurrence,
		m.LastAction,
		m.State,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "scheduler "+m.SchedulerID)
	}
	return nil
}

// UpdateSchedulerFieldsInTx writes the user-editable columns. State and last
// action are left to the clone engine.
func (r *PgxSchedulerRepository) UpdateSchedulerFieldsInTx(ctx context.Context, tx pgx.Tx, scheduler domain.Scheduler) error {
	m := mapping.ToModelScheduler(scheduler)
	query := `
		UPDATE schedulers
		SET label = $2, date = $3, amount = $4, status = $5, reconciled = $6, payment_method = $7,
		    memo = $8, tag_id = $9, type = $10, recurrence = $11, last_updated_at = $12, last_updated_by = $13
		WHERE scheduler_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.SchedulerID,
		m.Label,
		m.Date,
		m.Amount,
		m.Status,
		m.Reconciled,
		m.PaymentMethod,
		m.Memo,
		m.TagID,
		m.Type,
		m.Recurrence,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "scheduler "+m.SchedulerID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSchedulerRepository) DeleteScheduler(ctx context.Context, schedulerID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM schedulers WHERE scheduler_id = $1;`, schedulerID)
	if err != nil {
		return fmt.Errorf("failed to delete scheduler %s: %w", schedulerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkSchedulerFailed runs outside any transaction so it survives the rollback
// of the failed clone.
func (r *PgxSchedulerRepository) MarkSchedulerFailed(ctx context.Context, schedulerID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `UPDATE schedulers SET state = 'failed' WHERE scheduler_id = $1;`, schedulerID)
	if err != nil {
		return fmt.Errorf("failed to mark scheduler %s as failed: %w", schedulerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ResetScheduler moves a failed scheduler back to waiting.
func (r *PgxSchedulerRepository) ResetScheduler(ctx context.Context, schedulerID string, userID string, now time.Time) error {
	query := `
		UPDATE schedulers
		SET state = 'waiting', last_updated_at = $2, last_updated_by = $3
		WHERE scheduler_id = $1 AND state = 'failed';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, schedulerID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to reset scheduler %s: %w", schedulerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindSchedulerByID(ctx, schedulerID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: scheduler %s is not failed", apperrors.ErrConflict, schedulerID)
	}
	return nil
}

// UpdateSchedulerInTx persists a clone's effect on the scheduler.
func (r *PgxSchedulerRepository) UpdateSchedulerInTx(ctx context.Context, tx pgx.Tx, scheduler domain.Scheduler) error {
	m := mapping.ToModelScheduler(scheduler)
	query := `
		UPDATE schedulers
		SET date = $2, recurrence = $3, last_action = $4, state = $5, last_updated_at = $6, last_updated_by = $7
		WHERE scheduler_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.SchedulerID,
		m.Date,
		m.Recurrence,
		m.LastAction,
		m.State,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "scheduler "+m.SchedulerID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSchedulerRepository) DeleteSchedulerInTx(ctx context.Context, tx pgx.Tx, schedulerID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM schedulers WHERE scheduler_id = $1;`, schedulerID); err != nil {
		return fmt.Errorf("failed to delete scheduler %s: %w", schedulerID, err)
	}
	return nil
}
