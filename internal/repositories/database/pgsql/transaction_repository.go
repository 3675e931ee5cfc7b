package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	"github.com/SscSPs/mymoney_app/internal/models"
	"github.com/SscSPs/mymoney_app/internal/utils/mapping"
	"github.com/SscSPs/mymoney_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, account_id, label, date, amount, currency_code, status, reconciled,
	payment_method, memo, tag_id, scheduled, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
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
		&m.Scheduled,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

func (r *PgxTransactionRepository) findByID(ctx context.Context, q querier, transactionID string, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	txn, err := scanTransaction(q.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapReadError(err, "transaction "+transactionID)
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findByID(ctx, r.Pool, transactionID, false)
}

func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	return r.findByID(ctx, tx, transactionID, true)
}

func (r *PgxTransactionRepository) FindTransactionsByIDs(ctx context.Context, transactionIDs []string) ([]domain.Transaction, error) {
	if len(transactionIDs) == 0 {
		return []domain.Transaction{}, nil
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = ANY($1) ORDER BY transaction_id`
	rows, err := r.Pool.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by IDs: %w", err)
	}
	return collectTransactions(rows)
}

// FindTransactionsByIDsForUpdate locks the rows in transaction_id order.
func (r *PgxTransactionRepository) FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.Transaction, error) {
	if len(transactionIDs) == 0 {
		return []domain.Transaction{}, nil
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = ANY($1) ORDER BY transaction_id FOR UPDATE`
	rows, err := tx.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by IDs for update: %w", err)
	}
	return collectTransactions(rows)
}

// ListTransactionsByAccount retrieves a page of an account's transactions, newest first,
// using keyset pagination. It returns the transactions and a token for the next page.
func (r *PgxTransactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells whether there is a next page.
	fetchLimit := limit + 1

	conditions := []string{"account_id = $1"}
	args := []any{accountID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if from != nil {
		conditions = append(conditions, "date >= "+next(*from))
	}
	if to != nil {
		conditions = append(conditions, "date <= "+next(*to))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		conditions = append(conditions, fmt.Sprintf("(date, created_at, transaction_id) < (%s, %s, %s)",
			next(cursor.Date), next(cursor.CreatedAt), next(cursor.ID)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY date DESC, created_at DESC, transaction_id DESC
		LIMIT ` + next(fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for account "+accountID, err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(txns) > limit {
		last := txns[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.TransactionID})
		nextTokenVal = &token
		txns = txns[:limit]
	}
	return txns, nextTokenVal, nil
}

// SumScheduledTransactions sums the active scheduler-generated transactions dated within [from, to].
func (r *PgxTransactionRepository) SumScheduledTransactions(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND scheduled AND status = 'active' AND date BETWEEN $2 AND $3;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum scheduled transactions of account %s: %w", accountID, err)
	}
	return sum, nil
}

func (r *PgxTransactionRepository) SetReconciled(ctx context.Context, transactionIDs []string, reconciled bool, userID string, now time.Time) (int64, error) {
	query := `
		UPDATE transactions
		SET reconciled = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = ANY($1);
	`
	cmdTag, err := r.Pool.Exec(ctx, query, transactionIDs, reconciled, now, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile transactions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PgxTransactionRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	m := mapping.ToModelTransaction(transaction)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
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
		m.Scheduled,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transaction "+m.TransactionID)
	}
	return nil
}

// UpdateTransactionInTx rewrites the editable columns. Account, scheduled flag
// and creation audit never change.
func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	m := mapping.ToModelTransaction(transaction)
	query := `
		UPDATE transactions
		SET label = $2, date = $3, amount = $4, currency_code = $5, status = $6, reconciled = $7,
		    payment_method = $8, memo = $9, tag_id = $10, last_updated_at = $11, last_updated_by = $12
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Label,
		m.Date,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.Reconciled,
		m.PaymentMethod,
		m.Memo,
		m.TagID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transaction "+m.TransactionID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransactionsInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = ANY($1);`, transactionIDs)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	if int(cmdTag.RowsAffected()) != len(transactionIDs) {
		return fmt.Errorf("%w: deleted %d of %d transactions", apperrors.ErrConflict, cmdTag.RowsAffected(), len(transactionIDs))
	}
	return nil
}
