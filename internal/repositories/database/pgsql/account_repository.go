package pgsql

import (
	"context"
	"fmt"
	"log/slog"
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

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

const accountColumns = `a.account_id, a.label, a.currency_code, a.balance, a.balance_initial,
	a.created_at, a.created_by, a.last_updated_at, a.last_updated_by`

const ownersSubquery = `ARRAY(SELECT o.user_id FROM account_owners o WHERE o.account_id = a.account_id ORDER BY o.user_id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, withOwners bool) (domain.Account, error) {
	var m models.Account
	var owners []string
	dest := []any{
		&m.AccountID,
		&m.Label,
		&m.CurrencyCode,
		&m.Balance,
		&m.BalanceInitial,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	}
	if withOwners {
		dest = append(dest, &owners)
	}
	if err := row.Scan(dest...); err != nil {
		return domain.Account{}, err
	}
	acc := mapping.ToDomainAccount(m)
	acc.OwnerIDs = owners
	return acc, nil
}

// SaveAccount inserts the account and its owners atomically.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	query := `
		INSERT INTO accounts (account_id, label, currency_code, balance, balance_initial, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, query,
		m.AccountID,
		m.Label,
		m.CurrencyCode,
		m.Balance,
		m.BalanceInitial,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "account "+m.AccountID)
	}

	if len(account.OwnerIDs) > 0 {
		ownersQuery := `
			INSERT INTO account_owners (account_id, user_id)
			SELECT $1, owner FROM unnest($2::text[]) AS owner
			ON CONFLICT DO NOTHING;
		`
		if _, err := tx.Exec(ctx, ownersQuery, m.AccountID, account.OwnerIDs); err != nil {
			return mapWriteError(err, "owners of account "+m.AccountID)
		}
	}

	return r.Commit(ctx, tx)
}

// FindAccountByID retrieves an account and its owners.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + `, ` + ownersSubquery + `
		FROM accounts a
		WHERE a.account_id = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID), true)
	if err != nil {
		return nil, mapReadError(err, "account "+accountID)
	}
	return &acc, nil
}

// ListAccountsByOwner lists the accounts a user owns, by label.
func (r *PgxAccountRepository) ListAccountsByOwner(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + `, ` + ownersSubquery + `
		FROM accounts a
		JOIN account_owners ao ON ao.account_id = a.account_id
		WHERE ao.user_id = $1
		ORDER BY a.label, a.account_id
		LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates the label. Balances only move through the InTx methods.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET label = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, account.AccountID, account.Label, account.LastUpdatedAt, account.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "account "+account.AccountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAccount removes the account; transactions, schedulers and owners cascade.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountByIDForUpdate locks one account row. Owners are not loaded.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a
		WHERE a.account_id = $1
		FOR UPDATE;`

	acc, err := scanAccount(tx.QueryRow(ctx, query, accountID), false)
	if err != nil {
		return nil, mapReadError(err, "account "+accountID)
	}
	return &acc, nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the rows for update,
// in account_id order. Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + `
		FROM accounts a
		WHERE a.account_id = ANY($1)
		ORDER BY a.account_id
		FOR UPDATE;`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		acc, err := scanAccount(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateAccountBalancesInTx adds each delta to its account balance within a transaction.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now, userID)
			accountIDs = append(accountIDs, accountID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}

// UpdateBalanceInitialInTx stores the new initial balance and shifts the balance by delta.
func (r *PgxAccountRepository) UpdateBalanceInitialInTx(ctx context.Context, tx pgx.Tx, accountID string, balanceInitial decimal.Decimal, delta decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance_initial = $2, balance = balance + $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, accountID, balanceInitial, delta, now, userID)
	if err != nil {
		return mapWriteError(err, "account "+accountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
