package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account, owners included.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByOwner retrieves a paginated list of the accounts a user owns.
	ListAccountsByOwner(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account and its owner links.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates the label of an account. Balances are never written here.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account; its transactions and schedulers cascade.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountTransactionSupport defines the balance operations that run inside a caller-owned transaction.
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate selects one account and locks its row.
	FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// FindAccountsByIDsForUpdate locks several accounts in ascending ID order.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx adds each delta to the matching account balance.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// UpdateBalanceInitialInTx stores a new initial balance and adds delta to the balance.
	UpdateBalanceInitialInTx(ctx context.Context, tx pgx.Tx, accountID string, balanceInitial decimal.Decimal, delta decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
