package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a single transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByIDs retrieves several transactions; missing IDs are simply absent.
	FindTransactionsByIDs(ctx context.Context, transactionIDs []string) ([]domain.Transaction, error)

	// ListTransactionsByAccount retrieves a page of an account's transactions, newest first,
	// optionally restricted to the inclusive [from, to] date range.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactionsByAccount(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// SumScheduledTransactions sums the active, scheduled transactions of an account dated within [from, to].
	SumScheduledTransactions(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error)
}

// TransactionWriter defines writes that need no balance bookkeeping.
type TransactionWriter interface {
	// SetReconciled flips the reconciled flag of the given transactions and reports how many rows changed.
	SetReconciled(ctx context.Context, transactionIDs []string, reconciled bool, userID string, now time.Time) (int64, error)
}

// TransactionTransactionSupport defines the ledger writes that run inside a caller-owned transaction.
type TransactionTransactionSupport interface {
	// FindTransactionByIDForUpdate selects one transaction and locks its row.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByIDsForUpdate locks several transactions; missing IDs are simply absent.
	FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.Transaction, error)

	// InsertTransactionInTx persists a new transaction.
	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error

	// UpdateTransactionInTx rewrites every mutable column of a transaction.
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error

	// DeleteTransactionsInTx deletes the given transactions.
	DeleteTransactionsInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionTransactionSupport
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
