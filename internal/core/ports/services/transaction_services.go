package services

import (
	"context"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a transaction of an account the user owns.
	GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves a page of an account's transactions.
	ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines the balance-maintaining write operations of the ledger
type TransactionWriterSvc interface {
	// CreateTransaction inserts a transaction and adds its contribution to the account balance.
	CreateTransaction(ctx context.Context, accountID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// UpdateTransaction rewrites a transaction and applies the balance correction.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction and its contribution from the account balance.
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error
}

// TransactionBulkSvc defines the list actions on several transactions at once
type TransactionBulkSvc interface {
	// BulkDeleteTransactions deletes transactions across accounts in one unit.
	BulkDeleteTransactions(ctx context.Context, transactionIDs []string, userID string) (int, error)

	// BulkReconcileTransactions sets the reconciled flag; balances are not affected.
	BulkReconcileTransactions(ctx context.Context, transactionIDs []string, reconciled bool, userID string) (int, error)
}

// LedgerSvcFacade combines all transaction-related service interfaces
type LedgerSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionBulkSvc
}
