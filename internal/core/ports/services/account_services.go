package services

import (
	"context"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account the user owns.
	GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of the user's accounts.
	ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account owned by the creator.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an account's label.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeleteAccount removes an account together with its transactions and schedulers.
	DeleteAccount(ctx context.Context, accountID string, userID string) error
}

// AccountBalanceSvc defines balance operations on accounts
type AccountBalanceSvc interface {
	// SetInitialBalance replaces the opening offset and shifts the balance by the difference.
	SetInitialBalance(ctx context.Context, accountID string, balanceInitial decimal.Decimal, userID string) (*domain.Account, error)
}

// AccountAuthorizerSvc defines ownership checks shared by every account-scoped service
type AccountAuthorizerSvc interface {
	// AuthorizeAccountAccess returns the account when userID owns it, ErrNotFound otherwise.
	AuthorizeAccountAccess(ctx context.Context, userID, accountID string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountBalanceSvc
	AccountAuthorizerSvc
}
