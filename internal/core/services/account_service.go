package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryWithTx
	now         func() time.Time
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock replaces the wall clock used for audit fields.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service with the provided options.
// The service authorizes through its own repository.
func NewAccountService(repo portsrepo.AccountRepositoryWithTx, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		now:         defaultNow,
	}
	svc.AccountAuthorizer = svc

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// AuthorizeAccountAccess returns ErrNotFound for accounts the user does not own,
// to obscure their existence.
func (s *accountService) AuthorizeAccountAccess(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		return nil, err
	}
	if !account.HasOwner(userID) {
		s.LogDebug(ctx, "Account found but not owned by user",
			slog.String("account_id", accountID),
			slog.String("user_id", userID))
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return account, nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	now := s.now()

	owners := []string{userID}
	for _, id := range req.OwnerIDs {
		if id != userID {
			owners = append(owners, id)
		}
	}

	account := domain.Account{
		AccountID:      uuid.NewString(),
		Label:          req.Label,
		CurrencyCode:   req.CurrencyCode,
		BalanceInitial: req.BalanceInitial,
		// A new account has no transactions yet.
		Balance:  req.BalanceInitial,
		OwnerIDs: owners,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully", slog.String("account_id", account.AccountID))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	return s.AuthorizeAccountAccess(ctx, userID, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByOwner(ctx, userID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.AuthorizeAccountAccess(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Label == nil {
		return account, nil
	}
	account.Label = *req.Label
	account.LastUpdatedAt = s.now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	if _, err := s.AuthorizeAccountAccess(ctx, userID, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

// SetInitialBalance shifts the balance by exactly new - old initial balance,
// read under the row lock, so concurrent ledger writes are never lost.
func (s *accountService) SetInitialBalance(ctx context.Context, accountID string, balanceInitial decimal.Decimal, userID string) (*domain.Account, error) {
	account, err := s.AuthorizeAccountAccess(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = withTx(ctx, s.accountRepo, func(tx pgx.Tx) error {
		locked, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return err
		}
		delta := locked.InitialBalanceDelta(balanceInitial)
		if err := s.accountRepo.UpdateBalanceInitialInTx(ctx, tx, accountID, balanceInitial, delta, userID, now); err != nil {
			return err
		}
		account.Balance = locked.Balance.Add(delta)
		account.BalanceInitial = balanceInitial
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to set initial balance", slog.String("account_id", accountID))
		return nil, err
	}

	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	s.LogInfo(ctx, "Initial balance updated",
		slog.String("account_id", accountID),
		slog.String("balance_initial", balanceInitial.String()))
	return account, nil
}
