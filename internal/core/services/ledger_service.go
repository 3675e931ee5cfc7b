package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/SscSPs/mymoney_app/internal/utils/accounting"
	"github.com/SscSPs/mymoney_app/internal/utils/daterange"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TagOwnerChecker is the part of the tag service the ledger needs.
type TagOwnerChecker interface {
	EnsureTagOwner(ctx context.Context, tagID string, userID string) error
}

// ledgerService owns every write that moves an account balance.
type ledgerService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountTransactionSupport
	txnRepo     portsrepo.TransactionRepositoryFacade
	tags        TagOwnerChecker
	weekStart   time.Weekday
	now         func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithLedgerAccountAuthorizer adds the account ownership check.
func WithLedgerAccountAuthorizer(authorizer portssvc.AccountAuthorizerSvc) LedgerServiceOption {
	return func(s *ledgerService) {
		s.AccountAuthorizer = authorizer
	}
}

// WithLedgerTagChecker validates tag ownership on writes.
func WithLedgerTagChecker(tags TagOwnerChecker) LedgerServiceOption {
	return func(s *ledgerService) {
		s.tags = tags
	}
}

// WithLedgerWeekStart sets the first day of the week for calendar window listings.
func WithLedgerWeekStart(day time.Weekday) LedgerServiceOption {
	return func(s *ledgerService) {
		s.weekStart = day
	}
}

// WithLedgerClock replaces the wall clock used for audit fields.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates the transaction ledger service.
func NewLedgerService(txnRepo portsrepo.TransactionRepositoryWithTx, accountRepo portsrepo.AccountTransactionSupport, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		txManager:   txnRepo,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		weekStart:   time.Monday,
		now:         defaultNow,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// createTransactionInTx locks the account, copies its currency onto txn, inserts
// txn and adds its contribution to the balance. The clone engine goes through
// here too, so generated transactions follow the exact same path.
func createTransactionInTx(ctx context.Context, tx pgx.Tx, accounts portsrepo.AccountTransactionSupport, txns portsrepo.TransactionTransactionSupport, txn *domain.Transaction, userID string, now time.Time) error {
	account, err := accounts.FindAccountByIDForUpdate(ctx, tx, txn.AccountID)
	if err != nil {
		return fmt.Errorf("failed to lock account %s: %w", txn.AccountID, err)
	}
	txn.CurrencyCode = account.CurrencyCode

	if err := txns.InsertTransactionInTx(ctx, tx, *txn); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if delta := txn.Contribution(); !delta.IsZero() {
		changes := map[string]decimal.Decimal{account.AccountID: delta}
		if err := accounts.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
			return fmt.Errorf("failed to update account balance: %w", err)
		}
	}
	return nil
}

func (s *ledgerService) checkTag(ctx context.Context, tagID *string, userID string) error {
	if tagID == nil || s.tags == nil {
		return nil
	}
	return s.tags.EnsureTagOwner(ctx, *tagID, userID)
}

func (s *ledgerService) CreateTransaction(ctx context.Context, accountID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if _, err := s.AuthorizeAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	status := domain.StatusActive
	if req.Status != "" {
		status = domain.TransactionStatus(req.Status)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, req.Status)
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.PaymentMethod)
	}
	if err := s.checkTag(ctx, req.TagID, userID); err != nil {
		return nil, err
	}

	now := s.now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     accountID,
		Label:         req.Label,
		Date:          daterange.StartOfDay(req.Date),
		Amount:        req.Amount,
		Status:        status,
		Reconciled:    req.Reconciled,
		PaymentMethod: method,
		Memo:          req.Memo,
		TagID:         req.TagID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		return createTransactionInTx(ctx, tx, s.accountRepo, s.txnRepo, &txn, userID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("account_id", accountID),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

// authorizedTransaction loads a transaction and checks the user owns its account.
func (s *ledgerService) authorizedTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if _, err := s.AuthorizeAccount(ctx, userID, txn.AccountID); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	return s.authorizedTransaction(ctx, transactionID, userID)
}

// applyTransactionUpdate copies the provided request fields onto txn.
func applyTransactionUpdate(txn *domain.Transaction, req dto.UpdateTransactionRequest) error {
	if req.Label != nil {
		txn.Label = *req.Label
	}
	if req.Date != nil {
		txn.Date = daterange.StartOfDay(*req.Date)
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.Status != nil {
		status := domain.TransactionStatus(*req.Status)
		if !status.IsValid() {
			return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *req.Status)
		}
		txn.Status = status
	}
	if req.Reconciled != nil {
		txn.Reconciled = *req.Reconciled
	}
	if req.PaymentMethod != nil {
		method := domain.PaymentMethod(*req.PaymentMethod)
		if !method.IsValid() {
			return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, *req.PaymentMethod)
		}
		txn.PaymentMethod = method
	}
	if req.Memo != nil {
		txn.Memo = *req.Memo
	}
	if req.ClearTag {
		txn.TagID = nil
	} else if req.TagID != nil {
		tagID := *req.TagID
		txn.TagID = &tagID
	}
	return nil
}

// UpdateTransaction applies contribution(new) - contribution(old) to the balance,
// both read under the row locks.
func (s *ledgerService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	if _, err := s.authorizedTransaction(ctx, transactionID, userID); err != nil {
		return nil, err
	}
	if !req.ClearTag {
		if err := s.checkTag(ctx, req.TagID, userID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var updated domain.Transaction
	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		current, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		account, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, current.AccountID)
		if err != nil {
			return fmt.Errorf("failed to lock account %s: %w", current.AccountID, err)
		}

		updated = *current
		if err := applyTransactionUpdate(&updated, req); err != nil {
			return err
		}
		updated.CurrencyCode = account.CurrencyCode
		updated.LastUpdatedAt = now
		updated.LastUpdatedBy = userID

		if err := s.txnRepo.UpdateTransactionInTx(ctx, tx, updated); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		correction := domain.BalanceCorrection(current.Amount, current.Status, updated.Amount, updated.Status)
		if correction.IsZero() {
			return nil
		}
		changes := map[string]decimal.Decimal{account.AccountID: correction}
		if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now); err != nil {
			return fmt.Errorf("failed to update account balance: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	return &updated, nil
}

func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	if _, err := s.authorizedTransaction(ctx, transactionID, userID); err != nil {
		return err
	}

	now := s.now()
	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		current, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if _, err := s.accountRepo.FindAccountByIDForUpdate(ctx, tx, current.AccountID); err != nil {
			return fmt.Errorf("failed to lock account %s: %w", current.AccountID, err)
		}
		if err := s.txnRepo.DeleteTransactionsInTx(ctx, tx, []string{transactionID}); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		changes := accounting.BalanceRemovals([]domain.Transaction{*current})
		return s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, now)
	})
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// uniqueIDs drops duplicates and sorts, so locks are always taken in the same order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// authorizeTransactions checks that every id exists and belongs to an account the user owns.
func (s *ledgerService) authorizeTransactions(ctx context.Context, ids []string, userID string) error {
	txns, err := s.txnRepo.FindTransactionsByIDs(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for bulk action")
		return err
	}
	if len(txns) != len(ids) {
		return fmt.Errorf("%w: %d of %d transactions not found", apperrors.ErrNotFound, len(ids)-len(txns), len(ids))
	}
	checked := make(map[string]struct{})
	for _, txn := range txns {
		if _, ok := checked[txn.AccountID]; ok {
			continue
		}
		if _, err := s.AuthorizeAccount(ctx, userID, txn.AccountID); err != nil {
			return err
		}
		checked[txn.AccountID] = struct{}{}
	}
	return nil
}

// BulkDeleteTransactions deletes transactions that may span several accounts.
// Balance removals are aggregated per account and the accounts are locked in ID order.
func (s *ledgerService) BulkDeleteTransactions(ctx context.Context, transactionIDs []string, userID string) (int, error) {
	ids := uniqueIDs(transactionIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.authorizeTransactions(ctx, ids, userID); err != nil {
		return 0, err
	}

	now := s.now()
	err := withTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.txnRepo.FindTransactionsByIDsForUpdate(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(locked) != len(ids) {
			return fmt.Errorf("%w: transactions changed during bulk delete", apperrors.ErrConflict)
		}

		accountIDs := make([]string, 0)
		for _, txn := range locked {
			accountIDs = append(accountIDs, txn.AccountID)
		}
		if _, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, uniqueIDs(accountIDs)); err != nil {
			return fmt.Errorf("failed to lock accounts: %w", err)
		}

		if err := s.txnRepo.DeleteTransactionsInTx(ctx, tx, ids); err != nil {
			return fmt.Errorf("failed to delete transactions: %w", err)
		}
		return s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, accounting.BalanceRemovals(locked), userID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to bulk delete transactions", slog.Int("count", len(ids)))
		return 0, err
	}

	s.LogInfo(ctx, "Transactions bulk deleted", slog.Int("count", len(ids)))
	return len(ids), nil
}

func (s *ledgerService) BulkReconcileTransactions(ctx context.Context, transactionIDs []string, reconciled bool, userID string) (int, error) {
	ids := uniqueIDs(transactionIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.authorizeTransactions(ctx, ids, userID); err != nil {
		return 0, err
	}

	affected, err := s.txnRepo.SetReconciled(ctx, ids, reconciled, userID, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to bulk reconcile transactions", slog.Int("count", len(ids)))
		return 0, err
	}
	return int(affected), nil
}

func (s *ledgerService) ListTransactionsByAccount(ctx context.Context, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if _, err := s.AuthorizeAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	from, to := params.From, params.To
	if params.Granularity != "" {
		g := daterange.Granularity(params.Granularity)
		if !g.IsValid() {
			return nil, fmt.Errorf("%w: unknown granularity %q", apperrors.ErrValidation, params.Granularity)
		}
		anchor := s.now()
		if params.Date != nil {
			anchor = *params.Date
		}
		start, end := daterange.Window(anchor, g, s.weekStart)
		from, to = &start, &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", apperrors.ErrValidation)
	}

	txns, nextToken, err := s.txnRepo.ListTransactionsByAccount(ctx, accountID, from, to, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("account_id", accountID))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
