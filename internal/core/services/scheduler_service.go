package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/SscSPs/mymoney_app/internal/utils/daterange"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var schedulerClones = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mymoney_scheduler_clones_total",
	Help: "Scheduler clone attempts by outcome",
}, []string{"outcome"})

// schedulerService implements the scheduler CRUD and the clone engine.
type schedulerService struct {
	BaseService
	schedulerRepo portsrepo.SchedulerRepositoryWithTx
	accountRepo   portsrepo.AccountTransactionSupport
	txnRepo       portsrepo.TransactionRepositoryFacade
	tags          TagOwnerChecker
	weekStart     time.Weekday
	now           func() time.Time
}

// SchedulerServiceOption is a functional option for configuring the scheduler service
type SchedulerServiceOption func(*schedulerService)

// WithSchedulerAccountAuthorizer adds the account ownership check.
func WithSchedulerAccountAuthorizer(authorizer portssvc.AccountAuthorizerSvc) SchedulerServiceOption {
	return func(s *schedulerService) {
		s.AccountAuthorizer = authorizer
	}
}

// WithSchedulerTagChecker validates tag ownership on writes.
func WithSchedulerTagChecker(tags TagOwnerChecker) SchedulerServiceOption {
	return func(s *schedulerService) {
		s.tags = tags
	}
}

// WithSchedulerWeekStart sets the first day of the week used for weekly periods.
func WithSchedulerWeekStart(day time.Weekday) SchedulerServiceOption {
	return func(s *schedulerService) {
		s.weekStart = day
	}
}

// WithSchedulerClock replaces the wall clock, which drives due checks and last action.
func WithSchedulerClock(now func() time.Time) SchedulerServiceOption {
	return func(s *schedulerService) {
		s.now = now
	}
}

// NewSchedulerService creates the scheduler service.
func NewSchedulerService(
	schedulerRepo portsrepo.SchedulerRepositoryWithTx,
	accountRepo portsrepo.AccountTransactionSupport,
	txnRepo portsrepo.TransactionRepositoryFacade,
	options ...SchedulerServiceOption,
) portssvc.SchedulerSvcFacade {
	svc := &schedulerService{
		schedulerRepo: schedulerRepo,
		accountRepo:   accountRepo,
		txnRepo:       txnRepo,
		weekStart:     time.Monday,
		now:           defaultNow,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SchedulerSvcFacade = (*schedulerService)(nil)

// --- Clone engine ---

// cloneOnce runs one clone attempt and never returns an error: failures are
// logged, the scheduler is marked failed on a best-effort basis, and the
// outcome is reported in the result.
func (s *schedulerService) cloneOnce(ctx context.Context, schedulerID string, onlyIfAwaiting bool, actor string) domain.CloneResult {
	res := domain.CloneResult{SchedulerID: schedulerID}

	txn, outcome, err := s.cloneInTx(ctx, schedulerID, onlyIfAwaiting, actor)
	if err != nil {
		s.LogError(ctx, err, "Scheduler clone failed", slog.String("scheduler_id", schedulerID))
		if markErr := s.schedulerRepo.MarkSchedulerFailed(ctx, schedulerID); markErr != nil {
			s.LogWarn(ctx, "Could not mark scheduler as failed",
				slog.String("scheduler_id", schedulerID),
				slog.String("error", markErr.Error()))
		}
		res.Outcome = domain.CloneFailed
		res.Err = err
		schedulerClones.WithLabelValues(string(res.Outcome)).Inc()
		return res
	}

	res.Outcome = outcome
	res.Transaction = txn
	schedulerClones.WithLabelValues(string(res.Outcome)).Inc()

	switch outcome {
	case domain.CloneSkipped:
		s.LogDebug(ctx, "Scheduler clone skipped", slog.String("scheduler_id", schedulerID))
	default:
		s.LogInfo(ctx, "Scheduler cloned",
			slog.String("scheduler_id", schedulerID),
			slog.String("outcome", string(outcome)),
			slog.String("transaction_id", txn.TransactionID),
			slog.Time("date", txn.Date))
	}
	return res
}

// cloneInTx materialises the next transaction and advances or retires the
// scheduler, all inside one database transaction with the scheduler row locked.
func (s *schedulerService) cloneInTx(ctx context.Context, schedulerID string, onlyIfAwaiting bool, actor string) (*domain.Transaction, domain.CloneOutcome, error) {
	now := s.now()
	var txn *domain.Transaction
	outcome := domain.CloneSkipped

	err := withTx(ctx, s.schedulerRepo, func(tx pgx.Tx) error {
		sched, err := s.schedulerRepo.FindSchedulerByIDForUpdate(ctx, tx, schedulerID)
		if errors.Is(err, apperrors.ErrNotFound) {
			// Retired or deleted since it was selected.
			return nil
		}
		if err != nil {
			return err
		}
		if sched.State == domain.StateFailed {
			return nil
		}
		if onlyIfAwaiting && !sched.IsAwaiting(now, s.weekStart) {
			// Another run cloned it first.
			return nil
		}

		next := sched.NewTransaction()
		next.TransactionID = uuid.NewString()
		next.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		}
		if err := createTransactionInTx(ctx, tx, s.accountRepo, s.txnRepo, &next, actor, now); err != nil {
			return err
		}

		if sched.Advance(now) {
			if err := s.schedulerRepo.DeleteSchedulerInTx(ctx, tx, sched.SchedulerID); err != nil {
				return fmt.Errorf("failed to delete exhausted scheduler: %w", err)
			}
			outcome = domain.CloneRetired
		} else {
			sched.LastUpdatedAt = now
			sched.LastUpdatedBy = actor
			if err := s.schedulerRepo.UpdateSchedulerInTx(ctx, tx, *sched); err != nil {
				return fmt.Errorf("failed to advance scheduler: %w", err)
			}
			outcome = domain.CloneAdvanced
		}
		txn = &next
		return nil
	})
	if err != nil {
		return nil, domain.CloneFailed, err
	}
	return txn, outcome, nil
}

// ProcessAwaiting clones every awaiting scheduler serially, up to limit.
// Only the selection query can fail the whole pass.
func (s *schedulerService) ProcessAwaiting(ctx context.Context, limit int) (domain.ProcessReport, error) {
	var report domain.ProcessReport

	now := s.now()
	monthStart := daterange.Start(now, daterange.Month, s.weekStart)
	weekStart := daterange.Start(now, daterange.Week, s.weekStart)

	awaiting, err := s.schedulerRepo.FindAwaitingSchedulers(ctx, monthStart, weekStart, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to select awaiting schedulers")
		return report, err
	}

	for _, sched := range awaiting {
		if err := ctx.Err(); err != nil {
			s.LogWarn(ctx, "Scheduler processing interrupted", slog.Int("processed", report.Processed))
			return report, err
		}
		report.Add(s.cloneOnce(ctx, sched.SchedulerID, true, domain.SystemUserID))
	}

	s.LogInfo(ctx, "Awaiting schedulers processed",
		slog.Int("processed", report.Processed),
		slog.Int("cloned", report.Cloned),
		slog.Int("retired", report.Retired),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

// CloneScheduler clones immediately on user request. Authorization errors are
// returned; clone failures are reported in the result like in the batch job.
func (s *schedulerService) CloneScheduler(ctx context.Context, schedulerID string, userID string) (domain.CloneResult, error) {
	if _, err := s.authorizedScheduler(ctx, schedulerID, userID); err != nil {
		return domain.CloneResult{SchedulerID: schedulerID}, err
	}
	return s.cloneOnce(ctx, schedulerID, false, userID), nil
}

// --- CRUD ---

func (s *schedulerService) checkTag(ctx context.Context, tagID *string, userID string) error {
	if tagID == nil || s.tags == nil {
		return nil
	}
	return s.tags.EnsureTagOwner(ctx, *tagID, userID)
}

func (s *schedulerService) authorizedScheduler(ctx context.Context, schedulerID, userID string) (*domain.Scheduler, error) {
	sched, err := s.schedulerRepo.FindSchedulerByID(ctx, schedulerID)
	if err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to find scheduler", slog.String("scheduler_id", schedulerID))
		return nil, err
	}
	if _, err := s.AuthorizeAccount(ctx, userID, sched.AccountID); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *schedulerService) CreateScheduler(ctx context.Context, accountID string, req dto.CreateSchedulerRequest, userID string) (*domain.Scheduler, error) {
	account, err := s.AuthorizeAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	status := domain.StatusActive
	if req.Status != "" {
		status = domain.TransactionStatus(req.Status)
	}
	sched := domain.Scheduler{
		SchedulerID:   uuid.NewString(),
		AccountID:     accountID,
		Label:         req.Label,
		Date:          daterange.StartOfDay(req.Date),
		Amount:        req.Amount,
		CurrencyCode:  account.CurrencyCode,
		Status:        status,
		Reconciled:    req.Reconciled,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Memo:          req.Memo,
		TagID:         req.TagID,
		Type:          domain.SchedulerType(req.Type),
		Recurrence:    req.Recurrence,
		State:         domain.StateWaiting,
	}
	if err := validateScheduler(&sched); err != nil {
		return nil, err
	}
	if err := s.checkTag(ctx, req.TagID, userID); err != nil {
		return nil, err
	}

	now := s.now()
	sched.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	if err := s.schedulerRepo.SaveScheduler(ctx, sched); err != nil {
		s.LogError(ctx, err, "Failed to save scheduler", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Scheduler created",
		slog.String("scheduler_id", sched.SchedulerID),
		slog.String("type", string(sched.Type)))
	return &sched, nil
}

func validateScheduler(sched *domain.Scheduler) error {
	if !sched.Type.IsValid() {
		return fmt.Errorf("%w: unknown scheduler type %q", apperrors.ErrValidation, sched.Type)
	}
	if !sched.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, sched.Status)
	}
	if !sched.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, sched.PaymentMethod)
	}
	if sched.Recurrence != nil && *sched.Recurrence < 1 {
		return fmt.Errorf("%w: recurrence must be positive", apperrors.ErrValidation)
	}
	return nil
}

func (s *schedulerService) GetSchedulerByID(ctx context.Context, schedulerID string, userID string) (*domain.Scheduler, error) {
	return s.authorizedScheduler(ctx, schedulerID, userID)
}

func (s *schedulerService) ListSchedulersByAccount(ctx context.Context, accountID string, userID string, limit int, offset int) ([]domain.Scheduler, error) {
	if _, err := s.AuthorizeAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	scheds, err := s.schedulerRepo.ListSchedulersByAccount(ctx, accountID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list schedulers", slog.String("account_id", accountID))
		return nil, err
	}
	if scheds == nil {
		return []domain.Scheduler{}, nil
	}
	return scheds, nil
}

// UpdateScheduler never touches state or last action. The request is applied to
// the row locked inside the transaction so a concurrent clone is not overwritten.
func (s *schedulerService) UpdateScheduler(ctx context.Context, schedulerID string, req dto.UpdateSchedulerRequest, userID string) (*domain.Scheduler, error) {
	if _, err := s.authorizedScheduler(ctx, schedulerID, userID); err != nil {
		return nil, err
	}
	if !req.ClearTag && req.TagID != nil {
		if err := s.checkTag(ctx, req.TagID, userID); err != nil {
			return nil, err
		}
	}

	var updated *domain.Scheduler
	err := withTx(ctx, s.schedulerRepo, func(tx pgx.Tx) error {
		sched, err := s.schedulerRepo.FindSchedulerByIDForUpdate(ctx, tx, schedulerID)
		if err != nil {
			return err
		}
		applySchedulerUpdate(sched, req)
		if err := validateScheduler(sched); err != nil {
			return err
		}
		sched.LastUpdatedAt = s.now()
		sched.LastUpdatedBy = userID
		if err := s.schedulerRepo.UpdateSchedulerFieldsInTx(ctx, tx, *sched); err != nil {
			return err
		}
		updated = sched
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.logUnlessNotFound(ctx, err, "Failed to update scheduler", slog.String("scheduler_id", schedulerID))
		}
		return nil, err
	}
	return updated, nil
}

func applySchedulerUpdate(sched *domain.Scheduler, req dto.UpdateSchedulerRequest) {
	if req.Label != nil {
		sched.Label = *req.Label
	}
	if req.Date != nil {
		sched.Date = daterange.StartOfDay(*req.Date)
	}
	if req.Amount != nil {
		sched.Amount = *req.Amount
	}
	if req.Status != nil {
		sched.Status = domain.TransactionStatus(*req.Status)
	}
	if req.Reconciled != nil {
		sched.Reconciled = *req.Reconciled
	}
	if req.PaymentMethod != nil {
		sched.PaymentMethod = domain.PaymentMethod(*req.PaymentMethod)
	}
	if req.Memo != nil {
		sched.Memo = *req.Memo
	}
	if req.ClearTag {
		sched.TagID = nil
	} else if req.TagID != nil {
		tagID := *req.TagID
		sched.TagID = &tagID
	}
	if req.Type != nil {
		sched.Type = domain.SchedulerType(*req.Type)
	}
	if req.Infinite {
		sched.Recurrence = nil
	} else if req.Recurrence != nil {
		rec := *req.Recurrence
		sched.Recurrence = &rec
	}
}

func (s *schedulerService) DeleteScheduler(ctx context.Context, schedulerID string, userID string) error {
	if _, err := s.authorizedScheduler(ctx, schedulerID, userID); err != nil {
		return err
	}
	if err := s.schedulerRepo.DeleteScheduler(ctx, schedulerID); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to delete scheduler", slog.String("scheduler_id", schedulerID))
		return err
	}
	s.LogInfo(ctx, "Scheduler deleted", slog.String("scheduler_id", schedulerID))
	return nil
}

// ResetScheduler is the manual way out of the failed state.
func (s *schedulerService) ResetScheduler(ctx context.Context, schedulerID string, userID string) (*domain.Scheduler, error) {
	sched, err := s.authorizedScheduler(ctx, schedulerID, userID)
	if err != nil {
		return nil, err
	}
	if sched.State != domain.StateFailed {
		return nil, fmt.Errorf("%w: scheduler is %s, only failed schedulers can be reset", apperrors.ErrConflict, sched.State)
	}

	now := s.now()
	if err := s.schedulerRepo.ResetScheduler(ctx, schedulerID, userID, now); err != nil {
		s.logUnlessNotFound(ctx, err, "Failed to reset scheduler", slog.String("scheduler_id", schedulerID))
		return nil, err
	}

	sched.State = domain.StateWaiting
	sched.LastUpdatedAt = now
	sched.LastUpdatedBy = userID
	s.LogInfo(ctx, "Scheduler reset", slog.String("scheduler_id", schedulerID))
	return sched, nil
}

// --- Summaries ---

// GetSchedulerSummaries reports, per scheduler type, what the account's active
// schedulers will book per period and how much of it is already booked in the
// current period.
func (s *schedulerService) GetSchedulerSummaries(ctx context.Context, accountID string, userID string) ([]domain.SchedulerSummary, error) {
	if _, err := s.AuthorizeAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	sums, err := s.schedulerRepo.SumSchedulersByType(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum schedulers", slog.String("account_id", accountID))
		return nil, err
	}

	now := s.now()
	summaries := make([]domain.SchedulerSummary, 0, 2)
	for _, typ := range []domain.SchedulerType{domain.SchedulerMonthly, domain.SchedulerWeekly} {
		summary := sums[typ]
		summary.Type = typ
		summary.Total = summary.Credit.Add(summary.Debit)

		from, to := daterange.Window(now, typ.Granularity(), s.weekStart)
		used, err := s.txnRepo.SumScheduledTransactions(ctx, accountID, from, to)
		if err != nil {
			s.LogError(ctx, err, "Failed to sum scheduled transactions", slog.String("account_id", accountID))
			return nil, err
		}
		summary.Used = used
		summary.Remaining = summary.Total.Sub(used)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
