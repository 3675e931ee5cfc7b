package services

import (
	"context"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/dto"
)

// SchedulerReaderSvc defines read operations for scheduler data
type SchedulerReaderSvc interface {
	GetSchedulerByID(ctx context.Context, schedulerID string, userID string) (*domain.Scheduler, error)
	ListSchedulersByAccount(ctx context.Context, accountID string, userID string, limit int, offset int) ([]domain.Scheduler, error)

	// GetSchedulerSummaries returns one summary per scheduler type for the account.
	GetSchedulerSummaries(ctx context.Context, accountID string, userID string) ([]domain.SchedulerSummary, error)
}

// SchedulerWriterSvc defines write operations for scheduler data
type SchedulerWriterSvc interface {
	CreateScheduler(ctx context.Context, accountID string, req dto.CreateSchedulerRequest, userID string) (*domain.Scheduler, error)
	UpdateScheduler(ctx context.Context, schedulerID string, req dto.UpdateSchedulerRequest, userID string) (*domain.Scheduler, error)
	DeleteScheduler(ctx context.Context, schedulerID string, userID string) error

	// ResetScheduler puts a failed scheduler back to waiting.
	ResetScheduler(ctx context.Context, schedulerID string, userID string) (*domain.Scheduler, error)
}

// SchedulerCloneSvc defines the clone engine
type SchedulerCloneSvc interface {
	// CloneScheduler clones one scheduler now, whether due or not. Failed schedulers are skipped.
	CloneScheduler(ctx context.Context, schedulerID string, userID string) (domain.CloneResult, error)

	// ProcessAwaiting clones the awaiting schedulers one after the other. A limit <= 0 means all.
	// Clone failures are recorded in the report, never returned.
	ProcessAwaiting(ctx context.Context, limit int) (domain.ProcessReport, error)
}

// SchedulerSvcFacade combines all scheduler-related service interfaces
type SchedulerSvcFacade interface {
	SchedulerReaderSvc
	SchedulerWriterSvc
	SchedulerCloneSvc
}
