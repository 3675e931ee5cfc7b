package services

import (
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account service first, every other service authorizes through it
	container.Account = NewAccountService(repos.AccountRepo)
	container.Tag = NewTagService(repos.TagRepo)

	container.Ledger = NewLedgerService(
		repos.TransactionRepo,
		repos.AccountRepo,
		WithLedgerAccountAuthorizer(container.Account),
		WithLedgerTagChecker(container.Tag),
		WithLedgerWeekStart(cfg.WeekStart),
	)

	container.Scheduler = NewSchedulerService(
		repos.SchedulerRepo,
		repos.AccountRepo,
		repos.TransactionRepo,
		WithSchedulerAccountAuthorizer(container.Account),
		WithSchedulerTagChecker(container.Tag),
		WithSchedulerWeekStart(cfg.WeekStart),
	)

	container.Auth = NewAuthService(cfg, repos.UserRepo)

	return container
}
