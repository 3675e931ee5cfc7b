package pgsql

import (
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		SchedulerRepo:   newPgxSchedulerRepository(dbPool),
		TagRepo:         newPgxTagRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
	}
}
