package services_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portsrepo "github.com/SscSPs/mymoney_app/internal/core/ports/repositories"
	"github.com/SscSPs/mymoney_app/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// memStore is an in-memory stand-in for the account, transaction and scheduler
// repositories. Begin snapshots the whole store and Rollback restores it, so
// the tests observe the same all-or-nothing behaviour as PostgreSQL.
type memStore struct {
	mu         sync.Mutex
	accounts   map[string]domain.Account
	txns       map[string]domain.Transaction
	schedulers map[string]domain.Scheduler

	// failOn injects errors by operation name, or by "operation:id".
	failOn map[string]error

	begun, committed, rolledBack int
}

var (
	_ portsrepo.AccountRepositoryWithTx     = (*memStore)(nil)
	_ portsrepo.TransactionRepositoryWithTx = (*memStore)(nil)
	_ portsrepo.SchedulerRepositoryWithTx   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		accounts:   map[string]domain.Account{},
		txns:       map[string]domain.Transaction{},
		schedulers: map[string]domain.Scheduler{},
		failOn:     map[string]error{},
	}
}

type memSnapshot struct {
	accounts   map[string]domain.Account
	txns       map[string]domain.Transaction
	schedulers map[string]domain.Scheduler
}

type fakeTx struct {
	pgx.Tx
	snap memSnapshot
	done bool
}

func (m *memStore) fail(op string, id string) error {
	if err := m.failOn[op+":"+id]; err != nil {
		return err
	}
	return m.failOn[op]
}

func copySchedulers(in map[string]domain.Scheduler) map[string]domain.Scheduler {
	out := make(map[string]domain.Scheduler, len(in))
	for k, v := range in {
		out[k] = cloneScheduler(v)
	}
	return out
}

func cloneScheduler(s domain.Scheduler) domain.Scheduler {
	if s.Recurrence != nil {
		r := *s.Recurrence
		s.Recurrence = &r
	}
	if s.LastAction != nil {
		la := *s.LastAction
		s.LastAction = &la
	}
	return s
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// --- TransactionManager ---

func (m *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Begin", ""); err != nil {
		return nil, err
	}
	m.begun++
	return &fakeTx{snap: memSnapshot{
		accounts:   copyMap(m.accounts),
		txns:       copyMap(m.txns),
		schedulers: copySchedulers(m.schedulers),
	}}, nil
}

func (m *memStore) Commit(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Commit", ""); err != nil {
		return err
	}
	tx.(*fakeTx).done = true
	m.committed++
	return nil
}

func (m *memStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ft := tx.(*fakeTx)
	if ft.done {
		return nil
	}
	m.accounts = ft.snap.accounts
	m.txns = ft.snap.txns
	m.schedulers = ft.snap.schedulers
	ft.done = true
	m.rolledBack++
	return nil
}

// --- Accounts ---

func (m *memStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) ListAccountsByOwner(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for _, acc := range m.accounts {
		if acc.HasOwner(userID) {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SaveAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SaveAccount", account.AccountID); err != nil {
		return err
	}
	m.accounts[account.AccountID] = account
	return nil
}

func (m *memStore) UpdateAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	current.Label = account.Label
	current.AuditFields.LastUpdatedAt = account.LastUpdatedAt
	current.AuditFields.LastUpdatedBy = account.LastUpdatedBy
	m.accounts[account.AccountID] = current
	return nil
}

func (m *memStore) DeleteAccount(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[accountID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.accounts, accountID)
	for id, txn := range m.txns {
		if txn.AccountID == accountID {
			delete(m.txns, id)
		}
	}
	for id, s := range m.schedulers {
		if s.AccountID == accountID {
			delete(m.schedulers, id)
		}
	}
	return nil
}

func (m *memStore) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	return m.FindAccountByID(ctx, accountID)
}

func (m *memStore) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := m.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (m *memStore) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, delta := range balanceChanges {
		if err := m.fail("UpdateAccountBalancesInTx", id); err != nil {
			return err
		}
		acc, ok := m.accounts[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		acc.Balance = acc.Balance.Add(delta)
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = userID
		m.accounts[id] = acc
	}
	return nil
}

func (m *memStore) UpdateBalanceInitialInTx(ctx context.Context, tx pgx.Tx, accountID string, balanceInitial decimal.Decimal, delta decimal.Decimal, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.BalanceInitial = balanceInitial
	acc.Balance = acc.Balance.Add(delta)
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = userID
	m.accounts[accountID] = acc
	return nil
}

// --- Transactions ---

func (m *memStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

func (m *memStore) FindTransactionsByIDs(ctx context.Context, transactionIDs []string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, id := range transactionIDs {
		if txn, ok := m.txns[id]; ok {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (m *memStore) ListTransactionsByAccount(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range m.txns {
		if txn.AccountID != accountID {
			continue
		}
		if from != nil && txn.Date.Before(*from) {
			continue
		}
		if to != nil && txn.Date.After(*to) {
			continue
		}
		out = append(out, txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (m *memStore) SumScheduledTransactions(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, txn := range m.txns {
		if txn.AccountID != accountID || !txn.Scheduled || txn.Status != domain.StatusActive {
			continue
		}
		if txn.Date.Before(from) || txn.Date.After(to) {
			continue
		}
		sum = sum.Add(txn.Amount)
	}
	return sum, nil
}

func (m *memStore) SetReconciled(ctx context.Context, transactionIDs []string, reconciled bool, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range transactionIDs {
		txn, ok := m.txns[id]
		if !ok {
			continue
		}
		txn.Reconciled = reconciled
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = userID
		m.txns[id] = txn
		n++
	}
	return n, nil
}

func (m *memStore) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	return m.FindTransactionByID(ctx, transactionID)
}

func (m *memStore) FindTransactionsByIDsForUpdate(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.Transaction, error) {
	return m.FindTransactionsByIDs(ctx, transactionIDs)
}

func (m *memStore) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("InsertTransactionInTx", transaction.AccountID); err != nil {
		return err
	}
	m.txns[transaction.TransactionID] = transaction
	return nil
}

func (m *memStore) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[transaction.TransactionID]; !ok {
		return apperrors.ErrNotFound
	}
	m.txns[transaction.TransactionID] = transaction
	return nil
}

func (m *memStore) DeleteTransactionsInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range transactionIDs {
		delete(m.txns, id)
	}
	return nil
}

// --- Schedulers ---

func (m *memStore) FindSchedulerByID(ctx context.Context, schedulerID string) (*domain.Scheduler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedulers[schedulerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	s = cloneScheduler(s)
	return &s, nil
}

func (m *memStore) ListSchedulersByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Scheduler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Scheduler
	for _, s := range m.schedulers {
		if s.AccountID == accountID {
			out = append(out, cloneScheduler(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// FindAwaitingSchedulers mirrors the SQL selection: never run, or last run
// before the start of the current period of its type.
func (m *memStore) FindAwaitingSchedulers(ctx context.Context, monthStart, weekStart time.Time, limit int) ([]domain.Scheduler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("FindAwaitingSchedulers", ""); err != nil {
		return nil, err
	}
	var out []domain.Scheduler
	for _, s := range m.schedulers {
		switch {
		case s.State == domain.StateWaiting:
		case s.State == domain.StateFinished && s.Type == domain.SchedulerMonthly && (s.LastAction == nil || s.LastAction.Before(monthStart)):
		case s.State == domain.StateFinished && s.Type == domain.SchedulerWeekly && (s.LastAction == nil || s.LastAction.Before(weekStart)):
		default:
			continue
		}
		out = append(out, cloneScheduler(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SchedulerID < out[j].SchedulerID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) SumSchedulersByType(ctx context.Context, accountID string) (map[domain.SchedulerType]domain.SchedulerSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[domain.SchedulerType]domain.SchedulerSummary{}
	for _, s := range m.schedulers {
		if s.AccountID != accountID || s.Status != domain.StatusActive {
			continue
		}
		sum := out[s.Type]
		if s.Amount.IsPositive() {
			sum.Credit = sum.Credit.Add(s.Amount)
		} else {
			sum.Debit = sum.Debit.Add(s.Amount)
		}
		out[s.Type] = sum
	}
	return out, nil
}

func (m *memStore) SaveScheduler(ctx context.Context, scheduler domain.Scheduler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedulers[scheduler.SchedulerID] = cloneScheduler(scheduler)
	return nil
}

func (m *memStore) UpdateSchedulerFieldsInTx(ctx context.Context, tx pgx.Tx, scheduler domain.Scheduler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateSchedulerFieldsInTx", scheduler.SchedulerID); err != nil {
		return err
	}
	current, ok := m.schedulers[scheduler.SchedulerID]
	if !ok {
		return apperrors.ErrNotFound
	}
	// State and last action belong to the clone engine.
	scheduler.State = current.State
	scheduler.LastAction = current.LastAction
	m.schedulers[scheduler.SchedulerID] = cloneScheduler(scheduler)
	return nil
}

func (m *memStore) DeleteScheduler(ctx context.Context, schedulerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedulers[schedulerID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.schedulers, schedulerID)
	return nil
}

func (m *memStore) MarkSchedulerFailed(ctx context.Context, schedulerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("MarkSchedulerFailed", schedulerID); err != nil {
		return err
	}
	s, ok := m.schedulers[schedulerID]
	if !ok {
		return apperrors.ErrNotFound
	}
	s.State = domain.StateFailed
	m.schedulers[schedulerID] = s
	return nil
}

func (m *memStore) ResetScheduler(ctx context.Context, schedulerID string, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedulers[schedulerID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if s.State != domain.StateFailed {
		return apperrors.ErrConflict
	}
	s.State = domain.StateWaiting
	s.LastUpdatedAt = now
	s.LastUpdatedBy = userID
	m.schedulers[schedulerID] = s
	return nil
}

func (m *memStore) FindSchedulerByIDForUpdate(ctx context.Context, tx pgx.Tx, schedulerID string) (*domain.Scheduler, error) {
	return m.FindSchedulerByID(ctx, schedulerID)
}

func (m *memStore) UpdateSchedulerInTx(ctx context.Context, tx pgx.Tx, scheduler domain.Scheduler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateSchedulerInTx", scheduler.SchedulerID); err != nil {
		return err
	}
	if _, ok := m.schedulers[scheduler.SchedulerID]; !ok {
		return apperrors.ErrNotFound
	}
	m.schedulers[scheduler.SchedulerID] = cloneScheduler(scheduler)
	return nil
}

func (m *memStore) DeleteSchedulerInTx(ctx context.Context, tx pgx.Tx, schedulerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteSchedulerInTx", schedulerID); err != nil {
		return err
	}
	delete(m.schedulers, schedulerID)
	return nil
}

// --- Helpers ---

func (m *memStore) addAccount(id string, initial string, owners ...string) {
	v := decimal.RequireFromString(initial)
	m.accounts[id] = domain.Account{
		AccountID:      id,
		Label:          "Account " + id,
		CurrencyCode:   "EUR",
		Balance:        v,
		BalanceInitial: v,
		OwnerIDs:       owners,
	}
}

func (m *memStore) accountTxns(accountID string) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range m.txns {
		if txn.AccountID == accountID {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (m *memStore) balance(accountID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[accountID].Balance
}

// assertBalanceConsistent checks the cached balance against a full recomputation.
func assertBalanceConsistent(t *testing.T, m *memStore, accountID string) {
	t.Helper()
	m.mu.Lock()
	acc := m.accounts[accountID]
	m.mu.Unlock()
	want := accounting.ExpectedBalance(acc.BalanceInitial, m.accountTxns(accountID))
	assert.True(t, want.Equal(acc.Balance), "balance %s, recomputed %s", acc.Balance, want)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}
