package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/mymoney_app/internal/apperrors"
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/core/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/SscSPs/mymoney_app/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SchedulerServiceTestSuite struct {
	suite.Suite
	store   *memStore
	now     time.Time
	service portssvc.SchedulerSvcFacade
	ctx     context.Context
}

func (suite *SchedulerServiceTestSuite) SetupTest() {
	suite.store = newMemStore()
	suite.now = time.Date(2015, time.February, 15, 6, 0, 0, 0, time.UTC)
	suite.ctx = context.Background()
	accounts := services.NewAccountService(suite.store)
	suite.service = services.NewSchedulerService(suite.store, suite.store, suite.store,
		services.WithSchedulerAccountAuthorizer(accounts),
		services.WithSchedulerClock(fixedClock(&suite.now)),
		services.WithSchedulerWeekStart(time.Monday),
	)
	suite.store.addAccount("acc-a", "100", alice)
	suite.store.addAccount("acc-b", "0", alice)
	suite.store.addAccount("acc-bob", "0", bob)
}

func intPtr(i int) *int { return &i }

// hookedSchedulerStore runs a one-shot hook right after a read returns, to let
// another writer slip in between a read and the work that follows it.
type hookedSchedulerStore struct {
	*memStore
	afterFindByID func()
	afterAwaiting func()
}

func (h *hookedSchedulerStore) FindSchedulerByID(ctx context.Context, schedulerID string) (*domain.Scheduler, error) {
	sched, err := h.memStore.FindSchedulerByID(ctx, schedulerID)
	if err == nil && h.afterFindByID != nil {
		hook := h.afterFindByID
		h.afterFindByID = nil
		hook()
	}
	return sched, err
}

func (h *hookedSchedulerStore) FindAwaitingSchedulers(ctx context.Context, monthStart, weekStart time.Time, limit int) ([]domain.Scheduler, error) {
	scheds, err := h.memStore.FindAwaitingSchedulers(ctx, monthStart, weekStart, limit)
	if err == nil && h.afterAwaiting != nil {
		hook := h.afterAwaiting
		h.afterAwaiting = nil
		hook()
	}
	return scheds, err
}

func (suite *SchedulerServiceTestSuite) hookedService() (portssvc.SchedulerSvcFacade, *hookedSchedulerStore) {
	hooked := &hookedSchedulerStore{memStore: suite.store}
	svc := services.NewSchedulerService(hooked, suite.store, suite.store,
		services.WithSchedulerAccountAuthorizer(services.NewAccountService(suite.store)),
		services.WithSchedulerClock(fixedClock(&suite.now)),
		services.WithSchedulerWeekStart(time.Monday),
	)
	return svc, hooked
}

func (suite *SchedulerServiceTestSuite) addScheduler(id, accountID string, typ domain.SchedulerType, date time.Time, amount string, recurrence *int) {
	suite.store.schedulers[id] = domain.Scheduler{
		SchedulerID:   id,
		AccountID:     accountID,
		Label:         "subscription " + id,
		Date:          date,
		Amount:        dec(amount),
		CurrencyCode:  "EUR",
		Status:        domain.StatusActive,
		Reconciled:    true,
		PaymentMethod: domain.PaymentCreditCard,
		Type:          typ,
		Recurrence:    recurrence,
		State:         domain.StateWaiting,
	}
}

func (suite *SchedulerServiceTestSuite) TestMonthlySchedulerRunsToExhaustion() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(2))

	report, err := suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.ProcessReport{Processed: 1, Cloned: 1}, report)

	sched := suite.store.schedulers["s1"]
	assert.Equal(suite.T(), day(2015, time.February, 28), sched.Date)
	assert.Equal(suite.T(), 1, *sched.Recurrence)
	assert.Equal(suite.T(), domain.StateFinished, sched.State)
	require.NotNil(suite.T(), sched.LastAction)
	assert.Equal(suite.T(), suite.now, *sched.LastAction)

	txns := suite.store.accountTxns("acc-a")
	require.Len(suite.T(), txns, 1)
	assert.Equal(suite.T(), day(2015, time.February, 28), txns[0].Date)
	assert.True(suite.T(), txns[0].Scheduled)
	assert.False(suite.T(), txns[0].Reconciled)
	assert.Equal(suite.T(), domain.SystemUserID, txns[0].CreatedBy)
	assert.True(suite.T(), dec("90").Equal(suite.store.balance("acc-a")))

	// Already cloned this month.
	report, err = suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), report.Processed)

	suite.now = time.Date(2015, time.March, 2, 6, 0, 0, 0, time.UTC)
	report, err = suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.ProcessReport{Processed: 1, Retired: 1}, report)

	assert.NotContains(suite.T(), suite.store.schedulers, "s1")
	txns = suite.store.accountTxns("acc-a")
	require.Len(suite.T(), txns, 2)
	assert.Equal(suite.T(), day(2015, time.March, 28), txns[1].Date)
	assert.True(suite.T(), dec("80").Equal(suite.store.balance("acc-a")))
	assertBalanceConsistent(suite.T(), suite.store, "acc-a")
}

func (suite *SchedulerServiceTestSuite) TestRecurrenceOneIsRetiredOnFirstClone() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerWeekly, day(2015, time.February, 9), "-5", intPtr(1))

	res, err := suite.service.CloneScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneRetired, res.Outcome)
	require.NotNil(suite.T(), res.Transaction)
	assert.Equal(suite.T(), day(2015, time.February, 16), res.Transaction.Date)
	assert.Equal(suite.T(), alice, res.Transaction.CreatedBy)
	assert.NotContains(suite.T(), suite.store.schedulers, "s1")
}

func (suite *SchedulerServiceTestSuite) TestInfiniteSchedulerIsNeverRetired() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerWeekly, day(2015, time.February, 2), "1", nil)

	for i := 0; i < 5; i++ {
		res, err := suite.service.CloneScheduler(suite.ctx, "s1", alice)
		suite.Require().NoError(err)
		assert.Equal(suite.T(), domain.CloneAdvanced, res.Outcome)
	}
	sched := suite.store.schedulers["s1"]
	assert.Nil(suite.T(), sched.Recurrence)
	assert.Equal(suite.T(), day(2015, time.March, 9), sched.Date)
	assert.Len(suite.T(), suite.store.accountTxns("acc-a"), 5)
	assertBalanceConsistent(suite.T(), suite.store, "acc-a")
}

func (suite *SchedulerServiceTestSuite) TestInactiveSchedulerCreatesTransactionWithoutBalanceChange() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 10), "-30", nil)
	s := suite.store.schedulers["s1"]
	s.Status = domain.StatusInactive
	suite.store.schedulers["s1"] = s

	res, err := suite.service.CloneScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneAdvanced, res.Outcome)
	assert.Len(suite.T(), suite.store.accountTxns("acc-a"), 1)
	assert.True(suite.T(), dec("100").Equal(suite.store.balance("acc-a")))
}

func (suite *SchedulerServiceTestSuite) TestFailedCloneLeavesNoTrace() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(3))
	suite.store.failOn["InsertTransactionInTx"] = errors.New("constraint violated")

	res, err := suite.service.CloneScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneFailed, res.Outcome)
	assert.Error(suite.T(), res.Err)
	assert.Nil(suite.T(), res.Transaction)

	sched := suite.store.schedulers["s1"]
	assert.Equal(suite.T(), domain.StateFailed, sched.State)
	assert.Equal(suite.T(), 3, *sched.Recurrence)
	assert.Equal(suite.T(), day(2015, time.January, 31), sched.Date)
	assert.Nil(suite.T(), sched.LastAction)
	assert.Empty(suite.T(), suite.store.accountTxns("acc-a"))
	assert.True(suite.T(), dec("100").Equal(suite.store.balance("acc-a")))

	// Failed schedulers are neither selected nor cloned until reset.
	delete(suite.store.failOn, "InsertTransactionInTx")
	report, err := suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), report.Processed)

	res, err = suite.service.CloneScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneSkipped, res.Outcome)

	reset, err := suite.service.ResetScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.StateWaiting, reset.State)

	report, err = suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, report.Cloned)
}

func (suite *SchedulerServiceTestSuite) TestFailedCloneLogsError() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(3))
	suite.store.failOn["InsertTransactionInTx"] = errors.New("constraint violated")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := middleware.WithLogger(suite.ctx, logger)

	res, err := suite.service.CloneScheduler(ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneFailed, res.Outcome)

	var found bool
	decoder := json.NewDecoder(&buf)
	for decoder.More() {
		var record map[string]any
		suite.Require().NoError(decoder.Decode(&record))
		if record["level"] == "ERROR" && record["msg"] == "Scheduler clone failed" {
			assert.Equal(suite.T(), "s1", record["scheduler_id"])
			assert.Contains(suite.T(), record["error"], "constraint violated")
			found = true
		}
	}
	assert.True(suite.T(), found, "expected an error record for the failed clone")
}

func (suite *SchedulerServiceTestSuite) TestFailureInAdvanceRollsBackTransaction() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(3))
	suite.store.failOn["UpdateSchedulerInTx"] = errors.New("serialization failure")

	res, err := suite.service.CloneScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneFailed, res.Outcome)
	assert.Empty(suite.T(), suite.store.accountTxns("acc-a"))
	assert.True(suite.T(), dec("100").Equal(suite.store.balance("acc-a")))
	assert.Equal(suite.T(), domain.StateFailed, suite.store.schedulers["s1"].State)
}

func (suite *SchedulerServiceTestSuite) TestMarkFailedErrorIsSwallowed() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", nil)
	suite.store.failOn["InsertTransactionInTx"] = errors.New("boom")
	suite.store.failOn["MarkSchedulerFailed"] = errors.New("connection reset")

	res, err := suite.service.CloneScheduler(suite.ctx, "s1", alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.CloneFailed, res.Outcome)
	assert.Equal(suite.T(), domain.StateWaiting, suite.store.schedulers["s1"].State)
}

func (suite *SchedulerServiceTestSuite) TestOneFailureDoesNotStopTheBatch() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 20), "-10", nil)
	suite.addScheduler("s2", "acc-b", domain.SchedulerMonthly, day(2015, time.January, 20), "-10", nil)
	suite.addScheduler("s3", "acc-a", domain.SchedulerWeekly, day(2015, time.February, 9), "2", nil)
	suite.store.failOn["InsertTransactionInTx:acc-b"] = errors.New("boom")

	report, err := suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.ProcessReport{Processed: 3, Cloned: 2, Failed: 1}, report)
	assert.Equal(suite.T(), domain.StateFailed, suite.store.schedulers["s2"].State)
	assert.Len(suite.T(), suite.store.accountTxns("acc-a"), 2)
	assertBalanceConsistent(suite.T(), suite.store, "acc-a")
	assertBalanceConsistent(suite.T(), suite.store, "acc-b")
}

func (suite *SchedulerServiceTestSuite) TestAwaitingSelectionPerType() {
	lastWeek := time.Date(2015, time.February, 8, 12, 0, 0, 0, time.UTC)
	thisWeek := time.Date(2015, time.February, 9, 12, 0, 0, 0, time.UTC)

	suite.addScheduler("weekly-due", "acc-a", domain.SchedulerWeekly, day(2015, time.February, 8), "1", nil)
	suite.addScheduler("weekly-done", "acc-a", domain.SchedulerWeekly, day(2015, time.February, 9), "1", nil)
	suite.addScheduler("monthly-done", "acc-a", domain.SchedulerMonthly, day(2015, time.February, 8), "1", nil)
	suite.addScheduler("failed", "acc-a", domain.SchedulerWeekly, day(2015, time.January, 1), "1", nil)
	for id, la := range map[string]time.Time{"weekly-due": lastWeek, "weekly-done": thisWeek, "monthly-done": lastWeek} {
		s := suite.store.schedulers[id]
		la := la
		s.LastAction = &la
		s.State = domain.StateFinished
		suite.store.schedulers[id] = s
	}
	f := suite.store.schedulers["failed"]
	f.State = domain.StateFailed
	suite.store.schedulers["failed"] = f

	report, err := suite.service.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.ProcessReport{Processed: 1, Cloned: 1}, report)
	assert.Equal(suite.T(), day(2015, time.February, 15), suite.store.schedulers["weekly-due"].Date)
}

func (suite *SchedulerServiceTestSuite) TestProcessAwaitingHonoursLimit() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 1), "1", nil)
	suite.addScheduler("s2", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 1), "1", nil)

	report, err := suite.service.ProcessAwaiting(suite.ctx, 1)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, report.Processed)
}

func (suite *SchedulerServiceTestSuite) TestProcessAwaitingSelectionError() {
	suite.store.failOn["FindAwaitingSchedulers"] = errors.New("db down")
	_, err := suite.service.ProcessAwaiting(suite.ctx, 0)
	assert.Error(suite.T(), err)
}

func (suite *SchedulerServiceTestSuite) TestProcessAwaitingStopsOnCancelledContext() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 1), "1", nil)
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	report, err := suite.service.ProcessAwaiting(ctx, 0)
	assert.ErrorIs(suite.T(), err, context.Canceled)
	assert.Zero(suite.T(), report.Processed)
	assert.Empty(suite.T(), suite.store.accountTxns("acc-a"))
}

func (suite *SchedulerServiceTestSuite) TestResetOnlyFromFailed() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 1), "1", nil)
	_, err := suite.service.ResetScheduler(suite.ctx, "s1", alice)
	assert.ErrorIs(suite.T(), err, apperrors.ErrConflict)
}

func (suite *SchedulerServiceTestSuite) TestCreateAndUpdateScheduler() {
	sched, err := suite.service.CreateScheduler(suite.ctx, "acc-a", dto.CreateSchedulerRequest{
		Label:         "rent",
		Date:          time.Date(2015, time.February, 1, 15, 0, 0, 0, time.UTC),
		Amount:        dec("-800"),
		PaymentMethod: "transfer",
		Type:          "monthly",
		Recurrence:    intPtr(12),
	}, alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.StateWaiting, sched.State)
	assert.Equal(suite.T(), domain.StatusActive, sched.Status)
	assert.Equal(suite.T(), "EUR", sched.CurrencyCode)
	assert.Equal(suite.T(), day(2015, time.February, 1), sched.Date)

	updated, err := suite.service.UpdateScheduler(suite.ctx, sched.SchedulerID, dto.UpdateSchedulerRequest{
		Type:     strPtr("weekly"),
		Infinite: true,
	}, alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.SchedulerWeekly, updated.Type)
	assert.Nil(suite.T(), updated.Recurrence)
	assert.Equal(suite.T(), domain.StateWaiting, updated.State)

	_, err = suite.service.CreateScheduler(suite.ctx, "acc-bob", dto.CreateSchedulerRequest{
		Label: "x", Date: suite.now, Amount: dec("1"), PaymentMethod: "cash", Type: "weekly",
	}, alice)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	_, err = suite.service.CreateScheduler(suite.ctx, "acc-a", dto.CreateSchedulerRequest{
		Label: "x", Date: suite.now, Amount: dec("1"), PaymentMethod: "cash", Type: "daily",
	}, alice)
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
}

func (suite *SchedulerServiceTestSuite) TestSummaries() {
	suite.addScheduler("salary", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 25), "1000", nil)
	suite.addScheduler("rent", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 5), "-300", nil)
	suite.addScheduler("gym", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 5), "-200", nil)
	g := suite.store.schedulers["gym"]
	g.Status = domain.StatusInactive
	suite.store.schedulers["gym"] = g
	suite.addScheduler("coffee", "acc-a", domain.SchedulerWeekly, day(2015, time.February, 2), "-15", nil)

	// Rent for February is booked, salary is not yet.
	_, err := suite.service.CloneScheduler(suite.ctx, "rent", alice)
	suite.Require().NoError(err)

	summaries, err := suite.service.GetSchedulerSummaries(suite.ctx, "acc-a", alice)
	suite.Require().NoError(err)
	require.Len(suite.T(), summaries, 2)

	monthly := summaries[0]
	assert.Equal(suite.T(), domain.SchedulerMonthly, monthly.Type)
	assert.True(suite.T(), dec("1000").Equal(monthly.Credit))
	assert.True(suite.T(), dec("-300").Equal(monthly.Debit))
	assert.True(suite.T(), dec("700").Equal(monthly.Total))
	assert.True(suite.T(), dec("-300").Equal(monthly.Used))
	assert.True(suite.T(), dec("1000").Equal(monthly.Remaining))

	weekly := summaries[1]
	assert.Equal(suite.T(), domain.SchedulerWeekly, weekly.Type)
	assert.True(suite.T(), dec("-15").Equal(weekly.Total))
	assert.True(suite.T(), weekly.Used.IsZero())
	assert.True(suite.T(), dec("-15").Equal(weekly.Remaining))
}

func (suite *SchedulerServiceTestSuite) TestUpdateDoesNotUndoConcurrentClone() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(3))
	svc, hooked := suite.hookedService()
	hooked.afterFindByID = func() {
		report, err := svc.ProcessAwaiting(suite.ctx, 0)
		suite.Require().NoError(err)
		suite.Require().Equal(1, report.Cloned)
	}

	updated, err := svc.UpdateScheduler(suite.ctx, "s1", dto.UpdateSchedulerRequest{Label: strPtr("rent 2")}, alice)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "rent 2", updated.Label)

	sched := suite.store.schedulers["s1"]
	assert.Equal(suite.T(), "rent 2", sched.Label)
	assert.Equal(suite.T(), day(2015, time.February, 28), sched.Date)
	assert.Equal(suite.T(), 2, *sched.Recurrence)
	assert.Equal(suite.T(), domain.StateFinished, sched.State)
	require.NotNil(suite.T(), sched.LastAction)

	// A second pass finds nothing left to clone this month.
	report, err := svc.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Zero(suite.T(), report.Processed)
	assert.Len(suite.T(), suite.store.accountTxns("acc-a"), 1)
	assert.True(suite.T(), dec("90").Equal(suite.store.balance("acc-a")))
}

func (suite *SchedulerServiceTestSuite) TestAwaitingSchedulerClonedBeforeLockIsSkipped() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(3))
	svc, hooked := suite.hookedService()
	hooked.afterAwaiting = func() {
		res, err := svc.CloneScheduler(suite.ctx, "s1", alice)
		suite.Require().NoError(err)
		suite.Require().Equal(domain.CloneAdvanced, res.Outcome)
	}

	report, err := svc.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.ProcessReport{Processed: 1, Skipped: 1}, report)

	assert.Len(suite.T(), suite.store.accountTxns("acc-a"), 1)
	assert.True(suite.T(), dec("90").Equal(suite.store.balance("acc-a")))
	sched := suite.store.schedulers["s1"]
	assert.Equal(suite.T(), 2, *sched.Recurrence)
	assert.Equal(suite.T(), day(2015, time.February, 28), sched.Date)
}

func (suite *SchedulerServiceTestSuite) TestAwaitingSchedulerDeletedBeforeLockIsSkipped() {
	suite.addScheduler("s1", "acc-a", domain.SchedulerMonthly, day(2015, time.January, 31), "-10", intPtr(3))
	svc, hooked := suite.hookedService()
	hooked.afterAwaiting = func() {
		delete(suite.store.schedulers, "s1")
	}

	report, err := svc.ProcessAwaiting(suite.ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), domain.ProcessReport{Processed: 1, Skipped: 1}, report)

	assert.Empty(suite.T(), suite.store.accountTxns("acc-a"))
	assert.True(suite.T(), dec("100").Equal(suite.store.balance("acc-a")))
	assert.NotContains(suite.T(), suite.store.schedulers, "s1")
}

func TestSchedulerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerServiceTestSuite))
}
