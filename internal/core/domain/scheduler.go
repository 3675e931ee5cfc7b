package domain

import (
	"time"

	"github.com/SscSPs/mymoney_app/internal/utils/daterange"
	"github.com/shopspring/decimal"
)

// SchedulerType is the recurrence unit of a scheduler.
type SchedulerType string

const (
	SchedulerMonthly SchedulerType = "monthly"
	SchedulerWeekly  SchedulerType = "weekly"
)

// IsValid reports whether t is a known scheduler type.
func (t SchedulerType) IsValid() bool {
	return t == SchedulerMonthly || t == SchedulerWeekly
}

// Granularity maps the scheduler type onto its calendar window.
func (t SchedulerType) Granularity() daterange.Granularity {
	if t == SchedulerWeekly {
		return daterange.Week
	}
	return daterange.Month
}

// SchedulerState records the outcome of the last clone attempt.
type SchedulerState string

const (
	StateWaiting  SchedulerState = "waiting"  // Never cloned yet
	StateFinished SchedulerState = "finished" // Last clone succeeded
	StateFailed   SchedulerState = "failed"   // Last clone raised; needs manual reset
)

// Scheduler is a recurring template that periodically materializes transactions.
type Scheduler struct {
	SchedulerID   string            `json:"schedulerID"`
	AccountID     string            `json:"accountID"`
	Label         string            `json:"label"`
	Date          time.Time         `json:"date"`
	Amount        decimal.Decimal   `json:"amount"`
	CurrencyCode  string            `json:"currencyCode"`
	Status        TransactionStatus `json:"status"`
	Reconciled    bool              `json:"reconciled"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Memo          string            `json:"memo"`
	TagID         *string           `json:"tagID"`
	Type          SchedulerType     `json:"type"`
	Recurrence    *int              `json:"recurrence"` // Remaining clones, nil means infinite
	LastAction    *time.Time        `json:"lastAction"`
	State         SchedulerState    `json:"state"`
	AuditFields
}

// NextDate is the date of the next transaction this scheduler will produce.
func (s *Scheduler) NextDate() time.Time {
	return daterange.AddInterval(s.Date, s.Type.Granularity())
}

// NewTransaction builds the transaction a clone produces, dated at NextDate.
// It is never reconciled and always flagged as scheduled.
func (s *Scheduler) NewTransaction() Transaction {
	return Transaction{
		AccountID:     s.AccountID,
		Label:         s.Label,
		Date:          s.NextDate(),
		Amount:        s.Amount,
		CurrencyCode:  s.CurrencyCode,
		Status:        s.Status,
		Reconciled:    false,
		PaymentMethod: s.PaymentMethod,
		Memo:          s.Memo,
		TagID:         s.TagID,
		Scheduled:     true,
	}
}

// Advance applies a successful clone to the scheduler: it consumes one finite
// recurrence and reports whether the scheduler is exhausted and must be deleted.
// When not exhausted the date moves forward one period and the state becomes finished.
func (s *Scheduler) Advance(now time.Time) (exhausted bool) {
	if s.Recurrence != nil {
		remaining := *s.Recurrence - 1
		s.Recurrence = &remaining
		if remaining <= 0 {
			return true
		}
	}
	s.Date = s.NextDate()
	s.LastAction = &now
	s.State = StateFinished
	return false
}

// PeriodStart is the first day of the current period for this scheduler type.
func (s *Scheduler) PeriodStart(now time.Time, weekStart time.Weekday) time.Time {
	return daterange.Start(now, s.Type.Granularity(), weekStart)
}

// IsAwaiting reports whether the scheduler is due for its next clone: it never
// ran, or it last ran before the start of the current period. Failed schedulers
// are never due.
func (s *Scheduler) IsAwaiting(now time.Time, weekStart time.Weekday) bool {
	switch s.State {
	case StateWaiting:
		return true
	case StateFinished:
		return s.LastAction == nil || s.LastAction.Before(s.PeriodStart(now, weekStart))
	default:
		return false
	}
}

// SchedulerSummary aggregates the schedulers of one account and one type for dashboards.
type SchedulerSummary struct {
	Type      SchedulerType   `json:"type"`
	Credit    decimal.Decimal `json:"credit"`    // Sum of positive amounts
	Debit     decimal.Decimal `json:"debit"`     // Sum of negative amounts
	Total     decimal.Decimal `json:"total"`     // Credit + Debit
	Used      decimal.Decimal `json:"used"`      // Scheduled transactions already booked this period
	Remaining decimal.Decimal `json:"remaining"` // Total - Used
}
