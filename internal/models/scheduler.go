package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Scheduler represents a row of the schedulers table.
type Scheduler struct {
	SchedulerID   string          `db:"scheduler_id"`
	AccountID     string          `db:"account_id"`
	Label         string          `db:"label"`
	Date          time.Time       `db:"date"`
	Amount        decimal.Decimal `db:"amount"`
	CurrencyCode  string          `db:"currency_code"`
	Status        string          `db:"status"`
	Reconciled    bool            `db:"reconciled"`
	PaymentMethod string          `db:"payment_method"`
	Memo          string          `db:"memo"`
	TagID         sql.NullString  `db:"tag_id"`
	Type          string          `db:"type"`
	Recurrence    sql.NullInt32   `db:"recurrence"`
	LastAction    sql.NullTime    `db:"last_action"`
	State         string          `db:"state"`
	AuditFields
}
