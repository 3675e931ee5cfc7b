package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a row of the transactions table.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Label         string          `db:"label"`
	Date          time.Time       `db:"date"`
	Amount        decimal.Decimal `db:"amount"`
	CurrencyCode  string          `db:"currency_code"`
	Status        string          `db:"status"`
	Reconciled    bool            `db:"reconciled"`
	PaymentMethod string          `db:"payment_method"`
	Memo          string          `db:"memo"`
	TagID         sql.NullString  `db:"tag_id"` // ON DELETE SET NULL
	Scheduled     bool            `db:"scheduled"`
	AuditFields
}
