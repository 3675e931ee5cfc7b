package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a row of the accounts table.
type Account struct {
	AccountID      string          `db:"account_id"`
	Label          string          `db:"label"`
	CurrencyCode   string          `db:"currency_code"`
	Balance        decimal.Decimal `db:"balance"`
	BalanceInitial decimal.Decimal `db:"balance_initial"`
	AuditFields
}

// AccountOwner represents a row of the account_owners join table.
type AccountOwner struct {
	AccountID string `db:"account_id"`
	UserID    string `db:"user_id"`
}
