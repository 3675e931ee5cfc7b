package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a bank account tracked by the application.
// Balance is a cached running total: BalanceInitial plus the amount of every
// transaction whose status affects the balance.
type Account struct {
	AccountID      string          `json:"accountID"`      // Primary Key (UUID)
	Label          string          `json:"label"`          // User-defined name
	CurrencyCode   string          `json:"currencyCode"`   // ISO 4217, copied onto transactions
	Balance        decimal.Decimal `json:"balance"`        // Maintained by delta, never resummed
	BalanceInitial decimal.Decimal `json:"balanceInitial"` // Opening offset
	OwnerIDs       []string        `json:"ownerIDs"`       // Users allowed to act on the account
	AuditFields
}

// HasOwner reports whether userID is one of the account owners.
func (a *Account) HasOwner(userID string) bool {
	for _, id := range a.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// InitialBalanceDelta is the amount to add to Balance when BalanceInitial
// becomes newInitial.
func (a *Account) InitialBalanceDelta(newInitial decimal.Decimal) decimal.Decimal {
	return newInitial.Sub(a.BalanceInitial)
}
