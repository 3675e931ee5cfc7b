package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus controls whether a transaction counts towards the account balance.
type TransactionStatus string

const (
	StatusActive   TransactionStatus = "active"
	StatusIgnored  TransactionStatus = "ignored"  // Counts in the balance, hidden from statistics
	StatusInactive TransactionStatus = "inactive" // Never counts in the balance
)

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusIgnored, StatusInactive:
		return true
	}
	return false
}

// AffectsBalance reports whether a transaction with this status contributes to Account.Balance.
func (s TransactionStatus) AffectsBalance() bool {
	return s != StatusInactive
}

// PaymentMethod describes how a transaction was paid.
type PaymentMethod string

const (
	PaymentCreditCard       PaymentMethod = "credit_card"
	PaymentCash             PaymentMethod = "cash"
	PaymentTransfer         PaymentMethod = "transfer"
	PaymentTransferInternal PaymentMethod = "transfer_internal"
	PaymentCheck            PaymentMethod = "check"
)

// IsValid reports whether p is a known payment method.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCreditCard, PaymentCash, PaymentTransfer, PaymentTransferInternal, PaymentCheck:
		return true
	}
	return false
}

// Transaction is a dated, signed ledger entry against an account.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (UUID)
	AccountID     string            `json:"accountID"`     // FK -> accounts.account_id
	Label         string            `json:"label"`
	Date          time.Time         `json:"date"`
	Amount        decimal.Decimal   `json:"amount"`       // Signed, 2 decimals
	CurrencyCode  string            `json:"currencyCode"` // Always copied from the account
	Status        TransactionStatus `json:"status"`
	Reconciled    bool              `json:"reconciled"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Memo          string            `json:"memo"`
	TagID         *string           `json:"tagID"`     // Nullable, set to NULL when the tag is deleted
	Scheduled     bool              `json:"scheduled"` // Produced by a scheduler clone
	AuditFields
}

// BalanceContribution is the amount a transaction with the given amount and
// status adds to its account balance.
func BalanceContribution(amount decimal.Decimal, status TransactionStatus) decimal.Decimal {
	if !status.AffectsBalance() {
		return decimal.Zero
	}
	return amount
}

// Contribution is the amount this transaction currently adds to its account balance.
func (t *Transaction) Contribution() decimal.Decimal {
	return BalanceContribution(t.Amount, t.Status)
}

// BalanceCorrection returns the signed amount to add to the account balance
// when a transaction moves from (oldAmount, oldStatus) to (newAmount, newStatus).
// Inactive transactions contribute nothing at any time, so the correction is
// the difference of both contributions.
func BalanceCorrection(oldAmount decimal.Decimal, oldStatus TransactionStatus, newAmount decimal.Decimal, newStatus TransactionStatus) decimal.Decimal {
	return BalanceContribution(newAmount, newStatus).Sub(BalanceContribution(oldAmount, oldStatus))
}
