// Package accounting holds the balance arithmetic shared by the ledger service and its checks.
package accounting

import (
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceRemovals returns, per account, the amount to add to the balance when
// the given transactions are deleted. Accounts whose net change is zero, for
// example because every row is inactive, are left out.
func BalanceRemovals(transactions []domain.Transaction) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal)
	for i := range transactions {
		txn := &transactions[i]
		changes[txn.AccountID] = changes[txn.AccountID].Sub(txn.Contribution())
	}
	for accountID, delta := range changes {
		if delta.IsZero() {
			delete(changes, accountID)
		}
	}
	return changes
}

// ExpectedBalance recomputes an account balance from scratch: the initial
// offset plus the amount of every transaction that is not inactive.
func ExpectedBalance(balanceInitial decimal.Decimal, transactions []domain.Transaction) decimal.Decimal {
	total := balanceInitial
	for i := range transactions {
		total = total.Add(transactions[i].Contribution())
	}
	return total
}

// SplitCreditDebit sums positive and negative amounts separately.
func SplitCreditDebit(amounts []decimal.Decimal) (credit, debit decimal.Decimal) {
	for _, a := range amounts {
		if a.IsPositive() {
			credit = credit.Add(a)
		} else {
			debit = debit.Add(a)
		}
	}
	return credit, debit
}
