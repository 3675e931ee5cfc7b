package mapping

import (
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		Label:          d.Label,
		CurrencyCode:   d.CurrencyCode,
		Balance:        d.Balance,
		BalanceInitial: d.BalanceInitial,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
// Owners live in a separate table and are attached by the repository.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		Label:          m.Label,
		CurrencyCode:   m.CurrencyCode,
		Balance:        m.Balance,
		BalanceInitial: m.BalanceInitial,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
