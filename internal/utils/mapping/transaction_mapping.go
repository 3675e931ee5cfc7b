package mapping

import (
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		Label:         d.Label,
		Date:          d.Date,
		Amount:        d.Amount,
		CurrencyCode:  d.CurrencyCode,
		Status:        string(d.Status),
		Reconciled:    d.Reconciled,
		PaymentMethod: string(d.PaymentMethod),
		Memo:          d.Memo,
		TagID:         toNullString(d.TagID),
		Scheduled:     d.Scheduled,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Label:         m.Label,
		Date:          m.Date,
		Amount:        m.Amount,
		CurrencyCode:  m.CurrencyCode,
		Status:        domain.TransactionStatus(m.Status),
		Reconciled:    m.Reconciled,
		PaymentMethod: domain.PaymentMethod(m.PaymentMethod),
		Memo:          m.Memo,
		TagID:         fromNullString(m.TagID),
		Scheduled:     m.Scheduled,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
