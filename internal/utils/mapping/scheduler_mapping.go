package mapping

import (
	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/SscSPs/mymoney_app/internal/models"
)

// ToModelScheduler converts a domain Scheduler to a model Scheduler
func ToModelScheduler(d domain.Scheduler) models.Scheduler {
	return models.Scheduler{
		SchedulerID:   d.SchedulerID,
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
		Type:          string(d.Type),
		Recurrence:    toNullInt32(d.Recurrence),
		LastAction:    toNullTime(d.LastAction),
		State:         string(d.State),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainScheduler converts a model Scheduler to a domain Scheduler
func ToDomainScheduler(m models.Scheduler) domain.Scheduler {
	return domain.Scheduler{
		SchedulerID:   m.SchedulerID,
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
		Type:          domain.SchedulerType(m.Type),
		Recurrence:    fromNullInt32(m.Recurrence),
		LastAction:    fromNullTime(m.LastAction),
		State:         domain.SchedulerState(m.State),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
