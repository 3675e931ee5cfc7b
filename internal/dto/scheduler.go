package dto

import (
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSchedulerRequest defines the data needed to create a scheduler.
// State and last action are not accepted: a new scheduler always starts waiting.
type CreateSchedulerRequest struct {
	Label         string          `json:"label" binding:"required,max=255"`
	Date          time.Time       `json:"date" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal2"`
	Status        string          `json:"status" binding:"omitempty,oneof=active ignored inactive"`
	Reconciled    bool            `json:"reconciled"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=credit_card cash transfer transfer_internal check"`
	Memo          string          `json:"memo"`
	TagID         *string         `json:"tagID" binding:"omitempty,uuid"`
	Type          string          `json:"type" binding:"required,oneof=monthly weekly"`
	Recurrence    *int            `json:"recurrence" binding:"omitempty,min=1"`
}

// UpdateSchedulerRequest defines the data allowed for updating a scheduler.
type UpdateSchedulerRequest struct {
	Label         *string          `json:"label" binding:"omitempty,min=1,max=255"`
	Date          *time.Time       `json:"date"`
	Amount        *decimal.Decimal `json:"amount" binding:"omitempty,decimal2"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active ignored inactive"`
	Reconciled    *bool            `json:"reconciled"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,oneof=credit_card cash transfer transfer_internal check"`
	Memo          *string          `json:"memo"`
	TagID         *string          `json:"tagID" binding:"omitempty,uuid"`
	ClearTag      bool             `json:"clearTag"`
	Type          *string          `json:"type" binding:"omitempty,oneof=monthly weekly"`
	Recurrence    *int             `json:"recurrence" binding:"omitempty,min=1"`
	// Infinite drops the recurrence limit.
	Infinite bool `json:"infinite"`
}

// SchedulerResponse defines the data returned for a scheduler.
type SchedulerResponse struct {
	SchedulerID   string          `json:"schedulerID"`
	AccountID     string          `json:"accountID"`
	Label         string          `json:"label"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Status        string          `json:"status"`
	Reconciled    bool            `json:"reconciled"`
	PaymentMethod string          `json:"paymentMethod"`
	Memo          string          `json:"memo"`
	TagID         *string         `json:"tagID"`
	Type          string          `json:"type"`
	Recurrence    *int            `json:"recurrence"`
	LastAction    *time.Time      `json:"lastAction"`
	State         string          `json:"state"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ToSchedulerResponse converts a domain.Scheduler to SchedulerResponse DTO.
func ToSchedulerResponse(s *domain.Scheduler) SchedulerResponse {
	return SchedulerResponse{
		SchedulerID:   s.SchedulerID,
		AccountID:     s.AccountID,
		Label:         s.Label,
		Date:          s.Date,
		Amount:        s.Amount,
		CurrencyCode:  s.CurrencyCode,
		Status:        string(s.Status),
		Reconciled:    s.Reconciled,
		PaymentMethod: string(s.PaymentMethod),
		Memo:          s.Memo,
		TagID:         s.TagID,
		Type:          string(s.Type),
		Recurrence:    s.Recurrence,
		LastAction:    s.LastAction,
		State:         string(s.State),
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
		LastUpdatedAt: s.LastUpdatedAt,
		LastUpdatedBy: s.LastUpdatedBy,
	}
}

// ToSchedulerResponses converts a slice of domain.Scheduler to []SchedulerResponse.
func ToSchedulerResponses(ss []domain.Scheduler) []SchedulerResponse {
	res := make([]SchedulerResponse, len(ss))
	for i := range ss {
		res[i] = ToSchedulerResponse(&ss[i])
	}
	return res
}

// ListSchedulersParams defines query parameters for listing schedulers.
type ListSchedulersParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// ListSchedulersResponse wraps the list of schedulers.
type ListSchedulersResponse struct {
	Schedulers []SchedulerResponse `json:"schedulers"`
}

// CloneResponse reports what a manual clone did.
type CloneResponse struct {
	SchedulerID string               `json:"schedulerID"`
	Outcome     string               `json:"outcome"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// ToCloneResponse converts a domain.CloneResult to CloneResponse DTO.
func ToCloneResponse(res domain.CloneResult) CloneResponse {
	out := CloneResponse{SchedulerID: res.SchedulerID, Outcome: string(res.Outcome)}
	if res.Transaction != nil {
		t := ToTransactionResponse(res.Transaction)
		out.Transaction = &t
	}
	return out
}

// SchedulerSummariesResponse lists the per-type summaries of an account.
type SchedulerSummariesResponse struct {
	Summaries []domain.SchedulerSummary `json:"summaries"`
}
