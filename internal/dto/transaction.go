package dto

import (
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to create a transaction.
// The currency is never accepted; it is copied from the account.
type CreateTransactionRequest struct {
	Label         string          `json:"label" binding:"required,max=255"`
	Date          time.Time       `json:"date" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal2"`
	Status        string          `json:"status" binding:"omitempty,oneof=active ignored inactive"`
	Reconciled    bool            `json:"reconciled"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=credit_card cash transfer transfer_internal check"`
	Memo          string          `json:"memo"`
	TagID         *string         `json:"tagID" binding:"omitempty,uuid"`
}

// UpdateTransactionRequest defines the data allowed for updating a transaction.
// Nil fields are left untouched. ClearTag removes the tag.
type UpdateTransactionRequest struct {
	Label         *string          `json:"label" binding:"omitempty,min=1,max=255"`
	Date          *time.Time       `json:"date"`
	Amount        *decimal.Decimal `json:"amount" binding:"omitempty,decimal2"`
	Status        *string          `json:"status" binding:"omitempty,oneof=active ignored inactive"`
	Reconciled    *bool            `json:"reconciled"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,oneof=credit_card cash transfer transfer_internal check"`
	Memo          *string          `json:"memo"`
	TagID         *string          `json:"tagID" binding:"omitempty,uuid"`
	ClearTag      bool             `json:"clearTag"`
}

// BulkTransactionsRequest selects transactions for a bulk action.
type BulkTransactionsRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1,max=500,dive,uuid"`
}

// BulkReconcileRequest flips the reconciled flag of several transactions.
type BulkReconcileRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1,max=500,dive,uuid"`
	Reconciled     bool     `json:"reconciled"`
}

// BulkActionResponse reports how many rows a bulk action touched.
type BulkActionResponse struct {
	Affected int `json:"affected"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	AccountID       string          `json:"accountID"`
	Label           string          `json:"label"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	AmountFormatted string          `json:"amountFormatted,omitempty"`
	CurrencyCode    string          `json:"currencyCode"`
	Status          string          `json:"status"`
	Reconciled      bool            `json:"reconciled"`
	PaymentMethod   string          `json:"paymentMethod"`
	Memo            string          `json:"memo"`
	TagID           *string         `json:"tagID"`
	Scheduled       bool            `json:"scheduled"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy   string          `json:"lastUpdatedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Label:         txn.Label,
		Date:          txn.Date,
		Amount:        txn.Amount,
		CurrencyCode:  txn.CurrencyCode,
		Status:        string(txn.Status),
		Reconciled:    txn.Reconciled,
		PaymentMethod: string(txn.PaymentMethod),
		Memo:          txn.Memo,
		TagID:         txn.TagID,
		Scheduled:     txn.Scheduled,
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
		LastUpdatedAt: txn.LastUpdatedAt,
		LastUpdatedBy: txn.LastUpdatedBy,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ListTransactionsParams defines query parameters for listing an account's transactions.
// Granularity and Date select a calendar window (week or month) instead of From/To.
type ListTransactionsParams struct {
	Limit       int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken   *string    `form:"nextToken"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Granularity string     `form:"granularity" binding:"omitempty,oneof=week month"`
	Date        *time.Time `form:"date" time_format:"2006-01-02"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
