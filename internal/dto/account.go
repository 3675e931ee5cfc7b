package dto

import (
	"time"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Label          string          `json:"label" binding:"required,max=255"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,iso4217"`
	BalanceInitial decimal.Decimal `json:"balanceInitial" binding:"decimal2"`
	// Additional owners besides the creator.
	OwnerIDs []string `json:"ownerIDs" binding:"omitempty,dive,uuid"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Label *string `json:"label" binding:"omitempty,min=1,max=255"`
}

// SetInitialBalanceRequest changes the opening offset of an account.
type SetInitialBalanceRequest struct {
	BalanceInitial decimal.Decimal `json:"balanceInitial" binding:"decimal2"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string          `json:"accountID"`
	Label            string          `json:"label"`
	CurrencyCode     string          `json:"currencyCode"`
	Balance          decimal.Decimal `json:"balance"`
	BalanceInitial   decimal.Decimal `json:"balanceInitial"`
	BalanceFormatted string          `json:"balanceFormatted,omitempty"`
	OwnerIDs         []string        `json:"ownerIDs"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy    string          `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	owners := acc.OwnerIDs
	if owners == nil {
		owners = []string{}
	}
	return AccountResponse{
		AccountID:      acc.AccountID,
		Label:          acc.Label,
		CurrencyCode:   acc.CurrencyCode,
		Balance:        acc.Balance,
		BalanceInitial: acc.BalanceInitial,
		OwnerIDs:       owners,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
