package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/mymoney_app/internal/core/domain"
	portssvc "github.com/SscSPs/mymoney_app/internal/core/ports/services"
	"github.com/SscSPs/mymoney_app/internal/dto"
	"github.com/SscSPs/mymoney_app/internal/middleware"
	"github.com/SscSPs/mymoney_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	locale         string
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, locale string) *accountHandler {
	return &accountHandler{
		accountService: as,
		locale:         locale,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, locale string) {
	h := newAccountHandler(accountService, locale)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/:id", h.getAccount)
		accounts.GET("", h.listAccounts)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deleteAccount)
		accounts.PUT("/:id/initial-balance", h.setInitialBalance)
	}
}

func (h *accountHandler) toResponse(c *gin.Context, acc *domain.Account) dto.AccountResponse {
	resp := dto.ToAccountResponse(acc)
	formatted, err := utils.FormatAmount(acc.Balance, acc.CurrencyCode, h.locale)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to format balance",
			slog.String("account_id", acc.AccountID), slog.String("error", err.Error()))
		return resp
	}
	resp.BalanceFormatted = formatted
	return resp
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates a new account owned by the logged-in user. The balance starts at the initial balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to create account", slog.String("label", req.Label), slog.String("currency_code", req.CurrencyCode))

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", acc.AccountID))
	c.JSON(http.StatusCreated, h.toResponse(c, acc))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves an account the logged-in user owns
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, acc))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the accounts the logged-in user owns
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if !bindQuery(c, &params) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	resp := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = h.toResponse(c, &accounts[i])
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: resp})
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates the label of an account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	acc, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, acc))
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Deletes an account together with its transactions and schedulers
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to delete account"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	accountID := c.Param("id")
	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID, userID); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account deleted", slog.String("account_id", accountID))
	c.Status(http.StatusNoContent)
}

// setInitialBalance godoc
// @Summary Change the initial balance
// @Description Replaces the opening offset of an account. The balance moves by the difference.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   balance body dto.SetInitialBalanceRequest true "New initial balance"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to set initial balance"
// @Security BearerAuth
// @Router /accounts/{id}/initial-balance [put]
func (h *accountHandler) setInitialBalance(c *gin.Context) {
	var req dto.SetInitialBalanceRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	acc, err := h.accountService.SetInitialBalance(c.Request.Context(), c.Param("id"), req.BalanceInitial, userID)
	if err != nil {
		respondError(c, err, "Failed to set initial balance")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, acc))
}
