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

type transactionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	locale        string
}

func newTransactionHandler(ls portssvc.LedgerSvcFacade, locale string) *transactionHandler {
	return &transactionHandler{ledgerService: ls, locale: locale}
}

// registerTransactionRoutes registers the account-scoped and the direct transaction routes.
func registerTransactionRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, locale string) {
	h := newTransactionHandler(ledgerService, locale)

	rg.POST("/accounts/:id/transactions", h.createTransaction)
	rg.GET("/accounts/:id/transactions", h.listTransactions)

	txns := rg.Group("/transactions")
	{
		txns.GET("/:transactionID", h.getTransaction)
		txns.PUT("/:transactionID", h.updateTransaction)
		txns.DELETE("/:transactionID", h.deleteTransaction)
		txns.POST("/bulk-delete", h.bulkDelete)
		txns.POST("/bulk-reconcile", h.bulkReconcile)
	}
}

func (h *transactionHandler) toResponse(c *gin.Context, txn *domain.Transaction) dto.TransactionResponse {
	resp := dto.ToTransactionResponse(txn)
	resp.AmountFormatted = h.format(c, resp)
	return resp
}

func (h *transactionHandler) format(c *gin.Context, resp dto.TransactionResponse) string {
	formatted, err := utils.FormatAmount(resp.Amount, resp.CurrencyCode, h.locale)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to format amount",
			slog.String("transaction_id", resp.TransactionID), slog.String("error", err.Error()))
		return ""
	}
	return formatted
}

// createTransaction godoc
// @Summary Create a transaction
// @Description Records a transaction on an account and adds its amount to the balance unless it is inactive
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to create transaction"
// @Security BearerAuth
// @Router /accounts/{id}/transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	txn, err := h.ledgerService.CreateTransaction(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create transaction")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID), slog.String("account_id", txn.AccountID))
	c.JSON(http.StatusCreated, h.toResponse(c, txn))
}

// listTransactions godoc
// @Summary List an account's transactions
// @Description Lists transactions newest first. Use granularity and date for a calendar window, or from and to for a range.
// @Tags transactions
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   from query string false "First day (YYYY-MM-DD)"
// @Param   to query string false "Last day (YYYY-MM-DD)"
// @Param   granularity query string false "Calendar window" Enums(week, month)
// @Param   date query string false "Day inside the window (YYYY-MM-DD)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to list transactions"
// @Security BearerAuth
// @Router /accounts/{id}/transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if !bindQuery(c, &params) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := h.ledgerService.ListTransactionsByAccount(c.Request.Context(), c.Param("id"), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	for i := range resp.Transactions {
		resp.Transactions[i].AmountFormatted = h.format(c, resp.Transactions[i])
	}
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	txn, err := h.ledgerService.GetTransactionByID(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, txn))
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Updates the provided fields and corrects the account balance
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Failed to update transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	var req dto.UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	txn, err := h.ledgerService.UpdateTransaction(c.Request.Context(), c.Param("transactionID"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, txn))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Deletes a transaction and removes its amount from the account balance
// @Tags transactions
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Failed to delete transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteTransaction(c.Request.Context(), c.Param("transactionID"), userID); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// bulkDelete godoc
// @Summary Delete several transactions
// @Description Deletes the selected transactions in one unit, across accounts. Nothing is deleted if one is missing.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   selection body dto.BulkTransactionsRequest true "Transactions to delete"
// @Success 200 {object} dto.BulkActionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Failed to delete transactions"
// @Security BearerAuth
// @Router /transactions/bulk-delete [post]
func (h *transactionHandler) bulkDelete(c *gin.Context) {
	var req dto.BulkTransactionsRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := h.ledgerService.BulkDeleteTransactions(c.Request.Context(), req.TransactionIDs, userID)
	if err != nil {
		respondError(c, err, "Failed to delete transactions")
		return
	}
	c.JSON(http.StatusOK, dto.BulkActionResponse{Affected: n})
}

// bulkReconcile godoc
// @Summary Reconcile several transactions
// @Description Sets the reconciled flag of the selected transactions. Balances do not change.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   selection body dto.BulkReconcileRequest true "Transactions and flag"
// @Success 200 {object} dto.BulkActionResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse "Failed to reconcile transactions"
// @Security BearerAuth
// @Router /transactions/bulk-reconcile [post]
func (h *transactionHandler) bulkReconcile(c *gin.Context) {
	var req dto.BulkReconcileRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := h.ledgerService.BulkReconcileTransactions(c.Request.Context(), req.TransactionIDs, req.Reconciled, userID)
	if err != nil {
		respondError(c, err, "Failed to reconcile transactions")
		return
	}
	c.JSON(http.StatusOK, dto.BulkActionResponse{Affected: n})
}
