package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/SscSPs/account_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// commandHandler handles HTTP requests that change accounts.
type commandHandler struct {
	commands portssvc.AccountCommandSvc
}

// newCommandHandler creates a new commandHandler.
func newCommandHandler(commands portssvc.AccountCommandSvc) *commandHandler {
	return &commandHandler{
		commands: commands,
	}
}

// registerCommandRoutes registers routes related to account commands.
func registerCommandRoutes(rg *gin.RouterGroup, commands portssvc.AccountCommandSvc, mw ...gin.HandlerFunc) {
	h := newCommandHandler(commands)

	accounts := rg.Group("/commands/accounts", mw...)
	{
		accounts.POST("", h.createAccount)
		accounts.POST("/:accountID/credit", h.creditAccount)
		accounts.POST("/:accountID/debit", h.debitAccount)
	}
}

// createAccount godoc
// @Summary Open a new account
// @Description Appends an AccountCreated event for a newly generated account id
// @Tags commands
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Initial balance and currency"
// @Success 201 {object} dto.CommandResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 429 {object} dto.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Router /commands/accounts [post]
func (h *commandHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to create account",
		slog.String("initial_balance", req.InitialBalance.String()),
		slog.String("currency", req.Currency))

	res, err := h.commands.CreateAccount(c.Request.Context(), *req.InitialBalance, req.Currency)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", res.AccountID))
	c.JSON(http.StatusCreated, dto.ToCommandResponse(res))
}

// creditAccount godoc
// @Summary Credit an account
// @Description Adds money to an existing account
// @Tags commands
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   credit body dto.MoneyRequest true "Amount and currency"
// @Success 200 {object} dto.CommandResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent modification"
// @Failure 422 {object} dto.ErrorResponse "Currency mismatch"
// @Failure 504 {object} dto.ErrorResponse "Command timed out"
// @Router /commands/accounts/{accountID}/credit [post]
func (h *commandHandler) creditAccount(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("account_id", accountID))

	var req dto.MoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreditAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	res, err := h.commands.CreditAccount(c.Request.Context(), accountID, *req.Amount, req.Currency)
	if err != nil {
		respondError(c, logger, err, "Failed to credit account")
		return
	}

	logger.Info("Account credited", slog.Int64("version", res.Version))
	c.JSON(http.StatusOK, dto.ToCommandResponse(res))
}

// debitAccount godoc
// @Summary Debit an account
// @Description Takes money from an existing account; the balance never goes below zero
// @Tags commands
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   debit body dto.MoneyRequest true "Amount and currency"
// @Success 200 {object} dto.CommandResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Concurrent modification"
// @Failure 422 {object} dto.ErrorResponse "Insufficient balance or currency mismatch"
// @Failure 504 {object} dto.ErrorResponse "Command timed out"
// @Router /commands/accounts/{accountID}/debit [post]
func (h *commandHandler) debitAccount(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("account_id", accountID))

	var req dto.MoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for DebitAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	res, err := h.commands.DebitAccount(c.Request.Context(), accountID, *req.Amount, req.Currency)
	if err != nil {
		respondError(c, logger, err, "Failed to debit account")
		return
	}

	logger.Info("Account debited", slog.Int64("version", res.Version))
	c.JSON(http.StatusOK, dto.ToCommandResponse(res))
}
