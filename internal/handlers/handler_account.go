package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/SscSPs/account_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler serves the write-side view of accounts, rebuilt from their events.
type accountHandler struct {
	loader portssvc.AccountLoaderSvc
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(loader portssvc.AccountLoaderSvc) *accountHandler {
	return &accountHandler{
		loader: loader,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, loader portssvc.AccountLoaderSvc) {
	h := newAccountHandler(loader)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/events", h.listEvents)
	}
}

// getAccount godoc
// @Summary Get the current state of an account
// @Description Replays the account's events and returns the resulting state
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountStateResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to load account"
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("account_id", accountID))

	state, err := h.loader.LoadAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to load account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountStateResponse(state))
}

// listEvents godoc
// @Summary List the events of an account
// @Description Returns the account's event stream in append order
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {array} dto.EventResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to read account history"
// @Router /accounts/{accountID}/events [get]
func (h *accountHandler) listEvents(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("account_id", accountID))

	history, err := h.loader.History(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to read account history")
		return
	}

	c.JSON(http.StatusOK, dto.ToEventResponses(history))
}
