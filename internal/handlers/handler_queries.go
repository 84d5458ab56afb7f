package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/SscSPs/account_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const defaultHeartbeatInterval = 15 * time.Second

// queryHandler serves the analytics read model.
type queryHandler struct {
	queries   portssvc.AnalyticsQuerySvc
	heartbeat time.Duration
}

// newQueryHandler creates a new queryHandler.
func newQueryHandler(queries portssvc.AnalyticsQuerySvc, heartbeat time.Duration) *queryHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}
	return &queryHandler{
		queries:   queries,
		heartbeat: heartbeat,
	}
}

// registerQueryRoutes registers routes related to account analytics.
func registerQueryRoutes(rg *gin.RouterGroup, queries portssvc.AnalyticsQuerySvc, heartbeat time.Duration) {
	h := newQueryHandler(queries, heartbeat)

	accounts := rg.Group("/queries/accounts")
	{
		accounts.GET("", h.listAnalytics)
		accounts.GET("/:accountID", h.getAnalytics)
		accounts.GET("/:accountID/subscribe", h.subscribeAnalytics)
	}
}

// listAnalytics godoc
// @Summary List account analytics
// @Description Returns the analytics record of every account
// @Tags queries
// @Produce  json
// @Success 200 {array} dto.AnalyticsResponse
// @Failure 503 {object} dto.ErrorResponse "Store unavailable"
// @Router /queries/accounts [get]
func (h *queryHandler) listAnalytics(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	records, err := h.queries.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list account analytics")
		return
	}

	c.JSON(http.StatusOK, dto.ToListAnalyticsResponse(records))
}

// getAnalytics godoc
// @Summary Get the analytics of an account
// @Description Returns balance, totals and counters of one account as last projected
// @Tags queries
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 404 {object} dto.ErrorResponse "No analytics for account"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable"
// @Router /queries/accounts/{accountID} [get]
func (h *queryHandler) getAnalytics(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("account_id", accountID))

	record, err := h.queries.GetByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to get account analytics")
		return
	}
	if record == nil {
		logger.Warn("Account analytics not found")
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Account analytics not found"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalyticsResponse(*record))
}

// subscribeAnalytics godoc
// @Summary Stream analytics updates of an account
// @Description Server-sent events: a "snapshot" event with the current record when one exists,
// @Description then an "update" event after every credit or debit. Comment lines keep the connection alive.
// @Tags queries
// @Produce  text/event-stream
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid account id"
// @Router /queries/accounts/{accountID}/subscribe [get]
func (h *queryHandler) subscribeAnalytics(c *gin.Context) {
	accountID := c.Param("accountID")
	logger := middleware.GetLoggerFromContext(c).With(slog.String("account_id", accountID))
	ctx := c.Request.Context()

	sub, initial, err := h.queries.SubscribeByID(ctx, accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to subscribe to account analytics")
		return
	}
	defer sub.Close()

	logger.Info("Subscriber connected", slog.String("subscription_id", sub.ID()))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if initial != nil {
		c.SSEvent("snapshot", dto.ToAnalyticsResponse(*initial))
	} else {
		_, _ = io.WriteString(c.Writer, ": waiting for account\n\n")
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case rec, ok := <-sub.Updates():
			if !ok {
				return false
			}
			c.SSEvent("update", dto.ToAnalyticsResponse(rec))
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": heartbeat\n\n")
			return true
		case <-ctx.Done():
			return false
		}
	})

	logger.Info("Subscriber disconnected", slog.String("subscription_id", sub.ID()))
}
