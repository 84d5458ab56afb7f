package dto

import (
	"time"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	InitialBalance *decimal.Decimal `json:"initialBalance" binding:"required" swaggertype:"string" example:"100.00"`
	Currency       string           `json:"currency" binding:"required" example:"USD"`
}

// MoneyRequest is the body of credit and debit commands.
type MoneyRequest struct {
	Amount   *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"25.50"`
	Currency string           `json:"currency" binding:"required" example:"USD"`
}

// CommandResponse identifies the event a command appended.
type CommandResponse struct {
	AccountID string `json:"accountId"`
	EventID   string `json:"eventId"`
	Version   int64  `json:"version"`
}

// ToCommandResponse converts a domain.DispatchResult to CommandResponse DTO
func ToCommandResponse(res *domain.DispatchResult) CommandResponse {
	return CommandResponse{
		AccountID: res.AccountID,
		EventID:   res.EventID,
		Version:   res.Version,
	}
}

// AccountStateResponse is the write-side state of an account, rebuilt from its events.
type AccountStateResponse struct {
	AccountID string               `json:"accountId"`
	Balance   decimal.Decimal      `json:"balance" swaggertype:"string"`
	Currency  string               `json:"currency"`
	Status    domain.AccountStatus `json:"status"`
	Version   int64                `json:"version"`
}

// ToAccountStateResponse converts a domain.AccountState to AccountStateResponse DTO
func ToAccountStateResponse(state *domain.AccountState) AccountStateResponse {
	return AccountStateResponse{
		AccountID: state.ID,
		Balance:   state.Balance,
		Currency:  state.Currency,
		Status:    state.Status,
		Version:   state.Version,
	}
}

// EventResponse is one entry of an account's history.
type EventResponse struct {
	EventID    string           `json:"eventId"`
	Version    int64            `json:"version"`
	Position   int64            `json:"position"`
	Type       domain.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurredAt"`
	Payload    any              `json:"payload"`
}

// ToEventResponses converts stored events to EventResponse DTOs, keeping their order
func ToEventResponses(events []domain.StoredEvent) []EventResponse {
	res := make([]EventResponse, len(events))
	for i, evt := range events {
		res[i] = EventResponse{
			EventID:    evt.EventID,
			Version:    evt.Version,
			Position:   evt.Position,
			Type:       evt.Type,
			OccurredAt: evt.OccurredAt,
			Payload:    evt.Event,
		}
	}
	return res
}

// AnalyticsResponse defines the read model returned for an account.
// Mirrors domain.AccountAnalytics.
type AnalyticsResponse struct {
	AccountID            string          `json:"accountId"`
	Currency             string          `json:"currency"`
	Balance              decimal.Decimal `json:"balance" swaggertype:"string"`
	TotalCredit          decimal.Decimal `json:"totalCredit" swaggertype:"string"`
	TotalDebit           decimal.Decimal `json:"totalDebit" swaggertype:"string"`
	TotalNumberOfCredits int64           `json:"totalNumberOfCredits"`
	TotalNumberOfDebits  int64           `json:"totalNumberOfDebits"`
	LastEventVersion     int64           `json:"lastEventVersion"`
	CreatedAt            time.Time       `json:"createdAt"`
	LastUpdatedAt        time.Time       `json:"lastUpdatedAt"`
}

// ToAnalyticsResponse converts a domain.AccountAnalytics to AnalyticsResponse DTO
func ToAnalyticsResponse(rec domain.AccountAnalytics) AnalyticsResponse {
	return AnalyticsResponse{
		AccountID:            rec.AccountID,
		Currency:             rec.Currency,
		Balance:              rec.Balance,
		TotalCredit:          rec.TotalCredit,
		TotalDebit:           rec.TotalDebit,
		TotalNumberOfCredits: rec.TotalNumberOfCredits,
		TotalNumberOfDebits:  rec.TotalNumberOfDebits,
		LastEventVersion:     rec.LastEventVersion,
		CreatedAt:            rec.CreatedAt,
		LastUpdatedAt:        rec.LastUpdatedAt,
	}
}

// ToListAnalyticsResponse converts a slice of domain.AccountAnalytics to AnalyticsResponse DTOs
func ToListAnalyticsResponse(records []domain.AccountAnalytics) []AnalyticsResponse {
	res := make([]AnalyticsResponse, len(records))
	for i, rec := range records {
		res[i] = ToAnalyticsResponse(rec)
	}
	return res
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
