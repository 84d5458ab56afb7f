package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/dto"
	"github.com/SscSPs/account_ledger/internal/handlers"
	"github.com/SscSPs/account_ledger/internal/platform/config"
	"github.com/SscSPs/account_ledger/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock command service ---
type MockCommandService struct {
	mock.Mock
}

func (m *MockCommandService) Dispatch(ctx context.Context, cmd domain.Command) (*domain.DispatchResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DispatchResult), args.Error(1)
}

func (m *MockCommandService) CreateAccount(ctx context.Context, initialBalance decimal.Decimal, currency string) (*domain.DispatchResult, error) {
	args := m.Called(ctx, initialBalance, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DispatchResult), args.Error(1)
}

func (m *MockCommandService) CreditAccount(ctx context.Context, accountID string, amount decimal.Decimal, currency string) (*domain.DispatchResult, error) {
	args := m.Called(ctx, accountID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DispatchResult), args.Error(1)
}

func (m *MockCommandService) DebitAccount(ctx context.Context, accountID string, amount decimal.Decimal, currency string) (*domain.DispatchResult, error) {
	args := m.Called(ctx, accountID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DispatchResult), args.Error(1)
}

func (m *MockCommandService) LoadAccount(ctx context.Context, accountID string) (*domain.AccountState, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountState), args.Error(1)
}

func (m *MockCommandService) History(ctx context.Context, accountID string) ([]domain.StoredEvent, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredEvent), args.Error(1)
}

// --- Mock query service ---
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) GetAll(ctx context.Context) ([]domain.AccountAnalytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountAnalytics), args.Error(1)
}

func (m *MockQueryService) GetByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountAnalytics), args.Error(1)
}

func (m *MockQueryService) SubscribeByID(ctx context.Context, accountID string) (*realtime.Subscription, *domain.AccountAnalytics, error) {
	args := m.Called(ctx, accountID)
	var sub *realtime.Subscription
	if s := args.Get(0); s != nil {
		sub = s.(*realtime.Subscription)
	}
	var rec *domain.AccountAnalytics
	if r := args.Get(1); r != nil {
		rec = r.(*domain.AccountAnalytics)
	}
	return sub, rec, args.Error(2)
}

// --- Test Suite Setup ---

type HandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	commands *MockCommandService
	queries  *MockQueryService
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConfig() *config.Config {
	return &config.Config{
		IsProduction:      true,
		RateLimit:         "1000-M",
		HeartbeatInterval: time.Second,
	}
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.commands = new(MockCommandService)
	suite.queries = new(MockQueryService)

	suite.router = gin.New()
	err := handlers.RegisterRoutes(suite.router, testConfig(), &portssvc.ServiceContainer{
		Commands: suite.commands,
		Queries:  suite.queries,
	})
	suite.Require().NoError(err)
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.commands.AssertExpectations(suite.T())
	suite.queries.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) errorBody(w *httptest.ResponseRecorder) string {
	var body dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestCreateAccount() {
	suite.commands.On("CreateAccount", mock.Anything, dec("100.50"), "USD").
		Return(&domain.DispatchResult{AccountID: "acc-1", EventID: "evt-1", Version: 1}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/commands/accounts", `{"initialBalance":"100.50","currency":"USD"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var res dto.CommandResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal(dto.CommandResponse{AccountID: "acc-1", EventID: "evt-1", Version: 1}, res)
	suite.NotEmpty(w.Header().Get("X-RateLimit-Limit"))
}

func (suite *HandlerTestSuite) TestCreateAccountAcceptsNumericBalance() {
	suite.commands.On("CreateAccount", mock.Anything, dec("0"), "EUR").
		Return(&domain.DispatchResult{AccountID: "acc-2", EventID: "evt-2", Version: 1}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/commands/accounts", `{"initialBalance":0,"currency":"EUR"}`)
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestCreateAccountInvalidBody() {
	for _, body := range []string{
		`{"currency":"USD"}`,
		`{"initialBalance":"10"}`,
		`{"initialBalance":"ten","currency":"USD"}`,
		`not json`,
	} {
		w := suite.do(http.MethodPost, "/api/v1/commands/accounts", body)
		suite.Equal(http.StatusBadRequest, w.Code, body)
	}
	suite.commands.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCommandsPassCurrencyThrough() {
	suite.commands.On("CreateAccount", mock.Anything, dec("10"), "usd").
		Return(&domain.DispatchResult{AccountID: "acc-3", EventID: "evt-3", Version: 1}, nil).Once()
	suite.commands.On("DebitAccount", mock.Anything, "acc-3", dec("1"), "points").
		Return(&domain.DispatchResult{AccountID: "acc-3", EventID: "evt-4", Version: 2}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/commands/accounts", `{"initialBalance":"10","currency":"usd"}`)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodPost, "/api/v1/commands/accounts/acc-3/debit", `{"amount":"1","currency":"points"}`)
	suite.Equal(http.StatusOK, w.Code)
	suite.commands.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreditAccount() {
	suite.commands.On("CreditAccount", mock.Anything, "acc-1", dec("25.5"), "USD").
		Return(&domain.DispatchResult{AccountID: "acc-1", EventID: "evt-2", Version: 2}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/commands/accounts/acc-1/credit", `{"amount":"25.5","currency":"USD"}`)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"version":2`)
}

func (suite *HandlerTestSuite) TestCommandErrorsMapToStatus() {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: apperrors.ErrValidation, status: http.StatusBadRequest},
		{name: "not found", err: apperrors.ErrNotFound, status: http.StatusNotFound},
		{name: "duplicate", err: apperrors.ErrDuplicate, status: http.StatusConflict},
		{name: "conflict", err: apperrors.ErrConcurrencyConflict, status: http.StatusConflict},
		{name: "insufficient balance", err: apperrors.ErrInsufficientBalance, status: http.StatusUnprocessableEntity},
		{name: "currency mismatch", err: apperrors.ErrCurrencyMismatch, status: http.StatusUnprocessableEntity},
		{name: "timeout", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{name: "store", err: apperrors.NewStoreError("failed to append", errors.New("boom")), status: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.commands.On("DebitAccount", mock.Anything, "acc-1", dec("5"), "USD").Return(nil, tt.err).Once()

			w := suite.do(http.MethodPost, "/api/v1/commands/accounts/acc-1/debit", `{"amount":"5","currency":"USD"}`)

			suite.Equal(tt.status, w.Code)
			if tt.status >= http.StatusInternalServerError {
				suite.Equal("Failed to debit account", suite.errorBody(w))
			} else {
				suite.Contains(suite.errorBody(w), tt.err.Error())
			}
		})
	}
}

func (suite *HandlerTestSuite) TestGetAccountState() {
	suite.commands.On("LoadAccount", mock.Anything, "acc-1").Return(&domain.AccountState{
		ID: "acc-1", Balance: dec("120"), Currency: "USD", Status: domain.StatusCreated, Version: 3,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1", "")

	suite.Equal(http.StatusOK, w.Code)
	var res dto.AccountStateResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("acc-1", res.AccountID)
	suite.True(dec("120").Equal(res.Balance))
	suite.Equal(int64(3), res.Version)
}

func (suite *HandlerTestSuite) TestGetAccountStateNotFound() {
	suite.commands.On("LoadAccount", mock.Anything, "nope").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/nope", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListAccountEvents() {
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	suite.commands.On("History", mock.Anything, "acc-1").Return([]domain.StoredEvent{
		{EventID: "e1", AggregateID: "acc-1", Version: 1, Position: 7, Type: domain.EventTypeAccountCreated, OccurredAt: at,
			Event: domain.AccountCreated{AccountID: "acc-1", InitialBalance: dec("10"), Currency: "USD", Status: domain.StatusCreated}},
		{EventID: "e2", AggregateID: "acc-1", Version: 2, Position: 9, Type: domain.EventTypeAccountDebited, OccurredAt: at,
			Event: domain.AccountDebited{AccountID: "acc-1", Amount: dec("4"), Currency: "USD"}},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/acc-1/events", "")

	suite.Equal(http.StatusOK, w.Code)
	var res []map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Require().Len(res, 2)
	suite.Equal("account.created", res[0]["type"])
	suite.Equal("account.debited", res[1]["type"])
	suite.Equal("4", res[1]["payload"].(map[string]any)["amount"])
}

func (suite *HandlerTestSuite) TestGetAnalytics() {
	suite.queries.On("GetByID", mock.Anything, "acc-1").Return(&domain.AccountAnalytics{
		AccountID: "acc-1", Balance: dec("120"), TotalCredit: dec("50"), TotalDebit: dec("30"),
		TotalNumberOfCredits: 1, TotalNumberOfDebits: 1, LastEventVersion: 3,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/queries/accounts/acc-1", "")

	suite.Equal(http.StatusOK, w.Code)
	var res dto.AnalyticsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.True(dec("120").Equal(res.Balance))
	suite.Equal(int64(1), res.TotalNumberOfCredits)
}

func (suite *HandlerTestSuite) TestGetAnalyticsMissing() {
	suite.queries.On("GetByID", mock.Anything, "acc-9").Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/queries/accounts/acc-9", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListAnalytics() {
	suite.queries.On("GetAll", mock.Anything).Return([]domain.AccountAnalytics{
		{AccountID: "a", Balance: dec("1")},
		{AccountID: "b", Balance: dec("2")},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/queries/accounts", "")

	suite.Equal(http.StatusOK, w.Code)
	var res []dto.AnalyticsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Len(res, 2)
}

func (suite *HandlerTestSuite) TestListAnalyticsStoreDown() {
	suite.queries.On("GetAll", mock.Anything).Return(nil, apperrors.NewStoreError("failed to list", errors.New("boom"))).Once()

	w := suite.do(http.MethodGet, "/api/v1/queries/accounts", "")
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlerTestSuite) TestSwaggerDisabledInProduction() {
	w := suite.do(http.MethodGet, "/swagger/index.html", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
