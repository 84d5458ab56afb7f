package services_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/internal/core/services"
	"github.com/SscSPs/account_ledger/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// MockEventPublisher is a mock type for the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evt domain.StoredEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// MockEventStore is a mock type for the EventStoreFacade interface
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) ReadAll(ctx context.Context, aggregateID string) ([]domain.StoredEvent, error) {
	args := m.Called(ctx, aggregateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredEvent), args.Error(1)
}

func (m *MockEventStore) Exists(ctx context.Context, aggregateID string) (bool, error) {
	args := m.Called(ctx, aggregateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventStore) ReadFrom(ctx context.Context, afterPosition int64, limit int) ([]domain.StoredEvent, error) {
	args := m.Called(ctx, afterPosition, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredEvent), args.Error(1)
}

func (m *MockEventStore) Append(ctx context.Context, aggregateID string, expectedVersion int64, evt domain.Event) (domain.StoredEvent, error) {
	args := m.Called(ctx, aggregateID, expectedVersion, evt)
	return args.Get(0).(domain.StoredEvent), args.Error(1)
}

// --- Test Suite Setup ---

type CommandDispatcherTestSuite struct {
	suite.Suite
	events     *memory.EventRepository
	dispatcher *services.CommandDispatcher
	ids        atomic.Int64
}

func (suite *CommandDispatcherTestSuite) SetupTest() {
	suite.events = memory.NewEventRepository()
	suite.ids.Store(0)
	suite.dispatcher = services.NewCommandDispatcher(suite.events,
		services.WithAccountIDGenerator(func() string {
			return fmt.Sprintf("acc-%d", suite.ids.Add(1))
		}),
	)
}

func (suite *CommandDispatcherTestSuite) open(initial string) string {
	res, err := suite.dispatcher.CreateAccount(context.Background(), dec(initial), "USD")
	suite.Require().NoError(err)
	return res.AccountID
}

func (suite *CommandDispatcherTestSuite) balance(accountID string) decimal.Decimal {
	state, err := suite.dispatcher.LoadAccount(context.Background(), accountID)
	suite.Require().NoError(err)
	return state.Balance
}

// --- Test Cases ---

func (suite *CommandDispatcherTestSuite) TestCreateAccount() {
	res, err := suite.dispatcher.CreateAccount(context.Background(), dec("100"), "USD")
	suite.Require().NoError(err)

	suite.Equal("acc-1", res.AccountID)
	suite.Equal(int64(1), res.Version)
	suite.NotEmpty(res.EventID)

	state, err := suite.dispatcher.LoadAccount(context.Background(), res.AccountID)
	suite.Require().NoError(err)
	suite.True(dec("100").Equal(state.Balance))
	suite.Equal("USD", state.Currency)
	suite.Equal(domain.StatusCreated, state.Status)
}

func (suite *CommandDispatcherTestSuite) TestCreditThenDebit() {
	ctx := context.Background()
	id := suite.open("100")

	_, err := suite.dispatcher.CreditAccount(ctx, id, dec("50"), "USD")
	suite.Require().NoError(err)
	res, err := suite.dispatcher.DebitAccount(ctx, id, dec("30"), "USD")
	suite.Require().NoError(err)

	suite.Equal(int64(3), res.Version)
	suite.True(dec("120").Equal(suite.balance(id)))

	history, err := suite.dispatcher.History(ctx, id)
	suite.Require().NoError(err)
	suite.Len(history, 3)
	suite.Equal(domain.EventTypeAccountDebited, history[2].Type)
}

func (suite *CommandDispatcherTestSuite) TestDebitAboveBalanceAppendsNothing() {
	ctx := context.Background()
	id := suite.open("10")

	res, err := suite.dispatcher.DebitAccount(ctx, id, dec("10.01"), "USD")
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)

	history, err := suite.events.ReadAll(ctx, id)
	suite.Require().NoError(err)
	suite.Len(history, 1)
	suite.True(dec("10").Equal(suite.balance(id)))
}

func (suite *CommandDispatcherTestSuite) TestNegativeAmountsRejected() {
	ctx := context.Background()
	id := suite.open("10")

	_, err := suite.dispatcher.CreditAccount(ctx, id, dec("-1"), "USD")
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.dispatcher.DebitAccount(ctx, id, dec("-1"), "USD")
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.dispatcher.CreateAccount(ctx, dec("-1"), "USD")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommandDispatcherTestSuite) TestUnknownAccount() {
	ctx := context.Background()

	_, err := suite.dispatcher.CreditAccount(ctx, "nope", dec("1"), "USD")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.dispatcher.LoadAccount(ctx, "nope")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.dispatcher.History(ctx, "nope")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CommandDispatcherTestSuite) TestMissingAccountID() {
	_, err := suite.dispatcher.Dispatch(context.Background(), domain.CreditAccount{Amount: dec("1"), Currency: "USD"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.dispatcher.Dispatch(context.Background(), nil)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommandDispatcherTestSuite) TestAddAccountTwiceWithSameID() {
	ctx := context.Background()
	cmd := domain.AddAccount{AccountID: "fixed", InitialBalance: dec("1"), Currency: "USD"}

	_, err := suite.dispatcher.Dispatch(ctx, cmd)
	suite.Require().NoError(err)
	_, err = suite.dispatcher.Dispatch(ctx, cmd)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CommandDispatcherTestSuite) TestConcurrentDebitsNeverOverdraw() {
	ctx := context.Background()
	id := suite.open("100")

	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int32
		insufficient atomic.Int32
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.dispatcher.DebitAccount(ctx, id, dec("10"), "USD")
			switch {
			case err == nil:
				succeeded.Add(1)
			case suite.ErrorIs(err, apperrors.ErrInsufficientBalance):
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	suite.Equal(int32(10), succeeded.Load())
	suite.Equal(int32(15), insufficient.Load())
	suite.True(suite.balance(id).IsZero())
}

func (suite *CommandDispatcherTestSuite) TestConcurrentCreditsAcrossAccounts() {
	ctx := context.Background()
	ids := []string{suite.open("0"), suite.open("0"), suite.open("0")}

	var wg sync.WaitGroup
	for _, id := range ids {
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := suite.dispatcher.CreditAccount(ctx, id, dec("1.5"), "USD")
				suite.NoError(err)
			}()
		}
	}
	wg.Wait()

	for _, id := range ids {
		suite.True(dec("30").Equal(suite.balance(id)), "account %s", id)
	}
}

func (suite *CommandDispatcherTestSuite) TestCurrencyMatchEnforced() {
	ctx := context.Background()
	dispatcher := services.NewCommandDispatcher(suite.events, services.WithCurrencyMatch(true))
	res, err := dispatcher.CreateAccount(ctx, dec("10"), "USD")
	suite.Require().NoError(err)

	_, err = dispatcher.CreditAccount(ctx, res.AccountID, dec("1"), "EUR")
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)

	_, err = suite.dispatcher.CreditAccount(ctx, res.AccountID, dec("1"), "EUR")
	suite.NoError(err)
}

func (suite *CommandDispatcherTestSuite) TestPublishFailureDoesNotFailCommand() {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("domain.StoredEvent")).Return(assert.AnError).Once()

	dispatcher := services.NewCommandDispatcher(suite.events, services.WithEventPublisher(publisher))
	res, err := dispatcher.CreateAccount(context.Background(), dec("5"), "USD")

	suite.Require().NoError(err)
	suite.Equal(int64(1), res.Version)
	publisher.AssertExpectations(suite.T())
}

func (suite *CommandDispatcherTestSuite) TestPublishesAppendedEvent() {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(evt domain.StoredEvent) bool {
		return evt.Version == 1 && evt.Type == domain.EventTypeAccountCreated
	})).Return(nil).Once()

	dispatcher := services.NewCommandDispatcher(suite.events, services.WithEventPublisher(publisher))
	_, err := dispatcher.CreateAccount(context.Background(), dec("5"), "USD")

	suite.Require().NoError(err)
	publisher.AssertExpectations(suite.T())
}

func (suite *CommandDispatcherTestSuite) TestAppendConflictIsReturned() {
	store := new(MockEventStore)
	store.On("ReadAll", mock.Anything, "a").Return([]domain.StoredEvent{}, nil).Once()
	store.On("Append", mock.Anything, "a", int64(0), mock.Anything).
		Return(domain.StoredEvent{}, apperrors.ErrConcurrencyConflict).Once()

	dispatcher := services.NewCommandDispatcher(store)
	_, err := dispatcher.Dispatch(context.Background(), domain.AddAccount{AccountID: "a", InitialBalance: dec("1"), Currency: "USD"})

	suite.ErrorIs(err, apperrors.ErrConcurrencyConflict)
	store.AssertExpectations(suite.T())
}

func (suite *CommandDispatcherTestSuite) TestStoreFailureIsReturned() {
	store := new(MockEventStore)
	storeErr := apperrors.NewStoreError("failed to read stream a", assert.AnError)
	store.On("ReadAll", mock.Anything, "a").Return(nil, storeErr).Once()

	dispatcher := services.NewCommandDispatcher(store)
	_, err := dispatcher.Dispatch(context.Background(), domain.CreditAccount{AccountID: "a", Amount: dec("1"), Currency: "USD"})

	suite.ErrorIs(err, apperrors.ErrStore)
	store.AssertNotCalled(suite.T(), "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CommandDispatcherTestSuite) TestCommandTimeout() {
	store := new(MockEventStore)
	store.On("ReadAll", mock.Anything, "a").Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded).Once()

	dispatcher := services.NewCommandDispatcher(store, services.WithCommandTimeout(20*time.Millisecond))
	start := time.Now()
	_, err := dispatcher.Dispatch(context.Background(), domain.CreditAccount{AccountID: "a", Amount: dec("1"), Currency: "USD"})

	suite.ErrorIs(err, context.DeadlineExceeded)
	suite.Less(time.Since(start), time.Second)
}

func TestCommandDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(CommandDispatcherTestSuite))
}
