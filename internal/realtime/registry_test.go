package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(accountID string, balance int64) domain.AccountAnalytics {
	return domain.AccountAnalytics{AccountID: accountID, Balance: decimal.NewFromInt(balance)}
}

func recv(t *testing.T, s *Subscription) domain.AccountAnalytics {
	t.Helper()
	select {
	case rec, ok := <-s.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return rec
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}
	return domain.AccountAnalytics{}
}

func TestRegistry_NotifyMatchesFilter(t *testing.T) {
	reg := NewRegistry()
	a := reg.Subscribe(context.Background(), ByAccountID("a"))
	b := reg.Subscribe(context.Background(), ByAccountID("b"))
	defer a.Close()
	defer b.Close()

	require.NoError(t, reg.Notify(context.Background(), record("a", 10)))

	got := recv(t, a)
	assert.Equal(t, "a", got.AccountID)
	assert.Empty(t, b.Updates())
}

func TestRegistry_PreservesNotificationOrder(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe(context.Background(), ByAccountID("a"))
	defer sub.Close()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, reg.Notify(context.Background(), record("a", i)))
	}
	for i := int64(1); i <= 5; i++ {
		assert.Equal(t, i, recv(t, sub).Balance.IntPart())
	}
}

func TestRegistry_FullBufferDropsOldest(t *testing.T) {
	reg := NewRegistry(WithBufferSize(2))
	sub := reg.Subscribe(context.Background(), ByAccountID("a"))
	defer sub.Close()

	for i := int64(1); i <= 4; i++ {
		require.NoError(t, reg.Notify(context.Background(), record("a", i)))
	}

	assert.Equal(t, int64(3), recv(t, sub).Balance.IntPart())
	assert.Equal(t, int64(4), recv(t, sub).Balance.IntPart())
}

func TestRegistry_CloseDeregisters(t *testing.T) {
	reg := NewRegistry()
	sub := reg.Subscribe(context.Background(), ByAccountID("a"))
	require.Equal(t, 1, reg.Len())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, reg.Len())
	_, ok := <-sub.Updates()
	assert.False(t, ok)

	// later notifications must not reach or panic on a closed subscription
	assert.NoError(t, reg.Notify(context.Background(), record("a", 1)))
}

func TestRegistry_ContextCancelClosesSubscription(t *testing.T) {
	reg := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	sub := reg.Subscribe(ctx, ByAccountID("a"))

	cancel()

	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatalf("subscription was not closed after context cancel")
	}
	assert.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRegistry_NoSubscribers(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Notify(context.Background(), record("a", 1)))
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := NewRegistry()
	first := reg.Subscribe(context.Background(), ByAccountID("a"))
	second := reg.Subscribe(context.Background(), ByAccountID("b"))

	reg.CloseAll()

	assert.Equal(t, 0, reg.Len())
	for _, sub := range []*Subscription{first, second} {
		_, ok := <-sub.Updates()
		assert.False(t, ok)
	}
	// closing again after CloseAll is a no-op
	first.Close()
}
