package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	goredis "github.com/redis/go-redis/v9"
)

const defaultChannel = "account-analytics"

// RedisBus publishes analytics updates on a Redis pub/sub channel.
type RedisBus struct {
	logger  *slog.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to addr and verifies the connection with a ping.
func NewRedisBus(ctx context.Context, addr, channel string, logger *slog.Logger) (*RedisBus, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBus{
		logger:  logger.With(slog.String("component", "RedisBus")),
		rdb:     rdb,
		channel: channel,
	}, nil
}

// Publish sends record to every instance listening on the channel.
func (b *RedisBus) Publish(ctx context.Context, record domain.AccountAnalytics) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis bus not initialized")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode analytics record: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Notify lets the bus stand in for the local registry as the projector's notifier.
func (b *RedisBus) Notify(ctx context.Context, record domain.AccountAnalytics) error {
	return b.Publish(ctx, record)
}

// StartForwarder subscribes to the channel and calls onRecord for every
// received update until ctx is done. It returns once the subscription is live.
func (b *RedisBus) StartForwarder(ctx context.Context, onRecord func(record domain.AccountAnalytics)) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis bus not initialized")
	}
	if onRecord == nil {
		return errors.New("onRecord callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var record domain.AccountAnalytics
				if err := json.Unmarshal([]byte(m.Payload), &record); err != nil {
					b.logger.Warn("Bad analytics payload on redis channel", slog.String("error", err.Error()))
					continue
				}
				onRecord(record)
			}
		}
	}()

	return nil
}

// Close releases the Redis connection.
func (b *RedisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

var _ Bus = (*RedisBus)(nil)
