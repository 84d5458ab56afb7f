package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

const (
	defaultPort                 = "8080"
	defaultStoreDriver          = StoreDriverMemory
	defaultSQLitePath           = "ledger.sqlite"
	defaultRedisChannel         = "account-analytics"
	defaultCommandTimeout       = 5 * time.Second
	defaultProjectorWorkers     = 4
	defaultProjectorQueueSize   = 256
	defaultSubscriberBufferSize = 16
	defaultRateLimit            = "100-M"
	defaultHeartbeatInterval    = 15 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     slog.Level

	// Persistence
	StoreDriver   string
	DatabaseURL   string
	EnableDBCheck bool
	SQLitePath    string

	// Cross-instance update fan-out; disabled when RedisAddr is empty.
	RedisAddr    string
	RedisChannel string

	CommandTimeout       time.Duration
	EnforceCurrencyMatch bool

	ProjectorWorkers     int
	ProjectorQueueSize   int
	SubscriberBufferSize int
	// HeartbeatInterval spaces the keep-alive comments of SSE streams.
	HeartbeatInterval time.Duration

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", defaultPort)
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", defaultStoreDriver)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("SQLITE_PATH", defaultSQLitePath)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_CHANNEL", defaultRedisChannel)
	viper.SetDefault("COMMAND_TIMEOUT", defaultCommandTimeout.String())
	viper.SetDefault("ENFORCE_CURRENCY_MATCH", false)
	viper.SetDefault("PROJECTOR_WORKERS", defaultProjectorWorkers)
	viper.SetDefault("PROJECTOR_QUEUE_SIZE", defaultProjectorQueueSize)
	viper.SetDefault("SUBSCRIBER_BUFFER_SIZE", defaultSubscriberBufferSize)
	viper.SetDefault("RATE_LIMIT", defaultRateLimit)
	viper.SetDefault("SSE_HEARTBEAT_INTERVAL", defaultHeartbeatInterval.String())
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")

	// Environment variables override .env values, which override the defaults above.
	viper.AutomaticEnv()

	cfg := &Config{
		Port:                 viper.GetString("PORT"),
		IsProduction:         viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:          viper.GetString("PGSQL_URL"),
		EnableDBCheck:        viper.GetBool("ENABLE_DB_CHECK"),
		SQLitePath:           viper.GetString("SQLITE_PATH"),
		RedisAddr:            strings.TrimSpace(viper.GetString("REDIS_ADDR")),
		RedisChannel:         viper.GetString("REDIS_CHANNEL"),
		EnforceCurrencyMatch: viper.GetBool("ENFORCE_CURRENCY_MATCH"),
		RateLimit:            viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:   splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	levelStr := viper.GetString("LOG_LEVEL")
	if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
		cfg.LogLevel = slog.LevelInfo
		slog.Warn("Invalid LOG_LEVEL, defaulting to info", slog.String("value", levelStr))
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(viper.GetString("STORE_DRIVER")))
	switch cfg.StoreDriver {
	case StoreDriverMemory, StoreDriverSQLite:
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER is %s", StoreDriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	cfg.CommandTimeout = positiveDuration("COMMAND_TIMEOUT", defaultCommandTimeout)
	cfg.HeartbeatInterval = positiveDuration("SSE_HEARTBEAT_INTERVAL", defaultHeartbeatInterval)

	cfg.ProjectorWorkers = positiveInt("PROJECTOR_WORKERS", defaultProjectorWorkers)
	cfg.ProjectorQueueSize = positiveInt("PROJECTOR_QUEUE_SIZE", defaultProjectorQueueSize)
	cfg.SubscriberBufferSize = positiveInt("SUBSCRIBER_BUFFER_SIZE", defaultSubscriberBufferSize)

	if cfg.RedisChannel == "" {
		cfg.RedisChannel = defaultRedisChannel
	}

	return cfg, nil
}

func positiveInt(key string, fallback int) int {
	v := viper.GetInt(key)
	if v <= 0 {
		slog.Warn("Invalid value, using default", slog.String("key", key), slog.String("value", viper.GetString(key)), slog.Int("default", fallback))
		return fallback
	}
	return v
}

func positiveDuration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", slog.String("key", key), slog.String("value", raw), slog.Duration("default", fallback))
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
