package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. EDT_SERVER_PORT.
const EnvPrefix = "EDT"

type Config struct {
	Server    ServerConfig    `mapstructure:"server" split_words:"true"`
	Log       LogConfig       `mapstructure:"log" split_words:"true"`
	History   HistoryConfig   `mapstructure:"history" split_words:"true"`
	Duplicate DuplicateConfig `mapstructure:"duplicate" split_words:"true"`
	Session   SessionConfig   `mapstructure:"session" split_words:"true"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" split_words:"true"`
	Redis     RedisConfig     `mapstructure:"redis" split_words:"true"`
	Outbox    OutboxConfig    `mapstructure:"outbox" split_words:"true"`
	Audit     AuditConfig     `mapstructure:"audit" split_words:"true"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" split_words:"true"`
	Mode            string        `mapstructure:"mode" split_words:"true"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
}

type LogConfig struct {
	Level string `mapstructure:"level" split_words:"true"`
	JSON  bool   `mapstructure:"json" split_words:"true"`
}

// HistoryConfig selects the history backend. "memory" serves the seeded
// tables; "postgres" reads a replica.
type HistoryConfig struct {
	Driver   string         `mapstructure:"driver" split_words:"true"`
	Database DatabaseConfig `mapstructure:"database" split_words:"true"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" split_words:"true"`
	Port            int           `mapstructure:"port" split_words:"true"`
	User            string        `mapstructure:"user" split_words:"true"`
	Password        string        `mapstructure:"password" split_words:"true"`
	Name            string        `mapstructure:"name" split_words:"true"`
	SSLMode         string        `mapstructure:"sslmode" split_words:"true"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout" split_words:"true"`
}

type DuplicateConfig struct {
	DefaultWindow     time.Duration `mapstructure:"default_window" split_words:"true"`
	ExtendedWindow    time.Duration `mapstructure:"extended_window" split_words:"true"`
	SpecialTests      []string      `mapstructure:"special_tests" split_words:"true"`
	ExactSpecialMatch bool          `mapstructure:"exact_special_match" split_words:"true"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl" split_words:"true"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" split_words:"true"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst" split_words:"true"`
}

// RedisConfig configures the event broker. Disabled means events are only
// logged.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled" split_words:"true"`
	URL          string        `mapstructure:"url" split_words:"true"`
	Channel      string        `mapstructure:"channel" split_words:"true"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size" split_words:"true"`
	PollInterval    time.Duration `mapstructure:"poll_interval" split_words:"true"`
	RetryAttempts   int           `mapstructure:"retry_attempts" split_words:"true"`
	RetryDelay      time.Duration `mapstructure:"retry_delay" split_words:"true"`
	// Retention is how long published events stay in memory.
	Retention       time.Duration `mapstructure:"retention" split_words:"true"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" split_words:"true"`
}

// AuditConfig points the audit trail at a file, or "stdout"/"stderr".
type AuditConfig struct {
	Output string `mapstructure:"output" split_words:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("history.driver", "memory")
	v.SetDefault("history.database.host", "localhost")
	v.SetDefault("history.database.port", 5432)
	v.SetDefault("history.database.sslmode", "disable")
	v.SetDefault("history.database.max_open_conns", 5)
	v.SetDefault("history.database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("history.database.query_timeout", 2*time.Second)

	v.SetDefault("duplicate.default_window", 24*time.Hour)
	v.SetDefault("duplicate.extended_window", 72*time.Hour)
	v.SetDefault("duplicate.special_tests", []string{"Blood Culture", "Hemoglobin A1c", "HbA1c", "Urine Culture"})
	v.SetDefault("duplicate.exact_special_match", false)

	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "ed-orders.events")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 500*time.Millisecond)
	v.SetDefault("outbox.retention", time.Hour)
	v.SetDefault("outbox.cleanup_interval", 5*time.Minute)

	v.SetDefault("audit.output", "stdout")
}

// Load reads config.yml (an explicit path wins over the search path), then
// applies EDT_* environment overrides. A missing config file is not an
// error; defaults cover every field.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.History.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("invalid history.driver %q: want memory or postgres", c.History.Driver)
	}
	if c.Duplicate.DefaultWindow <= 0 || c.Duplicate.ExtendedWindow <= 0 {
		return fmt.Errorf("duplicate windows must be positive")
	}
	if c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0 || c.Outbox.RetryAttempts <= 0 || c.Outbox.RetryDelay <= 0 ||
		c.Outbox.Retention <= 0 || c.Outbox.CleanupInterval <= 0 {
		return fmt.Errorf("outbox settings must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit requires positive requests_per_second and burst")
	}
	return nil
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}
