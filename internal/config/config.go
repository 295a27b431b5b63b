package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Bookings  BookingsConfig  `toml:"bookings"`
	Payments  PaymentsConfig  `toml:"payments"`
	Dispatch  DispatchConfig  `toml:"dispatch"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Admin     AdminConfig     `toml:"admin"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type CatalogConfig struct {
	Path string `toml:"path"`
}

type BookingsConfig struct {
	DefaultCapacity      int `toml:"default_capacity"`
	PendingTTLMinutes    int `toml:"pending_ttl_minutes"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"` // 0 = фоновая очистка выключена
	SweepBatchSize       int `toml:"sweep_batch_size"`
}

// PendingTTL время жизни неподтверждённого бронирования
func (b BookingsConfig) PendingTTL() time.Duration {
	return time.Duration(b.PendingTTLMinutes) * time.Minute
}

type PaymentsConfig struct {
	Provider                  string `toml:"provider"` // http | simulator
	APIURL                    string `toml:"api_url"`
	APIKey                    string `toml:"api_key"`
	Timeout                   int    `toml:"timeout"` // секунды
	WebhookSecret             string `toml:"webhook_secret"`
	SignatureToleranceSeconds int    `toml:"signature_tolerance_seconds"`
	AllowUnsignedWebhooks     bool   `toml:"allow_unsigned_webhooks"`
	IdempotencyLockSeconds    int    `toml:"idempotency_lock_seconds"`
}

// UnsignedWebhooksEnabled разрешён ли неподписанный тестовый вебхук.
// При заданном секрете он недоступен никогда.
func (p PaymentsConfig) UnsignedWebhooksEnabled() bool {
	return p.AllowUnsignedWebhooks && p.WebhookSecret == ""
}

type DispatchConfig struct {
	Enabled    bool   `toml:"enabled"`
	URL        string `toml:"url"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

type RateLimitConfig struct {
	Enabled          bool   `toml:"enabled"`
	RedisAddr        string `toml:"redis_addr"`
	RedisPassword    string `toml:"redis_password"`
	RedisDB          int    `toml:"redis_db"`
	Capacity         int    `toml:"capacity"`
	RefillTokens     int    `toml:"refill_tokens"`
	RefillIntervalMS int    `toml:"refill_interval_ms"`
	Prefix           string `toml:"prefix"`
}

// RefillInterval интервал пополнения токенов
func (r RateLimitConfig) RefillInterval() time.Duration {
	return time.Duration(r.RefillIntervalMS) * time.Millisecond
}

type AdminConfig struct {
	Token string `toml:"token"`
}

var (
	// ErrInvalidConfig конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Load читает TOML файл, затем .env (если есть) и переменные окружения.
// Секреты удобнее держать в окружении, поэтому они переопределяют файл.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "reservation-core"},
		Catalog: CatalogConfig{Path: "catalog.yaml"},
		Bookings: BookingsConfig{
			DefaultCapacity:   10,
			PendingTTLMinutes: 30,
			SweepBatchSize:    100,
		},
		Payments: PaymentsConfig{
			Provider:                  "simulator",
			Timeout:                   10,
			SignatureToleranceSeconds: 300,
			IdempotencyLockSeconds:    60,
		},
		Dispatch: DispatchConfig{
			Exchange:   "reservations",
			RoutingKey: "booking.confirmed",
		},
		RateLimit: RateLimitConfig{
			Capacity:         60,
			RefillTokens:     1,
			RefillIntervalMS: 1000,
			Prefix:           "rl",
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Payments.APIKey, "PAYMENTS_API_KEY")
	setString(&cfg.Payments.WebhookSecret, "PAYMENTS_WEBHOOK_SECRET")
	setString(&cfg.Dispatch.URL, "RABBITMQ_URL")
	setString(&cfg.RateLimit.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RateLimit.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.Admin.Token, "ADMIN_TOKEN")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range", ErrInvalidConfig)
	}
	if c.Bookings.DefaultCapacity < 0 {
		return fmt.Errorf("%w: bookings.default_capacity must be >= 0", ErrInvalidConfig)
	}
	if c.Bookings.PendingTTLMinutes <= 0 {
		return fmt.Errorf("%w: bookings.pending_ttl_minutes must be positive", ErrInvalidConfig)
	}
	switch c.Payments.Provider {
	case "simulator":
	case "http":
		if c.Payments.APIURL == "" {
			return fmt.Errorf("%w: payments.api_url is required for http provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown payments.provider %q", ErrInvalidConfig, c.Payments.Provider)
	}
	if c.Payments.WebhookSecret == "" && !c.Payments.AllowUnsignedWebhooks {
		return fmt.Errorf("%w: payments.webhook_secret is required unless unsigned webhooks are allowed", ErrInvalidConfig)
	}
	if c.Dispatch.Enabled && c.Dispatch.URL == "" {
		return fmt.Errorf("%w: dispatch.url is required when dispatch is enabled", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && c.RateLimit.RedisAddr == "" {
		return fmt.Errorf("%w: ratelimit.redis_addr is required when rate limiting is enabled", ErrInvalidConfig)
	}
	return nil
}
