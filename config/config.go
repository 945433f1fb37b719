package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	JWT       JWTConfig       `koanf:"jwt"`
	Payment   PaymentConfig   `koanf:"payment"`
	Logging   LoggingConfig   `koanf:"logging"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Port         string        `koanf:"port"`
	Env          string        `koanf:"env"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // mysql | postgres | sqlite
	DSN             string        `koanf:"dsn"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type JWTConfig struct {
	AccessSecret string        `koanf:"access_secret"`
	AccessExpiry time.Duration `koanf:"access_expiry"`
	Issuer       string        `koanf:"issuer"`
}

// PaymentConfig controls checkout creation and verification against the card processor.
type PaymentConfig struct {
	Provider             string        `koanf:"provider"` // stripe | stub
	StripeSecretKey      string        `koanf:"stripe_secret_key"`
	WebhookSecret        string        `koanf:"webhook_secret"`
	Currency             string        `koanf:"currency"`
	UnitAmountCents      int64         `koanf:"unit_amount_cents"`
	MaxTokensPerPurchase int64         `koanf:"max_tokens_per_purchase"`
	TokenPackages        []int64       `koanf:"token_packages"`
	SuccessURL           string        `koanf:"success_url"`
	CancelURL            string        `koanf:"cancel_url"`
	SessionExpiry        time.Duration `koanf:"session_expiry"`
	Timeout              time.Duration `koanf:"timeout"`
	BreakerFailures      uint32        `koanf:"breaker_failures"`
	BreakerTimeout       time.Duration `koanf:"breaker_timeout"`
	MaxRetries           uint64        `koanf:"max_retries"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute"`
	Burst             int `koanf:"burst"`
}

// DefaultConfigPaths lists the config files searched in order; the first one found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/academy/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8099",
			Env:          "development",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "academy.db",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: "",
			AccessExpiry: 15 * time.Minute,
			Issuer:       "academy",
		},
		Payment: PaymentConfig{
			Provider:             "stub",
			Currency:             "aud",
			UnitAmountCents:      100, // 1 token = 1 currency unit
			MaxTokensPerPurchase: 10000,
			TokenPackages:        []int64{10, 50, 100, 150, 200, 250},
			SuccessURL:           "http://localhost:5173/profile?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:            "http://localhost:5173/buy-tokens",
			SessionExpiry:        30 * time.Minute,
			Timeout:              10 * time.Second,
			BreakerFailures:      5,
			BreakerTimeout:       30 * time.Second,
			MaxRetries:           2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 100,
			Burst:             20,
		},
	}
}

// Load layers configuration: built-in defaults, then an optional YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with. Missing processor credentials are not
// checked here: checkout reports them per request as a configuration error.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be mysql, postgres or sqlite", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("jwt.access_secret is required"))
	}
	switch c.Payment.Provider {
	case "stripe", "stub":
	default:
		errs = append(errs, fmt.Errorf("payment.provider %q must be stripe or stub", c.Payment.Provider))
	}
	if c.Payment.UnitAmountCents <= 0 {
		errs = append(errs, errors.New("payment.unit_amount_cents must be positive"))
	}
	if c.Payment.MaxTokensPerPurchase <= 0 {
		errs = append(errs, errors.New("payment.max_tokens_per_purchase must be positive"))
	}
	if c.Server.Env == "production" && c.Payment.Provider == "stub" {
		errs = append(errs, errors.New("payment.provider stub is not allowed in production"))
	}
	return errors.Join(errs...)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"server_port":          "server.port",
	"environment":          "server.env",
	"server_read_timeout":  "server.read_timeout",
	"server_write_timeout": "server.write_timeout",

	"db_driver":            "database.driver",
	"db_dsn":               "database.dsn",
	"db_max_idle_conns":    "database.max_idle_conns",
	"db_max_open_conns":    "database.max_open_conns",
	"db_conn_max_lifetime": "database.conn_max_lifetime",

	"jwt_access_secret": "jwt.access_secret",
	"jwt_access_expiry": "jwt.access_expiry",
	"jwt_issuer":        "jwt.issuer",

	"payment_provider":                "payment.provider",
	"stripe_secret_key":               "payment.stripe_secret_key",
	"stripe_webhook_secret":           "payment.webhook_secret",
	"payment_webhook_secret":          "payment.webhook_secret",
	"payment_currency":                "payment.currency",
	"payment_unit_amount_cents":       "payment.unit_amount_cents",
	"payment_max_tokens_per_purchase": "payment.max_tokens_per_purchase",
	"payment_token_packages":          "payment.token_packages",
	"payment_success_url":             "payment.success_url",
	"payment_cancel_url":              "payment.cancel_url",
	"payment_session_expiry":          "payment.session_expiry",
	"payment_timeout":                 "payment.timeout",
	"payment_breaker_failures":        "payment.breaker_failures",
	"payment_breaker_timeout":         "payment.breaker_timeout",
	"payment_max_retries":             "payment.max_retries",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"rate_limit_rpm":   "rate_limit.requests_per_minute",
	"rate_limit_burst": "rate_limit.burst",
}

// envTransformFunc maps environment variable names to config paths. Unmapped variables are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{"payment.token_packages"}

// processSliceFields splits comma-separated env values for slice settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
