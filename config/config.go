// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// WebhookSecret authenticates inbound email webhook posts. Empty disables
	// the check (local development only).
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET" yaml:"webhook_secret"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored entirely (safe default).
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST" yaml:"host"`
	Port         int    `mapstructure:"PORT" yaml:"port"`
	User         string `mapstructure:"USER" yaml:"user"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	Name         string `mapstructure:"NAME" yaml:"name"`
	SSLMode      string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
	ConnMaxLife  string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
}

// URL returns a postgres:// connection URL suitable for URL-based database tools.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// EmailConfig holds configuration for sending outbound email via Resend.
type EmailConfig struct {
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
}

// PricingConfig holds the business parameters for quote calculation. Money
// values are decimal strings; they are parsed once at service construction.
type PricingConfig struct {
	// TargetMarginPercent is the broker margin applied on top of the carrier rate.
	TargetMarginPercent int `mapstructure:"TARGET_MARGIN_PERCENT" yaml:"target_margin_percent"`
	// BaseFuelPrice is the diesel baseline above which fuel surcharge accrues.
	BaseFuelPrice string `mapstructure:"BASE_FUEL_PRICE" yaml:"base_fuel_price"`
	// CurrentFuelPrice is the current diesel price per gallon.
	CurrentFuelPrice string `mapstructure:"CURRENT_FUEL_PRICE" yaml:"current_fuel_price"`
	// HeavyLoadThresholdLbs is the weight above which the heavy-load
	// accessorial applies.
	HeavyLoadThresholdLbs float64 `mapstructure:"HEAVY_LOAD_THRESHOLD_LBS" yaml:"heavy_load_threshold_lbs"`
	// HeavyLoadCharge is the flat accessorial for heavy loads.
	HeavyLoadCharge string `mapstructure:"HEAVY_LOAD_CHARGE" yaml:"heavy_load_charge"`
}

// IntakeConfig holds the intent-classification decision thresholds.
type IntakeConfig struct {
	// AutomationThreshold is the minimum intent confidence for fully
	// automated processing.
	AutomationThreshold float64 `mapstructure:"AUTOMATION_THRESHOLD" yaml:"automation_threshold"`
	// ReviewThreshold is the minimum intent confidence for queued human
	// review; anything below escalates immediately.
	ReviewThreshold float64 `mapstructure:"REVIEW_THRESHOLD" yaml:"review_threshold"`
}

// EventServiceConfig holds configuration for the Redis-based event service.
type EventServiceConfig struct {
	// Timeout for publishing a single event to Redis (in seconds)
	PublishTimeoutSeconds int `mapstructure:"PUBLISH_TIMEOUT_SECONDS" yaml:"publish_timeout_seconds"`
	// Timeout for establishing a subscription connection via Redis (in seconds)
	SubscribeTimeoutSeconds int `mapstructure:"SUBSCRIBE_TIMEOUT_SECONDS" yaml:"subscribe_timeout_seconds"`
	// Buffer size for the channel delivering events to a single subscriber
	EventBufferSize int `mapstructure:"EVENT_BUFFER_SIZE" yaml:"event_buffer_size"`
}

// RateLimitConfig holds configuration for rate limiting the webhook endpoint.
type RateLimitConfig struct {
	// Maximum inbound webhook requests per window, per client IP
	RequestsPerWindow int `mapstructure:"REQUESTS_PER_WINDOW" yaml:"requests_per_window"`
	// Window duration in seconds for rate limiting
	WindowSeconds int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server       ServerConfig       `mapstructure:"SERVER" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"DATABASE" yaml:"database"`
	Redis        RedisConfig        `mapstructure:"REDIS" yaml:"redis"`
	Email        EmailConfig        `mapstructure:"EMAIL" yaml:"email"`
	Pricing      PricingConfig      `mapstructure:"PRICING" yaml:"pricing"`
	Intake       IntakeConfig       `mapstructure:"INTAKE" yaml:"intake"`
	EventService EventServiceConfig `mapstructure:"EVENT_SERVICE" yaml:"event_service"`
	RateLimit    RateLimitConfig    `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{}) // Empty = trust no one (safe default)
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "freightdesk_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE.MIN_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("EMAIL.FROM_ADDRESS", "quotes@freightdesk.dev")
	v.SetDefault("EMAIL.FROM_NAME", "FreightDesk")
	v.SetDefault("PRICING.TARGET_MARGIN_PERCENT", 15)
	v.SetDefault("PRICING.BASE_FUEL_PRICE", "3.00")
	v.SetDefault("PRICING.CURRENT_FUEL_PRICE", "4.00")
	v.SetDefault("PRICING.HEAVY_LOAD_THRESHOLD_LBS", 45000)
	v.SetDefault("PRICING.HEAVY_LOAD_CHARGE", "150.00")
	v.SetDefault("INTAKE.AUTOMATION_THRESHOLD", 0.85)
	v.SetDefault("INTAKE.REVIEW_THRESHOLD", 0.60)
	v.SetDefault("EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("EVENT_SERVICE.SUBSCRIBE_TIMEOUT_SECONDS", 10)
	v.SetDefault("EVENT_SERVICE.EVENT_BUFFER_SIZE", 100)
	v.SetDefault("RATE_LIMIT.REQUESTS_PER_WINDOW", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.WEBHOOK_SECRET", "WEBHOOK_SECRET"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		// Database config
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.MAX_OPEN_CONNS", "DB_MAX_OPEN_CONNS"},
		{"DATABASE.MIN_IDLE_CONNS", "DB_MIN_IDLE_CONNS"},
		{"DATABASE.CONN_MAX_LIFE", "DB_CONN_MAX_LIFE"},
		// Redis config
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Email config
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		// Pricing config
		{"PRICING.TARGET_MARGIN_PERCENT", "PRICING_TARGET_MARGIN_PERCENT"},
		{"PRICING.BASE_FUEL_PRICE", "PRICING_BASE_FUEL_PRICE"},
		{"PRICING.CURRENT_FUEL_PRICE", "PRICING_CURRENT_FUEL_PRICE"},
		{"PRICING.HEAVY_LOAD_THRESHOLD_LBS", "PRICING_HEAVY_LOAD_THRESHOLD_LBS"},
		{"PRICING.HEAVY_LOAD_CHARGE", "PRICING_HEAVY_LOAD_CHARGE"},
		// Intake config
		{"INTAKE.AUTOMATION_THRESHOLD", "INTAKE_AUTOMATION_THRESHOLD"},
		{"INTAKE.REVIEW_THRESHOLD", "INTAKE_REVIEW_THRESHOLD"},
		// Event service config
		{"EVENT_SERVICE.PUBLISH_TIMEOUT_SECONDS", "EVENT_SERVICE_PUBLISH_TIMEOUT_SECONDS"},
		{"EVENT_SERVICE.SUBSCRIBE_TIMEOUT_SECONDS", "EVENT_SERVICE_SUBSCRIBE_TIMEOUT_SECONDS"},
		{"EVENT_SERVICE.EVENT_BUFFER_SIZE", "EVENT_SERVICE_EVENT_BUFFER_SIZE"},
		// Rate limit config
		{"RATE_LIMIT.REQUESTS_PER_WINDOW", "RATE_LIMIT_REQUESTS_PER_WINDOW"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"redis_address", v.GetString("REDIS.ADDRESS"),
		"automation_threshold", v.GetFloat64("INTAKE.AUTOMATION_THRESHOLD"),
		"review_threshold", v.GetFloat64("INTAKE.REVIEW_THRESHOLD"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if cfg.IsProduction() && cfg.Server.WebhookSecret == "" {
		return fmt.Errorf("webhook secret is required in production")
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}
	if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
		log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
	}

	if cfg.Email.FromAddress == "" {
		return fmt.Errorf("email from address is required")
	}
	if cfg.Email.ResendAPIKey == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("resend API key is required in production")
		}
		log.Warn("Resend API key not set; outbound email is disabled")
	}

	if err := validatePricing(&cfg.Pricing); err != nil {
		return err
	}

	if cfg.Intake.AutomationThreshold <= 0 || cfg.Intake.AutomationThreshold > 1 {
		return fmt.Errorf("intake automation threshold must be in (0, 1]")
	}
	if cfg.Intake.ReviewThreshold <= 0 || cfg.Intake.ReviewThreshold >= cfg.Intake.AutomationThreshold {
		return fmt.Errorf("intake review threshold must be positive and below the automation threshold")
	}

	if cfg.EventService.PublishTimeoutSeconds <= 0 {
		return fmt.Errorf("event service publish timeout must be positive")
	}
	if cfg.EventService.SubscribeTimeoutSeconds <= 0 {
		return fmt.Errorf("event service subscribe timeout must be positive")
	}
	if cfg.EventService.EventBufferSize <= 0 {
		return fmt.Errorf("event service buffer size must be positive")
	}

	if cfg.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit requests per window must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

// validatePricing checks the pricing business parameters.
func validatePricing(cfg *PricingConfig) error {
	if cfg.TargetMarginPercent <= 0 || cfg.TargetMarginPercent >= 100 {
		return fmt.Errorf("pricing target margin must be between 1 and 99 percent")
	}
	for name, value := range map[string]string{
		"base fuel price":    cfg.BaseFuelPrice,
		"current fuel price": cfg.CurrentFuelPrice,
		"heavy load charge":  cfg.HeavyLoadCharge,
	} {
		if value == "" {
			return fmt.Errorf("pricing %s is required", name)
		}
	}
	if cfg.HeavyLoadThresholdLbs <= 0 {
		return fmt.Errorf("pricing heavy load threshold must be positive")
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
