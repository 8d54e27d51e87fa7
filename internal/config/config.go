package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultInternalToken = "change-me-internal-token"
)

// Config holds all runtime configuration. Values come from the environment
// (optionally seeded by a .env file) with an optional config.yaml on top.
type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppPort    string `mapstructure:"APP_PORT"`
	AppBaseURL string `mapstructure:"APP_BASE_URL"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret          string `mapstructure:"JWT_SECRET"`
	InternalAPIToken   string `mapstructure:"INTERNAL_API_TOKEN"`
	InternalRatePerMin int    `mapstructure:"INTERNAL_RATE_PER_MIN"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisQueueDB      int    `mapstructure:"REDIS_QUEUE_DB"`
	QueueEnabled      bool   `mapstructure:"QUEUE_ENABLED"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`

	QuietHoursTZ   string        `mapstructure:"NOTIFY_QUIET_HOURS_TZ"`
	ChannelTimeout time.Duration `mapstructure:"NOTIFY_CHANNEL_TIMEOUT"`

	VerificationFetchTimeout time.Duration `mapstructure:"VERIFICATION_FETCH_TIMEOUT"`

	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`

	TwilioAccountSID   string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioSMSFrom      string `mapstructure:"TWILIO_SMS_FROM"`
	TwilioWhatsAppFrom string `mapstructure:"TWILIO_WHATSAPP_FROM"`

	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	NotificationRetentionDays int `mapstructure:"CLEANUP_NOTIFICATION_RETENTION_DAYS"`
	DeviceTokenInactivityDays int `mapstructure:"CLEANUP_DEVICE_TOKEN_INACTIVITY_DAYS"`
}

// Load reads .env (if present), the environment and an optional config.yaml.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment only")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.AppBaseURL = strings.TrimRight(strings.TrimSpace(cfg.AppBaseURL), "/")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATABASE_URL", "gigbook.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("INTERNAL_API_TOKEN", defaultInternalToken)
	v.SetDefault("INTERNAL_RATE_PER_MIN", 600)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_QUEUE_DB", 0)
	v.SetDefault("QUEUE_ENABLED", false)
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("NOTIFY_QUIET_HOURS_TZ", "America/New_York")
	v.SetDefault("NOTIFY_CHANNEL_TIMEOUT", "15s")
	v.SetDefault("VERIFICATION_FETCH_TIMEOUT", "5s")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "Gigbook <notifications@gigbook.app>")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_SMS_FROM", "")
	v.SetDefault("TWILIO_WHATSAPP_FROM", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("CLEANUP_NOTIFICATION_RETENTION_DAYS", 90)
	v.SetDefault("CLEANUP_DEVICE_TOKEN_INACTIVITY_DAYS", 90)
}

// Location resolves the quiet-hours timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.QuietHoursTZ)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_QUIET_HOURS_TZ %q: %w", c.QuietHoursTZ, err)
	}
	return loc, nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsProdLike reports whether the app runs in a production-like environment.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.ChannelTimeout <= 0 {
		return fmt.Errorf("NOTIFY_CHANNEL_TIMEOUT must be > 0")
	}
	if cfg.VerificationFetchTimeout < 0 {
		return fmt.Errorf("VERIFICATION_FETCH_TIMEOUT must be >= 0")
	}
	if cfg.InternalRatePerMin <= 0 {
		return fmt.Errorf("INTERNAL_RATE_PER_MIN must be > 0")
	}
	if cfg.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be > 0")
	}
	if cfg.NotificationRetentionDays <= 0 || cfg.DeviceTokenInactivityDays <= 0 {
		return fmt.Errorf("cleanup retention days must be > 0")
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.InternalAPIToken, defaultInternalToken) {
			return fmt.Errorf("in prod/release INTERNAL_API_TOKEN must be set and not default")
		}
		if !strings.HasPrefix(cfg.AppBaseURL, "https://") {
			return fmt.Errorf("in prod/release APP_BASE_URL must be https")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
