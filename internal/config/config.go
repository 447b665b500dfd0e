// Package config provides application configuration management.
// It loads settings from a .env file and environment variables and provides
// defaults for the server, the webhook pipeline and optional integrations.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultListingsBaseURL is the backend the bot queries for nearby listings.
const DefaultListingsBaseURL = "http://localhost:8000/api/v1/"

// Config holds all application configuration
type Config struct {
	// Messenger Configuration
	FBAccessToken     string
	FBVerifyToken     string
	FBAppSecret       string
	FBGraphAPIURL     string
	FBGraphAPIVersion string

	// LINE Configuration (optional; both or neither)
	LineChannelToken  string
	LineChannelSecret string

	// Backend Configuration
	ListingsBaseURL string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64

	// Better Stack Configuration
	BetterStackToken string

	// Metrics Authentication
	MetricsUsername string
	MetricsPassword string

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds event pipeline configuration
type BotConfig struct {
	WebhookTimeout      time.Duration // Timeout for processing one event (see config/timeouts.go)
	GlobalRateRPS       float64       // Outbound send rate shared by all platforms
	MaxEventsPerWebhook int           // Events beyond this in one delivery are dropped
}

// Validate checks bot configuration bounds.
func (b BotConfig) Validate() error {
	var errs []error
	if b.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvWebhookTimeout, b.WebhookTimeout))
	}
	if b.GlobalRateRPS <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvGlobalRateRPS, b.GlobalRateRPS))
	}
	if b.MaxEventsPerWebhook <= 0 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", b.MaxEventsPerWebhook))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		FBAccessToken:     getEnv(EnvFBAccessToken, ""),
		FBVerifyToken:     getEnv(EnvFBVerifyToken, ""),
		FBAppSecret:       getEnv(EnvFBAppSecret, ""),
		FBGraphAPIURL:     getEnv(EnvFBGraphAPIURL, "https://graph.facebook.com"),
		FBGraphAPIVersion: getEnv(EnvFBGraphAPIVersion, "v21.0"),

		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		ListingsBaseURL: getEnv(EnvListingsBaseURL, DefaultListingsBaseURL),

		Port:            getEnv(EnvPort, "5000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken: getEnv(EnvBetterStackToken, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		Bot: BotConfig{
			WebhookTimeout:      getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
			GlobalRateRPS:       getFloatEnv(EnvGlobalRateRPS, 80.0),
			MaxEventsPerWebhook: 100,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.FBAccessToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvFBAccessToken))
	}
	if c.FBVerifyToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvFBVerifyToken))
	}
	if c.FBAppSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvFBAppSecret))
	}
	if (c.LineChannelToken == "") != (c.LineChannelSecret == "") {
		errs = append(errs, fmt.Errorf("%s and %s must be set together", EnvLineChannelAccessToken, EnvLineChannelSecret))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if err := validateBaseURL(c.ListingsBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvListingsBaseURL, err))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	return errors.Join(errs...)
}

// validateBaseURL requires an absolute http(s) URL ending in "/" so that
// resource paths can be appended verbatim.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	if !strings.HasSuffix(raw, "/") {
		return errors.New("must end with a slash")
	}
	return nil
}

// LineEnabled reports whether the LINE channel is configured.
func (c *Config) LineEnabled() bool {
	return c.LineChannelToken != "" && c.LineChannelSecret != ""
}

// MetricsAuthEnabled reports whether /metrics requires Basic Auth.
func (c *Config) MetricsAuthEnabled() bool {
	return c.MetricsPassword != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
