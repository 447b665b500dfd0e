// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Messenger (Required)
	EnvFBAccessToken     = "FB_ACCESS_TOKEN"
	EnvFBVerifyToken     = "FB_VERIFY_TOKEN"
	EnvFBAppSecret       = "FB_APP_SECRET"
	EnvFBGraphAPIVersion = "FB_GRAPH_API_VERSION"
	EnvFBGraphAPIURL     = "FB_GRAPH_API_URL"

	// LINE (Optional pair)
	EnvLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "LINE_CHANNEL_SECRET"

	// Backend
	EnvListingsBaseURL = "LISTINGS_BASE_URL"

	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	// Webhook
	EnvWebhookTimeout = "WEBHOOK_TIMEOUT"
	EnvGlobalRateRPS  = "GLOBAL_RATE_RPS"

	// Sentry Feature
	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "SENTRY_RELEASE"
	EnvSentrySampleRate  = "SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken = "BETTERSTACK_TOKEN"

	// Metrics Auth Feature
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"
)
