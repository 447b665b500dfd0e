// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/buildinfo"
	"github.com/staya/staya-chatbot-go/internal/config"
	"github.com/staya/staya-chatbot-go/internal/ctxutil"
	"github.com/staya/staya-chatbot-go/internal/line"
	"github.com/staya/staya-chatbot-go/internal/listings"
	"github.com/staya/staya-chatbot-go/internal/logger"
	"github.com/staya/staya-chatbot-go/internal/messenger"
	"github.com/staya/staya-chatbot-go/internal/metrics"
	"github.com/staya/staya-chatbot-go/internal/modules/greeting"
	"github.com/staya/staya-chatbot-go/internal/modules/nearby"
	"github.com/staya/staya-chatbot-go/internal/ratelimit"
	"github.com/staya/staya-chatbot-go/internal/sentry"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName   = "staya-chatbot-go"
	homepageURL   = "https://staya.com"
	requestIDHead = "X-Request-ID"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg              *config.Config
	logger           *logger.Logger
	metrics          *metrics.Metrics
	registry         *prometheus.Registry
	processor        *bot.Processor
	messengerHandler *messenger.Handler
	lineHandler      *line.Handler // nil unless LINE credentials are configured
	router           *gin.Engine
	server           *http.Server
	shuttingDown     atomic.Bool
}

// Option customizes Initialize. Used by tests to capture logs and stub LINE.
type Option func(*options)

type options struct {
	logWriter io.Writer
	lineAPI   line.MessagingAPI
}

// WithLogWriter sends application logs to w instead of stdout.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// WithLineAPI replaces the LINE Messaging API client.
func WithLineAPI(api line.MessagingAPI) Option {
	return func(o *options) { o.lineAPI = api }
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(cfg *config.Config, opts ...Option) (*Application, error) {
	o := options{logWriter: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.NewWithOptions(cfg.LogLevel, o.logWriter, logger.Options{
		BetterStackToken: cfg.BetterStackToken,
	})

	log = log.WithField("service", serviceName)
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls pick up ctxutil values through ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.Release()).Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.Info("Better Stack logging enabled")
	}

	release := cfg.SentryRelease
	if release == "" {
		release = buildinfo.Release()
	}
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     release,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		// Reporting is optional; the bot keeps serving without it.
		log.WithError(err).Warn("Sentry initialization failed")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	limiter := ratelimit.New(cfg.Bot.GlobalRateRPS, m)
	listingsClient := listings.NewClient(cfg.ListingsBaseURL, nil, m)

	botRegistry := bot.NewRegistry()
	botRegistry.Use(bot.RecoveryMiddleware(), bot.LoggingMiddleware(log))
	botRegistry.Register(greeting.NewHandler(log))
	botRegistry.Register(nearby.NewHandler(listingsClient, log))

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Registry:  botRegistry,
		Logger:    log,
		Metrics:   m,
		BotConfig: &cfg.Bot,
	})

	messengerClient := messenger.NewClient(messenger.ClientConfig{
		GraphAPIURL:     cfg.FBGraphAPIURL,
		GraphAPIVersion: cfg.FBGraphAPIVersion,
		AccessToken:     cfg.FBAccessToken,
		Timeout:         config.SendAPIRequest,
		Limiter:         limiter,
		Metrics:         m,
	})
	messengerHandler := messenger.NewHandler(messenger.HandlerConfig{
		VerifyToken: cfg.FBVerifyToken,
		AppSecret:   cfg.FBAppSecret,
		Client:      messengerClient,
		Processor:   processor,
		Logger:      log,
		BotConfig:   &cfg.Bot,
	})

	var lineHandler *line.Handler
	if cfg.LineEnabled() {
		h, err := line.NewHandler(line.HandlerConfig{
			ChannelSecret: cfg.LineChannelSecret,
			ChannelToken:  cfg.LineChannelToken,
			API:           o.lineAPI,
			Processor:     processor,
			Limiter:       limiter,
			Metrics:       m,
			Logger:        log,
			BotConfig:     &cfg.Bot,
		})
		if err != nil {
			return nil, err
		}
		lineHandler = h
		log.Info("LINE channel enabled")
	}

	app := &Application{
		cfg:              cfg,
		logger:           log,
		metrics:          m,
		registry:         registry,
		processor:        processor,
		messengerHandler: messengerHandler,
		lineHandler:      lineHandler,
	}
	app.router = app.newRouter()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.redirectToHomepage)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)

	router.GET("/webhook", a.messengerHandler.Verify)
	router.POST("/webhook", a.acceptingMiddleware(), a.messengerHandler.Handle)
	if a.lineHandler != nil {
		router.POST("/line/webhook", a.acceptingMiddleware(), a.lineHandler.Handle)
	}

	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled(), a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

// Handler exposes the HTTP router.
func (a *Application) Handler() http.Handler {
	return a.router
}

func (a *Application) redirectToHomepage(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, homepageURL)
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) platforms() map[string]bool {
	return map[string]bool{
		messenger.Platform: a.messengerHandler != nil,
		line.Platform:      a.lineHandler != nil,
	}
}

func (a *Application) readinessCheck(c *gin.Context) {
	if a.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "shutting down",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"version":   buildinfo.Release(),
		"platforms": a.platforms(),
	})
}

// acceptingMiddleware rejects webhook deliveries with 503 once shutdown has
// begun. Both platforms redeliver on non-2xx responses.
func (a *Application) acceptingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.shuttingDown.Load() {
			a.logger.Debug("Webhook rejected: shutting down")
			c.Header("Retry-After", "30")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "shutting down",
			})
			return
		}
		c.Next()
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a server
// failure, then shuts down gracefully.
func (a *Application) Run() error {
	serverErr := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErr:
		a.logger.WithError(err).Error("HTTP server error")
		runErr = err
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	a.Shutdown(ctx)

	return runErr
}

// Shutdown stops accepting webhooks, waits for in-flight events on every
// platform, then flushes Sentry and the logger.
func (a *Application) Shutdown(ctx context.Context) {
	a.shuttingDown.Store(true)

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Waiting for webhook events to complete...")
	start := time.Now()
	var g errgroup.Group
	g.Go(func() error { return a.messengerHandler.Shutdown(ctx) })
	if a.lineHandler != nil {
		g.Go(func() error { return a.lineHandler.Shutdown(ctx) })
	}
	if err := g.Wait(); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	} else {
		a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("All webhook events completed")
	}

	if !sentry.Flush(config.SentryFlush) && sentry.IsEnabled() {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(ctx); err != nil {
		slog.Warn("Logger shutdown timed out", "error", err)
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware assigns every request an ID (taken from the proxy headers
// when present) and logs it with status-based levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader(requestIDHead)
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-ID")
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header(requestIDHead, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := log.WithRequestID(requestID).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status == 404:
			entry.Debug("HTTP request not found")
		case status >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}
