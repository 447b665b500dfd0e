package bot

import (
	"context"
	"time"

	"github.com/staya/staya-chatbot-go/internal/config"
	"github.com/staya/staya-chatbot-go/internal/ctxutil"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/logger"
	"github.com/staya/staya-chatbot-go/internal/metrics"
	"github.com/staya/staya-chatbot-go/internal/sentry"
	"golang.org/x/text/unicode/norm"
)

// Processor is the per-event entry point shared by every platform adapter.
// It normalises the message, bounds processing time, dispatches to the
// registry, and is the single place where handler errors are logged.
type Processor struct {
	registry *Registry
	logger   *logger.Logger
	metrics  *metrics.Metrics

	webhookTimeout time.Duration
}

// ProcessorConfig holds configuration for creating a new Processor.
type ProcessorConfig struct {
	Registry  *Registry
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	BotConfig *config.BotConfig
}

// NewProcessor creates a new event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	timeout := config.WebhookProcessing
	if cfg.BotConfig != nil && cfg.BotConfig.WebhookTimeout > 0 {
		timeout = cfg.BotConfig.WebhookTimeout
	}
	return &Processor{
		registry:       cfg.Registry,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		webhookTimeout: timeout,
	}
}

// Process handles one inbound message from platform and replies through chat.
// The returned error has already been logged and reported; callers must not
// log it again.
func (p *Processor) Process(ctx context.Context, platform string, msg *Message, chat Chat) error {
	start := time.Now()

	ctx = ctxutil.WithPlatform(ctx, platform)
	ctx = ctxutil.WithUserID(ctx, msg.SenderID)
	ctx = ctxutil.WithChatID(ctx, msg.ChatID)
	ctx = ctxutil.WithMessageID(ctx, msg.ID)

	normalized := *msg
	normalized.Text = norm.NFC.String(msg.Text)

	processCtx, cancel := context.WithTimeout(ctx, p.webhookTimeout)
	defer cancel()

	h, err := p.registry.Dispatch(processCtx, &normalized, chat)
	duration := time.Since(start).Seconds()

	if h == nil {
		p.metrics.RecordWebhook(platform, "none", "unmatched", duration)
		p.logger.DebugContext(ctx, "No handler matched message",
			"text_length", len(normalized.Text),
			"attachments", len(normalized.Attachments),
		)
		return nil
	}

	if err == nil {
		p.metrics.RecordWebhook(platform, h.Name(), "success", duration)
		return nil
	}

	log := p.logger.WithModule(h.Name()).WithError(err)
	tags := map[string]string{"platform": platform, "handler": h.Name(), "error_source": errors.Module(err)}

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		p.metrics.RecordWebhook(platform, h.Name(), "panic", duration)
		log.ErrorContext(ctx, "Handler panicked",
			"panic", panicErr.Value,
			"stack", string(panicErr.Stack),
		)
		sentry.CaptureExceptionWithContext(ctx, err, tags)
		return err
	}

	p.metrics.RecordWebhook(platform, h.Name(), "error", duration)
	log.ErrorContext(ctx, "Failed to process message", "error_source", errors.Module(err))
	sentry.CaptureExceptionWithContext(ctx, err, tags)
	return err
}
