// Package line connects the bot to the LINE Messaging API as a second
// channel next to Messenger.
package line

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/config"
	"github.com/staya/staya-chatbot-go/internal/ctxutil"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/logger"
	"github.com/staya/staya-chatbot-go/internal/metrics"
	"github.com/staya/staya-chatbot-go/internal/ratelimit"
)

// Handler handles LINE webhook events
type Handler struct {
	channelSecret string
	api           MessagingAPI
	processor     *bot.Processor
	limiter       *ratelimit.Limiter
	metrics       *metrics.Metrics
	logger        *logger.Logger
	wg            sync.WaitGroup // WaitGroup for async event processing

	maxEventsPerWebhook int
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	// API overrides the Messaging API client built from ChannelToken.
	API       MessagingAPI
	Processor *bot.Processor
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	BotConfig *config.BotConfig
}

// NewHandler creates a new LINE webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	api := cfg.API
	if api == nil {
		client, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
		if err != nil {
			return nil, fmt.Errorf("create messaging API client: %w", err)
		}
		api = client
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(0, cfg.Metrics)
	}

	maxEvents := 100
	if cfg.BotConfig != nil && cfg.BotConfig.MaxEventsPerWebhook > 0 {
		maxEvents = cfg.BotConfig.MaxEventsPerWebhook
	}

	return &Handler{
		channelSecret:       cfg.ChannelSecret,
		api:                 api,
		processor:           cfg.Processor,
		limiter:             limiter,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule(Platform),
		maxEventsPerWebhook: maxEvents,
	}, nil
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Parse request
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.WarnContext(ctx, "Invalid webhook signature")
		} else {
			h.logger.WithError(err).WarnContext(ctx, "Failed to parse webhook request")
		}
		c.Status(http.StatusBadRequest)
		return
	}

	// 2. Return 200 OK immediately (LINE requirement)
	c.Status(http.StatusOK)

	events := cb.Events
	if len(events) > h.maxEventsPerWebhook {
		h.logger.WarnContext(ctx, "Too many events in webhook batch; truncating",
			"event_count", len(events),
			"limit", h.maxEventsPerWebhook)
		events = events[:h.maxEventsPerWebhook]
	}
	if len(events) == 0 {
		return
	}

	// Copy events to avoid race condition after HTTP response completes
	pending := make([]webhook.EventInterface, len(events))
	copy(pending, events)

	// 3. Process events asynchronously, in order
	processingCtx := ctxutil.PreserveTracing(ctx)
	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).ErrorContext(processingCtx, "Panic in async event processing")
			}
		}()

		for _, event := range pending {
			h.processEvent(processingCtx, event)
		}
	})
}

// processEvent handles a single webhook event. Only message events are
// answered; follows, postbacks and the like are ignored.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		h.logger.DebugContext(ctx, "Unsupported event type", "event_type", fmt.Sprintf("%T", event))
		return
	}

	if e.WebhookEventId != "" {
		ctx = ctxutil.WithRequestID(ctx, e.WebhookEventId)
	}
	log := h.logger
	if e.DeliveryContext != nil && e.DeliveryContext.IsRedelivery {
		log = log.WithField("is_redelivery", true)
	}

	msg, err := ToMessage(e)
	if err != nil {
		if errors.IsMalformedPayload(err) {
			log.WithError(err).WarnContext(ctx, "Skipping malformed event")
		} else {
			log.WithError(err).ErrorContext(ctx, "Failed to convert event")
		}
		return
	}

	chat := &chat{
		api:        h.api,
		limiter:    h.limiter,
		metrics:    h.metrics,
		logger:     h.logger,
		replyToken: e.ReplyToken,
		to:         msg.ChatID,
	}
	// Errors are logged by the processor.
	_ = h.processor.Process(ctx, Platform, msg, chat)
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
