// Package messenger connects the bot to the Messenger Platform: webhook
// verification, signed event delivery and the Send API.
package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/config"
	"github.com/staya/staya-chatbot-go/internal/ctxutil"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/logger"
)

const maxBodyBytes = 1 << 20

// Handler handles Messenger webhook requests.
type Handler struct {
	verifyToken string
	appSecret   string
	client      *Client
	processor   *bot.Processor
	logger      *logger.Logger
	wg          sync.WaitGroup // WaitGroup for async event processing

	maxEventsPerWebhook int
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	VerifyToken string
	AppSecret   string
	Client      *Client
	Processor   *bot.Processor
	Logger      *logger.Logger
	BotConfig   *config.BotConfig
}

// NewHandler creates a new Messenger webhook handler.
func NewHandler(cfg HandlerConfig) *Handler {
	maxEvents := 100
	if cfg.BotConfig != nil && cfg.BotConfig.MaxEventsPerWebhook > 0 {
		maxEvents = cfg.BotConfig.MaxEventsPerWebhook
	}
	return &Handler{
		verifyToken:         cfg.VerifyToken,
		appSecret:           cfg.AppSecret,
		client:              cfg.Client,
		processor:           cfg.Processor,
		logger:              cfg.Logger.WithModule(Platform),
		maxEventsPerWebhook: maxEvents,
	}
}

// Verify answers the subscription handshake (GET).
func (h *Handler) Verify(c *gin.Context) {
	if c.Query("hub.mode") == "subscribe" && c.Query("hub.verify_token") == h.verifyToken {
		h.logger.InfoContext(c.Request.Context(), "Webhook verified")
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	h.logger.WarnContext(c.Request.Context(), "Webhook verification failed", "mode", c.Query("hub.mode"))
	c.Status(http.StatusForbidden)
}

// Handle is the Gin handler for event delivery (POST).
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Read and authenticate the body
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Failed to read webhook body")
		c.Status(http.StatusBadRequest)
		return
	}
	if err := VerifySignature(h.appSecret, body, c.GetHeader(HeaderSignature256), c.GetHeader(HeaderSignature)); err != nil {
		h.logger.WarnContext(ctx, "Invalid webhook signature")
		c.Status(http.StatusBadRequest)
		return
	}

	// 2. Parse
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Malformed webhook body")
		c.Status(http.StatusBadRequest)
		return
	}
	if cb.Object != ObjectPage {
		h.logger.WarnContext(ctx, "Unexpected webhook object", "object", cb.Object)
		c.Status(http.StatusNotFound)
		return
	}

	// 3. Acknowledge before processing
	c.String(http.StatusOK, "EVENT_RECEIVED")

	messages := h.collect(ctx, cb)
	if len(messages) == 0 {
		return
	}

	// 4. Process events asynchronously, in order
	processingCtx := ctxutil.PreserveTracing(ctx)
	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).ErrorContext(processingCtx, "Panic in async event processing")
			}
		}()

		for _, msg := range messages {
			chat := &chat{client: h.client, recipientID: msg.SenderID}
			// Errors are logged by the processor.
			_ = h.processor.Process(processingCtx, Platform, msg, chat)
		}
	})
}

// collect converts the message events of a delivery, skipping echoes and
// malformed items.
func (h *Handler) collect(ctx context.Context, cb Callback) []*bot.Message {
	var messages []*bot.Message
	for _, entry := range cb.Entry {
		for _, event := range entry.Messaging {
			if event.Message == nil || event.Message.IsEcho {
				continue
			}
			if len(messages) >= h.maxEventsPerWebhook {
				h.logger.WarnContext(ctx, "Too many events in webhook batch; truncating",
					"limit", h.maxEventsPerWebhook)
				return messages
			}
			msg, err := ToMessage(event)
			if err != nil {
				log := h.logger.WithError(err).WithField("mid", event.Message.Mid)
				if errors.IsMalformedPayload(err) {
					log.WarnContext(ctx, "Skipping malformed event")
				} else {
					log.ErrorContext(ctx, "Failed to convert event")
				}
				continue
			}
			messages = append(messages, msg)
		}
	}
	return messages
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
