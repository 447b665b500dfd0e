package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/metrics"
	"github.com/staya/staya-chatbot-go/internal/ratelimit"
)

// Platform is the metrics and log label of this adapter.
const Platform = "messenger"

const messagingTypeResponse = "RESPONSE"

// Client calls the Send API.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	limiter     *ratelimit.Limiter
	metrics     *metrics.Metrics
}

// ClientConfig holds configuration for creating a new Client.
type ClientConfig struct {
	GraphAPIURL     string // e.g. https://graph.facebook.com
	GraphAPIVersion string // e.g. v21.0
	AccessToken     string
	Timeout         time.Duration
	Limiter         *ratelimit.Limiter
	Metrics         *metrics.Metrics
}

// NewClient creates a Send API client.
func NewClient(cfg ClientConfig) *Client {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(0, cfg.Metrics)
	}
	return &Client{
		endpoint:    strings.TrimRight(cfg.GraphAPIURL, "/") + "/" + cfg.GraphAPIVersion + "/me/messages",
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		metrics:     cfg.Metrics,
	}
}

type sendRequest struct {
	Recipient     Participant     `json:"recipient"`
	MessagingType string          `json:"messaging_type"`
	Message       outboundMessage `json:"message"`
}

type outboundMessage struct {
	Text       string              `json:"text,omitempty"`
	Attachment *outboundAttachment `json:"attachment,omitempty"`
}

type outboundAttachment struct {
	Type    string          `json:"type"`
	Payload genericTemplate `json:"payload"`
}

type genericTemplate struct {
	TemplateType string     `json:"template_type"`
	Elements     []bot.Card `json:"elements"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText sends a plain text message to recipientID.
func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	return c.send(ctx, "text", sendRequest{
		Recipient:     Participant{ID: recipientID},
		MessagingType: messagingTypeResponse,
		Message:       outboundMessage{Text: text},
	})
}

// SendCards sends one generic template message whose elements are cards.
// The list is sent as-is, even when empty.
func (c *Client) SendCards(ctx context.Context, recipientID string, cards []bot.Card) error {
	if cards == nil {
		cards = []bot.Card{}
	}
	return c.send(ctx, "cards", sendRequest{
		Recipient:     Participant{ID: recipientID},
		MessagingType: messagingTypeResponse,
		Message: outboundMessage{Attachment: &outboundAttachment{
			Type: "template",
			Payload: genericTemplate{
				TemplateType: "generic",
				Elements:     cards,
			},
		}},
	})
}

func (c *Client) send(ctx context.Context, kind string, payload sendRequest) error {
	status, err := c.do(ctx, payload)
	if err != nil {
		c.metrics.RecordOutbound(Platform, kind, "error")
		return &errors.SendError{Platform: Platform, StatusCode: status, Err: err}
	}
	c.metrics.RecordOutbound(Platform, kind, "success")
	return nil
}

func (c *Client) do(ctx context.Context, payload sendRequest) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	if err := c.limiter.Wait(ctx, Platform); err != nil {
		return 0, fmt.Errorf("wait for send limiter: %w", err)
	}

	endpoint := c.endpoint + "?" + url.Values{"access_token": {c.accessToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the URL, which carries the access token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gerr graphError
		if json.Unmarshal(respBody, &gerr) == nil && gerr.Error.Message != "" {
			return resp.StatusCode, fmt.Errorf("%w: %s (code %d)", errors.ErrUnexpectedStatus, gerr.Error.Message, gerr.Error.Code)
		}
		return resp.StatusCode, errors.ErrUnexpectedStatus
	}
	return resp.StatusCode, nil
}
