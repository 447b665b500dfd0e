package line

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/lineutil"
	"github.com/staya/staya-chatbot-go/internal/logger"
	"github.com/staya/staya-chatbot-go/internal/metrics"
	"github.com/staya/staya-chatbot-go/internal/ratelimit"
)

// Platform is the metrics and log label of this adapter.
const Platform = "line"

// Column button label for the card URL.
const viewLabel = "View"

// MessagingAPI is the subset of the Messaging API client the bot uses.
// *messaging_api.MessagingApiAPI implements it.
type MessagingAPI interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// chat replies to one event. The reply token is single-use, so the first
// message is a reply and later ones are pushed to the chat.
type chat struct {
	api        MessagingAPI
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
	logger     *logger.Logger
	replyToken string
	to         string
}

var _ bot.Chat = (*chat)(nil)

func (c *chat) Say(ctx context.Context, text string) error {
	return c.send(ctx, "text", lineutil.NewTextMessage(text))
}

// SayCards renders cards as a carousel. LINE rejects empty carousels, so an
// empty list sends nothing.
func (c *chat) SayCards(ctx context.Context, cards []bot.Card) error {
	if len(cards) == 0 {
		c.logger.DebugContext(ctx, "Skipping empty card list")
		return nil
	}
	return c.send(ctx, "cards", newCarousel(cards))
}

// newCarousel maps cards to carousel columns. lineutil evens out titles and
// thumbnails across columns, so plain-HTTP listing images are not shown.
func newCarousel(cards []bot.Card) *messaging_api.TemplateMessage {
	columns := make([]lineutil.CarouselColumn, len(cards))
	titles := make([]string, len(cards))
	for i, card := range cards {
		columns[i] = lineutil.CarouselColumn{
			ThumbnailImageURL: card.ImageURL,
			Title:             card.Title,
			Text:              card.Subtitle,
			DefaultAction:     lineutil.NewURIAction(viewLabel, card.DefaultAction.URL),
			Actions:           []lineutil.Action{lineutil.NewURIAction(viewLabel, card.DefaultAction.URL)},
		}
		titles[i] = card.Title
	}
	return lineutil.NewCarouselTemplate(strings.Join(titles, ", "), columns)
}

func (c *chat) send(ctx context.Context, kind string, msg messaging_api.MessageInterface) error {
	if err := c.limiter.Wait(ctx, Platform); err != nil {
		c.metrics.RecordOutbound(Platform, kind, "error")
		return &errors.SendError{Platform: Platform, Err: err}
	}

	var err error
	if c.replyToken != "" {
		token := c.replyToken
		c.replyToken = ""
		_, err = c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
			ReplyToken: token,
			Messages:   []messaging_api.MessageInterface{msg},
		})
	} else {
		_, err = c.api.PushMessage(&messaging_api.PushMessageRequest{
			To:       c.to,
			Messages: []messaging_api.MessageInterface{msg},
		}, uuid.NewString())
	}

	if err != nil {
		c.metrics.RecordOutbound(Platform, kind, "error")
		return &errors.SendError{Platform: Platform, Err: err}
	}
	c.metrics.RecordOutbound(Platform, kind, "success")
	return nil
}
