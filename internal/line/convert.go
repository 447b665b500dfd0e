package line

import (
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
)

// ToMessage converts a LINE message event into the platform-neutral message.
// Text becomes Message.Text, a location becomes a LocationAttachment and any
// other content (image, sticker, ...) an OtherAttachment of the same type.
func ToMessage(event webhook.MessageEvent) (*bot.Message, error) {
	if event.Message == nil {
		return nil, fmt.Errorf("event has no message: %w", errors.ErrMalformedPayload)
	}

	msg := &bot.Message{
		SenderID: GetUserID(event.Source),
		ChatID:   GetChatID(event.Source),
	}
	if event.Timestamp > 0 {
		msg.Timestamp = time.UnixMilli(event.Timestamp)
	}

	switch m := event.Message.(type) {
	case webhook.TextMessageContent:
		msg.ID = m.Id
		msg.Text = m.Text
	case webhook.LocationMessageContent:
		msg.ID = m.Id
		title := m.Title
		if title == "" {
			title = m.Address
		}
		msg.Attachments = []bot.Attachment{bot.LocationAttachment{
			Title: title,
			Coordinates: bot.Coordinates{
				Long: m.Longitude,
				Lat:  m.Latitude,
			},
		}}
	default:
		msg.Attachments = []bot.Attachment{bot.OtherAttachment{Type: contentType(event.Message)}}
	}

	if msg.ChatID == "" {
		return nil, fmt.Errorf("event has no source: %w", errors.ErrMalformedPayload)
	}
	return msg, nil
}

// contentType reports the message type. The SDK sets it while decoding;
// events built in code may leave it empty.
func contentType(m webhook.MessageContentInterface) string {
	if t := m.GetType(); t != "" {
		return t
	}
	switch m.(type) {
	case webhook.StickerMessageContent:
		return "sticker"
	case webhook.ImageMessageContent:
		return "image"
	case webhook.VideoMessageContent:
		return "video"
	case webhook.AudioMessageContent:
		return "audio"
	case webhook.FileMessageContent:
		return "file"
	default:
		return ""
	}
}
