package messenger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
)

// ObjectPage is the only webhook object type the bot subscribes to.
const ObjectPage = "page"

// Callback is the body of a webhook POST.
type Callback struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the events of one page.
type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is one item of entry[].messaging[]. Only message events
// are acted on; postbacks, deliveries and reads are ignored.
type MessagingEvent struct {
	Sender    Participant     `json:"sender"`
	Recipient Participant     `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *InboundMessage `json:"message,omitempty"`
}

// Participant is a page-scoped ID.
type Participant struct {
	ID string `json:"id"`
}

// InboundMessage is the message object of a messaging event.
type InboundMessage struct {
	Mid         string           `json:"mid"`
	Text        string           `json:"text,omitempty"`
	IsEcho      bool             `json:"is_echo,omitempty"`
	Attachments []WireAttachment `json:"attachments,omitempty"`
}

// WireAttachment is an attachment as delivered by the platform. The payload
// shape depends on Type and is decoded lazily.
type WireAttachment struct {
	Type    string          `json:"type"`
	Title   string          `json:"title,omitempty"`
	URL     string          `json:"url,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type locationPayload struct {
	Coordinates *struct {
		Lat  *float64 `json:"lat"`
		Long *float64 `json:"long"`
	} `json:"coordinates"`
}

// ToMessage converts a messaging event into the platform-neutral message.
// Handlers only look at the first attachment, so only a malformed first
// location fails with errors.ErrMalformedPayload; later malformed ones are
// kept as OtherAttachment.
func ToMessage(event MessagingEvent) (*bot.Message, error) {
	if event.Message == nil {
		return nil, fmt.Errorf("event has no message: %w", errors.ErrMalformedPayload)
	}

	msg := &bot.Message{
		ID:       event.Message.Mid,
		SenderID: event.Sender.ID,
		ChatID:   event.Sender.ID,
		Text:     event.Message.Text,
	}
	if event.Timestamp > 0 {
		msg.Timestamp = time.UnixMilli(event.Timestamp)
	}

	for i, a := range event.Message.Attachments {
		att, err := toAttachment(a)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("attachment 0: %w", err)
			}
			att = bot.OtherAttachment{Type: a.Type}
		}
		msg.Attachments = append(msg.Attachments, att)
	}
	return msg, nil
}

func toAttachment(a WireAttachment) (bot.Attachment, error) {
	if a.Type != bot.AttachmentLocation {
		return bot.OtherAttachment{Type: a.Type}, nil
	}

	var p locationPayload
	if len(a.Payload) == 0 {
		return nil, fmt.Errorf("location without payload: %w", errors.ErrMalformedPayload)
	}
	if err := json.Unmarshal(a.Payload, &p); err != nil {
		return nil, fmt.Errorf("location payload: %w: %w", errors.ErrMalformedPayload, err)
	}
	if p.Coordinates == nil || p.Coordinates.Lat == nil || p.Coordinates.Long == nil {
		return nil, fmt.Errorf("location without coordinates: %w", errors.ErrMalformedPayload)
	}

	return bot.LocationAttachment{
		Title: a.Title,
		Coordinates: bot.Coordinates{
			Long: *p.Coordinates.Long,
			Lat:  *p.Coordinates.Lat,
		},
	}, nil
}
