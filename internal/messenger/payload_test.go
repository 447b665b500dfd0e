package messenger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvent(t *testing.T, raw string) MessagingEvent {
	t.Helper()
	var ev MessagingEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

func TestToMessage_Text(t *testing.T) {
	t.Parallel()

	ev := decodeEvent(t, `{
		"sender":{"id":"1254459154682919"},
		"recipient":{"id":"PAGE"},
		"timestamp":1700000000000,
		"message":{"mid":"mid.1","text":"hello"}
	}`)

	msg, err := ToMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, "mid.1", msg.ID)
	assert.Equal(t, "1254459154682919", msg.SenderID)
	assert.Equal(t, msg.SenderID, msg.ChatID)
	assert.Equal(t, "hello", msg.Text)
	assert.Empty(t, msg.Attachments)
	assert.True(t, msg.Timestamp.Equal(time.UnixMilli(1700000000000)))
}

func TestToMessage_Location(t *testing.T) {
	t.Parallel()

	ev := decodeEvent(t, `{
		"sender":{"id":"u"},
		"message":{"mid":"mid.2","attachments":[{
			"type":"location",
			"title":"Central Park",
			"url":"https://l.facebook.com/...",
			"payload":{"coordinates":{"lat":40.78,"long":-73.97}}
		}]}
	}`)

	msg, err := ToMessage(ev)
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, bot.LocationAttachment{
		Title:       "Central Park",
		Coordinates: bot.Coordinates{Long: -73.97, Lat: 40.78},
	}, msg.Attachments[0])
}

func TestToMessage_OtherAttachment(t *testing.T) {
	t.Parallel()

	ev := decodeEvent(t, `{
		"sender":{"id":"u"},
		"message":{"mid":"mid.3","attachments":[{"type":"image","payload":{"url":"https://img"}}]}
	}`)

	msg, err := ToMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, []bot.Attachment{bot.OtherAttachment{Type: "image"}}, msg.Attachments)
}

func TestToMessage_LaterMalformedAttachmentKept(t *testing.T) {
	t.Parallel()

	ev := decodeEvent(t, `{
		"sender":{"id":"u"},
		"message":{"mid":"mid.4","attachments":[
			{"type":"location","title":"Home","payload":{"coordinates":{"lat":1.5,"long":2.5}}},
			{"type":"location","payload":{}}
		]}
	}`)

	msg, err := ToMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, []bot.Attachment{
		bot.LocationAttachment{Title: "Home", Coordinates: bot.Coordinates{Long: 2.5, Lat: 1.5}},
		bot.OtherAttachment{Type: "location"},
	}, msg.Attachments)
}

func TestToMessage_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"no message", `{"sender":{"id":"u"}}`},
		{"location without payload", `{"sender":{"id":"u"},"message":{"attachments":[{"type":"location"}]}}`},
		{"location without coordinates", `{"sender":{"id":"u"},"message":{"attachments":[{"type":"location","payload":{}}]}}`},
		{"location missing lat", `{"sender":{"id":"u"},"message":{"attachments":[{"type":"location","payload":{"coordinates":{"long":1}}}]}}`},
		{"location bad payload", `{"sender":{"id":"u"},"message":{"attachments":[{"type":"location","payload":"oops"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ToMessage(decodeEvent(t, tt.raw))
			require.Error(t, err)
			assert.True(t, errors.IsMalformedPayload(err))
		})
	}
}
