package line

import (
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessage_Text(t *testing.T) {
	t.Parallel()

	msg, err := ToMessage(webhook.MessageEvent{
		Source:    webhook.UserSource{UserId: "U1"},
		Timestamp: 1700000000000,
		Message:   webhook.TextMessageContent{Id: "m1", Text: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, "U1", msg.SenderID)
	assert.Equal(t, "U1", msg.ChatID)
	assert.Empty(t, msg.Attachments)
	assert.True(t, msg.Timestamp.Equal(time.UnixMilli(1700000000000)))
}

func TestToMessage_Location(t *testing.T) {
	t.Parallel()

	msg, err := ToMessage(webhook.MessageEvent{
		Source: webhook.GroupSource{GroupId: "G1", UserId: "U1"},
		Message: webhook.LocationMessageContent{
			Id:        "m2",
			Title:     "Central Park",
			Address:   "New York, NY",
			Latitude:  40.78,
			Longitude: -73.97,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "G1", msg.ChatID)
	assert.Equal(t, "U1", msg.SenderID)
	assert.Equal(t, []bot.Attachment{bot.LocationAttachment{
		Title:       "Central Park",
		Coordinates: bot.Coordinates{Long: -73.97, Lat: 40.78},
	}}, msg.Attachments)
}

func TestToMessage_LocationWithoutTitleUsesAddress(t *testing.T) {
	t.Parallel()

	msg, err := ToMessage(webhook.MessageEvent{
		Source:  webhook.UserSource{UserId: "U1"},
		Message: webhook.LocationMessageContent{Address: "Taipei 101", Latitude: 25.03, Longitude: 121.56},
	})
	require.NoError(t, err)
	loc := msg.Attachments[0].(bot.LocationAttachment)
	assert.Equal(t, "Taipei 101", loc.Title)
}

func TestToMessage_OtherContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content webhook.MessageContentInterface
		want    string
	}{
		{
			name: "type set by decoder",
			content: webhook.StickerMessageContent{
				MessageContent: webhook.MessageContent{Type: "sticker"},
				Id:             "m3",
				PackageId:      "1",
				StickerId:      "2",
			},
			want: "sticker",
		},
		{
			name:    "type left empty",
			content: webhook.StickerMessageContent{Id: "m3", PackageId: "1", StickerId: "2"},
			want:    "sticker",
		},
		{
			name:    "image",
			content: webhook.ImageMessageContent{Id: "m4"},
			want:    "image",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := ToMessage(webhook.MessageEvent{
				Source:  webhook.RoomSource{RoomId: "R1", UserId: "U1"},
				Message: tt.content,
			})
			require.NoError(t, err)
			assert.Equal(t, "R1", msg.ChatID)
			require.Len(t, msg.Attachments, 1)
			assert.Equal(t, tt.want, msg.Attachments[0].Kind())
		})
	}
}

func TestToMessage_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ToMessage(webhook.MessageEvent{Source: webhook.UserSource{UserId: "U1"}})
	assert.True(t, errors.IsMalformedPayload(err))

	_, err = ToMessage(webhook.MessageEvent{Message: webhook.TextMessageContent{Text: "hi"}})
	assert.True(t, errors.IsMalformedPayload(err))
}

func TestSourceHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   webhook.SourceInterface
		chatID   string
		userID   string
		personal bool
	}{
		{"user", webhook.UserSource{UserId: "U1"}, "U1", "U1", true},
		{"group", webhook.GroupSource{GroupId: "G1", UserId: "U2"}, "G1", "U2", false},
		{"room", webhook.RoomSource{RoomId: "R1", UserId: "U3"}, "R1", "U3", false},
		{"nil", nil, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.chatID, GetChatID(tt.source))
			assert.Equal(t, tt.userID, GetUserID(tt.source))
			assert.Equal(t, tt.personal, IsPersonalChat(tt.source))
		})
	}
}
