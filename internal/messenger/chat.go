package messenger

import (
	"context"

	"github.com/staya/staya-chatbot-go/internal/bot"
)

// chat replies to the sender of one message.
type chat struct {
	client      *Client
	recipientID string
}

var _ bot.Chat = (*chat)(nil)

func (c *chat) Say(ctx context.Context, text string) error {
	return c.client.SendText(ctx, c.recipientID, text)
}

func (c *chat) SayCards(ctx context.Context, cards []bot.Card) error {
	return c.client.SendCards(ctx, c.recipientID, cards)
}
