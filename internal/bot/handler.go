// Package bot provides the platform-neutral message model, the handler
// interface implemented by bot modules, and the processor that dispatches
// inbound messages to them.
package bot

import (
	"context"
)

// Handler defines the interface that all bot modules must implement.
type Handler interface {
	// Name identifies the module in logs and metrics.
	Name() string

	// CanHandle reports whether this handler takes the message.
	// It must not block or perform I/O.
	CanHandle(msg *Message) bool

	// Handle processes the message and replies through chat.
	// The context carries the per-event processing deadline.
	// A returned error has not been logged yet.
	Handle(ctx context.Context, msg *Message, chat Chat) error
}

// Chat is the reply channel of one inbound message. Implementations are
// provided by the platform adapters (Messenger, LINE).
type Chat interface {
	// Say sends a plain text message.
	Say(ctx context.Context, text string) error

	// SayCards sends one message carrying a list of cards.
	SayCards(ctx context.Context, cards []Card) error
}
