// Package greeting implements the text trigger module: it answers a fixed
// set of salutations with the bot's greeting.
package greeting

import (
	"context"

	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/logger"
)

// Module constants
const (
	ModuleName = "greeting"
	Reply      = "Hello from Staya Chat Bot!"
)

var triggers = []bot.Trigger{
	bot.Keyword("hello"),
	bot.Keyword("hi"),
	bot.Pattern(`(?i)hey( there)?`),
}

// Handler answers greetings.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a new greeting handler.
func NewHandler(logger *logger.Logger) *Handler {
	return &Handler{logger: logger}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true if the message text fires any greeting trigger.
func (h *Handler) CanHandle(msg *bot.Message) bool {
	return msg.Text != "" && bot.MatchAny(triggers, msg.Text)
}

// Handle sends the greeting. It performs no other I/O.
func (h *Handler) Handle(ctx context.Context, msg *bot.Message, chat bot.Chat) error {
	trigger, _ := bot.FirstMatch(triggers, msg.Text)
	h.logger.WithModule(ModuleName).DebugContext(ctx, "Sending greeting", "trigger", trigger.String())
	return chat.Say(ctx, Reply)
}
