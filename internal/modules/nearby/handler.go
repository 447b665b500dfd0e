// Package nearby implements the attachment module: a shared location is
// answered with the listings near it, rendered as cards.
package nearby

import (
	"context"
	"fmt"

	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/listings"
	"github.com/staya/staya-chatbot-go/internal/logger"
)

// Module constants
const (
	ModuleName = "nearby"

	introFormat = "Showing you listings nearby %s..."
)

// ListingsFetcher fetches listings around a point.
type ListingsFetcher interface {
	Nearby(ctx context.Context, coords listings.Coordinates) ([]listings.Listing, error)
}

// Handler answers location attachments with nearby listings.
type Handler struct {
	fetcher ListingsFetcher
	logger  *logger.Logger

	fetchErr  *errors.ErrorWrapper
	formatErr *errors.ErrorWrapper
	sendErr   *errors.ErrorWrapper
}

// NewHandler creates a new nearby listings handler.
func NewHandler(fetcher ListingsFetcher, logger *logger.Logger) *Handler {
	return &Handler{
		fetcher:   fetcher,
		logger:    logger,
		fetchErr:  errors.NewWrapper(ModuleName, "fetch_listings"),
		formatErr: errors.NewWrapper(ModuleName, "format_cards"),
		sendErr:   errors.NewWrapper(ModuleName, "send_reply"),
	}
}

// Name returns the module name
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true for any message carrying attachments.
func (h *Handler) CanHandle(msg *bot.Message) bool {
	return len(msg.Attachments) > 0
}

// Handle inspects the first attachment only. Anything but a location is
// ignored. For a location, the listings are fetched once; on success the
// intro text is sent followed by one card-list message.
func (h *Handler) Handle(ctx context.Context, msg *bot.Message, chat bot.Chat) error {
	first, ok := msg.FirstAttachment()
	if !ok {
		return nil
	}
	loc, ok := first.(bot.LocationAttachment)
	if !ok {
		h.logger.WithModule(ModuleName).DebugContext(ctx, "Ignoring attachment", "kind", first.Kind())
		return nil
	}

	records, err := h.fetcher.Nearby(ctx, listings.Coordinates{
		Long: loc.Coordinates.Long,
		Lat:  loc.Coordinates.Lat,
	})
	if err != nil {
		return h.fetchErr.Wrap(err)
	}

	h.logger.WithModule(ModuleName).DebugContext(ctx, "Fetched nearby listings", "count", len(records))

	if err := chat.Say(ctx, fmt.Sprintf(introFormat, loc.Title)); err != nil {
		return h.sendErr.Wrap(err)
	}

	cards, err := FormatCards(records)
	if err != nil {
		return h.formatErr.Wrap(err)
	}

	if err := chat.SayCards(ctx, cards); err != nil {
		return h.sendErr.Wrap(err)
	}
	return nil
}
