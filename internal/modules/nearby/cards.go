package nearby

import (
	"fmt"

	"github.com/staya/staya-chatbot-go/internal/bot"
	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/listings"
)

// DefaultActionURL is the card tap target. Listing pages are not linked yet.
const DefaultActionURL = "https://google.com"

// FormatCard maps a listing onto a card. The first image becomes the card
// image; a listing without images fails with errors.ErrListingWithoutImage.
func FormatCard(l listings.Listing) (bot.Card, error) {
	if len(l.Images) == 0 {
		return bot.Card{}, errors.ErrListingWithoutImage
	}
	return bot.Card{
		Title:    l.Title,
		Subtitle: l.Description,
		ImageURL: l.Images[0].Image,
		DefaultAction: bot.CardAction{
			Type: bot.ActionWebURL,
			URL:  DefaultActionURL,
		},
	}, nil
}

// FormatCards maps every listing in order. An empty input yields an empty,
// non-nil slice. The first listing that cannot be formatted aborts the batch.
func FormatCards(records []listings.Listing) ([]bot.Card, error) {
	cards := make([]bot.Card, 0, len(records))
	for i, l := range records {
		card, err := FormatCard(l)
		if err != nil {
			return nil, fmt.Errorf("listing %d (%q): %w", i, l.Title, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
