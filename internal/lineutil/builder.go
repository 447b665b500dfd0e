// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// CarouselColumn represents a column in a carousel template.
type CarouselColumn struct {
	ThumbnailImageURL string
	Title             string
	Text              string
	DefaultAction     Action
	Actions           []Action
}

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// emptyColumnText stands in for an empty carousel text or title, which the API rejects.
const emptyColumnText = "-"

// NewTextMessage creates a simple text message.
// LINE API limits: max 5000 characters per text message
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: TruncateRunes(text, MaxTextMessageLength),
	}
}

// NewCarouselTemplate creates a carousel template message with multiple columns.
// The altText is displayed in push notifications and chat lists.
// Columns beyond the API limit are dropped and over-long fields truncated.
// LINE API limits: max 10 columns, title 40 and text 60 characters
//
// LINE rejects a carousel whose columns disagree on having a title or a
// thumbnail, and thumbnails must be HTTPS. When some columns have a title,
// untitled ones get a placeholder; when any thumbnail is missing or not
// HTTPS, all thumbnails are dropped.
func NewCarouselTemplate(altText string, columns []CarouselColumn) *messaging_api.TemplateMessage {
	if len(columns) > MaxCarouselColumnCount {
		columns = columns[:MaxCarouselColumnCount]
	}
	columns = normalizeColumns(columns)

	templateColumns := make([]messaging_api.CarouselColumn, len(columns))
	for i, col := range columns {
		text := TruncateRunes(col.Text, MaxCarouselTemplateText)
		if text == "" {
			text = emptyColumnText
		}
		templateColumns[i] = messaging_api.CarouselColumn{
			ThumbnailImageUrl: col.ThumbnailImageURL,
			Title:             TruncateRunes(col.Title, MaxTemplateTitleLength),
			Text:              text,
			DefaultAction:     col.DefaultAction,
			Actions:           col.Actions,
		}
	}

	return &messaging_api.TemplateMessage{
		AltText: TruncateRunes(altText, MaxAltTextLength),
		Template: &messaging_api.CarouselTemplate{
			Columns: templateColumns,
		},
	}
}

// normalizeColumns returns a copy of columns that agree on titles and thumbnails.
func normalizeColumns(columns []CarouselColumn) []CarouselColumn {
	out := make([]CarouselColumn, len(columns))
	copy(out, columns)

	anyTitle, allThumbnails := false, true
	for _, col := range out {
		if col.Title != "" {
			anyTitle = true
		}
		if !strings.HasPrefix(col.ThumbnailImageURL, "https://") {
			allThumbnails = false
		}
	}

	for i := range out {
		if anyTitle && out[i].Title == "" {
			out[i].Title = emptyColumnText
		}
		if !allThumbnails {
			out[i].ThumbnailImageURL = ""
		}
	}
	return out
}

// NewURIAction creates a URI action that opens a URL when clicked.
// The label is displayed on the button, and uri is the URL to open.
func NewURIAction(label, uri string) Action {
	return &messaging_api.UriAction{
		Label: TruncateRunes(label, MaxActionLabelLength),
		Uri:   uri,
	}
}

// TruncateRunes truncates text by rune count (not byte count) to properly handle UTF-8.
// Returns truncated string with "..." if exceeds maxRunes.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
