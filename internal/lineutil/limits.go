package lineutil

// LINE API Character Limits (Rune count)
// References: https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000 // Text message max content length
	MaxAltTextLength     = 400  // Template message alt text length

	// Template Message Limits
	MaxTemplateTitleLength  = 40 // Carousel template title
	MaxCarouselTemplateText = 60 // Carousel template text with image or title
	MaxCarouselColumnCount  = 10 // Max columns in a carousel
	MaxActionLabelLength    = 20 // Template action label
)
