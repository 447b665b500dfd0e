package bot

import "time"

// Attachment kinds as reported by the platforms.
const (
	AttachmentLocation = "location"
)

// ActionWebURL is the only card default action type the bot produces.
const ActionWebURL = "web_url"

// Message is an inbound user message after platform conversion.
// Handlers must treat it as read-only.
type Message struct {
	ID          string
	SenderID    string
	ChatID      string
	Text        string
	Attachments []Attachment
	Timestamp   time.Time
}

// FirstAttachment returns the first attachment, if any.
func (m *Message) FirstAttachment() (Attachment, bool) {
	if len(m.Attachments) == 0 {
		return nil, false
	}
	return m.Attachments[0], true
}

// Attachment is one of LocationAttachment or OtherAttachment.
type Attachment interface {
	Kind() string
	isAttachment()
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Long float64
	Lat  float64
}

// LocationAttachment is a shared location. Title may be empty.
type LocationAttachment struct {
	Title       string
	Coordinates Coordinates
}

func (LocationAttachment) Kind() string  { return AttachmentLocation }
func (LocationAttachment) isAttachment() {}

// OtherAttachment is any attachment the bot does not act on (image, file, ...).
type OtherAttachment struct {
	Type string
}

func (a OtherAttachment) Kind() string { return a.Type }
func (OtherAttachment) isAttachment()  {}

// Card is one element of a card-list message.
type Card struct {
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle"`
	ImageURL      string     `json:"image_url"`
	DefaultAction CardAction `json:"default_action"`
}

// CardAction is the action taken when a card is tapped.
type CardAction struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
