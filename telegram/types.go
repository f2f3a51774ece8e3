package telegram

import (
	"encoding/json"
	"strings"
)

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
	// Users sometimes @mention or reply by editing an existing message.
	EditedMessage *Message `json:"edited_message,omitempty"`
}

type Message struct {
	MessageID int64    `json:"message_id"`
	Chat      *Chat    `json:"chat,omitempty"`
	From      *User    `json:"from,omitempty"`
	ReplyTo   *Message `json:"reply_to_message,omitempty"`
	Text      string   `json:"text,omitempty"`
	Caption   string   `json:"caption,omitempty"`

	// Non-text payload markers; content is relayed by reference via
	// copyMessage, so the shapes are opaque here.
	Photo     json.RawMessage `json:"photo,omitempty"`
	Document  json.RawMessage `json:"document,omitempty"`
	Video     json.RawMessage `json:"video,omitempty"`
	Voice     json.RawMessage `json:"voice,omitempty"`
	Audio     json.RawMessage `json:"audio,omitempty"`
	Sticker   json.RawMessage `json:"sticker,omitempty"`
	Animation json.RawMessage `json:"animation,omitempty"`
}

// IsText reports whether the message body is plain text (as opposed to a
// media payload that must be relayed with CopyMessage).
func (m *Message) IsText() bool {
	if m == nil {
		return false
	}
	if strings.TrimSpace(m.Text) != "" {
		return true
	}
	return len(m.Photo) == 0 && len(m.Document) == 0 && len(m.Video) == 0 &&
		len(m.Voice) == 0 && len(m.Audio) == 0 && len(m.Sticker) == 0 &&
		len(m.Animation) == 0
}

// BodyText is the human-readable body used in forward headers.
func (m *Message) BodyText() string {
	if m == nil {
		return ""
	}
	if t := strings.TrimSpace(m.Text); t != "" {
		return t
	}
	if c := strings.TrimSpace(m.Caption); c != "" {
		return c
	}
	return "[non-text message]"
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"` // private|group|supergroup|channel
}

func (c *Chat) IsPrivate() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Type), "private")
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName is the user's full name, falling back to the username or id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.Username
}
