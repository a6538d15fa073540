package chatlog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// DefaultRole is used when a message carries no author role.
const DefaultRole = "system"

// Conversation is one chat session in the export.
type Conversation struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title"`
	CreateTime Timestamp       `json:"create_time"`
	UpdateTime Timestamp       `json:"update_time"`
	Mapping    map[string]Node `json:"mapping"`

	// Err is set when the conversation could not be decoded. Such a
	// conversation has no messages and is skipped by the exporter.
	Err error `json:"-"`
}

// Node is one vertex of a conversation's message graph.
type Node struct {
	ID       string   `json:"id"`
	Message  *Message `json:"message"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
}

// Message is the payload wrapped by a Node.
type Message struct {
	ID         string    `json:"id,omitempty"`
	Author     Author    `json:"author"`
	CreateTime Timestamp `json:"create_time"`
	Content    Content   `json:"content"`
}

// Author identifies who sent a message.
type Author struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
}

// Content holds the ordered body fragments of a message.
type Content struct {
	ContentType string `json:"content_type,omitempty"`
	Parts       []Part `json:"parts"`
}

// Role returns the author role, or DefaultRole when absent.
func (m Message) Role() string {
	if m.Author.Role == "" {
		return DefaultRole
	}
	return m.Author.Role
}

// PartKind classifies a content part.
type PartKind int

// Content part kinds.
const (
	PartUnknown PartKind = iota // any other JSON shape; skipped
	PartText                    // bare JSON string
	PartObject                  // object with a string "text" field
)

// Part is one fragment of a message body.
type Part struct {
	Kind PartKind
	Text string
}

// HasText reports whether the part carries renderable text.
func (p Part) HasText() bool {
	return p.Kind == PartText || p.Kind == PartObject
}

// UnmarshalJSON classifies the raw part. It never fails: shapes that are
// neither a string nor a text-bearing object become PartUnknown.
func (p *Part) UnmarshalJSON(data []byte) error {
	*p = Part{Kind: PartUnknown}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			*p = Part{Kind: PartText, Text: s}
		}
	case '{':
		var obj struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &obj); err == nil && obj.Text != nil {
			*p = Part{Kind: PartObject, Text: *obj.Text}
		}
	}
	return nil
}

// Timestamp is an epoch-seconds value that distinguishes "absent" from zero.
type Timestamp struct {
	Seconds float64
	Valid   bool
}

// At returns a valid Timestamp for the given epoch seconds.
func At(seconds float64) Timestamp {
	return Timestamp{Seconds: seconds, Valid: true}
}

// UnmarshalJSON accepts a JSON number or a numeric string. Null and any
// other shape leave the timestamp absent.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	raw := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*t = At(f)
	return nil
}

// MarshalJSON writes the seconds value, or null when absent.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(t.Seconds, 'f', -1, 64)), nil
}

// Usable reports whether the timestamp can place a message in time.
// Epoch zero is treated like an absent value.
func (t Timestamp) Usable() bool {
	return t.Valid && t.Seconds != 0
}

// Time converts the timestamp to a time in loc. Fractional seconds are kept.
func (t Timestamp) Time(loc *time.Location) time.Time {
	sec, frac := math.Modf(t.Seconds)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).In(loc)
}

// Before orders timestamps with absent values first.
func (t Timestamp) Before(other Timestamp) bool {
	if !t.Valid {
		return other.Valid
	}
	return other.Valid && t.Seconds < other.Seconds
}
