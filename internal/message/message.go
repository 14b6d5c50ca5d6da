// Package message defines the conversation data model shared by every
// transform: role-tagged messages whose content is either plain text or an
// ordered list of typed parts. On the wire, content is either a JSON string
// or an array of part objects.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// PartTypeText marks the only part type whose payload transforms inspect.
// Parts of any other type pass through every built-in transform unchanged.
const PartTypeText = "text"

// ContentKind discriminates the two content shapes.
type ContentKind int

const (
	// KindText is plain string content.
	KindText ContentKind = iota
	// KindParts is an ordered list of typed parts.
	KindParts
)

// Message represents a single chat message.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Content is the tagged union of the two content shapes. The zero value is
// empty plain text.
type Content struct {
	Kind  ContentKind
	Text  string
	Parts []Part
}

// Part is one element of part-list content. Fields other than "type" (and
// "text" for text parts) are carried opaquely in Extra and survive every
// transform untouched.
type Part struct {
	Type  string
	Text  string
	Extra map[string]any
}

// FormatError reports a message that does not fit the wire contract: a
// content value that is neither a string nor an array of parts, or a
// missing role/content key.
type FormatError struct {
	Index  int // position in the history, -1 when unknown
	Reason string
}

func (e *FormatError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("message %d: %s", e.Index, e.Reason)
	}
	return "message: " + e.Reason
}

// Text returns plain-text content.
func Text(role, text string) Message {
	return Message{Role: role, Content: Content{Kind: KindText, Text: text}}
}

// Validate checks the message against the wire contract.
func (m Message) Validate() error {
	if m.Role == "" {
		return &FormatError{Index: -1, Reason: "missing role"}
	}
	switch m.Content.Kind {
	case KindText, KindParts:
		return nil
	}
	return &FormatError{Index: -1, Reason: fmt.Sprintf("unknown content kind %d", m.Content.Kind)}
}

// ValidateHistory checks every message and reports the first offender with
// its position in the history.
func ValidateHistory(history []Message) error {
	for i, m := range history {
		if err := m.Validate(); err != nil {
			var fe *FormatError
			if errors.As(err, &fe) {
				fe.Index = i
			}
			return err
		}
	}
	return nil
}

// UnmarshalJSON decodes the wire shape, rejecting messages without a role
// or content key.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    *string          `json:"role"`
		Content *json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Role == nil {
		return &FormatError{Index: -1, Reason: "missing role"}
	}
	if raw.Content == nil {
		return &FormatError{Index: -1, Reason: "missing content"}
	}
	var c Content
	if err := json.Unmarshal(*raw.Content, &c); err != nil {
		return err
	}
	m.Role = *raw.Role
	m.Content = c
	return nil
}

// MarshalJSON emits plain text as a JSON string and part lists as an array
// of part objects.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Kind == KindText {
		return json.Marshal(c.Text)
	}
	parts := make([]map[string]any, 0, len(c.Parts))
	for _, p := range c.Parts {
		parts = append(parts, p.wire())
	}
	return json.Marshal(parts)
}

// UnmarshalJSON accepts a string or an array of part objects. Anything else
// is a FormatError.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Content{Kind: KindText, Text: s}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &FormatError{Index: -1, Reason: "content must be a string or an array of parts"}
	}
	parts := make([]Part, 0, len(raw))
	for i, r := range raw {
		var obj map[string]any
		if err := json.Unmarshal(r, &obj); err != nil {
			return &FormatError{Index: -1, Reason: fmt.Sprintf("content part %d is not an object", i)}
		}
		parts = append(parts, partFromWire(obj))
	}
	*c = Content{Kind: KindParts, Parts: parts}
	return nil
}

func (p Part) wire() map[string]any {
	m := make(map[string]any, len(p.Extra)+2)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["type"] = p.Type
	if p.Type == PartTypeText {
		m["text"] = p.Text
	}
	return m
}

func partFromWire(obj map[string]any) Part {
	p := Part{}
	if t, ok := obj["type"].(string); ok {
		p.Type = t
	}
	extra := make(map[string]any, len(obj))
	for k, v := range obj {
		extra[k] = v
	}
	delete(extra, "type")
	if p.Type == PartTypeText {
		if text, ok := extra["text"].(string); ok {
			p.Text = text
		}
		delete(extra, "text")
	}
	if len(extra) > 0 {
		p.Extra = extra
	}
	return p
}
