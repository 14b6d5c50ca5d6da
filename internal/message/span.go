package message

// The span view is the single text-addressing abstraction every
// text-touching transform is written against: one span for plain content,
// one span per "text" part for part lists. Non-text parts have no span.

// Texts returns the editable text payloads of c in span order.
func (c Content) Texts() []string {
	if c.Kind == KindText {
		return []string{c.Text}
	}
	var texts []string
	for _, p := range c.Parts {
		if p.Type == PartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return texts
}

// MapText returns a copy of c with fn applied to each text span. The index
// passed to fn matches the span's position in Texts. The content shape,
// part order, and non-text parts are preserved.
func (c Content) MapText(fn func(i int, text string) string) Content {
	out := c.Clone()
	if out.Kind == KindText {
		out.Text = fn(0, out.Text)
		return out
	}
	span := 0
	for i := range out.Parts {
		if out.Parts[i].Type == PartTypeText {
			out.Parts[i].Text = fn(span, out.Parts[i].Text)
			span++
		}
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with m.
func (m Message) Clone() Message {
	return Message{Role: m.Role, Content: m.Content.Clone()}
}

// Clone returns a deep copy of the content, including part Extra fields.
func (c Content) Clone() Content {
	out := Content{Kind: c.Kind, Text: c.Text}
	if c.Parts != nil {
		out.Parts = make([]Part, len(c.Parts))
		for i, p := range c.Parts {
			out.Parts[i] = p.clone()
		}
	}
	return out
}

// CloneHistory deep-copies an entire history.
func CloneHistory(history []Message) []Message {
	if history == nil {
		return nil
	}
	out := make([]Message, len(history))
	for i, m := range history {
		out[i] = m.Clone()
	}
	return out
}

func (p Part) clone() Part {
	out := Part{Type: p.Type, Text: p.Text}
	if p.Extra != nil {
		out.Extra = copyValue(p.Extra).(map[string]any)
	}
	return out
}

// copyValue deep-copies the JSON-shaped values that can appear in a part's
// opaque fields.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = copyValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = copyValue(vv)
		}
		return out
	default:
		return v
	}
}
