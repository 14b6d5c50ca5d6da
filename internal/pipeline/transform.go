// Package pipeline implements the message transformation pipeline: an
// ordered chain of pure transforms applied to an owned copy of a
// conversation history before it is handed to a model. The caller's
// history is never mutated.
package pipeline

import (
	"fmt"

	"ctxpipe/internal/message"
)

// Unlimited disables an otherwise non-negative budget. Zero remains a real
// budget that empties text.
const Unlimited = -1

// Transform is one pipeline stage: a pure function from a history to a new
// history. Implementations deep-copy before touching anything, keep no
// back-reference to their input, and return an owned value plus a report of
// their effect. Any type with this contract can sit in the pipeline.
type Transform interface {
	Name() string
	Apply(history []message.Message) ([]message.Message, *Report, error)
}

// Report describes what a single stage did. It is informational only and
// never influences the transformed history.
type Report struct {
	Stage           string `json:"stage"`
	Changed         bool   `json:"changed"`
	MessagesRemoved int    `json:"messages_removed,omitempty"`
	TokensBefore    int    `json:"tokens_before,omitempty"`
	TokensAfter     int    `json:"tokens_after,omitempty"`
	Replacements    int    `json:"replacements,omitempty"`
}

// Summary renders a one-line human-readable description of the effect, or
// "" when the stage changed nothing.
func (r *Report) Summary() string {
	if r == nil || !r.Changed {
		return ""
	}
	switch {
	case r.MessagesRemoved > 0:
		return fmt.Sprintf("%s: removed %d messages", r.Stage, r.MessagesRemoved)
	case r.TokensBefore != r.TokensAfter:
		return fmt.Sprintf("%s: tokens reduced from %d to %d", r.Stage, r.TokensBefore, r.TokensAfter)
	case r.Replacements > 0:
		return fmt.Sprintf("%s: redacted %d matches", r.Stage, r.Replacements)
	}
	return r.Stage + ": history changed"
}
