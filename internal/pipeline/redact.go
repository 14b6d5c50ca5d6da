package pipeline

import (
	"fmt"
	"regexp"

	"ctxpipe/internal/message"
)

const (
	// DefaultSecretPattern matches model-provider API keys of the sk-
	// family.
	DefaultSecretPattern = `sk-[A-Za-z0-9]{20,}`

	// DefaultReplacement substitutes matched spans.
	DefaultReplacement = "REDACTED"
)

// Redactor rewrites text spans matching a pattern with a fixed replacement.
// It is the reference custom transform: any type with the same Apply
// contract can be inserted into the pipeline at any position.
type Redactor struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewRedactor compiles pattern. An invalid pattern fails here and the
// compile error propagates to the caller unmodified.
func NewRedactor(pattern, replacement string) (*Redactor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("redactor: %w", err)
	}
	return &Redactor{pattern: re, replacement: replacement}, nil
}

func (r *Redactor) Name() string { return "redact" }

// Apply substitutes every match in every text span, both content shapes.
// Non-matching text and non-text parts pass through untouched.
func (r *Redactor) Apply(history []message.Message) ([]message.Message, *Report, error) {
	out := message.CloneHistory(history)
	replacements := 0
	for i := range out {
		out[i].Content = out[i].Content.MapText(func(_ int, text string) string {
			matches := r.pattern.FindAllStringIndex(text, -1)
			if len(matches) == 0 {
				return text
			}
			replacements += len(matches)
			return r.pattern.ReplaceAllString(text, r.replacement)
		})
	}
	report := &Report{
		Stage:        r.Name(),
		Changed:      replacements > 0,
		Replacements: replacements,
	}
	return out, report, nil
}
