// Package tokenizer wraps model-specific BPE tokenizers behind a small
// count/truncate surface. Adapters are cached per model name for the
// process lifetime because vocabulary loading is the expensive step.
package tokenizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// ErrUnknownModel indicates no encoding is registered for a model name.
// It is returned at adapter construction, never on first use.
var ErrUnknownModel = errors.New("tokenizer: unknown model")

// Adapter provides exact subword token accounting for one model family.
// A cached adapter is safe for concurrent use.
type Adapter struct {
	model string
	enc   *tiktoken.Tiktoken
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Adapter{}
)

// ForModel returns the cached adapter for model, constructing it on first
// use. model may also name an encoding directly (for example "cl100k_base").
func ForModel(model string) (*Adapter, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if a, ok := cache[model]; ok {
		return a, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(model)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	a := &Adapter{model: model, enc: enc}
	cache[model] = a
	return a, nil
}

// Model returns the model name the adapter was built for.
func (a *Adapter) Model() string { return a.model }

// Count returns the number of tokens text encodes to.
func (a *Adapter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(a.enc.Encode(text, nil, nil))
}

// Truncate returns a prefix of text that encodes to exactly
// min(Count(text), maxTokens) tokens. It operates on the token sequence
// (encode, slice, decode), so multi-byte tokens are never split.
func (a *Adapter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := a.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return a.enc.Decode(tokens[:maxTokens])
}
