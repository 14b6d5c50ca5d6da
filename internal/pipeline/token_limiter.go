package pipeline

import (
	"ctxpipe/internal/message"
	"ctxpipe/internal/tokenizer"
)

// Counter is the tokenizer surface the token limiter depends on. The
// default implementation comes from tokenizer.ForModel; callers with
// bespoke models may substitute their own.
type Counter interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// TokenLimiterConfig configures a TokenLimiter. Budgets are exact subword
// token counts under Model's tokenizer. Unlimited disables a budget; zero
// is a real budget that empties text.
type TokenLimiterConfig struct {
	// Model selects the tokenizer adapter.
	Model string

	// MaxTokens caps the token sum across the whole history.
	MaxTokens int

	// MaxTokensPerMessage caps each message independently of position.
	MaxTokensPerMessage int

	// MinTokens skips the transform entirely when the untouched input is
	// already at or below this total. Zero disables the short-circuit.
	MinTokens int
}

// DefaultTokenLimiterConfig returns a config with both budgets disabled.
func DefaultTokenLimiterConfig() TokenLimiterConfig {
	return TokenLimiterConfig{MaxTokens: Unlimited, MaxTokensPerMessage: Unlimited}
}

// TokenLimiter enforces per-message and aggregate token budgets with exact
// subword accounting. The aggregate budget is spent newest-first: the most
// recent context survives intact when possible, and once the budget is
// exhausted every older message keeps its role and shape but carries empty
// text, preserving turn structure for callers that rely on it.
type TokenLimiter struct {
	cfg     TokenLimiterConfig
	counter Counter
}

// NewTokenLimiter builds a limiter for cfg.Model. An unknown model fails
// here, before any conversation is processed.
func NewTokenLimiter(cfg TokenLimiterConfig) (*TokenLimiter, error) {
	adapter, err := tokenizer.ForModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	return NewTokenLimiterWith(adapter, cfg), nil
}

// NewTokenLimiterWith builds a limiter around an existing counter.
func NewTokenLimiterWith(counter Counter, cfg TokenLimiterConfig) *TokenLimiter {
	return &TokenLimiter{cfg: cfg, counter: counter}
}

func (l *TokenLimiter) Name() string { return "token_limiter" }

// Apply runs the single most-recent-first pass described by the configured
// budgets. Messages without text spans cost zero tokens and are never
// touched.
func (l *TokenLimiter) Apply(history []message.Message) ([]message.Message, *Report, error) {
	out := message.CloneHistory(history)
	report := &Report{Stage: l.Name()}

	before := l.historyTokens(out)
	report.TokensBefore = before
	report.TokensAfter = before

	if l.cfg.MinTokens > 0 && before <= l.cfg.MinTokens {
		return out, report, nil
	}

	if l.cfg.MaxTokensPerMessage != Unlimited {
		for i := range out {
			out[i] = l.capMessage(out[i], l.cfg.MaxTokensPerMessage)
		}
	}

	if l.cfg.MaxTokens != Unlimited {
		budget := l.cfg.MaxTokens
		for i := len(out) - 1; i >= 0; i-- {
			n := l.messageTokens(out[i])
			if n <= budget {
				budget -= n
				continue
			}
			out[i] = l.capMessage(out[i], budget)
			budget = 0
		}
	}

	after := l.historyTokens(out)
	report.TokensAfter = after
	report.Changed = after != before
	return out, report, nil
}

// capMessage truncates the message's text spans so their combined token
// count does not exceed budget. Spans are consumed in order: earlier spans
// keep their tokens until the budget runs out, then everything after the
// boundary is emptied.
func (l *TokenLimiter) capMessage(m message.Message, budget int) message.Message {
	if budget < 0 {
		budget = 0
	}
	remaining := budget
	m.Content = m.Content.MapText(func(_ int, text string) string {
		n := l.counter.Count(text)
		if n <= remaining {
			remaining -= n
			return text
		}
		truncated := l.counter.Truncate(text, remaining)
		remaining = 0
		return truncated
	})
	return m
}

func (l *TokenLimiter) messageTokens(m message.Message) int {
	total := 0
	for _, text := range m.Content.Texts() {
		total += l.counter.Count(text)
	}
	return total
}

func (l *TokenLimiter) historyTokens(history []message.Message) int {
	total := 0
	for _, m := range history {
		total += l.messageTokens(m)
	}
	return total
}
