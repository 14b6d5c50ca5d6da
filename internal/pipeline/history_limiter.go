package pipeline

import "ctxpipe/internal/message"

// HistoryLimiterConfig configures a HistoryLimiter.
type HistoryLimiterConfig struct {
	// MaxMessages is the number of most recent messages to keep. Zero
	// empties the history.
	MaxMessages int

	// KeepLeadingSystem exempts a single leading system message from
	// removal. Off by default: the base policy is keep-last-N with no
	// exemptions.
	KeepLeadingSystem bool
}

// HistoryLimiter drops the oldest messages so at most MaxMessages remain.
// Only a contiguous leading prefix is ever dropped; relative order is
// preserved.
type HistoryLimiter struct {
	cfg HistoryLimiterConfig
}

// NewHistoryLimiter creates a HistoryLimiter.
func NewHistoryLimiter(cfg HistoryLimiterConfig) *HistoryLimiter {
	if cfg.MaxMessages < 0 {
		cfg.MaxMessages = 0
	}
	return &HistoryLimiter{cfg: cfg}
}

func (l *HistoryLimiter) Name() string { return "history_limiter" }

// Apply returns the last MaxMessages messages as an independent copy. At or
// under the bound the result is value-equal to the input but shares nothing
// with it.
func (l *HistoryLimiter) Apply(history []message.Message) ([]message.Message, *Report, error) {
	out := message.CloneHistory(history)
	report := &Report{Stage: l.Name()}

	if len(out) <= l.cfg.MaxMessages {
		return out, report, nil
	}

	var head []message.Message
	if l.cfg.KeepLeadingSystem && len(out) > 0 && out[0].Role == message.RoleSystem {
		head = out[:1]
	}
	keep := l.cfg.MaxMessages - len(head)
	if keep < 0 {
		keep = 0
	}
	tail := out[len(out)-keep:]

	result := make([]message.Message, 0, len(head)+len(tail))
	result = append(result, head...)
	result = append(result, tail...)

	report.Changed = true
	report.MessagesRemoved = len(out) - len(result)
	return result, report, nil
}
