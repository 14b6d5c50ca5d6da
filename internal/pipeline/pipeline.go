package pipeline

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ctxpipe/internal/message"
)

// Pipeline applies an ordered sequence of transforms to a copy of a
// conversation history. Order is the caller's choice: placing the history
// limiter before the token limiter prices tokens on the already-shortened
// history, the reverse expresses a different truncation intent. The
// pipeline imposes no order of its own.
type Pipeline struct {
	transforms []Transform
	logger     zerolog.Logger
}

// New builds a pipeline over transforms, applied left to right.
func New(transforms ...Transform) *Pipeline {
	return &Pipeline{transforms: transforms, logger: zerolog.Nop()}
}

// WithLogger attaches an advisory logger. The logger only renders reports;
// it never influences the result.
func (p *Pipeline) WithLogger(logger zerolog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Transforms returns the configured stages in order.
func (p *Pipeline) Transforms() []Transform {
	out := make([]Transform, len(p.transforms))
	copy(out, p.transforms)
	return out
}

// Result carries one invocation's output: the transformed copy, the
// per-stage reports, and a run ID correlating log lines.
type Result struct {
	RunID   string            `json:"run_id"`
	History []message.Message `json:"history"`
	Reports []*Report         `json:"reports"`
}

// Changed reports whether any stage altered the history.
func (r *Result) Changed() bool {
	for _, rep := range r.Reports {
		if rep.Changed {
			return true
		}
	}
	return false
}

// Summary joins the one-line summaries of the stages that changed
// something, or returns "" for a no-op run.
func (r *Result) Summary() string {
	var lines []string
	for _, rep := range r.Reports {
		if s := rep.Summary(); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "; ")
}

// Apply validates history, deep-copies it, and threads the copy through
// every transform in order: stage i's output is stage i+1's input. The
// argument is never mutated. A stage error aborts the run with its identity
// intact and no partial result. Re-applying with the same budgets is
// idempotent.
func (p *Pipeline) Apply(history []message.Message) (*Result, error) {
	if err := message.ValidateHistory(history); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	current := message.CloneHistory(history)
	reports := make([]*Report, 0, len(p.transforms))

	for _, tr := range p.transforms {
		next, report, err := tr.Apply(current)
		if err != nil {
			return nil, err
		}
		current = next
		if report == nil {
			report = &Report{Stage: tr.Name()}
		}
		reports = append(reports, report)
		if report.Changed {
			p.logger.Debug().
				Str("run_id", runID).
				Str("stage", report.Stage).
				Msg(report.Summary())
		}
	}

	result := &Result{RunID: runID, History: current, Reports: reports}
	if s := result.Summary(); s != "" {
		p.logger.Info().Str("run_id", runID).Msg(s)
	}
	return result, nil
}
