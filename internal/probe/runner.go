package probe

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/agentmode/agentprobe/internal/common/logger"
	"github.com/agentmode/agentprobe/internal/tracing"
)

// Runner executes the probe sequence against one endpoint and writes the
// report as it goes. The report writer is injected so the same runner works
// in-process under test.
type Runner struct {
	client *Client
	out    io.Writer
	logger *logger.Logger
}

// NewRunner creates a runner reporting to out.
func NewRunner(client *Client, out io.Writer, log *logger.Logger) *Runner {
	return &Runner{
		client: client,
		out:    out,
		logger: log.WithFields(zap.String("component", "probe-runner")),
	}
}

// Summary aggregates the verdicts of one run in execution order.
type Summary struct {
	Verdicts []Verdict
}

// Failed reports whether any probe failed. Skipped probes never count.
func (s Summary) Failed() bool {
	for _, v := range s.Verdicts {
		if v.Outcome == OutcomeFail {
			return true
		}
	}
	return false
}

// FirstFailure returns the earliest failing verdict, if there is one.
func (s Summary) FirstFailure() (Verdict, bool) {
	for _, v := range s.Verdicts {
		if v.Outcome == OutcomeFail {
			return v, true
		}
	}
	return Verdict{}, false
}

// Run executes every probe in order. A failing probe never stops the run;
// each verdict is printed before the next probe starts so the operator
// always sees the complete picture.
func (r *Runner) Run(ctx context.Context) Summary {
	fmt.Fprintf(r.out, "Running Agent Mode smoke tests against %s\n\n", r.client.BaseURL())

	steps := Steps()
	verdicts := make([]Verdict, 0, len(steps))
	for i, step := range steps {
		fmt.Fprintf(r.out, "➤ %d. %s\n", i+1, step.Name)

		stepCtx, span := tracing.TraceProbe(ctx, step.Name)
		v := step.Run(stepCtx, r.client)
		tracing.TraceProbeVerdict(span, string(v.Outcome), v.Message)
		span.End()

		fmt.Fprintf(r.out, "  %s %s\n", glyph(v.Outcome), v.Message)
		r.logger.Debug("probe complete",
			zap.String("probe", v.Name),
			zap.String("outcome", string(v.Outcome)),
			zap.String("message", v.Message),
		)
		verdicts = append(verdicts, v)
	}

	sum := Summary{Verdicts: verdicts}
	if first, ok := sum.FirstFailure(); ok {
		fmt.Fprintf(r.out, "\nSmoke tests failed: %s\n", first.Name)
	} else {
		fmt.Fprintf(r.out, "\nAll basic tests passed!\n")
	}
	return sum
}

func glyph(o Outcome) string {
	switch o {
	case OutcomePass:
		return "✓"
	case OutcomeFail:
		return "✗"
	default:
		return "⚠️"
	}
}
