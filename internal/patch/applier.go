package patch

import (
	"io"
	"log"

	"github.com/standardbeagle/navpatch/internal/debug"
)

// Report lists what happened to each op of one Apply call.
type Report struct {
	Applied []Op
	Skipped []Op
}

// Degraded reports whether any op was skipped.
func (r Report) Degraded() bool {
	return len(r.Skipped) > 0
}

// Applier applies ops to a LineBuffer in order. A missing search token is
// logged once as a warning and the op is skipped.
type Applier struct {
	logger *log.Logger
}

// NewApplier creates an applier that writes warnings to logger. A nil logger
// uses the standard logger.
func NewApplier(logger *log.Logger) *Applier {
	if logger == nil {
		logger = log.Default()
	}
	return &Applier{logger: logger}
}

// NewSilentApplier creates an applier that drops warnings.
func NewSilentApplier() *Applier {
	return &Applier{logger: log.New(io.Discard, "", 0)}
}

// Apply mutates buf with each op in order. Every op searches the buffer as
// left by the previous ones.
func (a *Applier) Apply(buf *LineBuffer, ops []Op) Report {
	var report Report
	for _, op := range ops {
		at := buf.Find(op.SearchToken)
		if at < 0 {
			a.warnMissing(buf, op)
			report.Skipped = append(report.Skipped, op)
			continue
		}
		if err := buf.Splice(at+op.LineOffset, op.RemovedLineCount, op.InsertedLines...); err != nil {
			a.logger.Printf("WARNING: failed to patch navigation bar module (outline): %s: %v", op.SearchToken, err)
			report.Skipped = append(report.Skipped, op)
			continue
		}
		debug.LogPatch("applied op %q at line %d (+%d/-%d)\n", op.SearchToken, at+op.LineOffset, len(op.InsertedLines), op.RemovedLineCount)
		report.Applied = append(report.Applied, op)
	}
	return report
}

func (a *Applier) warnMissing(buf *LineBuffer, op Op) {
	if hint := closestLine(buf.String(), op.SearchToken); hint != "" {
		a.logger.Printf("WARNING: failed to patch navigation bar module (outline): %s (closest line: %q)", op.SearchToken, hint)
		return
	}
	a.logger.Printf("WARNING: failed to patch navigation bar module (outline): %s", op.SearchToken)
}
