package reporter

import (
	"sync"

	"go.uber.org/zap"

	"assetConverter/task"
)

const progressInterval = 20

// Reporter aggregates per-task outcomes from concurrent workers. One
// mutex guards the counter, the outcome slice, and the log emission, so
// every progress line carries the exact count its increment produced and
// concurrent records never interleave inside one logical message.
type Reporter struct {
	mu        sync.Mutex
	completed uint64
	total     uint64
	outcomes  []task.Outcome
	logger    *zap.Logger
}

func NewReporter(total int, logger *zap.Logger) *Reporter {
	return &Reporter{
		total:    uint64(total),
		outcomes: make([]task.Outcome, 0, total),
		logger:   logger,
	}
}

// Record stores one outcome and logs it. Called exactly once per task,
// from whichever worker finished it.
func (r *Reporter) Record(o task.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outcomes = append(r.outcomes, o)
	r.completed++

	if o.Success {
		switch o.Kind {
		case task.KindTranscode:
			r.logger.Info("Converted",
				zap.String("source", o.SourcePath),
				zap.String("target", o.TargetPath),
				zap.Int64("source_bytes", o.SourceBytes),
				zap.Int64("target_bytes", o.TargetBytes),
				zap.Float64("reduction_pct", o.Reduction()),
			)
		case task.KindCopy:
			r.logger.Info("Copied",
				zap.String("source", o.SourcePath),
				zap.String("target", o.TargetPath),
			)
		}
	} else {
		r.logger.Error("Task failed",
			zap.String("source", o.SourcePath),
			zap.String("error", o.Err),
		)
	}

	if r.completed%progressInterval == 0 || r.completed == r.total {
		r.logger.Info("Progress",
			zap.Uint64("completed", r.completed),
			zap.Uint64("total", r.total),
		)
	}
}

// Completed returns the number of recorded outcomes.
func (r *Reporter) Completed() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Summary builds the read-only run summary. Call only after the pool
// has drained.
func (r *Reporter) Summary(images, fonts uint64) *task.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcomes := make([]task.Outcome, len(r.outcomes))
	copy(outcomes, r.outcomes)

	return &task.Summary{
		Images:   images,
		Fonts:    fonts,
		Outcomes: outcomes,
	}
}
