package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"assetConverter/converter"
	"assetConverter/copier"
	"assetConverter/reporter"
	"assetConverter/task"
)

type Processor struct {
	converter *converter.Converter
	copier    *copier.Copier
	reporter  *reporter.Reporter
	logger    *zap.Logger
}

func NewProcessor(conv *converter.Converter, cop *copier.Copier, rep *reporter.Reporter, logger *zap.Logger) *Processor {
	return &Processor{
		converter: conv,
		copier:    cop,
		reporter:  rep,
		logger:    logger,
	}
}

// Process executes one task and records its outcome. Errors stop here:
// a failed task becomes a failed outcome and never reaches the pool or
// its sibling tasks.
func (p *Processor) Process(ctx context.Context, t task.Task) {
	var err error
	switch t.Kind {
	case task.KindTranscode:
		err = p.converter.Transcode(t.SourcePath, t.TargetPath, t.Quality, t.PreserveAlpha)
	case task.KindCopy:
		err = p.copier.Copy(t.SourcePath, t.TargetPath)
	default:
		err = fmt.Errorf("unknown task kind: %s", t.Kind)
	}

	outcome := task.Outcome{
		TaskID:     t.ID,
		Kind:       t.Kind,
		SourcePath: t.SourcePath,
		TargetPath: t.TargetPath,
	}
	if err != nil {
		outcome.Err = err.Error()
	} else {
		outcome.Success = true
		if info, statErr := os.Stat(t.SourcePath); statErr == nil {
			outcome.SourceBytes = info.Size()
		}
		if info, statErr := os.Stat(t.TargetPath); statErr == nil {
			outcome.TargetBytes = info.Size()
		}
	}

	p.reporter.Record(outcome)
}
