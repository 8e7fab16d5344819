package service

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"assetConverter/config"
	"assetConverter/converter"
	"assetConverter/copier"
	"assetConverter/pool"
	"assetConverter/reporter"
	"assetConverter/scanner"
	"assetConverter/task"
)

// Run executes one full conversion: reset the target tree, scan the
// source tree into a task list, drain it through a bounded worker pool,
// and return the aggregated summary. The returned error covers setup
// failures only; per-task failures are inside the summary.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*task.Summary, error) {
	// The source root must exist before the target is touched, so a
	// misconfigured run cannot wipe a previous output tree.
	if _, err := os.Stat(cfg.SourceRoot); err != nil {
		return nil, fmt.Errorf("source root %s not accessible: %w", cfg.SourceRoot, err)
	}

	if err := scanner.ResetTarget(cfg.TargetRoot); err != nil {
		return nil, err
	}

	tasks, err := scanner.NewScanner(cfg, logger).Scan()
	if err != nil {
		return nil, err
	}

	var images, fonts uint64
	for _, t := range tasks {
		switch t.Category {
		case task.CategoryImage:
			images++
		case task.CategoryFont:
			fonts++
		}
	}

	logger.Info("Starting conversion",
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", cfg.Workers),
	)

	rep := reporter.NewReporter(len(tasks), logger)
	proc := NewProcessor(converter.NewConverter(logger), copier.NewCopier(logger), rep, logger)

	wp := pool.NewWorkerPool(cfg.Workers)
	for _, t := range tasks {
		wp.Submit(ctx, t, proc.Process)
	}
	wp.Wait()

	return rep.Summary(images, fonts), nil
}
