package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"assetConverter/config"
	"assetConverter/service"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var sourceFlag string
	var targetFlag string
	var workersFlag int

	rootCmd := &cobra.Command{
		Use:           "assetconv",
		Short:         "Convert a static asset tree to AVIF and copy fonts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			if sourceFlag != "" {
				cfg.SourceRoot = sourceFlag
			}
			if targetFlag != "" {
				cfg.TargetRoot = targetFlag
			}
			if workersFlag > 0 {
				cfg.Workers = workersFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Source asset root")
	rootCmd.Flags().StringVarP(&targetFlag, "target", "t", "", "Target output root")
	rootCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Worker count (0 = auto)")

	return rootCmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	summary, err := service.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Conversion complete",
		zap.Uint64("images", summary.Images),
		zap.Uint64("fonts", summary.Fonts),
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", len(summary.Failed())),
	)

	sourceBytes, targetBytes := summary.TotalBytes()
	logger.Info("Size totals",
		zap.Int64("source_bytes", sourceBytes),
		zap.Int64("target_bytes", targetBytes),
	)

	if failed := summary.Failed(); len(failed) > 0 {
		rows := make([][]string, 0, len(failed))
		for _, o := range failed {
			rows = append(rows, []string{o.SourcePath, string(o.Kind), o.Err})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Source", "Kind", "Error"}, rows))
	}

	return nil
}
