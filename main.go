package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/wildstyl3r/xmat/internal/config"
	"github.com/wildstyl3r/xmat/internal/harness"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	threads    int
	dataFlags  harness.DataFlags
)

var rootCmd = &cobra.Command{
	Use:   "xmat",
	Short: "X-ray optics of mirrors, multilayers and perfect crystals",
	Long: `xmat computes complex s and p amplitudes of X-ray mirrors, thin slabs,
graded multilayers and perfect crystals in Bragg or Laue geometry.

Models are described in a TOML or YAML configuration; values given at the
top level are defaults for every model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan every model and save the selected curves",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, s *harness.Setup) error {
			return harness.Run(ctx, s, dataFlags, verbose, threads)
		})
	},
}

var anglesCmd = &cobra.Command{
	Use:   "angles",
	Short: "Tabulate Bragg angles, shifts and widths of the crystal models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, s *harness.Setup) error {
			return harness.Angles(ctx, s, verbose)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "xmat.toml", "model configuration in toml or yaml format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().IntVarP(&threads, "threads", "t", runtime.NumCPU(), "workers per scan, 1 to compute serially")
	dataFlags = harness.NewDataFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd, anglesCmd)
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func withSetup(run func(context.Context, *harness.Setup) error) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	startTime := time.Now()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	s, err := harness.NewSetup(cfg, logger, threads)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, s); err != nil {
		return err
	}
	s.Logger.Info("done", zap.Int("models", len(cfg.Models)), zap.Duration("elapsed", time.Since(startTime)))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "xmat: %v\n", err)
		os.Exit(1)
	}
}
