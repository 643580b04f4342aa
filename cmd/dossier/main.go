package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
)

var (
	// Global flags
	verbose bool
	workers int
	outDir  string

	cfg    *common.Config
	logger *slog.Logger
	closer io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Build candidate dossiers from biographies, CVs and government plans",
	Long: `dossier reads a roster of candidates, extracts biographical fields from their
biography and CV, counts the structure of their government plans, and writes
merged fields, raw features and normalized scores for every candidate.

Configuration comes from the environment (and a .env file when present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = common.LoadConfig()
		if verbose {
			cfg.Log.Level = "debug"
		}
		if cmd.Flags().Changed("workers") {
			cfg.Pipeline.Workers = workers
		}
		if cmd.Flags().Changed("out") {
			cfg.Output.Dir = outDir
		}
		logger, closer = common.NewLogger(cfg.Log)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closer != nil {
			_ = closer.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 4, "parallel candidates (overrides WORKERS)")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory (overrides OUTPUT_DIR)")

	rootCmd.AddCommand(runCmd, textCmd, docsCmd, dbhealthCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
