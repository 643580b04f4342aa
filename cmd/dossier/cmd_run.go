package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/candidate-dossiers/internal/core"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the whole roster and write every export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx := cmd.Context()
		proc, _, cleanup, err := core.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := proc.Run(ctx)
		if err != nil {
			logger.Error("batch failed", "error", err)
			return err
		}

		rep := out.Report
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d candidates, %d failed\n", rep.RunID, len(rep.Records), rep.Failed)
		for _, f := range out.Files {
			fmt.Fprintln(cmd.OutOrStdout(), "  wrote", f)
		}
		return nil
	},
}
