package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/core"
)

var textCmd = &cobra.Command{
	Use:   "text <slug> <kind>",
	Short: "Print the extracted text of one document",
	Long: `Print the normalized text the pipeline sees for one candidate document.
kind is one of: cv, plan, summary (or hoja_vida, plan_gobierno, resumen_plan).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := constants.ParseSourceKind(args[1])
		if !ok || constants.DocumentDir(kind) == "" {
			return fmt.Errorf("unknown document kind %q", args[1])
		}
		src := core.NewTextSource(cfg, logger)
		text, err := src.Lookup(cmd.Context(), args[0], kind)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}
