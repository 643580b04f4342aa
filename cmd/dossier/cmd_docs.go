package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/ingest"
	"github.com/joseph-ayodele/candidate-dossiers/internal/roster"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Report which documents each candidate has on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		cands, err := roster.Load(cfg.Input.RosterFile)
		if err != nil {
			return err
		}
		if !ingest.RootExists(cfg.Input.DocsRoot) {
			return fmt.Errorf("documents root %s does not exist", cfg.Input.DocsRoot)
		}
		slugs := make([]string, len(cands))
		for i, c := range cands {
			slugs[i] = c.Slug
		}
		inv, err := ingest.ScanDocuments(cfg.Input.DocsRoot, slugs)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprint(w, "slug")
		for _, k := range constants.DocumentKinds {
			fmt.Fprintf(w, "\t%s", k)
		}
		fmt.Fprintln(w)
		for _, c := range inv.Candidates {
			fmt.Fprint(w, c.Slug)
			for _, k := range constants.DocumentKinds {
				mark := "-"
				if _, ok := c.Kinds[k]; ok {
					mark = "x"
				}
				fmt.Fprintf(w, "\t%s", mark)
			}
			fmt.Fprintln(w)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, o := range inv.Orphans {
			fmt.Fprintln(cmd.OutOrStdout(), "not in roster:", o)
		}
		logger.Info("docs.scan.ok",
			"scanned", inv.Stats.Scanned,
			"matched", inv.Stats.Matched,
			"orphans", inv.Stats.Orphans,
			"failed", inv.Stats.Failed,
		)
		return nil
	},
}
