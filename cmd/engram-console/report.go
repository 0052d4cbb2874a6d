package main

import (
	"os"

	"github.com/spf13/cobra"

	"engram-console/internal/report"
	"engram-console/internal/snapshot"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Pre-Incident Risk Dossier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, capErr := snapshot.Capture(a.ctx, a.client, nil)
		if capErr != nil {
			a.logger.Warn("dossier built from partial data", "error", capErr)
		}
		d := report.Build(snap, capErr)

		p := newPrinter(cmd)
		if p.json {
			return p.JSON(d)
		}
		if reportOut == "" {
			return report.Render(p.out, d)
		}
		f, err := os.Create(reportOut)
		if err != nil {
			return err
		}
		if err := report.Render(f, d); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		a.logger.Info("dossier written", "path", reportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Write the dossier to this file instead of STDOUT")
}
