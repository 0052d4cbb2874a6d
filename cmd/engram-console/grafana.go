package main

import (
	"github.com/spf13/cobra"

	"engram-console/internal/dashboard"
)

var grafanaOut string

var grafanaCmd = &cobra.Command{
	Use:   "grafana",
	Short: "Render Grafana dashboards for recorded snapshots",
	Long:  "grafana writes dashboards over the recorder's GreptimeDB tables. GREPTIMEDB_DATASOURCE_UID must name the Grafana datasource.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := dashboard.Render(grafanaOut, a.cfg.Recorder.Greptime); err != nil {
			return err
		}
		a.logger.Info("dashboards rendered", "dir", grafanaOut)
		return nil
	},
}

func init() {
	grafanaCmd.Flags().StringVar(&grafanaOut, "out", "grafana", "Output directory for dashboard JSON")
}
