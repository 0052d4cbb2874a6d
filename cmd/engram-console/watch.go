package main

import (
	"errors"

	"github.com/spf13/cobra"

	"engram-console/internal/console"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live dashboard and incident browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(cmd.OutOrStdout()) {
			return errors.New("watch requires an interactive terminal")
		}
		a, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		a.logger.Info("console started", "api", a.client.BaseURL())
		return console.Run(a.ctx, a.client, console.Options{
			Refresh:         a.cfg.Console.Refresh,
			IncidentRefresh: a.cfg.Console.IncidentRefresh,
		})
	},
}
