package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	jsonOut    bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "engram-console",
	Short:         "Engram operator console",
	Long:          "engram-console reads the Engram simulation backend: live status, risk, agents and incidents, plus recording, reporting and a local fixture backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "engram.yaml", "Path to console configuration YAML")
	pf.StringVar(&apiURL, "api-url", "", "Engram API base URL (overrides config and ENGRAM_API_URL)")
	pf.BoolVar(&jsonOut, "json", false, "Print JSON instead of tables")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(statusCmd, riskCmd, agentsCmd, incidentsCmd, summaryCmd, incidentCmd)
	rootCmd.AddCommand(watchCmd, recordCmd, replayCmd, reportCmd, grafanaCmd, fixtureCmd)
}
