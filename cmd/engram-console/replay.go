package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"engram-console/internal/recorder"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a snapshot log file",
	Long:  "replay feeds snapshots from a JSONL recording back into GreptimeDB or STDOUT.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		writer, cleanup, err := newWriter(a.cfg, replayPrintOnly, "")
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := recorder.ReplayLogFile(a.ctx, replayInput, writer, replaySpeed)
		a.logger.Info("replay finished", "snapshots", n, "input", replayInput)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to snapshot log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier (0 disables pacing)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of writing to GreptimeDB")
	replayCmd.MarkFlagRequired("input")
}
