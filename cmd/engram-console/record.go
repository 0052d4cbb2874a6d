package main

import (
	"time"

	"github.com/spf13/cobra"

	"engram-console/internal/recorder"
)

var (
	recPrintOnly bool
	recLogFile   string
	recCount     int
	recInterval  time.Duration
	recSession   string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Poll the backend and record snapshots",
	Long:  "record captures status, risk, agents and incidents at a fixed interval and writes them to GreptimeDB or STDOUT, optionally also to a JSONL log.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		writer, cleanup, err := newWriter(a.cfg, recPrintOnly, recLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		interval := a.cfg.Recorder.Interval
		if recInterval > 0 {
			interval = recInterval
		}
		session := a.cfg.Recorder.Session
		if recSession != "" {
			session = recSession
		}

		rec := recorder.New(a.client, writer, interval, session)
		a.logger.Info("recording started", "session", rec.Session(), "interval", interval, "api", a.client.BaseURL())
		if err := rec.Run(a.ctx, recCount); err != nil {
			return err
		}
		a.logger.Info("recording stopped", "session", rec.Session())
		return nil
	},
}

func init() {
	recordCmd.Flags().BoolVar(&recPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of writing to GreptimeDB")
	recordCmd.Flags().StringVar(&recLogFile, "log-file", "", "Path to also export snapshots (JSONL)")
	recordCmd.Flags().IntVar(&recCount, "count", 0, "Stop after this many snapshots (0 runs until interrupted)")
	recordCmd.Flags().DurationVar(&recInterval, "interval", 0, "Polling interval (overrides recorder.interval)")
	recordCmd.Flags().StringVar(&recSession, "session", "", "Session identifier (default: config or random UUID)")
}
