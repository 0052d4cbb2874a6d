package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"engram-console/internal/fixture"
)

var (
	fixtureAddr string
	fixtureData string
	fixtureLive bool
	fixtureTick time.Duration
	fixtureSeed int64
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Serve a canned Engram API for local use",
	Long:  "fixture serves the Engram API from a YAML dataset. With --live the dataset evolves every tick; POST /admin/toggle-chaos makes the API return malformed JSON.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		ds := fixture.Demo()
		if fixtureData != "" {
			if ds, err = fixture.LoadDataset(fixtureData); err != nil {
				return err
			}
		}
		tick := time.Duration(0)
		if fixtureLive {
			tick = fixtureTick
		}
		sim := fixture.NewSimulator(ds, tick, fixtureSeed)
		go sim.Run(a.ctx)

		err = fixture.NewSimulatorServer(sim).Start(a.ctx, fixtureAddr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	fixtureCmd.Flags().StringVar(&fixtureAddr, "addr", ":8765", "Listen address")
	fixtureCmd.Flags().StringVar(&fixtureData, "data", "", "YAML dataset (default: built-in demo)")
	fixtureCmd.Flags().BoolVar(&fixtureLive, "live", false, "Advance the dataset every tick")
	fixtureCmd.Flags().DurationVar(&fixtureTick, "tick", time.Second, "Tick interval for --live")
	fixtureCmd.Flags().Int64Var(&fixtureSeed, "seed", time.Now().UnixNano(), "Random seed for --live")
}
