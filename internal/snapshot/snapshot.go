// Package snapshot captures one consistent-enough view of the backend by
// running the facade's read operations concurrently.
package snapshot

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"engram-console/internal/gateway"
)

// Source is the subset of the gateway facade needed to build a Snapshot.
type Source interface {
	Status(ctx context.Context) (gateway.SimulationStatus, error)
	RiskScore(ctx context.Context) (float64, error)
	Agents(ctx context.Context) ([]gateway.Agent, error)
	Incidents(ctx context.Context) ([]gateway.Incident, error)
	RiskSummary(ctx context.Context) (gateway.RiskSummary, error)
}

// Snapshot is the combined result of one fan-out over a Source.
type Snapshot struct {
	Session   string                   `json:"session"`
	Timestamp time.Time                `json:"ts"`
	Status    gateway.SimulationStatus `json:"status"`
	RiskScore float64                  `json:"risk_score"`
	Summary   gateway.RiskSummary      `json:"summary"`
	Agents    []gateway.Agent          `json:"agents"`
	Incidents []gateway.Incident       `json:"incidents"`
}

// Capture calls every read operation of src concurrently. Sections whose
// call fails keep their facade default; the failures are joined into the
// returned error, so the Snapshot is always usable.
func Capture(ctx context.Context, src Source, now func() time.Time) (Snapshot, error) {
	if now == nil {
		now = time.Now
	}
	snap := Snapshot{
		Status:    gateway.DefaultStatus(),
		Summary:   gateway.DefaultRiskSummary(),
		Agents:    []gateway.Agent{},
		Incidents: []gateway.Incident{},
	}
	var (
		g    errgroup.Group
		errs [5]error
	)
	g.Go(func() error {
		st, err := src.Status(ctx)
		if err == nil {
			snap.Status = st
		}
		errs[0] = err
		return nil
	})
	g.Go(func() error {
		score, err := src.RiskScore(ctx)
		if err == nil {
			snap.RiskScore = score
		}
		errs[1] = err
		return nil
	})
	g.Go(func() error {
		agents, err := src.Agents(ctx)
		if err == nil {
			snap.Agents = agents
		}
		errs[2] = err
		return nil
	})
	g.Go(func() error {
		incidents, err := src.Incidents(ctx)
		if err == nil {
			snap.Incidents = incidents
		}
		errs[3] = err
		return nil
	})
	g.Go(func() error {
		sum, err := src.RiskSummary(ctx)
		if err == nil {
			snap.Summary = sum
		}
		errs[4] = err
		return nil
	})
	_ = g.Wait()
	snap.Timestamp = now().UTC()
	return snap, errors.Join(errs[:]...)
}
