package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"engram-console/internal/gateway"
	"engram-console/internal/logging"
)

type statusMsg struct {
	status gateway.SimulationStatus
	err    error
}

type riskMsg struct {
	score float64
	err   error
}

type agentsMsg struct {
	agents []gateway.Agent
	err    error
}

type summaryMsg struct {
	summary gateway.RiskSummary
	err     error
}

type incidentsMsg struct {
	incidents []gateway.Incident
	err       error
}

type detailMsg struct {
	id   string
	body string
	err  error
}

type dashboardTickMsg time.Time
type incidentTickMsg time.Time

func logFetchErr(ctx context.Context, op string, err error) {
	if err != nil {
		logging.FromContext(ctx).Debug("console fetch failed", "op", op, "err", err)
	}
}

// fetchDashboard issues the four dashboard reads as independent commands.
func fetchDashboard(ctx context.Context, b Backend) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			s, err := b.Status(ctx)
			logFetchErr(ctx, "status", err)
			return statusMsg{status: s, err: err}
		},
		func() tea.Msg {
			v, err := b.RiskScore(ctx)
			logFetchErr(ctx, "risk", err)
			return riskMsg{score: v, err: err}
		},
		func() tea.Msg {
			a, err := b.Agents(ctx)
			logFetchErr(ctx, "agents", err)
			return agentsMsg{agents: a, err: err}
		},
		func() tea.Msg {
			s, err := b.RiskSummary(ctx)
			logFetchErr(ctx, "summary", err)
			return summaryMsg{summary: s, err: err}
		},
	)
}

func fetchIncidents(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		inc, err := b.Incidents(ctx)
		logFetchErr(ctx, "incidents", err)
		return incidentsMsg{incidents: inc, err: err}
	}
}

func fetchDetail(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		body, err := b.IncidentDetail(ctx, id)
		logFetchErr(ctx, "incident details", err)
		return detailMsg{id: id, body: body, err: err}
	}
}

func dashboardTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return dashboardTickMsg(t) })
}

func incidentTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return incidentTickMsg(t) })
}
