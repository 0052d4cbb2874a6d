package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"engram-console/internal/gateway"
)

type fakeBackend struct {
	status    gateway.SimulationStatus
	risk      float64
	agents    []gateway.Agent
	incidents []gateway.Incident
	summary   gateway.RiskSummary
	detail    string
	agentsErr error
	detailErr error
	detailIDs []string
}

func (f *fakeBackend) Status(context.Context) (gateway.SimulationStatus, error) { return f.status, nil }
func (f *fakeBackend) RiskScore(context.Context) (float64, error)               { return f.risk, nil }
func (f *fakeBackend) Agents(context.Context) ([]gateway.Agent, error) {
	if f.agentsErr != nil {
		return []gateway.Agent{}, f.agentsErr
	}
	return f.agents, nil
}
func (f *fakeBackend) Incidents(context.Context) ([]gateway.Incident, error) { return f.incidents, nil }
func (f *fakeBackend) RiskSummary(context.Context) (gateway.RiskSummary, error) {
	return f.summary, nil
}
func (f *fakeBackend) IncidentDetail(_ context.Context, id string) (string, error) {
	f.detailIDs = append(f.detailIDs, id)
	return f.detail, f.detailErr
}

func newFake() *fakeBackend {
	return &fakeBackend{
		status:    gateway.SimulationStatus{Status: "RUNNING", Mode: "SEALED", Uptime: "00:01:00", EventsLogged: 2},
		risk:      65,
		agents:    []gateway.Agent{{AgentID: "Bot-01", AgentType: "Warehouse", RiskScore: 65, RiskLevel: "HIGH", Battery: "42", Status: "RUNNING"}},
		incidents: sampleIncidents,
		summary:   gateway.RiskSummary{TotalIncidents: 3, HighestRiskAgent: "Bot-01", LatestEvent: "INC-003"},
		detail:    `"\nINCIDENT ID: INC-001\nFAULT ATTRIBUTION: LOGIC_DEFECT\n"`,
	}
}

// drain runs cmd and feeds every resulting message back into m,
// expanding batches.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
		return m
	}
	mi, _ := m.Update(msg)
	return mi.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, s string) (Model, tea.Cmd) {
	mi, cmd := m.Update(key(s))
	return mi.(Model), cmd
}

func sized(m Model) Model {
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return mi.(Model)
}

func TestNewStartsWithDefaults(t *testing.T) {
	m := New(context.Background(), newFake(), Options{})
	if m.status != gateway.DefaultStatus() || m.summary != gateway.DefaultRiskSummary() {
		t.Fatalf("expected default status and summary")
	}
	if m.opts.Refresh == 0 || m.opts.IncidentRefresh == 0 {
		t.Fatalf("refresh intervals not defaulted: %+v", m.opts)
	}
	if !strings.Contains(m.View(), noAgents) {
		t.Fatalf("expected empty agents placeholder")
	}
}

func TestDashboardFetchPopulatesModel(t *testing.T) {
	b := newFake()
	m := sized(New(context.Background(), b, Options{}))
	m = drain(t, m, fetchDashboard(m.ctx, b))
	if m.status.Status != "RUNNING" || m.risk != 65 || m.summary.TotalIncidents != 3 {
		t.Fatalf("dashboard not populated: %+v %v %+v", m.status, m.risk, m.summary)
	}
	if len(m.agentTable.Rows()) != 1 || m.agentTable.Rows()[0][2] != "65 [HIGH]" {
		t.Fatalf("unexpected agent rows %v", m.agentTable.Rows())
	}
	view := m.View()
	if !strings.Contains(view, "Bot-01") || !strings.Contains(view, "HIGH") {
		t.Fatalf("view missing agent data:\n%s", view)
	}
}

func TestFetchErrorKeepsPreviousData(t *testing.T) {
	b := newFake()
	m := sized(New(context.Background(), b, Options{}))
	m = drain(t, m, fetchDashboard(m.ctx, b))

	b.agentsErr = &gateway.DecodeError{Op: "agents", Err: errors.New("bad json")}
	m = drain(t, m, fetchDashboard(m.ctx, b))
	if len(m.agents) != 1 {
		t.Fatalf("agents should be kept on error, got %v", m.agents)
	}
	if !strings.Contains(m.View(), "failed to parse agents") {
		t.Fatalf("expected error in status bar:\n%s", m.renderBottom())
	}

	b.agentsErr = nil
	m = drain(t, m, fetchDashboard(m.ctx, b))
	if m.errorLine() != "" {
		t.Fatalf("error should clear after success, got %q", m.errorLine())
	}
}

func TestTabSwitchesScreenAndFetches(t *testing.T) {
	b := newFake()
	m := sized(New(context.Background(), b, Options{}))
	m, cmd := press(m, "tab")
	if m.screen != screenIncidents {
		t.Fatalf("expected incidents screen")
	}
	m = drain(t, m, cmd)
	if len(m.visible) != 3 {
		t.Fatalf("expected incidents loaded, got %d", len(m.visible))
	}
	m, _ = press(m, "tab")
	if m.screen != screenDashboard {
		t.Fatalf("expected dashboard screen")
	}
}

func TestTicksOnlyFetchActiveScreen(t *testing.T) {
	m := New(context.Background(), newFake(), Options{Refresh: time.Millisecond, IncidentRefresh: time.Millisecond})
	_, cmd := m.Update(incidentTickMsg{})
	if cmd == nil {
		t.Fatalf("tick should reschedule")
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		if len(msg) != 1 {
			t.Fatalf("incident fetch should not run on the dashboard screen, got %d commands", len(msg))
		}
	case incidentTickMsg:
	default:
		t.Fatalf("unexpected message %T", msg)
	}
}

func TestSearchAndFaultFilter(t *testing.T) {
	b := newFake()
	m := sized(New(context.Background(), b, Options{}))
	m, cmd := press(m, "tab")
	m = drain(t, m, cmd)

	m, _ = press(m, "/")
	if !m.searching {
		t.Fatalf("expected search mode")
	}
	for _, r := range "grid" {
		m, _ = press(m, string(r))
	}
	if len(m.visible) != 1 || m.visible[0].IncidentID != "INC-003" {
		t.Fatalf("search not applied: %+v", m.visible)
	}
	m, _ = press(m, "esc")
	if m.searching || len(m.visible) != 3 {
		t.Fatalf("esc should clear search, visible=%d", len(m.visible))
	}

	m, _ = press(m, "f")
	if m.fault != "ENVIRONMENTAL_STRESS" || len(m.visible) != 1 {
		t.Fatalf("fault filter not applied: %q %d", m.fault, len(m.visible))
	}
	m, _ = press(m, "f")
	m, _ = press(m, "f")
	if m.fault != "" || len(m.visible) != 3 {
		t.Fatalf("fault filter should cycle back to all")
	}
}

func TestEnterLoadsDetail(t *testing.T) {
	b := newFake()
	m := sized(New(context.Background(), b, Options{}))
	m, cmd := press(m, "tab")
	m = drain(t, m, cmd)

	m, cmd = press(m, "enter")
	if !m.showDetail || m.detailID != "INC-001" {
		t.Fatalf("expected detail view for INC-001, got %q", m.detailID)
	}
	m = drain(t, m, cmd)
	if len(b.detailIDs) != 1 || b.detailIDs[0] != "INC-001" {
		t.Fatalf("unexpected detail calls %v", b.detailIDs)
	}
	if !strings.Contains(m.View(), "FAULT ATTRIBUTION: LOGIC_DEFECT") {
		t.Fatalf("detail not rendered:\n%s", m.View())
	}
	m, _ = press(m, "esc")
	if m.showDetail {
		t.Fatalf("esc should close detail")
	}
}

func TestDetailFailureMessage(t *testing.T) {
	b := newFake()
	b.detailErr = &gateway.BackendUnavailableError{Op: "incident details", Err: errors.New("refused")}
	m := sized(New(context.Background(), b, Options{}))
	m, cmd := press(m, "tab")
	m = drain(t, m, cmd)
	m, cmd = press(m, "enter")
	m = drain(t, m, cmd)
	if m.detailText != detailFailed {
		t.Fatalf("expected failure text, got %q", m.detailText)
	}
}

func TestStaleDetailIgnored(t *testing.T) {
	m := New(context.Background(), newFake(), Options{})
	m.detailID = "INC-002"
	mi, _ := m.Update(detailMsg{id: "INC-001", body: `"old"`})
	if got := mi.(Model).detailText; got != "" {
		t.Fatalf("stale detail applied: %q", got)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m := New(context.Background(), newFake(), Options{})
	m, _ = press(m, "?")
	if !m.help || !strings.Contains(m.View(), "Key Bindings") {
		t.Fatalf("expected help view")
	}
	m, _ = press(m, "?")
	if m.help {
		t.Fatalf("help not toggled off")
	}
	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}
