// Package console implements the interactive watch screen on top of the
// gateway facade.
package console

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"engram-console/internal/gateway"
)

// Backend is the subset of the gateway facade the console reads from.
type Backend interface {
	Status(ctx context.Context) (gateway.SimulationStatus, error)
	RiskScore(ctx context.Context) (float64, error)
	Agents(ctx context.Context) ([]gateway.Agent, error)
	Incidents(ctx context.Context) ([]gateway.Incident, error)
	RiskSummary(ctx context.Context) (gateway.RiskSummary, error)
	IncidentDetail(ctx context.Context, incidentID string) (string, error)
}

// Options controls refresh cadence.
type Options struct {
	Refresh         time.Duration
	IncidentRefresh time.Duration
}

type screen int

const (
	screenDashboard screen = iota
	screenIncidents
)

const (
	detailFailed  = "Failed to load details"
	detailLoading = "Loading..."
	noAgents      = "No active agents"
)

// Run starts the console and blocks until the user quits or ctx ends.
func Run(ctx context.Context, b Backend, opts Options) error {
	p := tea.NewProgram(New(ctx, b, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Model is the bubbletea model for the console.
type Model struct {
	ctx     context.Context
	backend Backend
	opts    Options

	screen screen
	width  int
	height int
	help   bool

	status    gateway.SimulationStatus
	risk      float64
	summary   gateway.RiskSummary
	agents    []gateway.Agent
	incidents []gateway.Incident
	visible   []gateway.Incident

	agentTable    table.Model
	incidentTable table.Model

	search    textinput.Model
	searching bool
	fault     string

	detail     viewport.Model
	showDetail bool
	detailID   string
	detailText string

	errs    map[string]string
	updated time.Time
}

// New builds a console model. Zero refresh intervals fall back to 1s for
// the dashboard and 2s for incidents.
func New(ctx context.Context, b Backend, opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = time.Second
	}
	if opts.IncidentRefresh <= 0 {
		opts.IncidentRefresh = 2 * time.Second
	}
	agentCols := []table.Column{
		{Title: "Agent", Width: 20},
		{Title: "Type", Width: 12},
		{Title: "Risk", Width: 16},
		{Title: "Battery", Width: 8},
		{Title: "Status", Width: 12},
	}
	incidentCols := []table.Column{
		{Title: "Incident", Width: 12},
		{Title: "Timestamp", Width: 22},
		{Title: "Agent", Width: 18},
		{Title: "Fault", Width: 22},
		{Title: "Prev.", Width: 6},
		{Title: "Liab.", Width: 6},
		{Title: "Severity", Width: 9},
	}
	search := textinput.New()
	search.Placeholder = "search id, agent or fault"
	search.Prompt = "/ "
	return Model{
		ctx:           ctx,
		backend:       b,
		opts:          opts,
		status:        gateway.DefaultStatus(),
		summary:       gateway.DefaultRiskSummary(),
		agents:        []gateway.Agent{},
		incidents:     []gateway.Incident{},
		visible:       []gateway.Incident{},
		agentTable:    table.New(table.WithColumns(agentCols), table.WithFocused(true), table.WithHeight(8)),
		incidentTable: table.New(table.WithColumns(incidentCols), table.WithFocused(true), table.WithHeight(10)),
		search:        search,
		detail:        viewport.New(0, 0),
		errs:          make(map[string]string),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchDashboard(m.ctx, m.backend),
		fetchIncidents(m.ctx, m.backend),
		dashboardTick(m.opts.Refresh),
		incidentTick(m.opts.IncidentRefresh),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case dashboardTickMsg:
		cmds := []tea.Cmd{dashboardTick(m.opts.Refresh)}
		if m.screen == screenDashboard {
			cmds = append(cmds, fetchDashboard(m.ctx, m.backend))
		}
		return m, tea.Batch(cmds...)
	case incidentTickMsg:
		cmds := []tea.Cmd{incidentTick(m.opts.IncidentRefresh)}
		if m.screen == screenIncidents {
			cmds = append(cmds, fetchIncidents(m.ctx, m.backend))
		}
		return m, tea.Batch(cmds...)
	case statusMsg:
		if m.record("status", msg.err) {
			m.status = msg.status
		}
	case riskMsg:
		if m.record("risk", msg.err) {
			m.risk = msg.score
		}
	case agentsMsg:
		if m.record("agents", msg.err) {
			m.agents = msg.agents
			m.refreshAgents()
		}
	case summaryMsg:
		if m.record("summary", msg.err) {
			m.summary = msg.summary
		}
	case incidentsMsg:
		if m.record("incidents", msg.err) {
			m.incidents = msg.incidents
			m.refreshIncidents()
		}
	case detailMsg:
		if msg.id != m.detailID {
			return m, nil
		}
		if msg.err != nil {
			m.detailText = detailFailed
		} else {
			m.detailText = FormatDetail(msg.body)
		}
		m.refreshDetail()
	}
	return m, nil
}

// record stores or clears the error for op and reports whether the
// message carries data to apply.
func (m *Model) record(op string, err error) bool {
	if err != nil {
		m.errs[op] = err.Error()
		return false
	}
	delete(m.errs, op)
	m.updated = time.Now()
	return true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.help {
		switch msg.String() {
		case "?", "esc", "q":
			m.help = false
		}
		return m, nil
	}
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
		case tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			m.refreshIncidents()
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.refreshIncidents()
			return m, cmd
		}
		return m, nil
	}
	if m.showDetail {
		switch msg.String() {
		case "esc", "backspace":
			m.showDetail = false
			return m, nil
		case "q":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.help = true
		return m, nil
	case "tab":
		if m.screen == screenDashboard {
			m.screen = screenIncidents
			return m, fetchIncidents(m.ctx, m.backend)
		}
		m.screen = screenDashboard
		return m, fetchDashboard(m.ctx, m.backend)
	case "r":
		if m.screen == screenDashboard {
			return m, fetchDashboard(m.ctx, m.backend)
		}
		return m, fetchIncidents(m.ctx, m.backend)
	}

	if m.screen == screenDashboard {
		var cmd tea.Cmd
		m.agentTable, cmd = m.agentTable.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "f":
		m.fault = nextFault(m.fault, faultTypes(m.incidents))
		m.refreshIncidents()
		return m, nil
	case "enter":
		row := m.incidentTable.SelectedRow()
		if len(row) == 0 {
			return m, nil
		}
		m.detailID = row[0]
		m.detailText = detailLoading
		m.showDetail = true
		m.refreshDetail()
		return m, fetchDetail(m.ctx, m.backend, m.detailID)
	}
	var cmd tea.Cmd
	m.incidentTable, cmd = m.incidentTable.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	w := m.width
	if w < 20 {
		w = 20
	}
	m.agentTable.SetWidth(w)
	m.incidentTable.SetWidth(w)
	// header, panels and status bar
	agentHeight := m.height - 12
	if agentHeight < 3 {
		agentHeight = 3
	}
	m.agentTable.SetHeight(agentHeight)
	incidentHeight := m.height - 6
	if incidentHeight < 3 {
		incidentHeight = 3
	}
	m.incidentTable.SetHeight(incidentHeight)
	m.detail.Width = w
	m.detail.Height = m.height - 4
	if m.detail.Height < 1 {
		m.detail.Height = 1
	}
	m.search.Width = w - 4
	m.refreshDetail()
}

func (m *Model) refreshAgents() {
	rows := make([]table.Row, 0, len(m.agents))
	for _, a := range m.agents {
		rows = append(rows, table.Row{
			a.AgentID,
			a.AgentType,
			fmt.Sprintf("%d [%s]", a.RiskScore, a.RiskLevel),
			a.Battery,
			a.Status,
		})
	}
	m.agentTable.SetRows(rows)
}

func (m *Model) refreshIncidents() {
	m.visible = FilterIncidents(m.incidents, m.search.Value(), m.fault)
	rows := make([]table.Row, 0, len(m.visible))
	for _, inc := range m.visible {
		rows = append(rows, table.Row{
			inc.IncidentID,
			inc.Timestamp,
			inc.AgentID,
			inc.FaultType,
			fmt.Sprintf("%d%%", inc.Preventability),
			fmt.Sprintf("%d%%", inc.Liability),
			strings.ToUpper(string(SeverityClass(inc.Preventability))),
		})
	}
	m.incidentTable.SetRows(rows)
	if c := m.incidentTable.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.incidentTable.SetCursor(0)
	}
}

func (m *Model) refreshDetail() {
	text := m.detailText
	if m.detail.Width > 0 {
		text = wordwrap.String(text, m.detail.Width)
	}
	m.detail.SetContent(text)
	m.detail.GotoTop()
}

// errorLine returns the status-bar error, if any, in a stable order.
func (m Model) errorLine() string {
	if len(m.errs) == 0 {
		return ""
	}
	ops := make([]string, 0, len(m.errs))
	for op := range m.errs {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return m.errs[ops[0]]
}
