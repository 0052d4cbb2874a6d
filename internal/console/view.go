package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"engram-console/internal/gateway"
)

func (m Model) View() string {
	if m.help {
		return m.renderHelp()
	}
	var body string
	switch {
	case m.screen == screenIncidents && m.showDetail:
		body = m.renderDetail()
	case m.screen == screenIncidents:
		body = m.renderIncidents()
	default:
		body = m.renderDashboard()
	}
	return strings.Join([]string{m.renderHeader(), body, m.renderBottom()}, "\n")
}

func (m Model) renderHeader() string {
	tabs := []string{"Dashboard", "Incidents"}
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if screen(i) == m.screen {
			rendered[i] = activeTab.Render(t)
		} else {
			rendered[i] = inactiveTab.Render(t)
		}
	}
	return titleStyle.Render("ENGRAM") + "  " + strings.Join(rendered, "  ")
}

func (m Model) renderDashboard() string {
	stStyle := stoppedStyle
	if m.status.Status == "RUNNING" {
		stStyle = runningStyle
	}
	statusPanel := panelStyle.Render(strings.Join([]string{
		sectionHeader.Render("Simulation"),
		labelStyle.Render("Status   ") + stStyle.Render(m.status.Status),
		labelStyle.Render("Mode     ") + m.status.Mode,
		labelStyle.Render("Uptime   ") + m.status.Uptime,
		labelStyle.Render("Events   ") + fmt.Sprintf("%d", m.status.EventsLogged),
	}, "\n"))

	cls := RiskClass(m.risk)
	riskPanel := panelStyle.Render(strings.Join([]string{
		sectionHeader.Render("Risk"),
		labelStyle.Render("Score          ") + cls.Style().Render(fmt.Sprintf("%.1f %s", m.risk, strings.ToUpper(string(cls)))),
		labelStyle.Render("Incidents      ") + fmt.Sprintf("%d", m.summary.TotalIncidents),
		labelStyle.Render("Highest risk   ") + m.summary.HighestRiskAgent,
		labelStyle.Render("Latest event   ") + m.summary.LatestEvent,
	}, "\n"))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, statusPanel, " ", riskPanel)
	agents := dimStyle.Render(noAgents)
	if len(m.agents) > 0 {
		agents = m.agentTable.View()
	}
	return strings.Join([]string{panels, sectionHeader.Render("Active Agents"), agents}, "\n")
}

func (m Model) renderIncidents() string {
	filter := "all"
	if m.fault != "" {
		filter = m.fault
	}
	bar := labelStyle.Render("Fault: ") + filter
	if m.searching || m.search.Value() != "" {
		bar += "  " + m.search.View()
	}
	if len(m.visible) == 0 {
		return strings.Join([]string{bar, dimStyle.Render("No incidents")}, "\n")
	}
	return strings.Join([]string{bar, m.incidentTable.View(), m.renderSelected()}, "\n")
}

func (m Model) renderSelected() string {
	c := m.incidentTable.Cursor()
	if c < 0 || c >= len(m.visible) {
		return ""
	}
	inc := m.visible[c]
	return SeverityClass(inc.Preventability).Style().Render(severityLine(inc))
}

func severityLine(inc gateway.Incident) string {
	return fmt.Sprintf("%s %s on %s, preventability %d%%, liability %d%%",
		strings.ToUpper(string(SeverityClass(inc.Preventability))), inc.FaultType, inc.AgentID, inc.Preventability, inc.Liability)
}

func (m Model) renderDetail() string {
	return sectionHeader.Render("Incident "+m.detailID) + "\n" + m.detail.View()
}

func (m Model) renderBottom() string {
	if e := m.errorLine(); e != "" {
		return errorStyle.Render("● " + e)
	}
	line := "tab switch | r refresh | ? help | q quit"
	if !m.updated.IsZero() {
		line = "updated " + m.updated.Format("15:04:05") + " | " + line
	}
	return dimStyle.Render(line)
}

func (m Model) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q       quit",
		" tab     switch dashboard / incidents",
		" r       refresh current screen",
		" ↑↓      move selection",
		" /       search incidents (enter keep, esc clear)",
		" f       cycle fault type filter",
		" enter   load incident details",
		" esc     close details",
		" ?       toggle this help view",
	}
	return strings.Join(lines, "\n")
}
