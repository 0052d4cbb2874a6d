package console

import "github.com/charmbracelet/lipgloss"

// Class buckets a risk score or preventability value for display.
type Class string

const (
	ClassLow      Class = "low"
	ClassMedium   Class = "medium"
	ClassHigh     Class = "high"
	ClassCritical Class = "critical"
)

// RiskClass buckets an agent or global risk score.
func RiskClass(score float64) Class {
	switch {
	case score >= 100:
		return ClassCritical
	case score >= 50:
		return ClassHigh
	case score >= 20:
		return ClassMedium
	default:
		return ClassLow
	}
}

// SeverityClass buckets an incident by its preventability score.
func SeverityClass(preventability int32) Class {
	switch {
	case preventability >= 80:
		return ClassCritical
	case preventability >= 50:
		return ClassHigh
	case preventability >= 20:
		return ClassMedium
	default:
		return ClassLow
	}
}

var classColors = map[Class]lipgloss.Color{
	ClassCritical: lipgloss.Color("9"),
	ClassHigh:     lipgloss.Color("208"),
	ClassMedium:   lipgloss.Color("11"),
	ClassLow:      lipgloss.Color("10"),
}

// Style returns the foreground style used for c.
func (c Class) Style() lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(classColors[c])
	if c == ClassCritical {
		s = s.Bold(true)
	}
	return s
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stoppedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sectionHeader = lipgloss.NewStyle().Bold(true)
)
