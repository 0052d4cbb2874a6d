// Package gateway is a typed client for the Engram backend REST API. Each
// operation either decodes the backend's answer, substitutes a documented
// default or reports an error, as its Policy dictates.
package gateway

// SimulationStatus is the backend's run state at call time.
type SimulationStatus struct {
	Status       string `json:"status" yaml:"status"`
	Mode         string `json:"mode" yaml:"mode"`
	Uptime       string `json:"uptime" yaml:"uptime"` // HH:MM:SS
	EventsLogged uint32 `json:"events_logged" yaml:"events_logged"`
}

// Agent is one row of the active-agents roster.
type Agent struct {
	AgentID   string `json:"agent_id" yaml:"agent_id"`
	AgentType string `json:"type" yaml:"type"`
	RiskScore int32  `json:"risk_score" yaml:"risk_score"`
	RiskLevel string `json:"risk_level" yaml:"risk_level"`
	Battery   string `json:"battery" yaml:"battery"`
	Status    string `json:"status" yaml:"status"`
}

// Incident is an immutable historical record. AgentID references an Agent
// but the incident does not own it.
type Incident struct {
	IncidentID     string `json:"incident_id" yaml:"incident_id"`
	Timestamp      string `json:"timestamp" yaml:"timestamp"`
	AgentID        string `json:"agent_id" yaml:"agent_id"`
	FaultType      string `json:"fault_type" yaml:"fault_type"`
	Preventability int32  `json:"preventability" yaml:"preventability"`
	Liability      int32  `json:"liability" yaml:"liability"`
}

// RiskSummary is the backend-computed aggregate risk view.
type RiskSummary struct {
	TotalIncidents   int32  `json:"total_incidents" yaml:"total_incidents"`
	HighestRiskAgent string `json:"highest_risk_agent" yaml:"highest_risk_agent"`
	LatestEvent      string `json:"latest_event" yaml:"latest_event"`
}

// Status and mode values reported when the backend cannot be reached.
const (
	StatusNotRunning = "NOT_RUNNING"
	ModeSealed       = "SEALED"
	ZeroUptime       = "00:00:00"
)

// DefaultStatus is the idle/sealed state substituted for an unreachable backend.
func DefaultStatus() SimulationStatus {
	return SimulationStatus{
		Status:       StatusNotRunning,
		Mode:         ModeSealed,
		Uptime:       ZeroUptime,
		EventsLogged: 0,
	}
}

// DefaultRiskSummary is the empty summary substituted for an unreachable backend.
func DefaultRiskSummary() RiskSummary {
	return RiskSummary{
		TotalIncidents:   0,
		HighestRiskAgent: "None",
		LatestEvent:      "No events",
	}
}
