package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object holds the members of a JSON object keyed by their exact names.
// encoding/json matches struct fields case-insensitively and leaves absent
// fields at their zero value; the wire types decode through object instead
// so that every field must be present under its exact key. Unknown members
// are ignored.
type object map[string]json.RawMessage

// member binds a JSON key to the field it decodes into.
type member struct {
	key string
	dst any
}

func decodeObject(data []byte) (object, error) {
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errNullBody
	}
	return o, nil
}

// decode fills each member in order and stops at the first missing, null
// or mistyped one.
func (o object) decode(members ...member) error {
	for _, m := range members {
		raw, ok := o[m.key]
		if !ok {
			return fmt.Errorf("missing field `%s`", m.key)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fmt.Errorf("field `%s`: unexpected null", m.key)
		}
		if err := json.Unmarshal(raw, m.dst); err != nil {
			return fmt.Errorf("field `%s`: %w", m.key, err)
		}
	}
	return nil
}

func (s *SimulationStatus) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v SimulationStatus
	if err := o.decode(
		member{"status", &v.Status},
		member{"mode", &v.Mode},
		member{"uptime", &v.Uptime},
		member{"events_logged", &v.EventsLogged},
	); err != nil {
		return err
	}
	*s = v
	return nil
}

func (a *Agent) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v Agent
	if err := o.decode(
		member{"agent_id", &v.AgentID},
		member{"type", &v.AgentType},
		member{"risk_score", &v.RiskScore},
		member{"risk_level", &v.RiskLevel},
		member{"battery", &v.Battery},
		member{"status", &v.Status},
	); err != nil {
		return err
	}
	*a = v
	return nil
}

func (i *Incident) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v Incident
	if err := o.decode(
		member{"incident_id", &v.IncidentID},
		member{"timestamp", &v.Timestamp},
		member{"agent_id", &v.AgentID},
		member{"fault_type", &v.FaultType},
		member{"preventability", &v.Preventability},
		member{"liability", &v.Liability},
	); err != nil {
		return err
	}
	*i = v
	return nil
}

func (r *RiskSummary) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v RiskSummary
	if err := o.decode(
		member{"total_incidents", &v.TotalIncidents},
		member{"highest_risk_agent", &v.HighestRiskAgent},
		member{"latest_event", &v.LatestEvent},
	); err != nil {
		return err
	}
	*r = v
	return nil
}
