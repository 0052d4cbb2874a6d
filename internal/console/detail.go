package console

import (
	"encoding/json"
	"sort"
	"strings"

	"engram-console/internal/gateway"
)

// FormatDetail turns a raw incident detail body into display text. The
// backend usually answers with a JSON-encoded string; anything else is
// shown as received.
func FormatDetail(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return strings.Trim(s, "\n")
		}
	}
	return trimmed
}

// FilterIncidents keeps incidents matching query (case-insensitive on ID,
// agent or fault type) and, when fault is set, that exact fault type.
func FilterIncidents(incidents []gateway.Incident, query, fault string) []gateway.Incident {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]gateway.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if fault != "" && inc.FaultType != fault {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(inc.IncidentID), q) &&
			!strings.Contains(strings.ToLower(inc.AgentID), q) &&
			!strings.Contains(strings.ToLower(inc.FaultType), q) {
			continue
		}
		out = append(out, inc)
	}
	return out
}

func faultTypes(incidents []gateway.Incident) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, inc := range incidents {
		if inc.FaultType == "" {
			continue
		}
		if _, ok := seen[inc.FaultType]; ok {
			continue
		}
		seen[inc.FaultType] = struct{}{}
		out = append(out, inc.FaultType)
	}
	sort.Strings(out)
	return out
}

// nextFault cycles "" (all) -> each fault type -> "".
func nextFault(current string, faults []string) string {
	if current == "" {
		if len(faults) == 0 {
			return ""
		}
		return faults[0]
	}
	for i, f := range faults {
		if f == current && i+1 < len(faults) {
			return faults[i+1]
		}
	}
	return ""
}
