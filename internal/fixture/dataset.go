// Package fixture serves a canned copy of the Engram backend API so the
// console can be run and tested without the real simulation service.
package fixture

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"engram-console/internal/gateway"
)

//go:embed demo.yaml
var demoData []byte

// Dataset is the full state a fixture server answers with.
type Dataset struct {
	Status    gateway.SimulationStatus `yaml:"status"`
	RiskScore float64                  `yaml:"risk_score"`
	Agents    []gateway.Agent          `yaml:"agents"`
	Incidents []gateway.Incident       `yaml:"incidents"`
	Summary   gateway.RiskSummary      `yaml:"summary"`
	// Details holds raw detail bodies by incident ID. Incidents without an
	// entry get a generated narrative.
	Details map[string]string `yaml:"details"`
}

// Demo returns the built-in demo dataset.
func Demo() *Dataset {
	d, err := parseDataset(demoData)
	if err != nil {
		panic(fmt.Sprintf("fixture: embedded demo dataset: %v", err))
	}
	return d
}

// LoadDataset reads a YAML dataset from path.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDataset(data)
}

func parseDataset(data []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("cannot unmarshal dataset: %w", err)
	}
	if d.Agents == nil {
		d.Agents = []gateway.Agent{}
	}
	if d.Incidents == nil {
		d.Incidents = []gateway.Incident{}
	}
	return &d, nil
}

func (d *Dataset) incident(id string) (gateway.Incident, bool) {
	for _, inc := range d.Incidents {
		if inc.IncidentID == id {
			return inc, true
		}
	}
	return gateway.Incident{}, false
}

func narrative(inc gateway.Incident) string {
	return fmt.Sprintf(`
INCIDENT ID: %s
Timestamp: %s
Agent: %s

FAULT ATTRIBUTION: %s

PREVENTABILITY ANALYSIS:
Score: %d%%

ESTIMATED LIABILITY EXPOSURE: %d%%

GOVERNANCE STANDARD: Safety-Policy-v1.2
`, inc.IncidentID, inc.Timestamp, inc.AgentID, inc.FaultType, inc.Preventability, inc.Liability)
}
