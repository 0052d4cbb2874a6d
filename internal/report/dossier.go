// Package report renders the Pre-Incident Risk Dossier (PIRD), a plain
// text summary of one snapshot of the backend.
package report

import (
	"bytes"
	_ "embed"
	"io"
	"sort"
	"text/template"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"engram-console/internal/gateway"
	"engram-console/internal/snapshot"
)

// Width is the column the dossier is wrapped at.
const Width = 72

//go:embed dossier.tmpl
var dossierTmpl string

var tmpl = template.Must(template.New("dossier").Funcs(template.FuncMap{
	"rfc3339": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(dossierTmpl))

// FaultCount is the number of incidents attributed to one fault type.
type FaultCount struct {
	FaultType string
	Count     int
}

// Dossier is the data the report template is executed with.
type Dossier struct {
	Generated         time.Time
	Session           string
	Status            gateway.SimulationStatus
	RiskScore         float64
	TotalIncidents    int32
	ActiveAgents      int
	Faults            []FaultCount
	AvgPreventability float64
	AvgLiability      float64
	HighestRiskAgent  string
	LatestEvent       string
	Incidents         []gateway.Incident
	Warnings          []string
}

// Build derives a Dossier from a snapshot. capErr is the error returned by
// snapshot.Capture; each failed section becomes a warning line.
func Build(s snapshot.Snapshot, capErr error) Dossier {
	d := Dossier{
		Generated:        s.Timestamp,
		Session:          s.Session,
		Status:           s.Status,
		RiskScore:        s.RiskScore,
		TotalIncidents:   s.Summary.TotalIncidents,
		ActiveAgents:     len(s.Agents),
		HighestRiskAgent: s.Summary.HighestRiskAgent,
		LatestEvent:      s.Summary.LatestEvent,
		Incidents:        s.Incidents,
	}
	counts := make(map[string]int)
	var prev, liab int64
	for _, inc := range s.Incidents {
		counts[inc.FaultType]++
		prev += int64(inc.Preventability)
		liab += int64(inc.Liability)
	}
	if n := len(s.Incidents); n > 0 {
		d.AvgPreventability = float64(prev) / float64(n)
		d.AvgLiability = float64(liab) / float64(n)
	}
	for ft, c := range counts {
		d.Faults = append(d.Faults, FaultCount{FaultType: ft, Count: c})
	}
	sort.Slice(d.Faults, func(i, j int) bool {
		if d.Faults[i].Count != d.Faults[j].Count {
			return d.Faults[i].Count > d.Faults[j].Count
		}
		return d.Faults[i].FaultType < d.Faults[j].FaultType
	})
	if capErr != nil {
		d.Warnings = splitErrors(capErr)
	}
	return d
}

func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// Render writes d to w, wrapped at Width columns.
func Render(w io.Writer, d Dossier) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return err
	}
	_, err := io.WriteString(w, wordwrap.String(buf.String(), Width))
	return err
}
