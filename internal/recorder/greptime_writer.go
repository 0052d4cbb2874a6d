package recorder

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"engram-console/internal/config"
	"engram-console/internal/snapshot"
)

const defaultGreptimePort = 4001

// greptimeClient is the part of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter stores snapshots in three GreptimeDB tables: one status
// row per snapshot, one row per agent and one row per incident. Incidents
// are immutable, so each incident ID is written once per writer.
type GreptimeDBWriter struct {
	client        greptimeClient
	statusTable   string
	agentTable    string
	incidentTable string

	mu           sync.Mutex
	seenIncident map[string]struct{}
}

// NewGreptimeDBWriter connects to the endpoint (host or host:port) from cfg.
func NewGreptimeDBWriter(cfg config.Greptime) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	gcfg := greptime.NewConfig(host).WithPort(port).WithDatabase(cfg.Database)
	client, err := greptime.NewClient(gcfg)
	if err != nil {
		return nil, err
	}
	return newGreptimeDBWriter(client, cfg), nil
}

func newGreptimeDBWriter(client greptimeClient, cfg config.Greptime) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:        client,
		statusTable:   cfg.StatusTable,
		agentTable:    cfg.AgentTable,
		incidentTable: cfg.IncidentTable,
		seenIncident:  make(map[string]struct{}),
	}
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptime endpoint not set")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q: %w", portStr, err)
	}
	return host, port, nil
}

// Write inserts the rows of one snapshot.
func (w *GreptimeDBWriter) Write(s snapshot.Snapshot) error {
	tables := []*table.Table{}

	st, err := w.statusRows(s)
	if err != nil {
		return err
	}
	tables = append(tables, st)

	if len(s.Agents) > 0 {
		at, err := w.agentRows(s)
		if err != nil {
			return err
		}
		tables = append(tables, at)
	}

	it, fresh, err := w.incidentRows(s)
	if err != nil {
		return err
	}
	if len(fresh) > 0 {
		tables = append(tables, it)
	}

	if _, err := w.client.Write(context.Background(), tables...); err != nil {
		return fmt.Errorf("greptime write: %w", err)
	}
	w.markSeen(fresh)
	return nil
}

func (w *GreptimeDBWriter) statusRows(s snapshot.Snapshot) (*table.Table, error) {
	tbl, err := table.New(w.statusTable)
	if err != nil {
		return nil, err
	}
	tbl.AddTagColumn("session", types.STRING)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddFieldColumn("mode", types.STRING)
	tbl.AddFieldColumn("uptime", types.STRING)
	tbl.AddFieldColumn("events_logged", types.UINT32)
	tbl.AddFieldColumn("risk_score", types.FLOAT64)
	tbl.AddFieldColumn("total_incidents", types.INT32)
	tbl.AddFieldColumn("highest_risk_agent", types.STRING)
	tbl.AddFieldColumn("latest_event", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	err = tbl.AddRow(
		s.Session,
		s.Status.Status,
		s.Status.Mode,
		s.Status.Uptime,
		s.Status.EventsLogged,
		s.RiskScore,
		s.Summary.TotalIncidents,
		s.Summary.HighestRiskAgent,
		s.Summary.LatestEvent,
		s.Timestamp,
	)
	return tbl, err
}

func (w *GreptimeDBWriter) agentRows(s snapshot.Snapshot) (*table.Table, error) {
	tbl, err := table.New(w.agentTable)
	if err != nil {
		return nil, err
	}
	tbl.AddTagColumn("session", types.STRING)
	tbl.AddTagColumn("agent_id", types.STRING)
	tbl.AddFieldColumn("type", types.STRING)
	tbl.AddFieldColumn("risk_score", types.INT32)
	tbl.AddFieldColumn("risk_level", types.STRING)
	tbl.AddFieldColumn("battery", types.STRING)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, a := range s.Agents {
		if err := tbl.AddRow(s.Session, a.AgentID, a.AgentType, a.RiskScore, a.RiskLevel, a.Battery, a.Status, s.Timestamp); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// incidentRows builds rows for incidents not yet written and returns their IDs.
func (w *GreptimeDBWriter) incidentRows(s snapshot.Snapshot) (*table.Table, []string, error) {
	tbl, err := table.New(w.incidentTable)
	if err != nil {
		return nil, nil, err
	}
	tbl.AddTagColumn("session", types.STRING)
	tbl.AddTagColumn("incident_id", types.STRING)
	tbl.AddFieldColumn("incident_time", types.STRING)
	tbl.AddFieldColumn("agent_id", types.STRING)
	tbl.AddFieldColumn("fault_type", types.STRING)
	tbl.AddFieldColumn("preventability", types.INT32)
	tbl.AddFieldColumn("liability", types.INT32)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	w.mu.Lock()
	defer w.mu.Unlock()
	var fresh []string
	batch := make(map[string]struct{})
	for _, inc := range s.Incidents {
		if _, ok := w.seenIncident[inc.IncidentID]; ok {
			continue
		}
		if _, ok := batch[inc.IncidentID]; ok {
			continue
		}
		batch[inc.IncidentID] = struct{}{}
		if err := tbl.AddRow(s.Session, inc.IncidentID, inc.Timestamp, inc.AgentID, inc.FaultType, inc.Preventability, inc.Liability, s.Timestamp); err != nil {
			return nil, nil, err
		}
		fresh = append(fresh, inc.IncidentID)
	}
	return tbl, fresh, nil
}

func (w *GreptimeDBWriter) markSeen(ids []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range ids {
		w.seenIncident[id] = struct{}{}
	}
}
