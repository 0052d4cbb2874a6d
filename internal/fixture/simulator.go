package fixture

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"engram-console/internal/gateway"
	"engram-console/internal/logging"
)

var faultTypes = []string{"ENVIRONMENTAL_STRESS", "LOGIC_DEFECT", "COMPLIANCE_VIOLATION"}

const (
	defaultIncidentRate = 0.1
	chaosIncidentRate   = 0.5
	maxAgentRisk        = 150
)

// Simulator owns the dataset served by a fixture Server. When Run is
// active it advances the dataset every tick: uptime and event count grow,
// agents drift in risk and drain battery, and incidents appear at random.
type Simulator struct {
	mu           sync.RWMutex
	data         *Dataset
	rand         *rand.Rand
	now          func() time.Time
	started      time.Time
	tickInterval time.Duration
	incidentRate float64
	chaosMode    bool
	nextID       int
}

// NewSimulator wraps d. A zero tickInterval leaves the dataset static.
func NewSimulator(d *Dataset, tickInterval time.Duration, seed int64) *Simulator {
	return &Simulator{
		data:         d,
		rand:         rand.New(rand.NewSource(seed)),
		now:          time.Now,
		started:      time.Now(),
		tickInterval: tickInterval,
		incidentRate: defaultIncidentRate,
		nextID:       len(d.Incidents) + 1,
	}
}

// Run advances the dataset until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	if s.tickInterval <= 0 {
		return
	}
	log.Info("starting fixture simulator", "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if inc, ok := s.tick(); ok {
				log.Debug("incident generated", "incident_id", inc.IncidentID, "agent_id", inc.AgentID, "fault_type", inc.FaultType)
			}
		case <-ctx.Done():
			log.Info("stopping fixture simulator")
			return
		}
	}
}

// tick advances the dataset by one step and reports the incident it
// generated, if any.
func (s *Simulator) tick() (gateway.Incident, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data
	d.Status.EventsLogged++
	d.Status.Uptime = formatUptime(s.now().Sub(s.started))

	for i := range d.Agents {
		a := &d.Agents[i]
		a.RiskScore += int32(s.rand.Intn(11) - 5)
		if s.chaosMode {
			a.RiskScore += int32(s.rand.Intn(10))
		}
		if a.RiskScore < 0 {
			a.RiskScore = 0
		} else if a.RiskScore > maxAgentRisk {
			a.RiskScore = maxAgentRisk
		}
		a.RiskLevel = riskLevel(a.RiskScore)
		if b, err := strconv.Atoi(a.Battery); err == nil {
			b -= s.rand.Intn(3)
			if b < 0 {
				b = 0
			}
			a.Battery = strconv.Itoa(b)
		}
	}

	var (
		inc     gateway.Incident
		created bool
	)
	rate := s.incidentRate
	if s.chaosMode {
		rate = chaosIncidentRate
	}
	if len(d.Agents) > 0 && s.rand.Float64() < rate {
		agent := d.Agents[s.rand.Intn(len(d.Agents))]
		inc = gateway.Incident{
			IncidentID:     fmt.Sprintf("INC-%03d", s.nextID),
			Timestamp:      s.now().UTC().Format(time.RFC3339),
			AgentID:        agent.AgentID,
			FaultType:      faultTypes[s.rand.Intn(len(faultTypes))],
			Preventability: int32(s.rand.Intn(101)),
			Liability:      int32(s.rand.Intn(101)),
		}
		s.nextID++
		d.Incidents = append(d.Incidents, inc)
		created = true
	}

	s.summarize()
	return inc, created
}

// summarize recomputes the global score and summary from agents and
// incidents. Caller holds the lock.
func (s *Simulator) summarize() {
	d := s.data
	d.Summary.TotalIncidents = int32(len(d.Incidents))
	if n := len(d.Incidents); n > 0 {
		d.Summary.LatestEvent = d.Incidents[n-1].IncidentID
	} else {
		d.Summary.LatestEvent = "No events"
	}
	var top *gateway.Agent
	for i := range d.Agents {
		if top == nil || d.Agents[i].RiskScore > top.RiskScore {
			top = &d.Agents[i]
		}
	}
	if top == nil {
		d.Summary.HighestRiskAgent = "None"
		d.RiskScore = 0
		return
	}
	d.Summary.HighestRiskAgent = top.AgentID
	d.RiskScore = float64(top.RiskScore)
}

// ToggleChaos flips chaos mode on or off and returns the new state. In
// chaos mode API responses are malformed and incidents are more frequent.
func (s *Simulator) ToggleChaos() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chaosMode = !s.chaosMode
	return s.chaosMode
}

// Chaos returns whether chaos mode is active.
func (s *Simulator) Chaos() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chaosMode
}

// Snapshot returns a deep copy of the current dataset.
func (s *Simulator) Snapshot() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := *s.data
	d.Agents = append([]gateway.Agent{}, s.data.Agents...)
	d.Incidents = append([]gateway.Incident{}, s.data.Incidents...)
	d.Details = make(map[string]string, len(s.data.Details))
	for k, v := range s.data.Details {
		d.Details[k] = v
	}
	return d
}

func riskLevel(score int32) string {
	switch {
	case score >= 100:
		return "CRITICAL"
	case score >= 50:
		return "HIGH"
	case score >= 20:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
