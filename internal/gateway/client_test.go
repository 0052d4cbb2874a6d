package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newBackend serves fixed bodies keyed by request path.
func newBackend(t *testing.T, bodies map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, WithLogger(quietLogger()))
}

// unreachable returns a client pointing at a listener that has been closed.
func unreachable(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return New(url, WithLogger(quietLogger()))
}

func TestNewDefaults(t *testing.T) {
	c := New("")
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("base url = %s, want %s", c.BaseURL(), DefaultBaseURL)
	}
	c = New("http://example.test:9000/")
	if c.BaseURL() != "http://example.test:9000" {
		t.Fatalf("trailing slash not trimmed: %s", c.BaseURL())
	}
}

func TestUnreachableDefaults(t *testing.T) {
	c := unreachable(t)
	ctx := context.Background()

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st != DefaultStatus() {
		t.Fatalf("status = %+v, want default", st)
	}
	if st.Status != "NOT_RUNNING" || st.Mode != "SEALED" || st.Uptime != "00:00:00" || st.EventsLogged != 0 {
		t.Fatalf("default status fields wrong: %+v", st)
	}

	score, err := c.RiskScore(ctx)
	if err != nil || score != 0 {
		t.Fatalf("RiskScore = %v, %v; want 0, nil", score, err)
	}

	agents, err := c.Agents(ctx)
	if err != nil {
		t.Fatalf("Agents: %v", err)
	}
	if agents == nil || len(agents) != 0 {
		t.Fatalf("agents = %#v, want empty list", agents)
	}

	incidents, err := c.Incidents(ctx)
	if err != nil {
		t.Fatalf("Incidents: %v", err)
	}
	if incidents == nil || len(incidents) != 0 {
		t.Fatalf("incidents = %#v, want empty list", incidents)
	}

	sum, err := c.RiskSummary(ctx)
	if err != nil {
		t.Fatalf("RiskSummary: %v", err)
	}
	if sum.TotalIncidents != 0 || sum.HighestRiskAgent != "None" || sum.LatestEvent != "No events" {
		t.Fatalf("summary = %+v, want default", sum)
	}
}

func TestIncidentDetailUnreachable(t *testing.T) {
	c := unreachable(t)
	got, err := c.IncidentDetail(context.Background(), "INC-1")
	if err == nil {
		t.Fatalf("expected error, got %q", got)
	}
	if got != "" {
		t.Fatalf("expected empty detail on error, got %q", got)
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	var bu *BackendUnavailableError
	if !errors.As(err, &bu) {
		t.Fatalf("expected *BackendUnavailableError, got %T", err)
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected wrapped *TransportError")
	}
	if !strings.HasPrefix(err.Error(), "backend error: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !strings.Contains(err.Error(), "/api/incidents/INC-1") {
		t.Fatalf("message does not name the request: %q", err.Error())
	}
}

func TestRiskScoreBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
		want float64
	}{
		{"empty object", `{}`, 0},
		{"value", `{"risk_score": 42.5}`, 42.5},
		{"integer", `{"risk_score": 7}`, 7},
		{"not json", `hello`, 0},
		{"wrong type", `{"risk_score": "high"}`, 0},
		{"null field", `{"risk_score": null}`, 0},
		{"array", `[1,2,3]`, 0},
		{"empty body", ``, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newBackend(t, map[string]string{"/api/risk": tc.body})
			got, err := c.RiskScore(context.Background())
			if err != nil {
				t.Fatalf("RiskScore error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("RiskScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDecodeRiskScoreCategories(t *testing.T) {
	cases := []struct {
		body string
		want error
	}{
		{`{}`, errRiskMissing},
		{`{"risk_score": true}`, errRiskType},
		{`"x"`, errRiskNotObject},
	}
	for _, tc := range cases {
		_, err := decodeRiskScore([]byte(tc.body))
		if !errors.Is(err, tc.want) {
			t.Errorf("decodeRiskScore(%s) = %v, want %v", tc.body, err, tc.want)
		}
	}
	if _, err := decodeRiskScore([]byte(`nope`)); err == nil {
		t.Errorf("expected syntax error for non-JSON body")
	} else {
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("expected *DecodeError, got %T", err)
		}
	}
}

func TestIncidentDetailVerbatim(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/incidents/INC-7": "hello",
		"/api/incidents/INC-8": `{"incident_id": "INC-8",  "narrative": [1, 2]}`,
	})
	got, err := c.IncidentDetail(context.Background(), "INC-7")
	if err != nil {
		t.Fatalf("IncidentDetail: %v", err)
	}
	if got != "hello" {
		t.Fatalf("detail = %q, want hello", got)
	}
	got, err = c.IncidentDetail(context.Background(), "INC-8")
	if err != nil {
		t.Fatalf("IncidentDetail: %v", err)
	}
	if got != `{"incident_id": "INC-8",  "narrative": [1, 2]}` {
		t.Fatalf("detail was altered: %q", got)
	}
}

func TestIncidentDetailPassesErrorPages(t *testing.T) {
	c := newBackend(t, nil)
	got, err := c.IncidentDetail(context.Background(), "missing")
	if err != nil {
		t.Fatalf("IncidentDetail: %v", err)
	}
	if !strings.Contains(got, "404") {
		t.Fatalf("expected not-found page to pass through, got %q", got)
	}
}

func TestListsEmptyAndMalformed(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/agents":    `[]`,
		"/api/incidents": `[]`,
	})
	agents, err := c.Agents(context.Background())
	if err != nil || agents == nil || len(agents) != 0 {
		t.Fatalf("Agents = %#v, %v; want empty list", agents, err)
	}
	incidents, err := c.Incidents(context.Background())
	if err != nil || incidents == nil || len(incidents) != 0 {
		t.Fatalf("Incidents = %#v, %v; want empty list", incidents, err)
	}

	for _, body := range []string{`{"agents": []}`, `not json`, `null`, `[{"agent_id": 5}]`} {
		c := newBackend(t, map[string]string{
			"/api/agents":    body,
			"/api/incidents": body,
		})
		var de *DecodeError
		if got, err := c.Agents(context.Background()); !errors.As(err, &de) {
			t.Errorf("Agents(%s) = %#v, %v; want DecodeError", body, got, err)
		}
		if got, err := c.Incidents(context.Background()); !errors.As(err, &de) {
			t.Errorf("Incidents(%s) = %#v, %v; want DecodeError", body, got, err)
		}
	}
}

func TestDecodeErrorsSurface(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/status":       `{"status": 1}`,
		"/api/risk-summary": `<html>Internal Server Error</html>`,
	})
	_, err := c.Status(context.Background())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Status err = %v, want DecodeError", err)
	}
	if de.Op != "status" || !strings.HasPrefix(err.Error(), "failed to parse status") {
		t.Fatalf("unexpected decode error %q", err.Error())
	}
	_, err = c.RiskSummary(context.Background())
	if !errors.As(err, &de) {
		t.Fatalf("RiskSummary err = %v, want DecodeError", err)
	}
}

func TestStatusScenario(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/status": `{"status":"RUNNING","mode":"ACTIVE","uptime":"01:23:45","events_logged":7}`,
	})
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	want := SimulationStatus{Status: "RUNNING", Mode: "ACTIVE", Uptime: "01:23:45", EventsLogged: 7}
	if st != want {
		t.Fatalf("status = %+v, want %+v", st, want)
	}
}

func TestDecodedListsPreserveOrder(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/agents": `[
			{"agent_id":"a-2","type":"warehouse","risk_score":55,"risk_level":"HIGH","battery":"40%","status":"ACTIVE"},
			{"agent_id":"a-1","type":"grid","risk_score":5,"risk_level":"LOW","battery":"99%","status":"IDLE"}
		]`,
		"/api/incidents": `[
			{"incident_id":"INC-9","timestamp":"2025-01-02T00:00:00","agent_id":"a-2","fault_type":"ENV_STRESS","preventability":80,"liability":30},
			{"incident_id":"INC-3","timestamp":"2025-01-01T00:00:00","agent_id":"a-1","fault_type":"LOGIC_DEFECT","preventability":10,"liability":90}
		]`,
		"/api/risk-summary": `{"total_incidents":2,"highest_risk_agent":"a-2","latest_event":"INC-9","extra":true}`,
	})
	agents, err := c.Agents(context.Background())
	if err != nil {
		t.Fatalf("Agents: %v", err)
	}
	wantAgents := []Agent{
		{AgentID: "a-2", AgentType: "warehouse", RiskScore: 55, RiskLevel: "HIGH", Battery: "40%", Status: "ACTIVE"},
		{AgentID: "a-1", AgentType: "grid", RiskScore: 5, RiskLevel: "LOW", Battery: "99%", Status: "IDLE"},
	}
	if !reflect.DeepEqual(agents, wantAgents) {
		t.Fatalf("agents = %+v, want %+v", agents, wantAgents)
	}
	incidents, err := c.Incidents(context.Background())
	if err != nil {
		t.Fatalf("Incidents: %v", err)
	}
	if len(incidents) != 2 || incidents[0].IncidentID != "INC-9" || incidents[1].IncidentID != "INC-3" {
		t.Fatalf("incident order not preserved: %+v", incidents)
	}
	if incidents[1].Liability != 90 || incidents[0].Preventability != 80 {
		t.Fatalf("incident fields wrong: %+v", incidents)
	}
	sum, err := c.RiskSummary(context.Background())
	if err != nil {
		t.Fatalf("RiskSummary: %v", err)
	}
	if sum != (RiskSummary{TotalIncidents: 2, HighestRiskAgent: "a-2", LatestEvent: "INC-9"}) {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestIdempotentReads(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/status":       `{"status":"RUNNING","mode":"ACTIVE","uptime":"00:00:10","events_logged":3}`,
		"/api/risk":         `{"risk_score": 12.25}`,
		"/api/agents":       `[{"agent_id":"a","type":"t","risk_score":1,"risk_level":"LOW","battery":"1%","status":"OK"}]`,
		"/api/incidents":    `[{"incident_id":"i","timestamp":"t","agent_id":"a","fault_type":"f","preventability":1,"liability":2}]`,
		"/api/risk-summary": `{"total_incidents":1,"highest_risk_agent":"a","latest_event":"i"}`,
		"/api/incidents/i":  `detail`,
	})
	ctx := context.Background()
	calls := []func() (any, error){
		func() (any, error) { return c.Status(ctx) },
		func() (any, error) { return c.RiskScore(ctx) },
		func() (any, error) { return c.Agents(ctx) },
		func() (any, error) { return c.Incidents(ctx) },
		func() (any, error) { return c.RiskSummary(ctx) },
		func() (any, error) { return c.IncidentDetail(ctx, "i") },
	}
	for i, call := range calls {
		a, errA := call()
		b, errB := call()
		if errA != nil || errB != nil {
			t.Fatalf("call %d failed: %v / %v", i, errA, errB)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("call %d not idempotent: %#v vs %#v", i, a, b)
		}
	}
}

func TestConcurrentCalls(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/status": `{"status":"RUNNING","mode":"ACTIVE","uptime":"00:00:01","events_logged":1}`,
		"/api/risk":   `{"risk_score": 3}`,
	})
	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if st, err := c.Status(context.Background()); err != nil || st.Status != "RUNNING" {
				errs <- errors.New("status mismatch")
			}
		}()
		go func() {
			defer wg.Done()
			if s, err := c.RiskScore(context.Background()); err != nil || s != 3 {
				errs <- errors.New("risk mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestOneRequestPerCall(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		io.WriteString(w, "garbage")
	}))
	defer srv.Close()
	c := New(srv.URL, WithLogger(quietLogger()))
	ctx := context.Background()
	c.Status(ctx)
	c.RiskScore(ctx)
	c.Agents(ctx)
	c.IncidentDetail(ctx, "x")
	for _, path := range []string{"/api/status", "/api/risk", "/api/agents", "/api/incidents/x"} {
		if hits[path] != 1 {
			t.Errorf("%s hit %d times, want 1", path, hits[path])
		}
	}
}

func TestMissingFieldsAreDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
		call func(*Client) (any, error)
		want string
	}{
		{"empty status", "/api/status", `{}`, func(c *Client) (any, error) { return c.Status(context.Background()) }, "missing field `status`"},
		{"partial status", "/api/status", `{"status":"RUNNING","mode":"ACTIVE","uptime":"00:00:01"}`, func(c *Client) (any, error) { return c.Status(context.Background()) }, "missing field `events_logged`"},
		{"empty agent", "/api/agents", `[{}]`, func(c *Client) (any, error) { return c.Agents(context.Background()) }, "missing field `agent_id`"},
		{"empty incident", "/api/incidents", `[{}]`, func(c *Client) (any, error) { return c.Incidents(context.Background()) }, "missing field `incident_id`"},
		{"null element", "/api/incidents", `[null]`, func(c *Client) (any, error) { return c.Incidents(context.Background()) }, "null"},
		{"uppercase key", "/api/risk-summary", `{"TOTAL_INCIDENTS":3,"highest_risk_agent":"a","latest_event":"i"}`, func(c *Client) (any, error) { return c.RiskSummary(context.Background()) }, "missing field `total_incidents`"},
		{"null field", "/api/risk-summary", `{"total_incidents":3,"highest_risk_agent":null,"latest_event":"i"}`, func(c *Client) (any, error) { return c.RiskSummary(context.Background()) }, "field `highest_risk_agent`: unexpected null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newBackend(t, map[string]string{tc.path: tc.body})
			got, err := tc.call(c)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("got %+v, %v; want DecodeError", got, err)
			}
			if !strings.HasPrefix(err.Error(), "failed to parse ") || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestExactKeysWinOverUnknownMembers(t *testing.T) {
	c := newBackend(t, map[string]string{
		"/api/status": `{"STATUS":"BOGUS","status":"RUNNING","mode":"ACTIVE","uptime":"00:00:01","events_logged":1,"extra":[1]}`,
	})
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Status != "RUNNING" {
		t.Fatalf("status = %q, want RUNNING", st.Status)
	}
}

func TestTruncatedBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		io.WriteString(w, `{"status":"RUN`)
	}))
	defer srv.Close()
	c := New(srv.URL, WithLogger(quietLogger()))
	ctx := context.Background()

	st, err := c.Status(ctx)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Status = %+v, %v; want DecodeError", st, err)
	}
	var te *TransportError
	if errors.As(err, &te) {
		t.Fatalf("truncated body reported as transport failure: %v", err)
	}
	if !strings.Contains(err.Error(), "read body") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, err := c.Agents(ctx); !errors.As(err, &de) {
		t.Fatalf("Agents err = %v, want DecodeError", err)
	}
	if score, err := c.RiskScore(ctx); err != nil || score != 0 {
		t.Fatalf("RiskScore = %v, %v; want 0, nil", score, err)
	}
	if _, err := c.IncidentDetail(ctx, "INC-1"); !errors.As(err, &de) || errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("IncidentDetail err = %v, want DecodeError", err)
	}
}
