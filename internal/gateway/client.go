package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultBaseURL is the address the Engram backend listens on by default.
const DefaultBaseURL = "http://127.0.0.1:8765"

var (
	errNullBody      = errors.New("unexpected null body")
	errRiskNotObject = errors.New("body is not a JSON object")
	errRiskMissing   = errors.New("risk_score field missing")
	errRiskType      = errors.New("risk_score is not a number")
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used to report substituted defaults.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client is a typed facade over the Engram backend REST API. Every
// operation issues exactly one GET and either returns the decoded value,
// the operation's default, or an error, following its Policy.
// A Client holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for the backend at baseURL. An empty baseURL
// selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address fixed at construction.
func (c *Client) BaseURL() string { return c.baseURL }

// Status fetches the simulation run state.
func (c *Client) Status(ctx context.Context) (SimulationStatus, error) {
	return withFallback(ctx, c.logger, StatusPolicy, DefaultStatus, func(ctx context.Context) (SimulationStatus, error) {
		var st SimulationStatus
		err := c.getJSON(ctx, StatusPolicy, StatusPolicy.Path, &st)
		return st, err
	})
}

// RiskScore fetches the system-wide risk score. It never fails: an
// unreachable backend, a non-JSON body and a missing or non-numeric
// risk_score field all yield 0.
func (c *Client) RiskScore(ctx context.Context) (float64, error) {
	return withFallback(ctx, c.logger, RiskScorePolicy, func() float64 { return 0 }, func(ctx context.Context) (float64, error) {
		body, err := c.get(ctx, RiskScorePolicy, RiskScorePolicy.Path)
		if err != nil {
			return 0, err
		}
		return decodeRiskScore(body)
	})
}

// Agents fetches the active-agents roster in backend order.
func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	return withFallback(ctx, c.logger, AgentsPolicy, func() []Agent { return []Agent{} }, func(ctx context.Context) ([]Agent, error) {
		var agents []Agent
		err := c.getJSON(ctx, AgentsPolicy, AgentsPolicy.Path, &agents)
		return agents, err
	})
}

// Incidents fetches the incident log in backend order.
func (c *Client) Incidents(ctx context.Context) ([]Incident, error) {
	return withFallback(ctx, c.logger, IncidentsPolicy, func() []Incident { return []Incident{} }, func(ctx context.Context) ([]Incident, error) {
		var incidents []Incident
		err := c.getJSON(ctx, IncidentsPolicy, IncidentsPolicy.Path, &incidents)
		return incidents, err
	})
}

// RiskSummary fetches the aggregate risk view.
func (c *Client) RiskSummary(ctx context.Context) (RiskSummary, error) {
	return withFallback(ctx, c.logger, RiskSummaryPolicy, DefaultRiskSummary, func(ctx context.Context) (RiskSummary, error) {
		var sum RiskSummary
		err := c.getJSON(ctx, RiskSummaryPolicy, RiskSummaryPolicy.Path, &sum)
		return sum, err
	})
}

// IncidentDetail fetches the raw detail document for one incident and
// returns the body verbatim. There is no default: if the backend cannot be
// reached the result is a *BackendUnavailableError, and a truncated body is
// a *DecodeError.
func (c *Client) IncidentDetail(ctx context.Context, incidentID string) (string, error) {
	body, err := c.get(ctx, IncidentDetailPolicy, IncidentDetailPolicy.Path+incidentID)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return "", &BackendUnavailableError{Op: IncidentDetailPolicy.Op, Err: te}
		}
		return "", err
	}
	return string(body), nil
}

// get performs a single GET and returns the full body. The status code is
// not inspected; error pages are handed to the caller like any other body.
// Once the response headers have arrived the exchange counts as complete,
// so a body cut short is a *DecodeError rather than a *TransportError.
func (c *Client) get(ctx context.Context, p Policy, path string) ([]byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Op: p.Op, URL: url, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: p.Op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DecodeError{Op: p.Op, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, p Policy, path string, v any) error {
	body, err := c.get(ctx, p, path)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return &DecodeError{Op: p.Op, Err: errNullBody}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Op: p.Op, Err: err}
	}
	return nil
}

func decodeRiskScore(body []byte) (float64, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, &DecodeError{Op: RiskScorePolicy.Op, Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return 0, &DecodeError{Op: RiskScorePolicy.Op, Err: errRiskNotObject}
	}
	raw, ok := obj["risk_score"]
	if !ok {
		return 0, &DecodeError{Op: RiskScorePolicy.Op, Err: errRiskMissing}
	}
	score, ok := raw.(float64)
	if !ok {
		return 0, &DecodeError{Op: RiskScorePolicy.Op, Err: errRiskType}
	}
	return score, nil
}
