package gateway

import (
	"context"
	"errors"
	"log/slog"
)

// Action is what an operation does with a failure of a given class.
type Action int

const (
	// Surface returns the failure to the caller.
	Surface Action = iota
	// UseDefault swallows the failure and returns the operation's default.
	UseDefault
)

func (a Action) String() string {
	if a == UseDefault {
		return "default"
	}
	return "error"
}

// Policy is one row of the fallback table: the backend path an operation
// reads and how it treats transport and decode failures.
type Policy struct {
	Op          string
	Path        string
	OnTransport Action
	OnDecode    Action
}

// The fallback table. Aggregate and list reads have a neutral default and
// never fail on transport; only the risk score also absorbs decode errors.
// The by-ID detail lookup has no default and forwards the body unparsed,
// so its decode action is never consulted.
var (
	StatusPolicy         = Policy{Op: "status", Path: "/api/status", OnTransport: UseDefault, OnDecode: Surface}
	RiskScorePolicy      = Policy{Op: "risk score", Path: "/api/risk", OnTransport: UseDefault, OnDecode: UseDefault}
	AgentsPolicy         = Policy{Op: "agents", Path: "/api/agents", OnTransport: UseDefault, OnDecode: Surface}
	IncidentsPolicy      = Policy{Op: "incidents", Path: "/api/incidents", OnTransport: UseDefault, OnDecode: Surface}
	RiskSummaryPolicy    = Policy{Op: "summary", Path: "/api/risk-summary", OnTransport: UseDefault, OnDecode: Surface}
	IncidentDetailPolicy = Policy{Op: "incident details", Path: "/api/incidents/", OnTransport: Surface, OnDecode: Surface}
)

// Policies lists every row of the table in operation order.
var Policies = []Policy{
	StatusPolicy,
	RiskScorePolicy,
	AgentsPolicy,
	IncidentsPolicy,
	RiskSummaryPolicy,
	IncidentDetailPolicy,
}

// action classifies err and returns the policy's action for its class.
// Unclassified errors are always surfaced.
func (p Policy) action(err error) Action {
	var te *TransportError
	if errors.As(err, &te) {
		return p.OnTransport
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return p.OnDecode
	}
	return Surface
}

// withFallback runs fetch once and, when it fails with an error class the
// policy absorbs, returns def() instead of the error.
func withFallback[T any](ctx context.Context, logger *slog.Logger, p Policy, def func() T, fetch func(context.Context) (T, error)) (T, error) {
	v, err := fetch(ctx)
	if err == nil {
		return v, nil
	}
	if p.action(err) == UseDefault {
		var te *TransportError
		if errors.As(err, &te) {
			logger.Warn("backend not available, using default", "op", p.Op, "url", te.URL, "error", te.Err)
		} else {
			logger.Debug("unusable backend response, using default", "op", p.Op, "error", err)
		}
		return def(), nil
	}
	var zero T
	return zero, err
}
