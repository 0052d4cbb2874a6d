package fixture

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"engram-console/internal/logging"
)

// chaosBody is served instead of valid JSON while chaos mode is on.
const chaosBody = `{"chaos": tru`

// Server answers the Engram API routes from a Simulator's dataset.
type Server struct {
	sim    *Simulator
	router chi.Router
}

// NewServer serves d as a static dataset.
func NewServer(d *Dataset) *Server {
	return NewSimulatorServer(NewSimulator(d, 0, 1))
}

// NewSimulatorServer serves the live dataset of sim.
func NewSimulatorServer(sim *Simulator) *Server {
	s := &Server{sim: sim}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Post("/admin/toggle-chaos", s.handleToggleChaos)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.chaos)
		r.Get("/status", s.handleStatus)
		r.Get("/risk", s.handleRisk)
		r.Get("/agents", s.handleAgents)
		r.Get("/incidents", s.handleIncidents)
		r.Get("/incidents/{id}", s.handleIncidentDetail)
		r.Get("/risk-summary", s.handleRiskSummary)
	})
	s.router = r
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logging.FromContext(ctx).Info("fixture backend listening", "addr", addr)
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// chaos replaces API responses with a truncated JSON document while chaos
// mode is on.
func (s *Server) chaos(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sim.Chaos() {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, chaosBody)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "engram-api", "chaos": s.sim.Chaos()})
}

func (s *Server) handleToggleChaos(w http.ResponseWriter, r *http.Request) {
	state := s.sim.ToggleChaos()
	writeJSON(w, http.StatusOK, map[string]any{"chaos": state})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	d := s.sim.Snapshot()
	writeJSON(w, http.StatusOK, d.Status)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	d := s.sim.Snapshot()
	writeJSON(w, http.StatusOK, map[string]float64{"risk_score": d.RiskScore})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	d := s.sim.Snapshot()
	writeJSON(w, http.StatusOK, d.Agents)
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	d := s.sim.Snapshot()
	writeJSON(w, http.StatusOK, d.Incidents)
}

func (s *Server) handleRiskSummary(w http.ResponseWriter, r *http.Request) {
	d := s.sim.Snapshot()
	writeJSON(w, http.StatusOK, d.Summary)
}

// handleIncidentDetail returns the stored raw body when there is one,
// otherwise a generated narrative encoded as a JSON string.
func (s *Server) handleIncidentDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := s.sim.Snapshot()
	if raw, ok := d.Details[id]; ok {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, raw)
		return
	}
	inc, ok := d.incident(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Incident not found"})
		return
	}
	writeJSON(w, http.StatusOK, narrative(inc))
}
