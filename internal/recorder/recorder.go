// Package recorder polls the backend through the gateway facade and stores
// each snapshot in one or more sinks.
package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engram-console/internal/logging"
	"engram-console/internal/snapshot"
)

// Recorder captures snapshots at a fixed interval.
type Recorder struct {
	src      snapshot.Source
	writer   SnapshotWriter
	interval time.Duration
	session  string
	now      func() time.Time
}

// New creates a Recorder. An empty session gets a random UUID.
func New(src snapshot.Source, writer SnapshotWriter, interval time.Duration, session string) *Recorder {
	if session == "" {
		session = uuid.NewString()
	}
	return &Recorder{
		src:      src,
		writer:   writer,
		interval: interval,
		session:  session,
		now:      time.Now,
	}
}

// Session returns the identifier stamped on every snapshot.
func (r *Recorder) Session() string { return r.session }

// RecordOnce captures and writes one snapshot. Backend failures never stop
// recording: the affected sections keep their defaults and are logged.
// Only sink failures are returned.
func (r *Recorder) RecordOnce(ctx context.Context) (snapshot.Snapshot, error) {
	logger := logging.FromContext(ctx)
	snap, err := snapshot.Capture(ctx, r.src, r.now)
	if err != nil {
		logger.Warn("partial snapshot", "session", r.session, "error", err)
	}
	snap.Session = r.session
	if err := r.writer.Write(snap); err != nil {
		logger.Error("snapshot write failed", "session", r.session, "error", err)
		return snap, fmt.Errorf("write snapshot: %w", err)
	}
	logger.Debug("snapshot recorded", "session", r.session, "agents", len(snap.Agents), "incidents", len(snap.Incidents))
	return snap, nil
}

// Run records immediately and then every interval until ctx is done or,
// when count > 0, count snapshots have been written.
func (r *Recorder) Run(ctx context.Context, count int) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	written := 0
	for {
		if _, err := r.RecordOnce(ctx); err != nil {
			return err
		}
		written++
		if count > 0 && written >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
