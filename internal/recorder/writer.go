package recorder

import (
	"errors"

	"engram-console/internal/snapshot"
)

// SnapshotWriter is an interface to support different snapshot sinks.
type SnapshotWriter interface {
	Write(snapshot.Snapshot) error
}

// MultiWriter fans snapshots out to several writers. Every writer is
// attempted; failures are joined.
type MultiWriter struct {
	writers []SnapshotWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...SnapshotWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a snapshot to all writers.
func (mw *MultiWriter) Write(s snapshot.Snapshot) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.Write(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer that implements Close.
func (mw *MultiWriter) Close() error {
	var errs []error
	for _, w := range mw.writers {
		if c, ok := w.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
