package recorder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"engram-console/internal/snapshot"
)

// JSONStdoutWriter prints snapshots as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a snapshot in JSON format.
func (w *JSONStdoutWriter) Write(s snapshot.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
