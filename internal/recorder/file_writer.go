package recorder

import (
	"encoding/json"
	"os"

	"engram-console/internal/snapshot"
)

// FileWriter appends snapshots to a JSONL file.
type FileWriter struct {
	f   *os.File
	enc *json.Encoder
}

// NewFileWriter creates (or truncates) the file at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{f: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single snapshot.
func (w *FileWriter) Write(s snapshot.Snapshot) error {
	return w.enc.Encode(s)
}

// Close closes the underlying file.
func (w *FileWriter) Close() error {
	if w.f == nil {
		return nil
	}
	return w.f.Close()
}
