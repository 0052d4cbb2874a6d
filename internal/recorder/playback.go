package recorder

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"engram-console/internal/snapshot"
)

// ReplayLog replays snapshots from r to writer. A speed >0 accelerates playback.
// If speed <= 0, no artificial delay is inserted.
func ReplayLog(ctx context.Context, r io.Reader, writer SnapshotWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var s snapshot.Snapshot
		if err := dec.Decode(&s); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if !prev.IsZero() && speed > 0 {
			diff := s.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				select {
				case <-ctx.Done():
					return n, ctx.Err()
				case <-time.After(diff):
				}
			}
		}
		if err := writer.Write(s); err != nil {
			return n, err
		}
		n++
		prev = s.Timestamp
	}
}

// ReplayLogFile opens a file and replays its snapshots.
func ReplayLogFile(ctx context.Context, path string, writer SnapshotWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(ctx, f, writer, speed)
}
