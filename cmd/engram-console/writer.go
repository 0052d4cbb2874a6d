package main

import (
	"engram-console/internal/config"
	"engram-console/internal/recorder"
)

// newWriter picks the snapshot sink: GreptimeDB when an endpoint is
// configured and printOnly is off, otherwise JSON on STDOUT. A logFile adds
// a JSONL copy. The cleanup function closes anything opened here.
func newWriter(cfg *config.Config, printOnly bool, logFile string) (recorder.SnapshotWriter, func(), error) {
	cleanup := func() {}

	writer, err := baseWriter(cfg, printOnly)
	if err != nil {
		return nil, nil, err
	}
	if logFile == "" {
		return writer, cleanup, nil
	}

	fw, err := recorder.NewFileWriter(logFile)
	if err != nil {
		return nil, nil, err
	}
	mw := recorder.NewMultiWriter(writer, fw)
	cleanup = func() { mw.Close() }
	return mw, cleanup, nil
}

func baseWriter(cfg *config.Config, printOnly bool) (recorder.SnapshotWriter, error) {
	if printOnly || cfg.Recorder.Greptime.Endpoint == "" {
		return recorder.NewJSONStdoutWriter(), nil
	}
	return recorder.NewGreptimeDBWriter(cfg.Recorder.Greptime)
}
