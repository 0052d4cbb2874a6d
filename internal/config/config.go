// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend locates the Engram API.
type Backend struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // zero leaves the transport default
}

// Console controls the watch TUI refresh cadence.
type Console struct {
	Refresh         time.Duration `yaml:"refresh"`
	IncidentRefresh time.Duration `yaml:"incident_refresh"`
}

// Greptime configures the GreptimeDB sink of the recorder.
type Greptime struct {
	Endpoint      string `yaml:"endpoint"`
	Database      string `yaml:"database"`
	StatusTable   string `yaml:"status_table"`
	AgentTable    string `yaml:"agent_table"`
	IncidentTable string `yaml:"incident_table"`
}

// Recorder configures snapshot recording.
type Recorder struct {
	Interval time.Duration `yaml:"interval"`
	Session  string        `yaml:"session"`
	Greptime Greptime      `yaml:"greptime"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Tracing toggles OpenTelemetry tracing of backend calls.
type Tracing struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the root configuration of the console.
type Config struct {
	Backend  Backend  `yaml:"backend"`
	Console  Console  `yaml:"console"`
	Recorder Recorder `yaml:"recorder"`
	Log      Log      `yaml:"log"`
	Tracing  Tracing  `yaml:"tracing"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend: Backend{BaseURL: "http://127.0.0.1:8765"},
		Console: Console{
			Refresh:         time.Second,
			IncidentRefresh: 2 * time.Second,
		},
		Recorder: Recorder{
			Interval: 5 * time.Second,
			Greptime: Greptime{
				Database:      "public",
				StatusTable:   "engram_status",
				AgentTable:    "engram_agents",
				IncidentTable: "engram_incidents",
			},
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path on top of Default, validates it against
// the embedded CUE schema and applies environment overrides. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read config: %w", err)
		default:
			if err := ValidateWithCue(path, data); err != nil {
				return nil, err
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
			}
		}
	}
	ApplyEnv(cfg)
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with ENGRAM_API_URL, ENGRAM_LOG_LEVEL,
// GREPTIMEDB_ENDPOINT and GREPTIMEDB_DATABASE when set.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("ENGRAM_API_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ENGRAM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		cfg.Recorder.Greptime.Endpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		cfg.Recorder.Greptime.Database = v
	}
}

func (c *Config) check() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout must not be negative")
	}
	if c.Console.Refresh <= 0 || c.Console.IncidentRefresh <= 0 {
		return errors.New("console refresh intervals must be positive")
	}
	if c.Recorder.Interval <= 0 {
		return errors.New("recorder.interval must be positive")
	}
	return nil
}
