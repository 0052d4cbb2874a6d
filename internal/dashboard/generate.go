// Package dashboard renders Grafana dashboards for the tables written by
// the snapshot recorder.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"engram-console/internal/config"
)

//go:embed templates/*.tmpl
var templates embed.FS

var templateFiles = []string{
	"templates/engram-risk.json.tmpl",
	"templates/engram-incidents.json.tmpl",
}

// Render executes every dashboard template against the recorder's
// GreptimeDB table names and writes the results to outDir.
func Render(outDir string, g config.Greptime) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, tplName := range templateFiles {
		t, err := template.New(path.Base(tplName)).Funcs(funcMap).ParseFS(templates, tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(path.Base(tplName), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, g); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
