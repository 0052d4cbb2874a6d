// CUE schema validation code
package config

import (
	"bytes"
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource []byte

// ValidateWithCue checks YAML config data against the embedded #Config
// schema. filename is only used in error positions.
func ValidateWithCue(filename string, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	file, err := yaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if configVal.Err() != nil {
		return fmt.Errorf("cannot build YAML config: %w", configVal.Err())
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
