package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "vmsweep-config.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse config schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("load config schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks a configuration file against the schema. Unknown keys and
// values of the wrong type are errors, so a misspelled option is reported
// instead of silently falling back to its default.
func Validate(path string) error {
	k := koanf.New(".")
	if err := k.Load(fileProvider(path), parserFor(path)); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return validateRaw(k.Raw())
}

func validateRaw(raw map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	// Parsers hand back Go-native numbers and maps; normalize through JSON
	// so the validator sees plain JSON values.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalize config: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("normalize config: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
