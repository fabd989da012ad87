package voxeldef

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "voxeldef.schema.json"

//go:embed voxeldef.schema.json
var schemaSource string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Validate checks a YAML or JSON document against the voxel library schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("could not compile voxel schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("could not unmarshal voxel definitions: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON value types.
	buf, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("could not convert voxel definitions: %w", err)
	}
	var doc any
	if err := json.Unmarshal(buf, &doc); err != nil {
		return fmt.Errorf("could not convert voxel definitions: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalid)
	}
	return nil
}
