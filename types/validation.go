package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParamSchema is a compiled JSON Schema for the extra keyword arguments one
// task-family variant accepts at its call site, plus the raw schema kept
// around for size/depth accounting.
type ParamSchema struct {
	Service string
	raw     map[string]interface{}
	schema  *jsonschema.Schema
}

// CompileParamSchema compiles a JSON Schema document (already decoded to a
// Go value tree) for the named service, enforcing the size/depth/param-count
// limits in cfg.
func CompileParamSchema(service string, doc map[string]interface{}, cfg ValidationConfig) (*ParamSchema, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("types: encode schema for %s: %w", service, err)
	}
	if len(encoded) > cfg.MaxSchemaSize {
		return nil, fmt.Errorf("types: schema for %s exceeds max size %d bytes", service, cfg.MaxSchemaSize)
	}
	if depth := schemaDepth(doc, 0); depth > cfg.MaxSchemaDepth {
		return nil, fmt.Errorf("types: schema for %s exceeds max depth %d (got %d)", service, cfg.MaxSchemaDepth, depth)
	}
	if props, ok := doc["properties"].(map[string]interface{}); ok && len(props) > cfg.MaxParamCount {
		return nil, fmt.Errorf("types: schema for %s declares %d properties, exceeds max %d", service, len(props), cfg.MaxParamCount)
	}

	// A service name such as "ecs:worker" would otherwise read as host:port.
	url := "mem://" + strings.ReplaceAll(service, ":", "-") + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("types: add schema resource for %s: %w", service, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("types: compile schema for %s: %w", service, err)
	}
	return &ParamSchema{Service: service, raw: doc, schema: compiled}, nil
}

// Validate checks the decoded extra-argument document against the compiled
// schema, returning a single readable error describing the first violation.
func (p *ParamSchema) Validate(doc interface{}) error {
	if err := p.schema.Validate(doc); err != nil {
		return fmt.Errorf("does not satisfy %s parameter schema: %w", p.Service, err)
	}
	return nil
}

// schemaDepth returns how deeply objects and arrays nest below v, with v at
// depth; a scalar value adds no level of its own.
func schemaDepth(v interface{}, depth int) int {
	max := depth
	var children []interface{}
	switch node := v.(type) {
	case map[string]interface{}:
		for _, child := range node {
			children = append(children, child)
		}
	case []interface{}:
		children = node
	}
	for _, child := range children {
		switch child.(type) {
		case map[string]interface{}, []interface{}:
			if d := schemaDepth(child, depth+1); d > max {
				max = d
			}
		}
	}
	return max
}
