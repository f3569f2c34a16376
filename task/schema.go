package task

import "github.com/fluxforge/aslc/types"

// extraParamSchemas declares, per service, the JSON Schema for the "extra"
// keyword arguments a call site may pass alongside the common ones every
// service accepts (result_path is handled separately since it is not part
// of the extra-argument document). Unknown extras fail validation and
// become an AttributeError rather than being silently dropped.
func extraParamSchemas() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		ServiceLambda: {
			"type":                 "object",
			"additionalProperties": false,
			"properties":           map[string]interface{}{},
		},
		ServiceLambdaPexpm: {
			"type":                 "object",
			"additionalProperties": false,
			"properties":           map[string]interface{}{},
		},
		ServiceECS: {
			"type":                 "object",
			"additionalProperties": false,
			"properties":           map[string]interface{}{},
		},
		ServiceECSWorker: {
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]interface{}{
				"spec":                map[string]interface{}{"type": "string"},
				"concurrency":         map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100},
				"heartbeat_interval":  map[string]interface{}{"type": "integer", "minimum": 1},
				"autoscaling_min":     map[string]interface{}{"type": "integer", "minimum": 0},
				"autoscaling_max":     map[string]interface{}{"type": "integer", "minimum": 0},
			},
		},
		ServiceStateMachine: {
			"type":                 "object",
			"additionalProperties": false,
			"properties":           map[string]interface{}{},
		},
	}
}

// CompileSchemas compiles every service's extra-parameter schema up front,
// so a malformed schema fails fast at Factory construction instead of at
// the first call site that happens to exercise it.
func CompileSchemas(cfg types.ValidationConfig) (map[string]*types.ParamSchema, error) {
	compiled := make(map[string]*types.ParamSchema)
	for service, doc := range extraParamSchemas() {
		schema, err := types.CompileParamSchema(service, doc, cfg)
		if err != nil {
			return nil, err
		}
		compiled[service] = schema
	}
	return compiled, nil
}
