package task

import (
	"strings"

	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/types"
)

// Factory builds ir.TaskState values for task call sites, validating each
// call's extra keyword arguments against the service's compiled schema.
type Factory struct {
	schemas map[string]*types.ParamSchema
}

// NewFactory compiles every service's extra-parameter schema.
func NewFactory(cfg types.ValidationConfig) (*Factory, error) {
	schemas, err := CompileSchemas(cfg)
	if err != nil {
		return nil, err
	}
	return &Factory{schemas: schemas}, nil
}

// BuildInput is everything the Statement Visitor extracts from a task call
// site before asking the Factory to assemble the resulting Task state.
type BuildInput struct {
	Definition    *ir.TaskDefinition
	ExtraParams   map[string]interface{}
	InputPath     string
	HasInputPath  bool
	ResultPath    string
	HasResultPath bool
	IsMapIterator bool
	Position      ast.Position
	Comment       string
	Key           string
}

// Build validates in.ExtraParams against in.Definition.Service's schema and
// assembles the Task state's Resource/Parameters, applying the ResultPath
// legality rule from spec.md §4.4: result_path is only honored for a
// service that returns data (the lambda family); elsewhere it produces a
// warning and a null ResultPath, not a hard error.
func (f *Factory) Build(in BuildInput, sink *diag.Sink, machine string) (*ir.TaskState, bool) {
	def := in.Definition
	schema, ok := f.schemas[def.Service]
	if ok && len(in.ExtraParams) > 0 {
		if err := schema.Validate(in.ExtraParams); err != nil {
			sink.Abort(diag.AttributeError, in.Position, machine, "task %q call %v", def.Name, err)
			return nil, false
		}
	}
	if def.Service == ServiceECSWorker {
		if _, ok := in.ExtraParams["spec"]; !ok && def.Spec == "" {
			sink.Abort(diag.AttributeError, in.Position, machine, "service %q requires spec", ServiceECSWorker)
			return nil, false
		}
	}

	resourceARN, params := resource(def, in.IsMapIterator)
	for k, v := range in.ExtraParams {
		params[k] = v
	}
	params[traceKey] = traceBlock()

	state := &ir.TaskState{
		Base: ir.Base{
			Key:      in.Key,
			Comment:  in.Comment,
			Position: in.Position,
		},
		Service:      def.Service,
		Resource:     resourceARN,
		Parameters:   params,
		InputPath:    in.InputPath,
		HasInputPath: in.HasInputPath,
		Retries:      MergeRetries(nil, DefaultRetries(def.Service)),
	}

	if in.HasResultPath {
		if strings.HasPrefix(in.ResultPath, "$['"+traceKey+"']") {
			sink.Abort(diag.ShapeError, in.Position, machine, "result_path may not target the reserved %q key or a path rooted there", traceKey)
			return nil, false
		}
		if ReturnsData(def.Service) {
			state.ResultPath = in.ResultPath
			state.HasResultPath = true
		} else {
			sink.Report(diag.AttributeError, in.Position,
				"result_path has no effect on service %q; task does not return data", def.Service)
			state.HasResultPath = true
			state.ResultPathNull = true
		}
	}

	return state, true
}
