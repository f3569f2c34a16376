// Package task implements the task family: parsing a `class Foo(Task):`
// declaration's attributes into an ir.TaskDefinition, and building the
// ir.TaskState the Statement Visitor emits for each call site, per
// spec.md §4.4.
package task

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/types"
)

// Service name constants. StateMachine is additive (SPEC_FULL §D.7): a
// task class may declare service="state-machine" to invoke another
// top-level state machine synchronously via startExecution.sync.
const (
	ServiceLambda       = "lambda"
	ServiceLambdaPexpm  = "lambda:pexpm-runner"
	ServiceECS          = "ecs"
	ServiceECSWorker    = "ecs:worker"
	ServiceStateMachine = "state-machine"
)

var knownServices = map[string]bool{
	ServiceLambda:       true,
	ServiceLambdaPexpm:  true,
	ServiceECS:          true,
	ServiceECSWorker:    true,
	ServiceStateMachine: true,
}

// returnsData reports whether a service's Task state may legally carry a
// non-null ResultPath. Only the lambda family invokes synchronously and
// returns a usable payload; every other service either fires-and-forgets
// or only signals completion via a task token.
var returnsData = map[string]bool{
	ServiceLambda:      true,
	ServiceLambdaPexpm: true,
}

// attribute default/allowed-value table, mirroring the original
// visitors/task.py ATTRIBUTE_MAP.
type attrSpec struct {
	required bool
	def      interface{}
}

// ParseDefinition reads a task class's body (a sequence of `name = value`
// assignments and a `run`/`async def run` method, whose body is captured
// verbatim as RunBody) into an ir.TaskDefinition. Malformed or unknown
// attributes are reported as AttributeError and abort only this class.
func ParseDefinition(class *ast.ClassDef, cfg types.Config, sink *diag.Sink) (*ir.TaskDefinition, bool) {
	def := &ir.TaskDefinition{
		Name:        class.Name,
		Position:    class.Pos(),
		Timeout:     cfg.DefaultTimeout,
		CPU:         cfg.DefaultCPU,
		Memory:      cfg.DefaultMemory,
		Concurrency: 1,
		RunBody:     class.RunBody,
	}

	ok := true
	for _, stmt := range class.Body {
		switch s := stmt.(type) {
		case *ast.Assign:
			name, isName := s.Target.(*ast.Name)
			if !isName {
				sink.Abort(diag.AttributeError, s.Pos(), class.Name, "task class attribute target must be a plain name")
				ok = false
				continue
			}
			if !applyAttribute(def, name.Id, s.Value, sink, class.Name) {
				ok = false
			}
		case *ast.ExprStmt:
			// Method definitions never reach here: the parser captures a
			// method's body text as RunBody instead of parsing it. A bare
			// expression statement in a class body is unsupported.
			sink.Abort(diag.SyntaxUnsupported, s.Pos(), class.Name, "unsupported statement in task class body")
			ok = false
		default:
			sink.Abort(diag.SyntaxUnsupported, stmt.Pos(), class.Name, "unsupported statement in task class body")
			ok = false
		}
	}

	if def.Service == "" {
		sink.Abort(diag.AttributeError, class.Pos(), class.Name, "task class %q must declare service", class.Name)
		return nil, false
	}
	if !knownServices[def.Service] {
		sink.Abort(diag.AttributeError, class.Pos(), class.Name, "unknown task service %q", def.Service)
		return nil, false
	}
	if def.Service == ServiceECSWorker && def.Spec == "" {
		sink.Abort(diag.AttributeError, class.Pos(), class.Name, "service %q requires spec", ServiceECSWorker)
		ok = false
	}
	if def.HasHeartbeat && def.HeartbeatInterval >= def.Timeout {
		sink.Abort(diag.ShapeError, class.Pos(), class.Name, "heartbeat_interval must be less than timeout")
		ok = false
	}
	if def.HasAutoscaling && def.AutoscalingMin > def.AutoscalingMax {
		sink.Abort(diag.ShapeError, class.Pos(), class.Name, "autoscaling_min must be <= autoscaling_max")
		ok = false
	}
	if def.Concurrency < 1 || def.Concurrency > 100 {
		sink.Abort(diag.ShapeError, class.Pos(), class.Name, "concurrency must be in range [1, 100], got %d", def.Concurrency)
		ok = false
	}
	if err := validateSizing(def, cfg); err != nil {
		sink.Abort(diag.AttributeError, class.Pos(), class.Name, "%s", err.Error())
		ok = false
	}
	if !ok {
		return nil, false
	}
	return def, true
}

func applyAttribute(def *ir.TaskDefinition, name string, value ast.Expression, sink *diag.Sink, machine string) bool {
	switch name {
	case "service":
		s, ok := stringLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "service must be a string literal")
			return false
		}
		def.Service = s
	case "timeout":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "timeout must be an integer literal")
			return false
		}
		def.Timeout = n
	case "cpu":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "cpu must be an integer literal")
			return false
		}
		def.CPU = n
	case "memory":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "memory must be an integer literal")
			return false
		}
		def.Memory = n
	case "spec":
		s, ok := stringLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "spec must be a string literal")
			return false
		}
		def.Spec = s
	case "concurrency":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "concurrency must be an integer literal")
			return false
		}
		def.Concurrency = n
		def.HasConcurrency = true
	case "heartbeat_interval":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "heartbeat_interval must be an integer literal")
			return false
		}
		def.HeartbeatInterval = n
		def.HasHeartbeat = true
	case "autoscaling_min":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "autoscaling_min must be an integer literal")
			return false
		}
		def.AutoscalingMin = n
		def.HasAutoscaling = true
	case "autoscaling_max":
		n, ok := intLit(value)
		if !ok {
			sink.Abort(diag.AttributeError, value.Pos(), machine, "autoscaling_max must be an integer literal")
			return false
		}
		def.AutoscalingMax = n
		def.HasAutoscaling = true
	default:
		sink.Abort(diag.AttributeError, value.Pos(), machine, "unknown task class attribute %q", name)
		return false
	}
	return true
}

func stringLit(e ast.Expression) (string, bool) {
	if s, ok := e.(*ast.StringLit); ok {
		return s.Value, true
	}
	return "", false
}

func intLit(e ast.Expression) (int, bool) {
	if n, ok := e.(*ast.NumberLit); ok && !n.IsFloat {
		return int(n.Value), true
	}
	return 0, false
}

func validateSizing(def *ir.TaskDefinition, cfg types.Config) error {
	switch def.Service {
	case ServiceECS, ServiceECSWorker:
		allowed, ok := cfg.ECSCPUMemoryPairs[def.CPU]
		if !ok {
			return errf("cpu %d is not a supported Fargate cpu unit", def.CPU)
		}
		for _, m := range allowed {
			if m == def.Memory {
				return nil
			}
		}
		return errf("memory %d MB is not valid for cpu %d", def.Memory, def.CPU)
	case ServiceLambda, ServiceLambdaPexpm:
		for _, m := range cfg.LambdaMemoryAllowlist {
			if m == def.Memory {
				return nil
			}
		}
		return errf("memory %d MB is not a supported lambda memory value", def.Memory)
	default:
		return nil
	}
}
