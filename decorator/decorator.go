// Package decorator processes the three function-level decorators the
// workflow DSL recognizes: @schedule, @subscribe, and @export, per
// spec.md §4.5.
package decorator

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
	"golang.org/x/mod/semver"
)

// Apply processes every decorator on fn, populating sm's Schedule,
// Subscription, Exported, and MinEngine fields. An unknown decorator name
// or an illegal argument is a DecoratorError that aborts translation of
// sm only.
func Apply(fn *ast.FunctionDef, sm *ir.StateMachine, sink *diag.Sink) bool {
	ok := true
	for _, dec := range fn.Decorators {
		switch dec.Name {
		case "schedule":
			if !applySchedule(dec, sm, sink) {
				ok = false
			}
		case "subscribe":
			if !applySubscribe(dec, sm, sink) {
				ok = false
			}
		case "export":
			if !applyExport(dec, sm, sink) {
				ok = false
			}
		default:
			sink.Abort(diag.DecoratorError, dec.Pos(), sm.Name, "unknown decorator %q", dec.Name)
			ok = false
		}
	}
	// schedule and subscribe both imply exported, per spec.md §4.5.
	if sm.Schedule != nil || sm.Subscription != nil {
		sm.Exported = true
	}
	return ok
}

func kwarg(args []ast.Keyword, name string) (ast.Keyword, bool) {
	for _, a := range args {
		if a.Name == name {
			return a, true
		}
	}
	return ast.Keyword{}, false
}

func stringArg(args []ast.Keyword, name string) (string, ast.Position, bool) {
	kw, ok := kwarg(args, name)
	if !ok {
		return "", ast.Position{}, false
	}
	lit, ok := kw.Value.(*ast.StringLit)
	if !ok {
		return "", kw.Position, false
	}
	return lit.Value, kw.Position, true
}

func applySchedule(dec *ast.Decorator, sm *ir.StateMachine, sink *diag.Sink) bool {
	expr, pos, ok := stringArg(dec.Args, "expression")
	if !ok {
		sink.Abort(diag.DecoratorError, dec.Pos(), sm.Name, "@schedule requires a string expression=")
		return false
	}
	if expr == "" {
		sink.Abort(diag.DecoratorError, pos, sm.Name, "@schedule expression must not be empty")
		return false
	}
	sm.Schedule = &ir.Schedule{Expression: expr}
	return true
}

func applySubscribe(dec *ast.Decorator, sm *ir.StateMachine, sink *diag.Sink) bool {
	project, _, ok := stringArg(dec.Args, "project")
	if !ok {
		sink.Abort(diag.DecoratorError, dec.Pos(), sm.Name, "@subscribe requires a string project=")
		return false
	}
	stateMachine := "main"
	if v, _, ok := stringArg(dec.Args, "state_machine"); ok {
		stateMachine = v
	}
	status := "success"
	if v, pos, ok := stringArg(dec.Args, "status"); ok {
		if v != "success" && v != "failure" {
			sink.Abort(diag.DecoratorError, pos, sm.Name, "@subscribe status must be \"success\" or \"failure\", got %q", v)
			return false
		}
		status = v
	}
	sub := &ir.Subscription{Project: project, StateMachine: stateMachine, Status: status}
	if v, _, ok := stringArg(dec.Args, "topic_arn_import_value"); ok {
		sub.TopicArnImportValue = v
		sub.HasTopicArnImport = true
	}
	sm.Subscription = sub
	return true
}

func applyExport(dec *ast.Decorator, sm *ir.StateMachine, sink *diag.Sink) bool {
	sm.Exported = true
	if v, pos, ok := stringArg(dec.Args, "min_engine"); ok {
		if !ValidateMinEngine(v) {
			sink.Abort(diag.DecoratorError, pos, sm.Name, "@export min_engine %q is not a valid semantic version", v)
			return false
		}
		sm.MinEngine = v
		sm.HasMinEngine = true
	}
	return true
}

// ValidateMinEngine reports whether v is a valid semver string acceptable
// as an @export(min_engine=...) argument. Accepts versions with or without
// a leading "v", matching golang.org/x/mod/semver's canonical form after
// normalization.
func ValidateMinEngine(v string) bool {
	if v == "" {
		return false
	}
	canon := v
	if canon[0] != 'v' {
		canon = "v" + canon
	}
	return semver.IsValid(canon)
}

// CompareMinEngine compares two @export min_engine values using the same
// rules ValidateMinEngine accepts.
func CompareMinEngine(a, b string) int {
	ca, cb := a, b
	if len(ca) == 0 || ca[0] != 'v' {
		ca = "v" + ca
	}
	if len(cb) == 0 || cb[0] != 'v' {
		cb = "v" + cb
	}
	return semver.Compare(ca, cb)
}
