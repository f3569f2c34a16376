// Package project assembles a fully translated Project from a parsed
// Program: it parses every task class, runs the Statement Visitor and the
// Linker over every module-level function, and marks the functions that
// turned out to be Map iterator or Parallel branch bodies as embedded.
package project

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/fingerprint"
	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/linker"
	"github.com/fluxforge/aslc/task"
	"github.com/fluxforge/aslc/types"
	"github.com/fluxforge/aslc/visitor"
)

// Assemble translates program into a Project. Diagnostics for any state
// machine or task class that failed are recorded on the returned Sink; a
// state machine that aborted is simply absent from Project.StateMachines
// rather than present in a half-built form.
func Assemble(program *ast.Program, cfg types.Config) (*ir.Project, *diag.Sink, error) {
	sink := diag.NewSink()

	factory, err := task.NewFactory(cfg.Validation)
	if err != nil {
		return nil, nil, err
	}

	machineNames := make(map[string]bool, len(program.Functions))
	for _, fn := range program.Functions {
		machineNames[fn.Name] = true
	}

	proj := ir.NewProject()
	for _, class := range program.Classes {
		def, ok := task.ParseDefinition(class, cfg, sink)
		if !ok {
			continue
		}
		if def.Service == task.ServiceStateMachine && !machineNames[def.Name] {
			sink.Abort(diag.ReferenceError, def.Position, def.Name,
				"state-machine task %q does not name a defined state machine function", def.Name)
			continue
		}
		proj.TaskClasses[def.Name] = def
	}

	ctx := visitor.NewContext(program, cfg, factory, sink, proj.TaskClasses)
	machines := make(map[string]*ir.StateMachine, len(program.Functions))
	for _, fn := range program.Functions {
		machines[fn.Name] = visitor.Visit(fn, ctx)
	}

	for name, sm := range machines {
		sm.Embedded = ctx.Embedded[name]
		if sink.Aborted(name) {
			continue
		}
		if !linker.Link(sm, sink) {
			continue
		}
		sm.Fingerprint = fingerprint.DisplayHash(sm)
		proj.StateMachines[name] = sm
	}

	return proj, sink, nil
}
