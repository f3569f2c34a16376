package visitor

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/decorator"
	"github.com/fluxforge/aslc/ir"
)

// Visit walks fn's body and returns its unlinked StateMachine. The caller
// (the Project Assembler) is responsible for running the Linker over the
// result and for deciding whether fn is embedded.
func Visit(fn *ast.FunctionDef, ctx *Context) *ir.StateMachine {
	sm := &ir.StateMachine{Name: fn.Name, Position: fn.Pos()}
	if !decorator.Apply(fn, sm, ctx.Sink) {
		return sm
	}
	sm.Fragments = visitBody(fn.Body, ctx, sm.Name)
	return sm
}
