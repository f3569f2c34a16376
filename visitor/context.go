// Package visitor implements the Statement Visitor: it walks a function's
// body and emits the unlinked ir.Fragment sequence the Linker turns into a
// finished state graph. Explicit dispatch on each statement's concrete type
// drives the mapping (spec.md §4.1), never reflection or a visitor
// interface with runtime method lookup.
package visitor

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/task"
	"github.com/fluxforge/aslc/types"
)

// Context carries everything a single project's worth of visiting needs:
// the module-level function/class index, the compiled task Factory, the
// diagnostics sink, and bookkeeping for which functions turned out to be
// embedded (Map iterator / Parallel branch bodies rather than top-level
// state machines).
type Context struct {
	Config   types.Config
	Factory  *task.Factory
	Sink     *diag.Sink
	Classes  map[string]*ir.TaskDefinition
	Funcs    map[string]*ast.FunctionDef
	Embedded map[string]bool
}

// NewContext builds a Context indexing every module-level class and
// function definition in program.
func NewContext(program *ast.Program, cfg types.Config, factory *task.Factory, sink *diag.Sink, classes map[string]*ir.TaskDefinition) *Context {
	funcs := make(map[string]*ast.FunctionDef, len(program.Functions))
	for _, fn := range program.Functions {
		funcs[fn.Name] = fn
	}
	return &Context{
		Config:   cfg,
		Factory:  factory,
		Sink:     sink,
		Classes:  classes,
		Funcs:    funcs,
		Embedded: make(map[string]bool),
	}
}

// MarkEmbedded records that fnName's function is used only as a Map
// iterator or Parallel branch body (SPEC_FULL §D.6).
func (c *Context) MarkEmbedded(fnName string) {
	c.Embedded[fnName] = true
}
