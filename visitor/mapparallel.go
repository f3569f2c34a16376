package visitor

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
)

func visitMap(call *ast.Call, ctx *Context, machine string) []ir.Fragment {
	m := buildMap(call, ctx, machine)
	if m == nil {
		return nil
	}
	return []ir.Fragment{m}
}

// buildMap compiles `map(items_expr, iterator_fn, max_concurrency=?)`.
// items_expr must be a data subscript, resolved the same way visitAssign
// resolves an assignment target; iterator_fn must be a bare reference to a
// module-scope function, which becomes the Map state's isolated iterator
// sub-machine.
func buildMap(call *ast.Call, ctx *Context, machine string) *ir.MapState {
	if len(call.Args) < 2 {
		ctx.Sink.Abort(diag.ShapeError, call.Pos(), machine, "map() requires items_expr and iterator_fn positional arguments")
		return nil
	}

	path, ok := ast.SubscriptPath(call.Args[0])
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, call.Args[0].Pos(), machine, "map() items_expr must be a data subscript, got %s", ast.String(call.Args[0]))
		return nil
	}
	itemsPath := ir.DataPath(splitDots(path))

	iterName, ok := call.Args[1].(*ast.Name)
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, call.Args[1].Pos(), machine, "map() iterator_fn must be a bare function reference, got %s", ast.String(call.Args[1]))
		return nil
	}
	fnDef, ok := ctx.Funcs[iterName.Id]
	if !ok {
		ctx.Sink.Abort(diag.ReferenceError, call.Args[1].Pos(), machine, "map() iterator %q is not a module-scope function", iterName.Id)
		return nil
	}
	ctx.MarkEmbedded(iterName.Id)

	sub := ir.NewSubMachine(true)
	sub.Fragments = visitBodyIn(fnDef.Body, ctx, machine, true)

	kws := keywordMap(call)
	maxConcurrency := 0
	if n, ok := intKeyword(kws, "max_concurrency"); ok {
		maxConcurrency = n
	}

	return &ir.MapState{
		Base:           ir.Base{Position: call.Pos()},
		ItemsPath:      itemsPath,
		Iterator:       sub,
		MaxConcurrency: maxConcurrency,
		Parameters: map[string]string{
			"context_index.$": "$$.Map.Item.Index",
			"context_value.$": "$$.Map.Item.Value",
		},
	}
}

func visitParallel(call *ast.Call, ctx *Context, machine string) []ir.Fragment {
	p := buildParallel(call, ctx, machine)
	if p == nil {
		return nil
	}
	return []ir.Fragment{p}
}

func buildParallel(call *ast.Call, ctx *Context, machine string) *ir.ParallelState {
	if len(call.Args) == 0 {
		ctx.Sink.Abort(diag.ShapeError, call.Pos(), machine, "parallel() requires at least one branch")
		return nil
	}
	p := &ir.ParallelState{Base: ir.Base{Position: call.Pos()}}
	for _, arg := range call.Args {
		name, ok := arg.(*ast.Name)
		if !ok {
			ctx.Sink.Abort(diag.ShapeError, arg.Pos(), machine, "parallel() branch must be a bare function reference, got %s", ast.String(arg))
			return nil
		}
		fnDef, ok := ctx.Funcs[name.Id]
		if !ok {
			ctx.Sink.Abort(diag.ReferenceError, arg.Pos(), machine, "parallel() branch %q is not a module-scope function", name.Id)
			return nil
		}
		ctx.MarkEmbedded(name.Id)
		sub := ir.NewSubMachine(false)
		sub.Fragments = visitBodyIn(fnDef.Body, ctx, machine, false)
		p.Branches = append(p.Branches, sub)
	}
	return p
}
