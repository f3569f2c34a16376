package visitor

import (
	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/expr"
	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/task"
)

func visitBody(stmts []ast.Stmt, ctx *Context, machine string) []ir.Fragment {
	var frags []ir.Fragment
	for _, s := range stmts {
		if ctx.Sink.Aborted(machine) {
			return frags
		}
		frags = append(frags, visitStmt(s, ctx, machine, false)...)
	}
	return frags
}

func visitBodyIn(stmts []ast.Stmt, ctx *Context, machine string, mapIter bool) []ir.Fragment {
	var frags []ir.Fragment
	for _, s := range stmts {
		if ctx.Sink.Aborted(machine) {
			return frags
		}
		frags = append(frags, visitStmt(s, ctx, machine, mapIter)...)
	}
	return frags
}

func visitStmt(stmt ast.Stmt, ctx *Context, machine string, mapIter bool) []ir.Fragment {
	switch s := stmt.(type) {
	case *ast.Assign:
		return visitAssign(s, ctx, machine, mapIter)
	case *ast.ExprStmt:
		return visitExprStmt(s, ctx, machine, mapIter)
	case *ast.If:
		return []ir.Fragment{visitIf(s, ctx, machine, mapIter)}
	case *ast.Try:
		return visitTry(s, ctx, machine, mapIter)
	case *ast.With:
		frag := visitWith(s, ctx, machine, mapIter)
		if frag == nil {
			return nil
		}
		return []ir.Fragment{frag}
	case *ast.Raise:
		return []ir.Fragment{visitRaise(s)}
	case *ast.Return:
		return []ir.Fragment{visitReturn(s)}
	case *ast.Pass:
		return nil
	default:
		ctx.Sink.Abort(diag.SyntaxUnsupported, stmt.Pos(), machine, "unsupported statement")
		return nil
	}
}

func visitAssign(a *ast.Assign, ctx *Context, machine string, mapIter bool) []ir.Fragment {
	path, ok := ast.SubscriptPath(a.Target)
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, a.Pos(), machine, "assignment target must be a data subscript, got %s", ast.String(a.Target))
		return nil
	}
	resultPath := ir.DataPath(splitDots(path))

	if call, ok := a.Value.(*ast.Call); ok {
		switch {
		case isTaskCall(call, ctx):
			frag := buildTaskFragment(call, ctx, machine, mapIter, resultPath, true)
			if frag == nil {
				return nil
			}
			return []ir.Fragment{frag}
		case simpleName(call.Func) == "map":
			m := buildMap(call, ctx, machine)
			if m == nil {
				return nil
			}
			m.ResultPath = resultPath
			return []ir.Fragment{m}
		case simpleName(call.Func) == "parallel":
			p := buildParallel(call, ctx, machine)
			if p == nil {
				return nil
			}
			p.ResultPath = resultPath
			return []ir.Fragment{p}
		}
	}

	val, ok := literalValue(a.Value)
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, a.Pos(), machine, "unsupported assignment value: %s", ast.String(a.Value))
		return nil
	}
	return []ir.Fragment{&ir.PassState{
		Base:          ir.Base{Position: a.Pos()},
		Result:        val,
		ResultPath:    resultPath,
		HasResultPath: true,
	}}
}

func visitExprStmt(s *ast.ExprStmt, ctx *Context, machine string, mapIter bool) []ir.Fragment {
	call, ok := s.Value.(*ast.Call)
	if !ok {
		ctx.Sink.Abort(diag.SyntaxUnsupported, s.Pos(), machine, "expression statement must be a call, got %s", ast.String(s.Value))
		return nil
	}
	name := simpleName(call.Func)
	switch name {
	case "data.update":
		return visitDataUpdate(call, ctx, machine)
	case "map":
		return visitMap(call, ctx, machine)
	case "parallel":
		return visitParallel(call, ctx, machine)
	case "wait":
		return visitWait(call, ctx, machine)
	case "context.stop_execution":
		return []ir.Fragment{visitStopExecution(call)}
	default:
		if isTaskCall(call, ctx) {
			frag := buildTaskFragment(call, ctx, machine, mapIter, "", false)
			if frag == nil {
				return nil
			}
			return []ir.Fragment{frag}
		}
		ctx.Sink.Abort(diag.ReferenceError, s.Pos(), machine, "unknown function or task class %q", name)
		return nil
	}
}

func isTaskCall(call *ast.Call, ctx *Context) bool {
	_, ok := ctx.Classes[simpleName(call.Func)]
	return ok
}

// visitDataUpdate compiles `data.update({...})`. ASL has no merge
// primitive, so the whole execution data is replaced by the literal at the
// root path rather than deep-merged with the existing state.
func visitDataUpdate(call *ast.Call, ctx *Context, machine string) []ir.Fragment {
	if len(call.Args) != 1 {
		ctx.Sink.Abort(diag.ShapeError, call.Pos(), machine, "data.update() takes exactly one dict argument")
		return nil
	}
	val, ok := literalValue(call.Args[0])
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, call.Pos(), machine, "data.update() argument must be a dict literal")
		return nil
	}
	return []ir.Fragment{&ir.PassState{
		Base:   ir.Base{Position: call.Pos()},
		Result: val,
	}}
}

// buildTaskFragment builds the Task state for a call site, reading the
// reserved key= and comment= keyword arguments out before the remainder is
// validated as the service's extra parameters.
func buildTaskFragment(call *ast.Call, ctx *Context, machine string, mapIter bool, resultPath string, hasResultPath bool) ir.Fragment {
	name := simpleName(call.Func)
	def := ctx.Classes[name]
	kws := keywordMap(call)

	explicitKey, _ := stringKeyword(kws, "key")
	comment, _ := stringKeyword(kws, "comment")

	var inputPath string
	var hasInputPath bool
	if len(call.Args) > 0 {
		hasInputPath = true
		if path, ok := ast.SubscriptPath(call.Args[0]); ok {
			inputPath = ir.DataPath(splitDots(path))
		} else {
			inputPath = "$"
		}
	}

	extra := make(map[string]interface{})
	for _, kw := range call.Keywords {
		if kw.Name == "key" || kw.Name == "comment" {
			continue
		}
		val, ok := literalValue(kw.Value)
		if !ok {
			ctx.Sink.Abort(diag.AttributeError, kw.Position, machine, "task call argument %q must be a literal", kw.Name)
			return nil
		}
		extra[kw.Name] = val
	}

	state, ok := ctx.Factory.Build(task.BuildInput{
		Definition:    def,
		ExtraParams:   extra,
		InputPath:     inputPath,
		HasInputPath:  hasInputPath,
		ResultPath:    resultPath,
		HasResultPath: hasResultPath,
		IsMapIterator: mapIter,
		Position:      call.Pos(),
		Comment:       comment,
		Key:           explicitKey,
	}, ctx.Sink, machine)
	if !ok {
		return nil
	}
	return state
}

func visitWait(call *ast.Call, ctx *Context, machine string) []ir.Fragment {
	kws := keywordMap(call)
	w := &ir.WaitState{Base: ir.Base{Position: call.Pos()}}
	switch {
	case func() bool { _, ok := kws["seconds"]; return ok }():
		n, ok := intKeyword(kws, "seconds")
		if !ok {
			ctx.Sink.Abort(diag.AttributeError, call.Pos(), machine, "wait(seconds=) must be an integer")
			return nil
		}
		w.Seconds = n
	case func() bool { _, ok := kws["seconds_path"]; return ok }():
		p, ok := stringKeyword(kws, "seconds_path")
		if !ok {
			ctx.Sink.Abort(diag.AttributeError, call.Pos(), machine, "wait(seconds_path=) must be a string")
			return nil
		}
		w.SecondsPath = p
	case func() bool { _, ok := kws["timestamp"]; return ok }():
		ts, ok := stringKeyword(kws, "timestamp")
		if !ok {
			ctx.Sink.Abort(diag.AttributeError, call.Pos(), machine, "wait(timestamp=) must be a string")
			return nil
		}
		w.Timestamp = ts
	case func() bool { _, ok := kws["timestamp_path"]; return ok }():
		p, ok := stringKeyword(kws, "timestamp_path")
		if !ok {
			ctx.Sink.Abort(diag.AttributeError, call.Pos(), machine, "wait(timestamp_path=) must be a string")
			return nil
		}
		w.TimestampPath = p
	default:
		ctx.Sink.Abort(diag.AttributeError, call.Pos(), machine, "wait() requires one of seconds=, seconds_path=, timestamp=, timestamp_path=")
		return nil
	}
	return []ir.Fragment{w}
}

func visitStopExecution(call *ast.Call) ir.Fragment {
	kws := keywordMap(call)
	f := &ir.FailState{Base: ir.Base{Position: call.Pos()}, Error: "Execution.Stopped"}
	if c, ok := stringKeyword(kws, "cause"); ok {
		f.Cause = c
	}
	return f
}

func visitRaise(r *ast.Raise) ir.Fragment {
	f := &ir.FailState{Base: ir.Base{Position: r.Pos()}, Error: r.ClassName}
	if s, ok := r.Cause.(*ast.StringLit); ok {
		f.Cause = s.Value
	}
	return f
}

func visitReturn(r *ast.Return) ir.Fragment {
	return &ir.SucceedState{Base: ir.Base{Position: r.Pos()}}
}

func visitIf(node *ast.If, ctx *Context, machine string, mapIter bool) ir.Fragment {
	choice := &ir.ChoiceState{Base: ir.Base{Position: node.Pos()}}
	cur := node
	for {
		rule, ok := expr.Compile(cur.Test, ctx.Sink, machine)
		if !ok {
			return choice
		}
		choice.Branches = append(choice.Branches, ir.ChoiceBranch{
			Position: cur.Test.Pos(),
			Rule:     rule,
			Body:     visitBodyIn(cur.Body, ctx, machine, mapIter),
		})
		if len(cur.Else) == 1 {
			if nested, ok := cur.Else[0].(*ast.If); ok {
				cur = nested
				continue
			}
		}
		if cur.Else == nil {
			choice.DefaultIsContinuation = true
		} else {
			choice.ElseBody = visitBodyIn(cur.Else, ctx, machine, mapIter)
		}
		break
	}
	return choice
}

func visitTry(node *ast.Try, ctx *Context, machine string, mapIter bool) []ir.Fragment {
	if len(node.Body) == 0 {
		ctx.Sink.Abort(diag.ShapeError, node.Pos(), machine, "try block must not be empty")
		return nil
	}
	guarded := visitStmt(node.Body[0], ctx, machine, mapIter)
	if len(guarded) != 1 {
		ctx.Sink.Abort(diag.ShapeError, node.Body[0].Pos(), machine, "try block's guarded statement must compile to exactly one state")
		return nil
	}
	state, ok := guarded[0].(ir.State)
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, node.Body[0].Pos(), machine, "try block's guarded statement is not a catchable state")
		return nil
	}
	setCatches(state, buildCatches(node.Handlers, ctx, machine, mapIter))

	rest := visitBodyIn(node.Body[1:], ctx, machine, mapIter)
	return append([]ir.Fragment{state}, rest...)
}

func buildCatches(handlers []*ast.ExceptHandler, ctx *Context, machine string, mapIter bool) []ir.Catch {
	catches := make([]ir.Catch, 0, len(handlers))
	for _, h := range handlers {
		errs := h.Errors
		if len(errs) == 0 {
			errs = []string{"States.ALL"}
		}
		catches = append(catches, ir.Catch{
			ErrorEquals: errs,
			Body:        visitBodyIn(h.Body, ctx, machine, mapIter),
		})
	}
	return catches
}

func setCatches(state ir.State, catches []ir.Catch) {
	switch s := state.(type) {
	case *ir.TaskState:
		s.Catches = catches
	case *ir.MapState:
		s.Catches = catches
	case *ir.ParallelState:
		s.Catches = catches
	}
}

func setRetries(state ir.State, retries []ir.Retry) {
	switch s := state.(type) {
	case *ir.TaskState:
		s.Retries = task.MergeRetries(retries, s.Retries)
	case *ir.MapState:
		s.Retries = retries
	case *ir.ParallelState:
		s.Retries = retries
	}
}

func visitWith(node *ast.With, ctx *Context, machine string, mapIter bool) ir.Fragment {
	call, ok := node.Call.(*ast.Call)
	if !ok || simpleName(call.Func) != "retry" {
		ctx.Sink.Abort(diag.SyntaxUnsupported, node.Pos(), machine, "with block must be with retry(...)")
		return nil
	}
	if len(node.Body) != 1 {
		ctx.Sink.Abort(diag.ShapeError, node.Pos(), machine, "retry() must wrap exactly one statement")
		return nil
	}
	wrapped := visitStmt(node.Body[0], ctx, machine, mapIter)
	if len(wrapped) != 1 {
		ctx.Sink.Abort(diag.ShapeError, node.Pos(), machine, "retry() must wrap exactly one statement")
		return nil
	}
	state, ok := wrapped[0].(ir.State)
	if !ok {
		ctx.Sink.Abort(diag.ShapeError, node.Pos(), machine, "retry() may only wrap a Task, Map, or Parallel state")
		return nil
	}

	kws := keywordMap(call)
	retry := ir.Retry{IntervalSeconds: 1, MaxAttempts: 3, BackoffRate: 2.0}
	if errs, ok := kws["error"]; ok {
		if lit, ok := literalValue(errs); ok {
			switch v := lit.(type) {
			case string:
				retry.ErrorEquals = []string{v}
			case []interface{}:
				for _, e := range v {
					if s, ok := e.(string); ok {
						retry.ErrorEquals = append(retry.ErrorEquals, s)
					}
				}
			}
		}
	}
	if len(retry.ErrorEquals) == 0 {
		retry.ErrorEquals = []string{"States.ALL"}
	}
	if n, ok := intKeyword(kws, "interval"); ok {
		retry.IntervalSeconds = n
	}
	if n, ok := intKeyword(kws, "max_attempts"); ok {
		retry.MaxAttempts = n
	}
	if f, ok := floatKeyword(kws, "backoff_rate"); ok {
		retry.BackoffRate = f
	}
	setRetries(state, []ir.Retry{retry})
	return state
}

func splitDots(dotted string) []string {
	if dotted == "" {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i <= len(dotted); i++ {
		if i == len(dotted) || dotted[i] == '.' {
			parts = append(parts, dotted[start:i])
			start = i + 1
		}
	}
	return parts
}
