package visitor

import "github.com/fluxforge/aslc/ast"

// simpleName renders the dotted name of a Call's target, e.g. "map",
// "data.update", "context.stop_execution", or a bare task class name.
func simpleName(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Name:
		return n.Id
	case *ast.Attribute:
		return simpleName(n.Value) + "." + n.Attr
	default:
		return ""
	}
}

// keywordMap indexes a call's keyword arguments by name.
func keywordMap(call *ast.Call) map[string]ast.Expression {
	m := make(map[string]ast.Expression, len(call.Keywords))
	for _, kw := range call.Keywords {
		m[kw.Name] = kw.Value
	}
	return m
}

// literalValue converts a literal expression subtree (string/number/bool/
// none/dict/list) into a plain Go value, for use as a Pass result or a
// task's extra-parameter document. Returns false for anything that
// references execution data or calls a function.
func literalValue(e ast.Expression) (interface{}, bool) {
	switch n := e.(type) {
	case *ast.StringLit:
		return n.Value, true
	case *ast.NumberLit:
		if n.IsFloat {
			return n.Value, true
		}
		return int64(n.Value), true
	case *ast.BoolLit:
		return n.Value, true
	case *ast.NoneLit:
		return nil, true
	case *ast.DictLit:
		m := make(map[string]interface{}, len(n.Keys))
		for i, k := range n.Keys {
			v, ok := literalValue(n.Values[i])
			if !ok {
				return nil, false
			}
			m[k] = v
		}
		return m, true
	case *ast.ListLit:
		vals := make([]interface{}, len(n.Elements))
		for i, el := range n.Elements {
			v, ok := literalValue(el)
			if !ok {
				return nil, false
			}
			vals[i] = v
		}
		return vals, true
	default:
		return nil, false
	}
}

func stringKeyword(kws map[string]ast.Expression, name string) (string, bool) {
	e, ok := kws[name]
	if !ok {
		return "", false
	}
	s, ok := e.(*ast.StringLit)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func intKeyword(kws map[string]ast.Expression, name string) (int, bool) {
	e, ok := kws[name]
	if !ok {
		return 0, false
	}
	n, ok := e.(*ast.NumberLit)
	if !ok {
		return 0, false
	}
	return int(n.Value), true
}

func floatKeyword(kws map[string]ast.Expression, name string) (float64, bool) {
	e, ok := kws[name]
	if !ok {
		return 0, false
	}
	n, ok := e.(*ast.NumberLit)
	if !ok {
		return 0, false
	}
	return n.Value, true
}
