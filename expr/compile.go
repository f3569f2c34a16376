// Package expr compiles the choice-expression subset of the workflow DSL —
// comparisons, and/or/not combinations, and type casts — into ir.ChoiceRule
// trees the way the ASL Choice state's comparator operators require.
package expr

import (
	"fmt"

	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/types"
)

// operandKind distinguishes the two grammar-level operand shapes a leaf
// comparison can mix: a reference into the execution data, or a literal
// value baked into the emitted ASL.
type operandKind int

const (
	operandLiteral operandKind = iota
	operandDataRef
)

type operand struct {
	kind     operandKind
	path     string // JSONPath, when kind == operandDataRef
	value    interface{}
	inferred types.ExpressionType
	hasCast  bool
	castType types.ExpressionType
}

// Compile lowers a boolean/comparison expression into a ChoiceRule. It
// reports diagnostics against machine and returns (nil, false) if the
// expression cannot be compiled.
func Compile(e ast.Expression, sink *diag.Sink, machine string) (*ir.ChoiceRule, bool) {
	switch node := e.(type) {
	case *ast.BoolOp:
		return compileBoolOp(node, sink, machine)
	case *ast.UnaryNot:
		inner, ok := Compile(node.Operand, sink, machine)
		if !ok {
			return nil, false
		}
		return &ir.ChoiceRule{Not: inner}, true
	case *ast.Compare:
		return compileCompare(node, sink, machine)
	default:
		sink.Abort(diag.SyntaxUnsupported, e.Pos(), machine,
			"unsupported choice expression: %s", ast.String(e))
		return nil, false
	}
}

func compileBoolOp(node *ast.BoolOp, sink *diag.Sink, machine string) (*ir.ChoiceRule, bool) {
	rules := make([]*ir.ChoiceRule, 0, len(node.Values))
	for _, v := range node.Values {
		r, ok := Compile(v, sink, machine)
		if !ok {
			return nil, false
		}
		// Flatten a nested rule of the same combinator kind into this one,
		// matching how the ASL Choice grammar treats a chain of the same
		// boolean operator as one flat list rather than a binary tree.
		if node.Op == ast.BoolAnd && r.And != nil && r.Comparator == "" && r.Or == nil && r.Not == nil {
			rules = append(rules, r.And...)
			continue
		}
		if node.Op == ast.BoolOr && r.Or != nil && r.Comparator == "" && r.And == nil && r.Not == nil {
			rules = append(rules, r.Or...)
			continue
		}
		rules = append(rules, r)
	}
	if node.Op == ast.BoolAnd {
		return &ir.ChoiceRule{And: rules}, true
	}
	return &ir.ChoiceRule{Or: rules}, true
}

func compileCompare(node *ast.Compare, sink *diag.Sink, machine string) (*ir.ChoiceRule, bool) {
	if node.Op == ast.CmpIs || node.Op == ast.CmpIsNot {
		return compileIsNone(node, sink, machine)
	}

	left, leftOK := resolveOperand(node.Left)
	right, rightOK := resolveOperand(node.Right)
	if !leftOK || !rightOK {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"unsupported operand in comparison: %s", ast.String(node))
		return nil, false
	}

	if left.kind != operandDataRef && right.kind != operandDataRef {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"comparison must reference execution data on at least one side: %s", ast.String(node))
		return nil, false
	}

	if left.kind == operandDataRef && right.kind == operandDataRef {
		return compilePathComparison(node, left, right, sink, machine)
	}

	varSide, litSide, op := left, right, node.Op
	if varSide.kind != operandDataRef {
		varSide, litSide = right, left
		op = flip(op)
	}

	comparatorType := resolveType(varSide, litSide)
	comparator, ok := baseComparator(op, comparatorType)
	if !ok {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"comparator %s is not valid for %s operands: %s", op, comparatorType, ast.String(node))
		return nil, false
	}

	leaf := &ir.ChoiceRule{Variable: varSide.path, Comparator: comparator, Value: litSide.value}
	if op == ast.CmpNotEq {
		return &ir.ChoiceRule{Not: leaf}, true
	}
	return leaf, true
}

func compilePathComparison(node *ast.Compare, left, right operand, sink *diag.Sink, machine string) (*ir.ChoiceRule, bool) {
	if !left.hasCast && !right.hasCast {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"comparing two data references requires a cast on at least one side to disambiguate its type: %s", ast.String(node))
		return nil, false
	}
	comparatorType := left.castType
	if !left.hasCast {
		comparatorType = right.castType
	}
	comparator, ok := baseComparator(node.Op, comparatorType)
	if !ok {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"comparator %s is not valid for %s operands: %s", node.Op, comparatorType, ast.String(node))
		return nil, false
	}
	leaf := &ir.ChoiceRule{Variable: left.path, Comparator: comparator + "Path", Value: right.path}
	if node.Op == ast.CmpNotEq {
		return &ir.ChoiceRule{Not: leaf}, true
	}
	return leaf, true
}

func compileIsNone(node *ast.Compare, sink *diag.Sink, machine string) (*ir.ChoiceRule, bool) {
	if _, ok := node.Right.(*ast.NoneLit); !ok {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"'is'/'is not' may only compare against None: %s", ast.String(node))
		return nil, false
	}
	left, ok := resolveOperand(node.Left)
	if !ok || left.kind != operandDataRef {
		sink.Abort(diag.ShapeError, node.Pos(), machine,
			"'is None' requires a data reference on the left: %s", ast.String(node))
		return nil, false
	}
	leaf := &ir.ChoiceRule{Variable: left.path, Comparator: "IsNull", Value: true}
	if node.Op == ast.CmpIs {
		return leaf, true
	}
	return &ir.ChoiceRule{Not: leaf}, true
}

func resolveOperand(e ast.Expression) (operand, bool) {
	if cast, ok := e.(*ast.CastCall); ok {
		inner, ok := resolveOperand(cast.Operand)
		if !ok {
			return operand{}, false
		}
		castType, ok := castExpressionType(cast.Cast)
		if !ok {
			return operand{}, false
		}
		inner.hasCast = true
		inner.castType = castType
		if inner.kind == operandLiteral {
			inner.value = coerceLiteral(inner.value, castType)
			inner.inferred = castType
		}
		return inner, true
	}
	if path, ok := ast.SubscriptPath(e); ok {
		return operand{kind: operandDataRef, path: ir.DataPath(splitPath(path))}, true
	}
	switch lit := e.(type) {
	case *ast.StringLit:
		return operand{kind: operandLiteral, value: lit.Value, inferred: types.TypeString}, true
	case *ast.NumberLit:
		return operand{kind: operandLiteral, value: lit.Value, inferred: types.TypeNumeric}, true
	case *ast.BoolLit:
		return operand{kind: operandLiteral, value: lit.Value, inferred: types.TypeBoolean}, true
	default:
		return operand{}, false
	}
}

func splitPath(dotted string) []string {
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

func castExpressionType(cast string) (types.ExpressionType, bool) {
	switch cast {
	case "str":
		return types.TypeString, true
	case "int", "float":
		return types.TypeNumeric, true
	case "bool":
		return types.TypeBoolean, true
	default:
		return 0, false
	}
}

func coerceLiteral(v interface{}, t types.ExpressionType) interface{} {
	switch t {
	case types.TypeString:
		return fmt.Sprintf("%v", v)
	default:
		return v
	}
}

// resolveType implements the type-inference order from spec.md §4.3: cast
// on either operand wins, then the literal operand's own type, then String.
func resolveType(varSide, litSide operand) types.ExpressionType {
	if varSide.hasCast {
		return varSide.castType
	}
	if litSide.hasCast {
		return litSide.castType
	}
	if litSide.kind == operandLiteral {
		return litSide.inferred
	}
	return types.TypeString
}

func flip(op ast.CmpOp) ast.CmpOp {
	switch op {
	case ast.CmpLt:
		return ast.CmpGt
	case ast.CmpLtE:
		return ast.CmpGtE
	case ast.CmpGt:
		return ast.CmpLt
	case ast.CmpGtE:
		return ast.CmpLtE
	default:
		return op
	}
}

func baseComparator(op ast.CmpOp, t types.ExpressionType) (string, bool) {
	var prefix string
	switch t {
	case types.TypeString:
		prefix = "String"
	case types.TypeNumeric:
		prefix = "Numeric"
	case types.TypeBoolean:
		prefix = "Boolean"
	default:
		return "", false
	}
	switch op {
	case ast.CmpEq, ast.CmpNotEq:
		if t == types.TypeBoolean {
			return prefix + "Equals", true
		}
		return prefix + "Equals", true
	case ast.CmpLt:
		if t == types.TypeBoolean {
			return "", false
		}
		return prefix + "LessThan", true
	case ast.CmpLtE:
		if t == types.TypeBoolean {
			return "", false
		}
		return prefix + "LessThanEquals", true
	case ast.CmpGt:
		if t == types.TypeBoolean {
			return "", false
		}
		return prefix + "GreaterThan", true
	case ast.CmpGtE:
		if t == types.TypeBoolean {
			return "", false
		}
		return prefix + "GreaterThanEquals", true
	default:
		return "", false
	}
}
