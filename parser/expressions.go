package parser

import (
	"fmt"
	"strconv"

	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/lexer"
)

var castNames = map[string]bool{"str": true, "int": true, "float": true, "bool": true}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	start := p.pos_()
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !p.atName("or") {
		return left, nil
	}
	values := []ast.Expression{left}
	for p.atName("or") {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		values = append(values, next)
	}
	return &ast.BoolOp{ExprBase: ast.ExprBase{Position: start}, Op: ast.BoolOr, Values: values}, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	start := p.pos_()
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if !p.atName("and") {
		return left, nil
	}
	values := []ast.Expression{left}
	for p.atName("and") {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		values = append(values, next)
	}
	return &ast.BoolOp{ExprBase: ast.ExprBase{Position: start}, Op: ast.BoolAnd, Values: values}, nil
}

func (p *Parser) parseNot() (ast.Expression, error) {
	if p.atName("not") {
		start := p.pos_()
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryNot{ExprBase: ast.ExprBase{Position: start}, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	start := p.pos_()
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	op, ok, err := p.tryCmpOp()
	if err != nil {
		return nil, err
	}
	if !ok {
		return left, nil
	}
	right, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	return &ast.Compare{ExprBase: ast.ExprBase{Position: start}, Left: left, Op: op, Right: right}, nil
}

func (p *Parser) tryCmpOp() (ast.CmpOp, bool, error) {
	switch {
	case p.at(lexer.EQ):
		p.advance()
		return ast.CmpEq, true, nil
	case p.at(lexer.NEQ):
		p.advance()
		return ast.CmpNotEq, true, nil
	case p.at(lexer.LT):
		p.advance()
		return ast.CmpLt, true, nil
	case p.at(lexer.LTE):
		p.advance()
		return ast.CmpLtE, true, nil
	case p.at(lexer.GT):
		p.advance()
		return ast.CmpGt, true, nil
	case p.at(lexer.GTE):
		p.advance()
		return ast.CmpGtE, true, nil
	case p.atName("is"):
		p.advance()
		if p.atName("not") {
			p.advance()
			return ast.CmpIsNot, true, nil
		}
		return ast.CmpIs, true, nil
	default:
		return 0, false, nil
	}
}

// parsePostfix parses an atom followed by any chain of `.attr`,
// `[index]`, or `(args)` trailers, then reclassifies a single-argument
// call to one of the cast names (str/int/float/bool) as a CastCall.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	start := p.pos_()
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(lexer.DOT):
			p.advance()
			attr, err := p.expect(lexer.NAME)
			if err != nil {
				return nil, err
			}
			expr = &ast.Attribute{ExprBase: ast.ExprBase{Position: start}, Value: expr, Attr: attr.Value}
		case p.at(lexer.LBRACKET):
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.Subscript{ExprBase: ast.ExprBase{Position: start}, Value: expr, Index: index}
		case p.at(lexer.LPAREN):
			call, err := p.parseCallTrailer(expr, start)
			if err != nil {
				return nil, err
			}
			expr = call
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallTrailer(fn ast.Expression, start ast.Position) (ast.Expression, error) {
	p.advance() // '('
	call := &ast.Call{ExprBase: ast.ExprBase{Position: start}, Func: fn}
	for !p.at(lexer.RPAREN) {
		argStart := p.pos_()
		if p.at(lexer.NAME) && p.peekAt(1).Type == lexer.ASSIGN {
			name := p.advance().Value
			p.advance()
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Keywords = append(call.Keywords, ast.Keyword{Name: name, Value: val, Position: argStart})
		} else {
			val, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, val)
		}
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if name, ok := fn.(*ast.Name); ok && castNames[name.Id] && len(call.Args) == 1 && len(call.Keywords) == 0 {
		return &ast.CastCall{ExprBase: ast.ExprBase{Position: start}, Cast: name.Id, Operand: call.Args[0]}, nil
	}
	return call, nil
}

func (p *Parser) parseAtom() (ast.Expression, error) {
	start := p.pos_()
	switch {
	case p.at(lexer.STRING):
		tok := p.advance()
		return &ast.StringLit{ExprBase: ast.ExprBase{Position: start}, Value: tok.Value}, nil
	case p.at(lexer.NUMBER):
		tok := p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parser: invalid number %q at line %d", tok.Value, tok.Line)
		}
		isFloat := false
		for _, c := range tok.Value {
			if c == '.' {
				isFloat = true
			}
		}
		return &ast.NumberLit{ExprBase: ast.ExprBase{Position: start}, Value: f, IsFloat: isFloat}, nil
	case p.atName("True"):
		p.advance()
		return &ast.BoolLit{ExprBase: ast.ExprBase{Position: start}, Value: true}, nil
	case p.atName("False"):
		p.advance()
		return &ast.BoolLit{ExprBase: ast.ExprBase{Position: start}, Value: false}, nil
	case p.atName("None"):
		p.advance()
		return &ast.NoneLit{ExprBase: ast.ExprBase{Position: start}}, nil
	case p.at(lexer.NAME):
		tok := p.advance()
		return &ast.Name{ExprBase: ast.ExprBase{Position: start}, Id: tok.Value}, nil
	case p.at(lexer.LPAREN):
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case p.at(lexer.LBRACE):
		return p.parseDict(start)
	case p.at(lexer.LBRACKET):
		return p.parseList(start)
	default:
		got := p.peek()
		return nil, fmt.Errorf("parser: unexpected token %s %q at line %d", got.Type, got.Value, got.Line)
	}
}

func (p *Parser) parseDict(start ast.Position) (ast.Expression, error) {
	p.advance() // '{'
	dict := &ast.DictLit{ExprBase: ast.ExprBase{Position: start}}
	for !p.at(lexer.RBRACE) {
		key, err := p.expect(lexer.STRING)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		dict.Keys = append(dict.Keys, key.Value)
		dict.Values = append(dict.Values, val)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return dict, nil
}

func (p *Parser) parseList(start ast.Position) (ast.Expression, error) {
	p.advance() // '['
	list := &ast.ListLit{ExprBase: ast.ExprBase{Position: start}}
	for !p.at(lexer.RBRACKET) {
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, val)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return list, nil
}
