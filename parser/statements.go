package parser

import (
	"fmt"

	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/lexer"
)

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch {
	case p.atName("if"):
		return p.parseIf()
	case p.atName("try"):
		return p.parseTry()
	case p.atName("with"):
		return p.parseWith()
	case p.atName("raise"):
		return p.parseRaise()
	case p.atName("return"):
		return p.parseReturn()
	case p.atName("pass"):
		return p.parsePass()
	default:
		return p.parseSimpleStatement()
	}
}

func (p *Parser) parseSimpleStatement() (ast.Stmt, error) {
	start := p.pos_()
	lhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.ASSIGN) {
		p.advance()
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.NEWLINE); err != nil {
			return nil, err
		}
		return &ast.Assign{StmtBase: ast.StmtBase{Position: start}, Target: lhs, Value: rhs}, nil
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Position: start}, Value: lhs}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.pos_()
	if err := p.expectName("if"); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	ifStmt := &ast.If{StmtBase: ast.StmtBase{Position: start}, Test: test, Body: body}

	if p.atName("elif") {
		elifStart := p.pos_()
		// Rewrite `elif` as a nested `if`, matching how the host language
		// itself desugars an elif chain.
		save := p.toks[p.pos]
		p.toks[p.pos] = lexer.Token{Type: lexer.NAME, Value: "if", Line: save.Line, Column: save.Column, Offset: save.Offset}
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		_ = elifStart
		ifStmt.Else = []ast.Stmt{nested}
		return ifStmt, nil
	}
	if p.atName("else") {
		p.advance()
		elseBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		ifStmt.Else = elseBody
	}
	return ifStmt, nil
}

func (p *Parser) parseTry() (ast.Stmt, error) {
	start := p.pos_()
	if err := p.expectName("try"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	tryStmt := &ast.Try{StmtBase: ast.StmtBase{Position: start}, Body: body}
	for p.atName("except") {
		handlerStart := p.pos_()
		p.advance()
		var errs []string
		if !p.at(lexer.COLON) {
			if p.at(lexer.LPAREN) {
				p.advance()
				for !p.at(lexer.RPAREN) {
					name, err := p.expect(lexer.NAME)
					if err != nil {
						return nil, err
					}
					errs = append(errs, name.Value)
					if p.at(lexer.COMMA) {
						p.advance()
						continue
					}
					break
				}
				if _, err := p.expect(lexer.RPAREN); err != nil {
					return nil, err
				}
			} else {
				name, err := p.expect(lexer.NAME)
				if err != nil {
					return nil, err
				}
				errs = append(errs, name.Value)
			}
		}
		handlerBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		tryStmt.Handlers = append(tryStmt.Handlers, &ast.ExceptHandler{
			Position: handlerStart,
			Errors:   errs,
			Body:     handlerBody,
		})
	}
	if len(tryStmt.Handlers) == 0 {
		return nil, fmt.Errorf("parser: try block at line %d requires at least one except clause", start.Line)
	}
	return tryStmt, nil
}

func (p *Parser) parseWith() (ast.Stmt, error) {
	start := p.pos_()
	if err := p.expectName("with"); err != nil {
		return nil, err
	}
	call, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.With{StmtBase: ast.StmtBase{Position: start}, Call: call, Body: body}, nil
}

func (p *Parser) parseRaise() (ast.Stmt, error) {
	start := p.pos_()
	if err := p.expectName("raise"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.NAME)
	if err != nil {
		return nil, err
	}
	r := &ast.Raise{StmtBase: ast.StmtBase{Position: start}, ClassName: name.Value}
	if p.at(lexer.LPAREN) {
		p.advance()
		if !p.at(lexer.RPAREN) {
			cause, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			r.Cause = cause
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.pos_()
	if err := p.expectName("return"); err != nil {
		return nil, err
	}
	r := &ast.Return{StmtBase: ast.StmtBase{Position: start}}
	if !p.at(lexer.NEWLINE) {
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		r.Value = val
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Parser) parsePass() (ast.Stmt, error) {
	start := p.pos_()
	if err := p.expectName("pass"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	return &ast.Pass{StmtBase: ast.StmtBase{Position: start}}, nil
}
