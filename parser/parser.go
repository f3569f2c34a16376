// Package parser is a recursive-descent parser, one function per grammar
// production, over the lexer package's token stream, producing an
// ast.Program.
package parser

import (
	"fmt"
	"strings"

	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/lexer"
)

// Parse tokenizes and parses src into a Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, src: []rune(src)}
	return p.parseProgram()
}

// Parser holds parse state over a fixed token slice.
type Parser struct {
	toks []lexer.Token
	pos  int
	src  []rune
}

func (p *Parser) peek() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) at(t lexer.Type) bool { return p.peek().Type == t }
func (p *Parser) atName(v string) bool {
	return p.peek().Type == lexer.NAME && p.peek().Value == v
}
func (p *Parser) pos_() ast.Position {
	t := p.peek()
	return ast.Position{Line: t.Line, Column: t.Column}
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t lexer.Type) (lexer.Token, error) {
	if !p.at(t) {
		got := p.peek()
		return lexer.Token{}, fmt.Errorf("parser: expected %s, got %s %q at line %d", t, got.Type, got.Value, got.Line)
	}
	return p.advance(), nil
}

func (p *Parser) expectName(v string) error {
	if !p.atName(v) {
		got := p.peek()
		return fmt.Errorf("parser: expected keyword %q, got %s %q at line %d", v, got.Type, got.Value, got.Line)
	}
	p.advance()
	return nil
}

func (p *Parser) skipNewlines() {
	for p.at(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{Position: p.pos_()}
	p.skipNewlines()
	for !p.at(lexer.EOF) {
		decorators, err := p.parseDecorators()
		if err != nil {
			return nil, err
		}
		switch {
		case p.atName("class"):
			cls, err := p.parseClassDef()
			if err != nil {
				return nil, err
			}
			prog.Classes = append(prog.Classes, cls)
		case p.atName("async"), p.atName("def"):
			fn, err := p.parseFunctionDef(decorators)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
		default:
			got := p.peek()
			return nil, fmt.Errorf("parser: expected class or function definition at top level, got %s %q at line %d", got.Type, got.Value, got.Line)
		}
		p.skipNewlines()
	}
	return prog, nil
}

func (p *Parser) parseDecorators() ([]*ast.Decorator, error) {
	var decs []*ast.Decorator
	for p.at(lexer.AT) {
		start := p.pos_()
		p.advance()
		name, err := p.expect(lexer.NAME)
		if err != nil {
			return nil, err
		}
		dec := &ast.Decorator{Name: name.Value, Position: start}
		if p.at(lexer.LPAREN) {
			p.advance()
			for !p.at(lexer.RPAREN) {
				kwStart := p.pos_()
				if p.at(lexer.NAME) && p.peekAt(1).Type == lexer.ASSIGN {
					kwName := p.advance().Value
					p.advance() // '='
					val, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					dec.Args = append(dec.Args, ast.Keyword{Name: kwName, Value: val, Position: kwStart})
				} else {
					val, err := p.parseExpression()
					if err != nil {
						return nil, err
					}
					dec.Args = append(dec.Args, ast.Keyword{Value: val, Position: kwStart})
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
		}
		if _, err := p.expect(lexer.NEWLINE); err != nil {
			return nil, err
		}
		decs = append(decs, dec)
	}
	return decs, nil
}

func (p *Parser) parseClassDef() (*ast.ClassDef, error) {
	start := p.pos_()
	if err := p.expectName("class"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.NAME)
	if err != nil {
		return nil, err
	}
	cls := &ast.ClassDef{Name: name.Value, Position: start}
	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) {
			base, err := p.expect(lexer.NAME)
			if err != nil {
				return nil, err
			}
			cls.Bases = append(cls.Bases, base.Value)
			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	body, runBody, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	cls.Body = body
	cls.RunBody = runBody
	return cls, nil
}

// parseClassBody parses a class body, which mixes attribute assignments
// with a nested `def run(...)`/`async def run(...)` method. The method's
// body is returned as an opaque run-body string alongside the attribute
// statements; the method name is not checked, and when a class has several
// methods the last one's body is returned.
func (p *Parser) parseClassBody() ([]ast.Stmt, string, error) {
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, "", err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, "", err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, "", err
	}
	var stmts []ast.Stmt
	var runBody string
	for !p.at(lexer.DEDENT) {
		if p.atName("async") || p.atName("def") {
			body, err := p.skipFunctionDef()
			if err != nil {
				return nil, "", err
			}
			runBody = body
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, "", err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, "", err
	}
	return stmts, runBody, nil
}

// skipFunctionDef consumes a method definition inside a task class,
// returning the source text of its body with the body's own indentation
// removed from every line. The translator never
// parses this text; it is stored opaquely on the owning ir.TaskDefinition.
func (p *Parser) skipFunctionDef() (string, error) {
	if p.atName("async") {
		p.advance()
	}
	if err := p.expectName("def"); err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.NAME); err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return "", err
	}
	for !p.at(lexer.RPAREN) {
		p.advance()
	}
	p.advance()
	if _, err := p.expect(lexer.COLON); err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return "", err
	}
	start := p.peek().Offset
	depth := 1
	for depth > 0 {
		if p.at(lexer.INDENT) {
			depth++
		} else if p.at(lexer.DEDENT) {
			depth--
			if depth == 0 {
				end := p.peek().Offset
				lineStart := start
				for lineStart > 0 && p.src[lineStart-1] != '\n' {
					lineStart--
				}
				indent := string(p.src[lineStart:start])
				lines := strings.Split(strings.TrimSpace(string(p.src[start:end])), "\n")
				for i := range lines {
					lines[i] = strings.TrimPrefix(lines[i], indent)
				}
				p.advance()
				return strings.Join(lines, "\n"), nil
			}
		} else if p.at(lexer.EOF) {
			return "", fmt.Errorf("parser: unexpected end of input in function body")
		}
		p.advance()
	}
	return "", nil
}

func (p *Parser) parseFunctionDef(decorators []*ast.Decorator) (*ast.FunctionDef, error) {
	start := p.pos_()
	async := false
	if p.atName("async") {
		async = true
		p.advance()
	}
	if err := p.expectName("def"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.NAME)
	if err != nil {
		return nil, err
	}
	fn := &ast.FunctionDef{Name: name.Value, Async: async, Decorators: decorators, Position: start}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	for !p.at(lexer.RPAREN) {
		param, err := p.expect(lexer.NAME)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param.Value)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(lexer.DEDENT) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	return stmts, nil
}
