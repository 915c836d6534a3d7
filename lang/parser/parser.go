// Package parser implements the recursive-descent parser that transforms a
// token stream into an abstract syntax tree (AST). It is a collaborator that
// feeds the compiler a tree to lower; its design is conventional, not the
// focus of this repository.
package parser

import (
	"fmt"
	"go/scanner"

	"github.com/archerlang/archer/lang/ast"
	"github.com/archerlang/archer/lang/token"
	lexer "github.com/archerlang/archer/lang/scanner"
)

type (
	// Error is a single parse error with its source position.
	Error = scanner.Error
	// ErrorList is a list of parse errors in source order.
	ErrorList = scanner.ErrorList
)

// Parse scans and parses src, returning the resulting program. On a
// non-nil error the result is an ErrorList and the program reflects
// whatever could be recovered after synchronizing at statement boundaries.
func Parse(src []byte) (*ast.Program, error) {
	toks, scanErr := lexer.ScanAll(src)
	p := &parser{toks: toks}
	prog := p.parseProgram()
	if scanErr != nil {
		return prog, scanErr
	}
	if len(p.errs) > 0 {
		return prog, p.errs
	}
	return prog, nil
}

type parser struct {
	toks []lexer.Tok
	pos  int
	errs ErrorList
}

func (p *parser) cur() lexer.Tok  { return p.toks[p.pos] }
func (p *parser) prev() lexer.Tok { return p.toks[p.pos-1] }
func (p *parser) atEnd() bool     { return p.cur().Kind == token.EOF }

func (p *parser) check(k token.Token) bool { return p.cur().Kind == k }

func (p *parser) advance() lexer.Tok {
	if !p.atEnd() {
		p.pos++
	}
	return p.prev()
}

func (p *parser) match(kinds ...token.Token) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(k token.Token, context string) lexer.Tok {
	if p.check(k) {
		return p.advance()
	}
	p.errorf("expected %s %s, got %s", k, context, p.cur().Kind)
	return p.cur()
}

func (p *parser) errorf(format string, args ...any) {
	p.errs.Add(struct {
		Filename string
		Offset   int
		Line     int
		Column   int
	}{Line: p.cur().Line}, fmt.Sprintf(format, args...))
}

// synchronize discards tokens until a likely statement boundary, so that
// parsing can keep collecting further errors instead of stopping at the
// first one.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.prev().Kind == token.SEMI {
			return
		}
		switch p.cur().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.WHEN, token.IMPORT:
			return
		}
		p.advance()
	}
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEnd() {
		prog.Stmts = append(prog.Stmts, p.declaration())
	}
	return prog
}

func (p *parser) declaration() (s ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseSync); ok {
				p.synchronize()
				s = &ast.ExprStmt{X: &ast.Literal{Value: nil}}
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.match(token.VAR):
		return p.varDecl()
	case p.match(token.FUN):
		return p.funDecl("function")
	case p.match(token.CLASS):
		return p.classDecl()
	case p.match(token.IMPORT):
		return p.importDecl()
	default:
		return p.statement()
	}
}

// parseSync is panicked to unwind to the nearest declaration() recover point
// after a fatal parse error within a statement or expression.
type parseSync struct{}

func (p *parser) fail(format string, args ...any) {
	p.errorf(format, args...)
	panic(parseSync{})
}
