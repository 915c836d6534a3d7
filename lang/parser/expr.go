package parser

import (
	"github.com/archerlang/archer/lang/ast"
	"github.com/archerlang/archer/lang/token"
)

// expression parses a full expression, starting at assignment precedence
// (the lowest) and walking up through the ternary, logical, equality,
// comparison, bitwise, additive, multiplicative, unary and call/primary
// levels.
func (p *parser) expression() ast.Expr {
	return p.assignment()
}

func (p *parser) assignment() ast.Expr {
	expr := p.conditional()

	if p.match(token.EQ) {
		ln := p.prev().Line
		value := p.assignment()
		return &ast.Assign{Op: token.EQ, Target: requireAssignable(p, expr), Value: value, Base: ast.Base{LineNo: ln}}
	}
	if tok := p.cur().Kind; tok.IsAssignOp() {
		p.advance()
		ln := p.prev().Line
		value := p.assignment()
		return &ast.Assign{Op: tok, Target: requireAssignable(p, expr), Value: value, Base: ast.Base{LineNo: ln}}
	}
	return expr
}

func requireAssignable(p *parser, e ast.Expr) ast.Expr {
	switch e.(type) {
	case *ast.Ident, *ast.Get, *ast.Index:
		return e
	}
	p.errorf("invalid assignment target")
	return e
}

func (p *parser) conditional() ast.Expr {
	cond := p.or()
	if p.match(token.QUESTION) {
		ln := p.prev().Line
		then := p.assignment()
		p.expect(token.COLON, "in conditional expression")
		els := p.conditional()
		return &ast.Conditional{Cond: cond, Then: then, Else: els, Base: ast.Base{LineNo: ln}}
	}
	return cond
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.OR) {
		ln := p.prev().Line
		right := p.and()
		expr = &ast.Logical{Op: token.OR, Left: expr, Right: right, Base: ast.Base{LineNo: ln}}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		ln := p.prev().Line
		right := p.equality()
		expr = &ast.Logical{Op: token.AND, Left: expr, Right: right, Base: ast.Base{LineNo: ln}}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EQL, token.NEQ) {
		op := p.prev()
		right := p.comparison()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.bitor()
	for p.match(token.LT, token.LE, token.GT, token.GE) {
		op := p.prev()
		right := p.bitor()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) bitor() ast.Expr {
	expr := p.bitxor()
	for p.match(token.PIPE) {
		op := p.prev()
		right := p.bitxor()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) bitxor() ast.Expr {
	expr := p.bitand()
	for p.match(token.CIRCUMFLEX) {
		op := p.prev()
		right := p.bitand()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) bitand() ast.Expr {
	expr := p.shift()
	for p.match(token.AMPERSAND) {
		op := p.prev()
		right := p.shift()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) shift() ast.Expr {
	expr := p.term()
	for p.match(token.LTLT, token.GTGT) {
		op := p.prev()
		right := p.term()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.prev()
		right := p.factor()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.power()
	for p.match(token.STAR, token.SLASH, token.PERCENT) {
		op := p.prev()
		right := p.power()
		expr = &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

// power is right-associative: 2 ** 3 ** 2 == 2 ** (3 ** 2).
func (p *parser) power() ast.Expr {
	expr := p.unary()
	if p.match(token.STARSTAR) {
		op := p.prev()
		right := p.power()
		return &ast.Binary{Op: op.Kind, Left: expr, Right: right, Base: ast.Base{LineNo: op.Line}}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS, token.TILDE) {
		op := p.prev()
		operand := p.unary()
		return &ast.Unary{Op: op.Kind, Operand: operand, Base: ast.Base{LineNo: op.Line}}
	}
	if p.match(token.PLUSPLUS, token.MINUSMINUS) {
		op := p.prev()
		target := p.unary()
		return &ast.IncDec{Op: op.Kind, Target: target, Postfix: false, Base: ast.Base{LineNo: op.Line}}
	}
	return p.callOrPostfix()
}

func (p *parser) callOrPostfix() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LPAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.expect(token.IDENT, "after '.'")
			expr = &ast.Get{Object: expr, Name: name.Lexeme, Base: ast.Base{LineNo: name.Line}}
		case p.match(token.QDOT):
			name := p.expect(token.IDENT, "after '?.'")
			expr = &ast.Get{Object: expr, Name: name.Lexeme, Safe: true, Base: ast.Base{LineNo: name.Line}}
		case p.match(token.LBRACK):
			ln := p.prev().Line
			key := p.expression()
			p.expect(token.RBRACK, "after subscript")
			expr = &ast.Index{Object: expr, Key: key, Base: ast.Base{LineNo: ln}}
		case p.match(token.QBRACK):
			ln := p.prev().Line
			key := p.expression()
			p.expect(token.RBRACK, "after subscript")
			expr = &ast.Index{Object: expr, Key: key, Safe: true, Base: ast.Base{LineNo: ln}}
		case p.match(token.PLUSPLUS, token.MINUSMINUS):
			op := p.prev()
			expr = &ast.IncDec{Op: op.Kind, Target: expr, Postfix: true, Base: ast.Base{LineNo: op.Line}}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	ln := p.prev().Line
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			args = append(args, p.expression())
			if len(args) > 255 {
				p.errorf("can't have more than 255 arguments")
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "after arguments")
	return &ast.Call{Callee: callee, Args: args, Base: ast.Base{LineNo: ln}}
}

func (p *parser) primary() ast.Expr {
	tok := p.cur()
	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Value: false, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.TRUE):
		return &ast.Literal{Value: true, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.NIL):
		return &ast.Literal{Value: nil, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.NUMBER):
		return &ast.Literal{Value: tok.Value, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.STRING):
		return &ast.Literal{Value: tok.Value, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.THIS):
		return &ast.This{Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.SUPER):
		p.expect(token.DOT, "after 'super'")
		method := p.expect(token.IDENT, "as superclass method name")
		return &ast.Super{Method: method.Lexeme, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.IDENT):
		return &ast.Ident{Name: tok.Lexeme, Base: ast.Base{LineNo: tok.Line}}
	case p.match(token.LPAREN):
		expr := p.expression()
		p.expect(token.RPAREN, "after expression")
		return expr
	case p.match(token.LBRACK):
		return p.listLiteral(tok.Line)
	case p.match(token.LBRACE):
		return p.mapLiteral(tok.Line)
	case p.match(token.PIPE):
		return p.lambda(tok.Line)
	}

	p.fail("expected expression, got %s", tok.Kind)
	return nil // unreachable, fail panics
}

func (p *parser) listLiteral(ln int) ast.Expr {
	var elems []ast.Expr
	for !p.check(token.RBRACK) && !p.atEnd() {
		elems = append(elems, p.expression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACK, "after list literal")
	return &ast.ListLit{Elems: elems, Base: ast.Base{LineNo: ln}}
}

func (p *parser) mapLiteral(ln int) ast.Expr {
	var keys, values []ast.Expr
	for !p.check(token.RBRACE) && !p.atEnd() {
		keys = append(keys, p.expression())
		p.expect(token.COLON, "after map key")
		values = append(values, p.expression())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "after map literal")
	return &ast.MapLit{Keys: keys, Values: values, Base: ast.Base{LineNo: ln}}
}

// lambda parses a lambda expression after the opening '|' has been
// consumed: `|a, b| a + b` or `|a, b| { return a + b; }`.
func (p *parser) lambda(ln int) ast.Expr {
	var params []string
	if !p.check(token.PIPE) {
		for {
			params = append(params, p.expect(token.IDENT, "in lambda parameter list").Lexeme)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.PIPE, "after lambda parameters")

	var body []ast.Stmt
	if p.match(token.LBRACE) {
		body = p.block()
	} else {
		x := p.expression()
		body = []ast.Stmt{&ast.ReturnStmt{X: x, StmtBase: ast.StmtBase{LineNo: ln}}}
	}
	return &ast.Lambda{Params: params, Body: body, Base: ast.Base{LineNo: ln}}
}
