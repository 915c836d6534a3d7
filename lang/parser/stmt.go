package parser

import (
	"github.com/archerlang/archer/lang/ast"
	"github.com/archerlang/archer/lang/token"
)

func (p *parser) varDecl() ast.Stmt {
	ln := p.prev().Line
	name := p.expect(token.IDENT, "after 'var'")
	var init ast.Expr
	if p.match(token.EQ) {
		init = p.expression()
	}
	p.expect(token.SEMI, "after variable declaration")
	return &ast.VarStmt{Name: name.Lexeme, Init: init, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) importDecl() ast.Stmt {
	ln := p.prev().Line
	path := p.expect(token.STRING, "after 'import'")
	name, _ := path.Value.(string)
	alias := lastPathComponent(name)
	if p.match(token.COLON) {
		alias = p.expect(token.IDENT, "after ':' in import").Lexeme
	}
	p.expect(token.SEMI, "after import")
	return &ast.ImportStmt{Path: name, Name: alias, StmtBase: ast.StmtBase{LineNo: ln}}
}

func lastPathComponent(path string) string {
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			last = path[i+1:]
			break
		}
	}
	return last
}

func (p *parser) funDecl(kind string) ast.Stmt {
	ln := p.prev().Line
	name := p.expect(token.IDENT, "after 'fun'")
	params, body := p.functionRest(kind)
	return &ast.FunStmt{Name: name.Lexeme, Params: params, Body: body, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) functionRest(kind string) (params []string, body []ast.Stmt) {
	p.expect(token.LPAREN, "after "+kind+" name")
	if !p.check(token.RPAREN) {
		for {
			params = append(params, p.expect(token.IDENT, "in parameter list").Lexeme)
			if len(params) > 255 {
				p.errorf("can't have more than 255 parameters")
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "after parameters")
	p.expect(token.LBRACE, "before "+kind+" body")
	body = p.block()
	return params, body
}

func (p *parser) classDecl() ast.Stmt {
	ln := p.prev().Line
	name := p.expect(token.IDENT, "after 'class'")
	var super string
	if p.match(token.LT) {
		super = p.expect(token.IDENT, "as superclass name").Lexeme
	}
	p.expect(token.LBRACE, "before class body")

	var methods []ast.MethodDecl
	for !p.check(token.RBRACE) && !p.atEnd() {
		isStatic := p.match(token.STATIC)
		mname := p.expect(token.IDENT, "as method name").Lexeme
		params, body := p.functionRest("method")
		methods = append(methods, ast.MethodDecl{Name: mname, Params: params, Body: body, IsStatic: isStatic})
	}
	p.expect(token.RBRACE, "after class body")
	return &ast.ClassStmt{Name: name.Lexeme, Superclass: super, Methods: methods, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.LBRACE):
		ln := p.prev().Line
		return &ast.BlockStmt{Stmts: p.block(), StmtBase: ast.StmtBase{LineNo: ln}}
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.WHEN):
		return p.whenStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.BREAK):
		ln := p.prev().Line
		p.expect(token.SEMI, "after 'break'")
		return &ast.BreakStmt{StmtBase: ast.StmtBase{LineNo: ln}}
	case p.match(token.CONTINUE):
		ln := p.prev().Line
		p.expect(token.SEMI, "after 'continue'")
		return &ast.ContinueStmt{StmtBase: ast.StmtBase{LineNo: ln}}
	default:
		return p.exprStmt()
	}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmts = append(stmts, p.declaration())
	}
	p.expect(token.RBRACE, "after block")
	return stmts
}

func (p *parser) printStmt() ast.Stmt {
	ln := p.prev().Line
	x := p.expression()
	p.expect(token.SEMI, "after value")
	return &ast.PrintStmt{X: x, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) exprStmt() ast.Stmt {
	ln := p.cur().Line
	x := p.expression()
	p.expect(token.SEMI, "after expression")
	return &ast.ExprStmt{X: x, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) ifStmt() ast.Stmt {
	ln := p.prev().Line
	p.expect(token.LPAREN, "after 'if'")
	cond := p.expression()
	p.expect(token.RPAREN, "after condition")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) whileStmt() ast.Stmt {
	ln := p.prev().Line
	p.expect(token.LPAREN, "after 'while'")
	cond := p.expression()
	p.expect(token.RPAREN, "after condition")
	body := p.statement()
	return &ast.WhileStmt{Cond: cond, Body: body, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) forStmt() ast.Stmt {
	ln := p.prev().Line
	p.expect(token.LPAREN, "after 'for'")

	// iterator form: for (name in iterable) body
	if p.check(token.IDENT) {
		save := p.pos
		name := p.advance()
		if p.match(token.IN) {
			iterable := p.expression()
			p.expect(token.RPAREN, "after iterable")
			body := p.statement()
			return &ast.ForInStmt{Name: name.Lexeme, Iterable: iterable, Body: body, StmtBase: ast.StmtBase{LineNo: ln}}
		}
		p.pos = save
	}

	var init ast.Stmt
	switch {
	case p.match(token.SEMI):
		init = nil
	case p.match(token.VAR):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.SEMI) {
		cond = p.expression()
	}
	p.expect(token.SEMI, "after loop condition")

	var post ast.Expr
	if !p.check(token.RPAREN) {
		post = p.expression()
	}
	p.expect(token.RPAREN, "after for clauses")

	body := p.statement()
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) whenStmt() ast.Stmt {
	ln := p.prev().Line
	p.expect(token.LPAREN, "after 'when'")
	subject := p.expression()
	p.expect(token.RPAREN, "after when subject")
	p.expect(token.LBRACE, "before when body")

	var arms []ast.WhenArm
	for !p.check(token.RBRACE) && !p.atEnd() {
		var arm ast.WhenArm
		if p.match(token.CASE) {
			arm.Values = append(arm.Values, p.expression())
			for p.match(token.COMMA) {
				arm.Values = append(arm.Values, p.expression())
			}
		} else {
			p.expect(token.ELSE, "as when arm")
		}
		p.expect(token.COLON, "after when arm label")
		for !p.check(token.CASE) && !p.check(token.ELSE) && !p.check(token.RBRACE) && !p.atEnd() {
			arm.Body = append(arm.Body, p.declaration())
		}
		arms = append(arms, arm)
	}
	p.expect(token.RBRACE, "after when body")
	return &ast.WhenStmt{Subject: subject, Arms: arms, StmtBase: ast.StmtBase{LineNo: ln}}
}

func (p *parser) returnStmt() ast.Stmt {
	ln := p.prev().Line
	var x ast.Expr
	if !p.check(token.SEMI) {
		x = p.expression()
	}
	p.expect(token.SEMI, "after return value")
	return &ast.ReturnStmt{X: x, StmtBase: ast.StmtBase{LineNo: ln}}
}
