package ast

import "github.com/archerlang/archer/lang/token"

// Base carries the source line shared by all expression nodes.
type Base struct{ LineNo int }

func (b Base) Line() int { return b.LineNo }
func (Base) expr()       {}

// Literal is a number, string, nil, true or false literal.
type Literal struct {
	Base
	Value any // float64, string, bool, or nil
}

// Ident is a bare identifier reference, e.g. `x`.
type Ident struct {
	Base
	Name string
}

// This is the `this` keyword used inside a method body.
type This struct{ Base }

// Super is a `super.name` or `super.name(args)` expression; Method is the
// name looked up on the enclosing class's superclass.
type Super struct {
	Base
	Method string
}

// Unary is a prefix unary expression: -x, !x, ~x.
type Unary struct {
	Base
	Op      token.Token
	Operand Expr
}

// IncDec is a pre/post increment or decrement of an assignable target.
type IncDec struct {
	Base
	Op      token.Token // PLUSPLUS or MINUSMINUS
	Target  Expr        // Ident, Get or Index
	Postfix bool
}

// Binary is an arithmetic, bitwise, comparison, or equality binary
// expression.
type Binary struct {
	Base
	Op          token.Token
	Left, Right Expr
}

// Logical is `and`/`or`, which short-circuit and so cannot share the Binary
// node (their right operand may not always be evaluated).
type Logical struct {
	Base
	Op          token.Token // AND or OR
	Left, Right Expr
}

// Conditional is a ternary `cond ? then : else` expression.
type Conditional struct {
	Base
	Cond, Then, Else Expr
}

// Assign is `target = value` or a compound assignment `target op= value`.
// Op is token.EQ for a plain assignment, or one of the *_EQ tokens.
type Assign struct {
	Base
	Op     token.Token
	Target Expr // Ident, Get, or Index
	Value  Expr
}

// Call is a function/method call.
type Call struct {
	Base
	Callee Expr
	Args   []Expr
}

// Get is a property access `x.name` (or `x?.name` when Safe is set).
type Get struct {
	Base
	Object Expr
	Name   string
	Safe   bool
}

// Index is a subscript access `x[i]` (or `x?[i]` when Safe is set).
type Index struct {
	Base
	Object Expr
	Key    Expr
	Safe   bool
}

// ListLit is a list literal `[a, b, c]`.
type ListLit struct {
	Base
	Elems []Expr
}

// ArrayLit is a fixed-size array literal, compiled to the ARRAY opcode.
// The parser has no syntax for it and never produces one.
type ArrayLit struct {
	Base
	Elems []Expr
}

// MapLit is a map literal `{k: v, ...}`.
type MapLit struct {
	Base
	Keys, Values []Expr
}

// Lambda is an anonymous function expression: `|params| expr` or
// `|params| { stmts }`.
type Lambda struct {
	Base
	Params []string
	Body   []Stmt // a single synthesized ReturnStmt when the body is an expression
}
