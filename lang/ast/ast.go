// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the compiler. The node set here is deliberately thin: the
// parser and this tree are collaborators that feed the compiler a shape to
// lower, not the focus of this repository's design.
package ast

// Node is implemented by every AST node.
type Node interface {
	// Line returns the source line the node starts on, used for compiler and
	// runtime diagnostics.
	Line() int
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// Program is the root of a parsed source file: a flat list of top-level
// statements, compiled as the body of an implicit top-level function.
type Program struct {
	Stmts []Stmt
}
