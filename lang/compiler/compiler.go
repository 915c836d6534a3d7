package compiler

import (
	"fmt"
	"go/scanner"

	"github.com/archerlang/archer/lang/ast"
	"github.com/archerlang/archer/lang/token"
)

type (
	// Error is a single compile error with its source position.
	Error = scanner.Error
	// ErrorList is a list of compile errors in source order.
	ErrorList = scanner.ErrorList
)

// Function is the compile-time representation of a compiled function body:
// its own chunk of bytecode plus the metadata the machine package needs to
// turn it into a runtime closure.
type Function struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
}

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

type localVar struct {
	name     string
	depth    int
	captured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// loopCtx tracks the bookkeeping a compiler needs to lower break/continue
// inside the loop it is currently compiling.
type loopCtx struct {
	continueTarget int // bytecode offset `continue` jumps back to
	continueDepth  int // scope depth `continue` unwinds locals to
	breakDepth     int // scope depth `break` unwinds locals to
	breakJumps     []int
}

// Compiler performs a single pass over an AST, emitting bytecode into a
// Chunk per function. One Compiler exists per function body being compiled,
// linked to its lexically enclosing Compiler.
type Compiler struct {
	enclosing *Compiler
	chunk     *Chunk
	kind      funcKind

	locals     []localVar
	upvalues   []upvalueRef
	scopeDepth int
	loops      []loopCtx
	classes    []bool // hasSuperclass, one entry per lexically enclosing class

	errs ErrorList
}

// Compile compiles a full program into its top-level script function.
func Compile(prog *ast.Program) (*Function, error) {
	c := &Compiler{chunk: NewChunk(), kind: kindScript}
	c.locals = append(c.locals, localVar{name: "", depth: 0})

	for _, s := range prog.Stmts {
		c.compileStmt(s)
	}
	c.chunk.WriteOp(LOAD_NIL, lastLine(prog))
	c.chunk.WriteOp(RETURN, lastLine(prog))

	fn := &Function{Name: "", Arity: 0, UpvalueCount: len(c.upvalues), Chunk: c.chunk}
	if len(c.errs) > 0 {
		return fn, c.errs
	}
	return fn, nil
}

func lastLine(prog *ast.Program) int {
	if len(prog.Stmts) == 0 {
		return 0
	}
	return prog.Stmts[len(prog.Stmts)-1].Line()
}

func (c *Compiler) errf(line int, format string, args ...any) {
	c.errs.Add(struct {
		Filename string
		Offset   int
		Line     int
		Column   int
	}{Line: line}, fmt.Sprintf(format, args...))
}

func (c *Compiler) emitByteOperand(op OpCode, idx int, line int) {
	c.chunk.WriteOp(op, line)
	if idx > 0xff {
		idx = 0xff
	}
	c.chunk.Write(byte(idx), line)
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.captured {
			c.chunk.WriteOp(CLOSE_UPVALUE, line)
		} else {
			c.chunk.WriteOp(POP, line)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// popLocalsAbove emits cleanup POP/CLOSE_UPVALUE instructions for every
// local declared deeper than target, without touching the compiler's
// static bookkeeping (used for break/continue, which jump out of their
// enclosing scopes without lexically closing them).
func (c *Compiler) popLocalsAbove(target int, line int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth > target; i-- {
		if c.locals[i].captured {
			c.chunk.WriteOp(CLOSE_UPVALUE, line)
		} else {
			c.chunk.WriteOp(POP, line)
		}
	}
}

func (c *Compiler) addLocal(name string, line int) {
	if len(c.locals) >= 256 {
		c.errf(line, "too many local variables in function")
		return
	}
	c.locals = append(c.locals, localVar{name: name, depth: -1})
}

func (c *Compiler) declareLocal(name string, line int) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.errf(line, "variable %q already declared in this scope", name)
		}
	}
	c.addLocal(name, line)
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(name string, line int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	idx := c.chunk.AddConstant(name)
	c.emitByteOperand(DEFINE_GLOBAL, idx, line)
}

func (c *Compiler) resolveLocal(name string, line int) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.errf(line, "can't read local variable %q in its own initializer", name)
			}
			return i, true
		}
	}
	return -1, false
}

func (c *Compiler) addUpvalue(index byte, isLocal bool, line int) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= 256 {
		c.errf(line, "too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(name string, line int) (int, bool) {
	if c.enclosing == nil {
		return -1, false
	}
	if slot, ok := c.enclosing.resolveLocal(name, line); ok {
		c.enclosing.locals[slot].captured = true
		return c.addUpvalue(byte(slot), true, line), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name, line); ok {
		return c.addUpvalue(byte(idx), false, line), true
	}
	return -1, false
}

func (c *Compiler) emitVariableLoad(name string, line int) {
	if slot, ok := c.resolveLocal(name, line); ok {
		c.emitByteOperand(GET_LOCAL, slot, line)
		return
	}
	if idx, ok := c.resolveUpvalue(name, line); ok {
		c.emitByteOperand(LOAD_UPVALUE, idx, line)
		return
	}
	idx := c.chunk.AddConstant(name)
	c.emitByteOperand(GET_GLOBAL, idx, line)
}

func (c *Compiler) emitVariableStore(name string, line int) {
	if slot, ok := c.resolveLocal(name, line); ok {
		c.emitByteOperand(SET_LOCAL, slot, line)
		return
	}
	if idx, ok := c.resolveUpvalue(name, line); ok {
		c.emitByteOperand(STORE_UPVALUE, idx, line)
		return
	}
	idx := c.chunk.AddConstant(name)
	c.emitByteOperand(SET_GLOBAL, idx, line)
}

func binaryOpcode(op token.Token) OpCode {
	switch op {
	case token.EQL:
		return EQUAL
	case token.NEQ:
		return NOT_EQUAL
	case token.GT:
		return GREATER
	case token.GE:
		return GREATER_EQUAL
	case token.LT:
		return LESS
	case token.LE:
		return LESS_EQUAL
	case token.PLUS:
		return ADD
	case token.MINUS:
		return SUBTRACT
	case token.STAR:
		return MULTIPLY
	case token.SLASH:
		return DIVIDE
	case token.PERCENT:
		return MODULO
	case token.STARSTAR:
		return POWER
	case token.AMPERSAND:
		return BITWISE_AND
	case token.PIPE:
		return BITWISE_OR
	case token.CIRCUMFLEX:
		return BITWISE_XOR
	case token.LTLT:
		return LEFT_SHIFT
	case token.GTGT:
		return RIGHT_SHIFT
	default:
		panic(fmt.Sprintf("compiler: no opcode for binary operator %v", op))
	}
}

// ---- statements ----

func (c *Compiler) compileStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		c.compileExpr(s.X)
		c.chunk.WriteOp(POP, s.Line())
	case *ast.PrintStmt:
		c.compileExpr(s.X)
		c.chunk.WriteOp(PRINT, s.Line())
	case *ast.VarStmt:
		c.compileVarStmt(s)
	case *ast.BlockStmt:
		c.beginScope()
		for _, inner := range s.Stmts {
			c.compileStmt(inner)
		}
		c.endScope(s.Line())
	case *ast.IfStmt:
		c.compileIfStmt(s)
	case *ast.WhileStmt:
		c.compileWhileStmt(s)
	case *ast.ForStmt:
		c.compileForStmt(s)
	case *ast.ForInStmt:
		c.compileForInStmt(s)
	case *ast.WhenStmt:
		c.compileWhenStmt(s)
	case *ast.FunStmt:
		c.compileFunStmt(s)
	case *ast.ReturnStmt:
		c.compileReturnStmt(s)
	case *ast.BreakStmt:
		c.compileBreak(s.Line())
	case *ast.ContinueStmt:
		c.compileContinue(s.Line())
	case *ast.ClassStmt:
		c.compileClassStmt(s)
	case *ast.ImportStmt:
		c.compileImportStmt(s)
	default:
		c.errf(s.Line(), "internal: unhandled statement %T", s)
	}
}

func (c *Compiler) compileVarStmt(s *ast.VarStmt) {
	if c.scopeDepth > 0 {
		c.declareLocal(s.Name, s.Line())
	}
	if s.Init != nil {
		c.compileExpr(s.Init)
	} else {
		c.chunk.WriteOp(LOAD_NIL, s.Line())
	}
	c.defineVariable(s.Name, s.Line())
}

func (c *Compiler) compileIfStmt(s *ast.IfStmt) {
	c.compileExpr(s.Cond)
	thenJump := c.chunk.EmitJump(POP_JUMP_IF_FALSE, s.Line())
	c.compileStmt(s.Then)
	if s.Else == nil {
		c.patch(thenJump)
		return
	}
	elseJump := c.chunk.EmitJump(JUMP, s.Line())
	c.patch(thenJump)
	c.compileStmt(s.Else)
	c.patch(elseJump)
}

func (c *Compiler) patch(offset int) {
	if err := c.chunk.PatchJump(offset); err != nil {
		c.errf(0, "%s", err)
	}
}

func (c *Compiler) loop(start, line int) {
	if err := c.chunk.EmitLoop(start, line); err != nil {
		c.errf(line, "%s", err)
	}
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) {
	loopStart := len(c.chunk.Code)
	c.compileExpr(s.Cond)
	exitJump := c.chunk.EmitJump(POP_JUMP_IF_FALSE, s.Line())

	c.loops = append(c.loops, loopCtx{
		continueTarget: loopStart,
		continueDepth:  c.scopeDepth,
		breakDepth:     c.scopeDepth,
	})
	c.compileStmt(s.Body)
	lc := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.loop(loopStart, s.Line())
	c.patch(exitJump)
	for _, j := range lc.breakJumps {
		c.patch(j)
	}
}

func (c *Compiler) compileForStmt(s *ast.ForStmt) {
	c.beginScope()
	if s.Init != nil {
		c.compileStmt(s.Init)
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if s.Cond != nil {
		c.compileExpr(s.Cond)
		exitJump = c.chunk.EmitJump(POP_JUMP_IF_FALSE, s.Line())
	}

	if s.Post != nil {
		bodyJump := c.chunk.EmitJump(JUMP, s.Line())
		incrStart := len(c.chunk.Code)
		c.compileExpr(s.Post)
		c.chunk.WriteOp(POP, s.Line())
		c.loop(loopStart, s.Line())
		loopStart = incrStart
		c.patch(bodyJump)
	}

	c.loops = append(c.loops, loopCtx{
		continueTarget: loopStart,
		continueDepth:  c.scopeDepth,
		breakDepth:     c.scopeDepth,
	})
	c.compileStmt(s.Body)
	lc := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.loop(loopStart, s.Line())
	if exitJump != -1 {
		c.patch(exitJump)
	}
	for _, j := range lc.breakJumps {
		c.patch(j)
	}
	c.endScope(s.Line())
}

func (c *Compiler) compileForInStmt(s *ast.ForInStmt) {
	c.beginScope()
	c.compileExpr(s.Iterable)
	c.chunk.WriteOp(ITER_INIT, s.Line())
	c.addLocal("@iter", s.Line())
	c.markInitialized()
	outerDepth := c.scopeDepth - 1

	loopStart := len(c.chunk.Code)
	exitJump := c.chunk.EmitJump(ITER_NEXT, s.Line())

	c.beginScope()
	c.addLocal(s.Name, s.Line())
	c.markInitialized()

	c.loops = append(c.loops, loopCtx{
		continueTarget: loopStart,
		continueDepth:  c.scopeDepth - 1,
		breakDepth:     outerDepth,
	})
	c.compileStmt(s.Body)
	lc := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]

	c.endScope(s.Line())
	c.loop(loopStart, s.Line())
	c.patch(exitJump)
	for _, j := range lc.breakJumps {
		c.patch(j)
	}
	c.endScope(s.Line())
}

func (c *Compiler) compileBreak(line int) {
	if len(c.loops) == 0 {
		c.errf(line, "can't use 'break' outside of a loop")
		return
	}
	lc := &c.loops[len(c.loops)-1]
	c.popLocalsAbove(lc.breakDepth, line)
	lc.breakJumps = append(lc.breakJumps, c.chunk.EmitJump(JUMP, line))
}

func (c *Compiler) compileContinue(line int) {
	if len(c.loops) == 0 {
		c.errf(line, "can't use 'continue' outside of a loop")
		return
	}
	lc := c.loops[len(c.loops)-1]
	c.popLocalsAbove(lc.continueDepth, line)
	c.loop(lc.continueTarget, line)
}

// compileWhenStmt lowers `when` by synthesizing an implicit empty `else`
// arm if the source had none, so every path pops the subject exactly once.
func (c *Compiler) compileWhenStmt(s *ast.WhenStmt) {
	c.compileExpr(s.Subject)

	arms := s.Arms
	haveElse := false
	for _, a := range arms {
		if len(a.Values) == 0 {
			haveElse = true
		}
	}
	if !haveElse {
		arms = append(append([]ast.WhenArm{}, arms...), ast.WhenArm{})
	}

	var endJumps []int
	for i, arm := range arms {
		last := i == len(arms)-1
		if len(arm.Values) == 0 {
			// default/else arm: falls through here unconditionally.
			c.chunk.WriteOp(POP, s.Line())
			for _, stmt := range arm.Body {
				c.compileStmt(stmt)
			}
			if !last {
				endJumps = append(endJumps, c.chunk.EmitJump(JUMP, s.Line()))
			}
			continue
		}

		var bodyJumps []int
		for _, v := range arm.Values {
			c.chunk.WriteOp(DUP, s.Line())
			c.compileExpr(v)
			bodyJumps = append(bodyJumps, c.chunk.EmitJump(POP_JUMP_IF_EQUAL, v.Line()))
		}
		skip := c.chunk.EmitJump(JUMP, s.Line())
		for _, j := range bodyJumps {
			c.patch(j)
		}
		c.chunk.WriteOp(POP, s.Line())
		for _, stmt := range arm.Body {
			c.compileStmt(stmt)
		}
		endJumps = append(endJumps, c.chunk.EmitJump(JUMP, s.Line()))
		c.patch(skip)
	}
	for _, j := range endJumps {
		c.patch(j)
	}
}

func (c *Compiler) compileFunStmt(s *ast.FunStmt) {
	if c.scopeDepth > 0 {
		c.declareLocal(s.Name, s.Line())
		c.markInitialized()
	}
	c.compileFunctionLiteral(s.Name, s.Params, s.Body, kindFunction, s.Line())
	c.defineVariable(s.Name, s.Line())
}

// compileFunctionLiteral compiles params/body into a nested Function and
// emits a CLOSURE instruction (with its trailing upvalue table) in the
// current chunk, leaving the resulting closure on the stack.
func (c *Compiler) compileFunctionLiteral(name string, params []string, body []ast.Stmt, kind funcKind, line int) {
	sub := &Compiler{enclosing: c, chunk: NewChunk(), kind: kind, classes: c.classes}
	if kind == kindMethod || kind == kindInitializer {
		sub.locals = append(sub.locals, localVar{name: "this", depth: 0})
	} else {
		sub.locals = append(sub.locals, localVar{name: "", depth: 0})
	}
	for _, p := range params {
		sub.declareLocal(p, line)
		sub.markInitialized()
	}
	for _, st := range body {
		sub.compileStmt(st)
	}
	sub.emitImplicitReturn(line)

	c.errs = append(c.errs, sub.errs...)

	fn := &Function{Name: name, Arity: len(params), UpvalueCount: len(sub.upvalues), Chunk: sub.chunk}
	idx := c.chunk.AddConstant(fn)
	c.emitByteOperand(CLOSURE, idx, line)
	for _, uv := range sub.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.chunk.Write(isLocal, line)
		c.chunk.Write(uv.index, line)
	}
}

func (c *Compiler) emitImplicitReturn(line int) {
	if c.kind == kindInitializer {
		c.chunk.WriteOp(GET_LOCAL, line)
		c.chunk.Write(0, line)
	} else {
		c.chunk.WriteOp(LOAD_NIL, line)
	}
	c.chunk.WriteOp(RETURN, line)
}

func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) {
	if c.kind == kindScript {
		c.errf(s.Line(), "can't return from top-level code")
	}
	if s.X == nil {
		if c.kind == kindInitializer {
			c.chunk.WriteOp(GET_LOCAL, s.Line())
			c.chunk.Write(0, s.Line())
		} else {
			c.chunk.WriteOp(LOAD_NIL, s.Line())
		}
	} else {
		if c.kind == kindInitializer {
			c.errf(s.Line(), "can't return a value from an initializer")
		}
		c.compileExpr(s.X)
	}
	c.chunk.WriteOp(RETURN, s.Line())
}

func (c *Compiler) compileClassStmt(s *ast.ClassStmt) {
	if c.scopeDepth > 0 {
		c.declareLocal(s.Name, s.Line())
	}
	nameIdx := c.chunk.AddConstant(s.Name)
	c.emitByteOperand(CLASS, nameIdx, s.Line())
	c.defineVariable(s.Name, s.Line())

	hasSuper := s.Superclass != ""
	if hasSuper && s.Superclass == s.Name {
		c.errf(s.Line(), "a class can't inherit from itself")
	}
	if hasSuper {
		c.emitVariableLoad(s.Superclass, s.Line())
		c.beginScope()
		c.addLocal("super", s.Line())
		c.markInitialized()
		c.emitVariableLoad(s.Name, s.Line())
		c.chunk.WriteOp(INHERIT, s.Line())
	}

	c.classes = append(c.classes, hasSuper)
	c.emitVariableLoad(s.Name, s.Line())
	for _, m := range s.Methods {
		kind := kindMethod
		if !m.IsStatic && m.Name == "init" {
			kind = kindInitializer
		}
		c.compileFunctionLiteral(m.Name, m.Params, m.Body, kind, s.Line())
		nameIdx := c.chunk.AddConstant(m.Name)
		op := METHOD
		if m.IsStatic {
			op = STATIC_METHOD
		}
		c.emitByteOperand(op, nameIdx, s.Line())
	}
	c.chunk.WriteOp(POP, s.Line())
	c.classes = c.classes[:len(c.classes)-1]

	if hasSuper {
		c.endScope(s.Line())
	}
}

func (c *Compiler) compileImportStmt(s *ast.ImportStmt) {
	if c.scopeDepth > 0 {
		c.declareLocal(s.Name, s.Line())
	}
	pathIdx := c.chunk.AddConstant(s.Path)
	c.emitByteOperand(IMPORT, pathIdx, s.Line())
	c.defineVariable(s.Name, s.Line())
}

// ---- expressions ----

func (c *Compiler) compileExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
		c.compileLiteral(e)
	case *ast.Ident:
		c.emitVariableLoad(e.Name, e.Line())
	case *ast.This:
		if len(c.classes) == 0 {
			c.errf(e.Line(), "can't use 'this' outside of a method")
		}
		c.emitVariableLoad("this", e.Line())
	case *ast.Super:
		c.compileSuper(e)
	case *ast.Unary:
		c.compileExpr(e.Operand)
		switch e.Op {
		case token.MINUS:
			c.chunk.WriteOp(NEGATE, e.Line())
		case token.BANG:
			c.chunk.WriteOp(NOT, e.Line())
		case token.TILDE:
			c.chunk.WriteOp(BITWISE_NOT, e.Line())
		}
	case *ast.IncDec:
		c.compileIncDec(e)
	case *ast.Binary:
		c.compileExpr(e.Left)
		c.compileExpr(e.Right)
		c.chunk.WriteOp(binaryOpcode(e.Op), e.Line())
	case *ast.Logical:
		c.compileLogical(e)
	case *ast.Conditional:
		c.compileConditional(e)
	case *ast.Assign:
		c.compileAssign(e)
	case *ast.Call:
		c.compileCall(e)
	case *ast.Get:
		c.compileGet(e)
	case *ast.Index:
		c.compileIndex(e)
	case *ast.ListLit:
		for _, el := range e.Elems {
			c.compileExpr(el)
		}
		c.emitByteOperand(LIST, len(e.Elems), e.Line())
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			c.compileExpr(el)
		}
		c.emitByteOperand(ARRAY, len(e.Elems), e.Line())
	case *ast.MapLit:
		for i := range e.Keys {
			c.compileExpr(e.Keys[i])
			c.compileExpr(e.Values[i])
		}
		c.emitByteOperand(MAP, len(e.Keys), e.Line())
	case *ast.Lambda:
		c.compileFunctionLiteral("lambda", e.Params, e.Body, kindFunction, e.Line())
	default:
		c.errf(e.Line(), "internal: unhandled expression %T", e)
	}
}

func (c *Compiler) compileLiteral(e *ast.Literal) {
	switch v := e.Value.(type) {
	case nil:
		c.chunk.WriteOp(LOAD_NIL, e.Line())
	case bool:
		if v {
			c.chunk.WriteOp(LOAD_TRUE, e.Line())
		} else {
			c.chunk.WriteOp(LOAD_FALSE, e.Line())
		}
	default:
		c.chunk.EmitConstant(v, e.Line())
	}
}

func (c *Compiler) compileLogical(e *ast.Logical) {
	c.compileExpr(e.Left)
	if e.Op == token.AND {
		end := c.chunk.EmitJump(JUMP_IF_FALSE, e.Line())
		c.chunk.WriteOp(POP, e.Line())
		c.compileExpr(e.Right)
		c.patch(end)
		return
	}
	elseJump := c.chunk.EmitJump(JUMP_IF_FALSE, e.Line())
	end := c.chunk.EmitJump(JUMP, e.Line())
	c.patch(elseJump)
	c.chunk.WriteOp(POP, e.Line())
	c.compileExpr(e.Right)
	c.patch(end)
}

func (c *Compiler) compileConditional(e *ast.Conditional) {
	c.compileExpr(e.Cond)
	thenJump := c.chunk.EmitJump(POP_JUMP_IF_FALSE, e.Line())
	c.compileExpr(e.Then)
	endJump := c.chunk.EmitJump(JUMP, e.Line())
	c.patch(thenJump)
	c.compileExpr(e.Else)
	c.patch(endJump)
}

func (c *Compiler) checkSuperContext(line int) {
	if len(c.classes) == 0 {
		c.errf(line, "can't use 'super' outside of a class")
	} else if !c.classes[len(c.classes)-1] {
		c.errf(line, "can't use 'super' in a class with no superclass")
	}
}

// compileSuper handles plain `super.method` access (no call).
func (c *Compiler) compileSuper(e *ast.Super) {
	c.checkSuperContext(e.Line())
	nameIdx := c.chunk.AddConstant(e.Method)
	c.emitVariableLoad("this", e.Line())
	c.emitVariableLoad("super", e.Line())
	c.emitByteOperand(GET_SUPER, nameIdx, e.Line())
}

func (c *Compiler) compileCall(e *ast.Call) {
	if len(e.Args) > 255 {
		c.errf(e.Line(), "can't have more than 255 arguments")
	}
	switch callee := e.Callee.(type) {
	case *ast.Get:
		c.compileExpr(callee.Object)
		for _, a := range e.Args {
			c.compileExpr(a)
		}
		nameIdx := c.chunk.AddConstant(callee.Name)
		op := INVOKE
		if callee.Safe {
			op = INVOKE_SAFE
		}
		c.chunk.WriteOp(op, e.Line())
		c.chunk.Write(byte(nameIdx), e.Line())
		c.chunk.Write(byte(len(e.Args)), e.Line())
	case *ast.Super:
		c.checkSuperContext(e.Line())
		c.emitVariableLoad("this", e.Line())
		for _, a := range e.Args {
			c.compileExpr(a)
		}
		c.emitVariableLoad("super", e.Line())
		nameIdx := c.chunk.AddConstant(callee.Method)
		c.chunk.WriteOp(SUPER_INVOKE, e.Line())
		c.chunk.Write(byte(nameIdx), e.Line())
		c.chunk.Write(byte(len(e.Args)), e.Line())
	default:
		c.compileExpr(e.Callee)
		for _, a := range e.Args {
			c.compileExpr(a)
		}
		c.emitByteOperand(CALL, len(e.Args), e.Line())
	}
}

func (c *Compiler) compileGet(e *ast.Get) {
	c.compileExpr(e.Object)
	nameIdx := c.chunk.AddConstant(e.Name)
	op := LOAD_PROPERTY
	if e.Safe {
		op = LOAD_PROPERTY_SAFE
	}
	c.emitByteOperand(op, nameIdx, e.Line())
}

func (c *Compiler) compileIndex(e *ast.Index) {
	c.compileExpr(e.Object)
	c.compileExpr(e.Key)
	op := LOAD_SUBSCRIPT
	if e.Safe {
		op = LOAD_SUBSCRIPT_SAFE
	}
	c.chunk.WriteOp(op, e.Line())
}

func (c *Compiler) compileAssign(e *ast.Assign) {
	switch target := e.Target.(type) {
	case *ast.Ident:
		if e.Op == token.EQ {
			c.compileExpr(e.Value)
		} else {
			c.emitVariableLoad(target.Name, e.Line())
			c.compileExpr(e.Value)
			c.chunk.WriteOp(binaryOpcode(e.Op.BinaryOp()), e.Line())
		}
		c.emitVariableStore(target.Name, e.Line())

	case *ast.Get:
		c.compileExpr(target.Object)
		nameIdx := c.chunk.AddConstant(target.Name)
		if e.Op != token.EQ {
			c.chunk.WriteOp(DUP, e.Line())
			c.emitByteOperand(LOAD_PROPERTY, nameIdx, e.Line())
			c.compileExpr(e.Value)
			c.chunk.WriteOp(binaryOpcode(e.Op.BinaryOp()), e.Line())
		} else {
			c.compileExpr(e.Value)
		}
		c.emitByteOperand(STORE_PROPERTY, nameIdx, e.Line())

	case *ast.Index:
		c.compileExpr(target.Object)
		c.compileExpr(target.Key)
		if e.Op != token.EQ {
			c.chunk.WriteOp(DUP_TWO, e.Line())
			c.chunk.WriteOp(LOAD_SUBSCRIPT, e.Line())
			c.compileExpr(e.Value)
			c.chunk.WriteOp(binaryOpcode(e.Op.BinaryOp()), e.Line())
		} else {
			c.compileExpr(e.Value)
		}
		c.chunk.WriteOp(STORE_SUBSCRIPT, e.Line())

	default:
		c.errf(e.Line(), "internal: invalid assignment target %T", target)
	}
}

// compileIncDec lowers x++/x--/++x/--x to a load, an arithmetic step, and a
// store, preserving the pre-increment value for the postfix form via the
// SWAP_THREE/SWAP_FOUR "rotate below top" stack ops.
func (c *Compiler) compileIncDec(e *ast.IncDec) {
	step := ADD
	if e.Op == token.MINUSMINUS {
		step = SUBTRACT
	}
	line := e.Line()

	switch target := e.Target.(type) {
	case *ast.Ident:
		c.emitVariableLoad(target.Name, line)
		if e.Postfix {
			c.chunk.WriteOp(DUP, line)
		}
		c.chunk.EmitConstant(float64(1), line)
		c.chunk.WriteOp(step, line)
		c.emitVariableStore(target.Name, line)
		if e.Postfix {
			c.chunk.WriteOp(POP, line)
		}

	case *ast.Get:
		c.compileExpr(target.Object)
		c.chunk.WriteOp(DUP, line)
		nameIdx := c.chunk.AddConstant(target.Name)
		c.emitByteOperand(LOAD_PROPERTY, nameIdx, line)
		if e.Postfix {
			c.chunk.WriteOp(DUP, line)
			c.chunk.WriteOp(SWAP_THREE, line)
		}
		c.chunk.EmitConstant(float64(1), line)
		c.chunk.WriteOp(step, line)
		c.emitByteOperand(STORE_PROPERTY, nameIdx, line)
		if e.Postfix {
			c.chunk.WriteOp(POP, line)
		}

	case *ast.Index:
		c.compileExpr(target.Object)
		c.compileExpr(target.Key)
		c.chunk.WriteOp(DUP_TWO, line)
		c.chunk.WriteOp(LOAD_SUBSCRIPT, line)
		if e.Postfix {
			c.chunk.WriteOp(DUP, line)
			c.chunk.WriteOp(SWAP_FOUR, line)
		}
		c.chunk.EmitConstant(float64(1), line)
		c.chunk.WriteOp(step, line)
		c.chunk.WriteOp(STORE_SUBSCRIPT, line)
		if e.Postfix {
			c.chunk.WriteOp(POP, line)
		}

	default:
		c.errf(line, "invalid increment/decrement target %T", target)
	}
}
