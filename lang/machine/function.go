package machine

import (
	"fmt"

	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/gc"
)

// Function is the heap wrapper around a compiled compiler.Function: the
// bare, uncaptured code and arity of a `fun` declaration or lambda before
// any closure has bound upvalues to it.
type Function struct {
	gc.Header
	proto  *compiler.Function
	Module *Module
}

func newFunction(proto *compiler.Function, mod *Module) *Function {
	return &Function{proto: proto, Module: mod}
}

func (f *Function) Type() string { return "function" }

func (f *Function) String() string {
	if f.proto.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.proto.Name)
}

func (f *Function) Arity() int   { return f.proto.Arity }
func (f *Function) Size() int    { return 64 }
func (f *Function) Name() string { return f.proto.Name }
func (f *Function) Free()        { f.Module = nil }

func (f *Function) Trace(mark func(gc.Object)) {
	if f.Module != nil {
		mark(f.Module)
	}
}

// upvalueDesc describes one upvalue slot of the function's enclosing
// closure, as emitted by the compiler after the CLOSURE opcode.
type upvalueDesc struct {
	isLocal bool
	index   byte
}

// Closure pairs a Function with the upvalues captured at the point the
// CLOSURE instruction ran.
type Closure struct {
	gc.Header
	Fn       *Function
	Upvalues []*Upvalue
}

func newClosure(fn *Function, upvalues []*Upvalue) *Closure {
	return &Closure{Fn: fn, Upvalues: upvalues}
}

func (c *Closure) Type() string   { return "closure" }
func (c *Closure) String() string { return c.Fn.String() }
func (c *Closure) Arity() int     { return c.Fn.Arity() }
func (c *Closure) Size() int      { return 32 + 8*len(c.Upvalues) }

func (c *Closure) Trace(mark func(gc.Object)) {
	mark(c.Fn)
	for _, uv := range c.Upvalues {
		mark(uv)
	}
}

func (c *Closure) Free() { c.Upvalues = nil }

// Upvalue references a variable captured from an enclosing scope. While
// open it points at a live slot on some thread's value stack; once that
// frame returns the value is copied into closed and the pointer is
// redirected there.
type Upvalue struct {
	gc.Header
	stack  []Value // the owning thread's stack, while open
	slot   int     // index into stack, while open
	closed Value   // owned value, once closed
	isOpen bool
	next   *Upvalue // next entry in the thread's open-upvalue list, by descending slot
}

func newOpenUpvalue(stack []Value, slot int) *Upvalue {
	return &Upvalue{stack: stack, slot: slot, isOpen: true}
}

func (u *Upvalue) Type() string   { return "upvalue" }
func (u *Upvalue) String() string { return "<upvalue>" }
func (u *Upvalue) Size() int      { return 32 }

func (u *Upvalue) get() Value {
	if u.isOpen {
		return u.stack[u.slot]
	}
	return u.closed
}

func (u *Upvalue) set(v Value) {
	if u.isOpen {
		u.stack[u.slot] = v
		return
	}
	u.closed = v
}

// close copies the live stack slot into the upvalue's own storage and
// severs its link to the stack; called when the frame owning that slot
// returns or its scope ends.
func (u *Upvalue) close() {
	if !u.isOpen {
		return
	}
	u.closed = u.stack[u.slot]
	u.stack = nil
	u.isOpen = false
}

func (u *Upvalue) Trace(mark func(gc.Object)) { markValue(u.get(), mark) }
func (u *Upvalue) Free()                      { u.closed = nil; u.stack = nil }

// NativeFunc is the signature every built-in function implements: given
// the thread and its argument window, return a result or an error.
type NativeFunc func(th *Thread, args []Value) (Value, error)

// Native wraps a host-implemented function so it can be called like any
// other Callable.
type Native struct {
	leafObject
	name    string
	arity   int
	fn      NativeFunc
	isYield bool // true only for the sentinel bound to the global "yield"
}

func NewNative(name string, arity int, fn NativeFunc) *Native {
	return &Native{name: name, arity: arity, fn: fn}
}

// YieldNative returns the sentinel native the global "yield" binding must
// hold: CALL recognizes it by its isYield flag and raises a yieldSignal
// instead of invoking fn, inside or outside a coroutine (outside one, the
// signal reaches Thread.run and is reported there as a runtime error). fn
// runs only when the native is called some other way, such as through
// INVOKE, and then reports the same runtime error.
func YieldNative() *Native {
	return &Native{name: "yield", arity: -1, isYield: true, fn: func(*Thread, []Value) (Value, error) {
		return nil, runtimeErrorf("yield called outside a coroutine")
	}}
}

func (n *Native) Type() string   { return "native" }
func (n *Native) String() string { return fmt.Sprintf("<native %s>", n.name) }
func (n *Native) Arity() int     { return n.arity }
func (n *Native) Size() int      { return 32 }

// Module is the name of a loaded source, referenced by every Function
// created from it (Function.Module); it does not hold the Function itself.
// Exports holds the module's top-level bindings, keyed by name, filled in
// by Thread.RunModule for an imported module and read through GetField.
type Module struct {
	gc.Header
	Name    string
	Exports map[string]Value
}

func (m *Module) Type() string   { return "module" }
func (m *Module) String() string { return fmt.Sprintf("<module %s>", m.Name) }
func (m *Module) Size() int      { return 32 + 16*len(m.Exports) }
func (m *Module) Free()          { m.Exports = nil }

func (m *Module) Trace(mark func(gc.Object)) {
	for _, v := range m.Exports {
		markValue(v, mark)
	}
}

func (m *Module) GetField(name string) (Value, bool) {
	v, ok := m.Exports[name]
	return v, ok
}
