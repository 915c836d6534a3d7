package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/gc"
)

const (
	maxFrames = 64
	stackMax  = maxFrames * 256
)

// Thread owns one value stack, one call-frame stack and the heap they
// share. A Coroutine is not a Thread: it is a heap object holding its own
// frames, stack and open upvalues, which Resume swaps into the resuming
// Thread while the coroutine runs.
type Thread struct {
	// Name is an optional name used in diagnostics.
	Name string

	// Stdout, Stderr and Stdin are the standard I/O abstractions for the
	// thread. If nil, os.Stdout, os.Stderr and os.Stdin are used.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of dispatched instructions before the
	// thread is cancelled. A value <= 0 means no limit.
	MaxSteps int

	// Globals holds every top-level `var`/`fun`/`class` binding, keyed by
	// interned name.
	Globals map[string]Value

	// Load resolves an import by module name, compiling and running it at
	// most once per Thread. Set by the host; nil disables `import`.
	Load func(th *Thread, name string) (Value, error)

	// Coroutine is neither set nor read by this package: yield reaches
	// Resume through CALL's yieldSignal, not through this field.
	Coroutine *Coroutine

	collector *gc.Collector
	stack     []Value
	frames    []frame
	openUV    *Upvalue // open-upvalue list, sorted by descending slot

	moduleCache      map[string]Value
	suspendedGlobals []map[string]Value // outer modules' globals, while importing
	steps            uint64
}

// NewThread returns a ready-to-run Thread sharing a fresh collector unless
// one is supplied via WithCollector.
func NewThread(name string) *Thread {
	th := &Thread{
		Name:        name,
		Globals:     map[string]Value{},
		moduleCache: map[string]Value{},
		// Preallocated to its hard cap so the backing array never moves:
		// Upvalue.stack holds onto this slice while open, and a reallocation
		// out from under it would leave it pointing at stale storage.
		stack: make([]Value, 0, stackMax),
	}
	th.collector = gc.New()
	th.collector.Roots = th.markRoots
	AttachCollector(th.collector)
	return th
}

func (th *Thread) stdout() io.Writer {
	if th.Stdout != nil {
		return th.Stdout
	}
	return os.Stdout
}

func (th *Thread) stdin() io.Reader {
	if th.Stdin != nil {
		return th.Stdin
	}
	return os.Stdin
}

func (th *Thread) stderr() io.Writer {
	if th.Stderr != nil {
		return th.Stderr
	}
	return os.Stderr
}

// StdinReader exposes the thread's input stream to native functions
// defined outside this package (the `input` native in lang/stdlib).
func (th *Thread) StdinReader() io.Reader { return th.stdin() }


// SetStressGC forces a collection on every single allocation.
func (th *Thread) SetStressGC(on bool) { th.collector.SetStressMode(on) }

// Register threads a freshly allocated object onto this thread's shared
// collector, triggering a collection if needed.
func (th *Thread) Register(o gc.Object) { th.collector.Register(o) }

// markRoots is the collector's Roots hook: every live reference reachable
// without walking the heap.
func (th *Thread) markRoots(mark func(gc.Object)) {
	for _, v := range th.stack {
		markValue(v, mark)
	}
	for _, fr := range th.frames {
		if fr.closure != nil {
			mark(fr.closure)
		}
	}
	for uv := th.openUV; uv != nil; uv = uv.next {
		mark(uv)
	}
	for _, v := range th.Globals {
		markValue(v, mark)
	}
	for _, g := range th.suspendedGlobals {
		for _, v := range g {
			markValue(v, mark)
		}
	}
	for _, v := range th.moduleCache {
		markValue(v, mark)
	}
}

// ---- value stack ----

func (th *Thread) push(v Value) {
	th.stack = append(th.stack, v)
}

func (th *Thread) pop() Value {
	n := len(th.stack) - 1
	v := th.stack[n]
	th.stack = th.stack[:n]
	return v
}

func (th *Thread) peek(distance int) Value {
	return th.stack[len(th.stack)-1-distance]
}

// RunFunction starts execution of an already-compiled top-level function
// (the product of compiler.Compile), used by lang/interp's Interpreter.Run
// for both file runs and REPL lines. Imported modules go through RunModule.
func (th *Thread) RunFunction(proto *compiler.Function, moduleName string) (Value, error) {
	return th.run(proto, moduleName)
}

func (th *Thread) run(proto *compiler.Function, moduleName string) (Value, error) {
	mod := &Module{Name: moduleName}
	fn := newFunction(proto, mod)
	cl := newClosure(fn, nil)
	th.push(cl)
	th.Register(mod)
	th.Register(fn)
	th.Register(cl)
	if _, err := th.call(cl, 0); err != nil {
		th.stack = th.stack[:0]
		th.frames = th.frames[:0]
		return nil, err
	}
	v, err := th.execute()
	if _, ok := err.(*yieldSignal); ok {
		return nil, th.runtimeError("yield called outside a coroutine")
	}
	return v, err
}

// RunModule runs proto as an imported module: it runs with its own
// isolated global namespace, so one module's top-level `var`/`fun`/`class`
// bindings don't leak into another's, and returns a *Module whose Exports
// mirror that namespace — the value `import` hands back to script code.
// The caller's own Globals are kept reachable for the GC via
// th.suspendedGlobals for the duration of the nested run, the same
// save-and-restore discipline Resume uses for a coroutine's frames/stack.
func (th *Thread) RunModule(proto *compiler.Function, moduleName string) (*Module, error) {
	mod := &Module{Name: moduleName}
	fn := newFunction(proto, mod)
	cl := newClosure(fn, nil)
	th.push(cl)
	th.Register(mod)
	th.Register(fn)
	th.Register(cl)

	th.suspendedGlobals = append(th.suspendedGlobals, th.Globals)
	th.Globals = map[string]Value{}
	defer func() {
		n := len(th.suspendedGlobals) - 1
		th.suspendedGlobals = th.suspendedGlobals[:n]
	}()

	// The importer's frames are set aside so the nested execute stops when
	// the module's own top-level frame returns.
	callerFrames := th.frames
	th.frames = nil
	if _, err := th.call(cl, 0); err != nil {
		th.stack = th.stack[:0]
		th.frames = callerFrames[:0]
		th.Globals = th.suspendedGlobals[len(th.suspendedGlobals)-1]
		return nil, err
	}
	_, err := th.execute()
	th.frames = callerFrames
	mod.Exports = th.Globals
	th.Globals = th.suspendedGlobals[len(th.suspendedGlobals)-1]

	if _, ok := err.(*yieldSignal); ok {
		return nil, th.runtimeError("yield called outside a coroutine")
	}
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// call pushes a new frame invoking callee (already on the stack at
// sp-argc-1) with argc arguments, or executes it immediately if it is a
// native/class/bound-method, per each runtime kind's contract.
func (th *Thread) call(callee Value, argc int) (bool, error) {
	switch c := callee.(type) {
	case *Closure:
		if c.Fn.Arity() != argc {
			return false, th.runtimeError("expected %d arguments but got %d", c.Fn.Arity(), argc)
		}
		if len(th.frames) >= maxFrames {
			return false, th.runtimeError("stack overflow")
		}
		base := len(th.stack) - argc - 1
		th.frames = append(th.frames, frame{closure: c, base: base})
		return true, nil

	case *Native:
		if c.arity >= 0 && c.arity != argc {
			return false, th.runtimeError("expected %d arguments but got %d", c.arity, argc)
		}
		base := len(th.stack) - argc
		args := th.stack[base:]
		result, err := func() (v Value, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = runtimeErrorf("%s: %v", c.name, r)
				}
			}()
			return c.fn(th, args)
		}()
		th.stack = th.stack[:base-1]
		if err != nil {
			if _, ok := err.(*ExitError); ok {
				return false, err
			}
			return false, th.wrapError(err)
		}
		th.push(result)
		// A native may return a freshly allocated, not-yet-registered heap
		// value (an Iterator, List, ...). It is already a root via the push
		// above, so registering it here is safe; already-registered values
		// (an interned String, an existing Instance) are a no-op.
		if o, ok := result.(gc.Object); ok {
			th.Register(o)
		}
		return false, nil

	case *Class:
		inst := NewInstance(c)
		base := len(th.stack) - argc - 1
		// Placed on the stack before Register so a collection triggered by
		// this very allocation already sees it as a root.
		th.stack[base] = inst
		th.Register(inst)
		if init, ok := c.Methods["init"]; ok {
			return th.call(&BoundMethod{Receiver: inst, Method: init}, argc)
		}
		if argc != 0 {
			return false, th.runtimeError("expected 0 arguments but got %d", argc)
		}
		return false, nil

	case *BoundMethod:
		base := len(th.stack) - argc - 1
		th.stack[base] = c.Receiver
		return th.call(c.Method, argc)

	default:
		return false, th.runtimeError("can only call functions and classes")
	}
}

// invoke fuses property lookup and call for INVOKE/INVOKE_SAFE, avoiding
// materializing a bound method for the common case of calling straight
// through: the receiver sits at sp-argc-1 and may be any Attributable
// value (instance, list, map, array, module), not only a class instance.
func (th *Thread) invoke(name string, argc int, safe bool) (bool, error) {
	receiver := th.peek(argc)
	if _, isNil := receiver.(Nil); isNil {
		if safe {
			base := len(th.stack) - argc - 1
			th.stack = th.stack[:base]
			th.push(Nil{})
			return false, nil
		}
		return false, th.runtimeError("cannot invoke method on nil")
	}
	attr, ok := receiver.(Attributable)
	if !ok {
		return false, th.runtimeError("%s value has no properties", receiver.Type())
	}
	v, ok := attr.GetField(name)
	if !ok {
		return false, th.runtimeError("undefined property '%s'", name)
	}
	base := len(th.stack) - argc - 1
	th.stack[base] = v
	return th.call(v, argc)
}

// captureUpvalue returns the open upvalue for the given absolute stack
// slot, reusing an existing one so two closures over the same local share
// state, inserting into th.openUV keeping it sorted by descending slot.
func (th *Thread) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	cur := th.openUV
	for cur != nil && cur.slot > slot {
		prev = cur
		cur = cur.next
	}
	if cur != nil && cur.slot == slot {
		return cur
	}
	uv := newOpenUpvalue(th.stack, slot)
	uv.next = cur
	if prev == nil {
		th.openUV = uv
	} else {
		prev.next = uv
	}
	// Linked into the open-upvalue list before Register so a collection
	// triggered by this very allocation finds it already a root.
	th.Register(uv)
	return uv
}

// closeUpvalues closes every open upvalue at or above the given absolute
// stack slot, called on scope exit and frame return.
func (th *Thread) closeUpvalues(from int) {
	for th.openUV != nil && th.openUV.slot >= from {
		th.openUV.close()
		th.openUV = th.openUV.next
	}
}

// runtimeError builds a *RuntimeError carrying the current call-frame
// traceback, innermost frame first.
func (th *Thread) runtimeError(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	frames := make([]TraceFrame, 0, len(th.frames))
	for i := len(th.frames) - 1; i >= 0; i-- {
		fr := &th.frames[i]
		line := fr.closure.Fn.proto.Chunk.Line(fr.ip)
		frames = append(frames, TraceFrame{Line: line, Name: fr.name()})
	}
	return &RuntimeError{Message: msg, Frames: frames}
}

// importModule resolves and runs the named module at most once per thread,
// caching the resulting value (typically a *Module populated with exports,
// or whatever RunFunction's top-level script returns) for subsequent
// `import`s of the same name.
func (th *Thread) importModule(name string) (Value, error) {
	if v, ok := th.moduleCache[name]; ok {
		return v, nil
	}
	if th.Load == nil {
		return nil, th.runtimeError("import is not supported in this host")
	}
	v, err := th.Load(th, name)
	if err != nil {
		return nil, err
	}
	th.moduleCache[name] = v
	return v, nil
}
