package machine

import (
	"fmt"

	"github.com/archerlang/archer/lang/gc"
)

type coroutineStatus int

const (
	coroutineSuspended coroutineStatus = iota
	coroutineRunning
	coroutineDead
)

func (s coroutineStatus) String() string {
	switch s {
	case coroutineRunning:
		return "running"
	case coroutineDead:
		return "dead"
	default:
		return "suspended"
	}
}

// Coroutine is a call stack of its own: its own frames and value stack,
// resumed and yielded without any additional OS thread or goroutine. Only
// one stack is ever actually executing at a time, so resume/yield are
// plain synchronous transfers of a Thread's working frames/stack/openUV
// fields, not a handoff between concurrently running goroutines.
type Coroutine struct {
	gc.Header
	entry  *Closure
	status coroutineStatus

	frames []frame
	stack  []Value
	openUV *Upvalue
}

// NewCoroutine wraps entry as a coroutine body, allocated but not started.
func NewCoroutine(entry *Closure) *Coroutine {
	return &Coroutine{
		entry:  entry,
		status: coroutineSuspended,
		stack:  make([]Value, 0, stackMax),
	}
}

func (c *Coroutine) Type() string   { return "coroutine" }
func (c *Coroutine) String() string { return fmt.Sprintf("<coroutine %s>", c.status) }
func (c *Coroutine) Size() int      { return 64 + 8*cap(c.stack) }

// GetField exposes status as a readable attribute (co.status), the only
// coroutine field scripts observe directly; resuming and yielding happen
// through the resume/yield natives instead of further attributes.
func (c *Coroutine) GetField(name string) (Value, bool) {
	if name != "status" {
		return nil, false
	}
	return Intern(c.status.String()), true
}

func (c *Coroutine) Free() {
	c.entry = nil
	c.frames = nil
	c.stack = nil
	c.openUV = nil
}

func (c *Coroutine) Trace(mark func(gc.Object)) {
	if c.entry != nil {
		mark(c.entry)
	}
	for _, v := range c.stack {
		markValue(v, mark)
	}
	for _, fr := range c.frames {
		if fr.closure != nil {
			mark(fr.closure)
		}
	}
	for uv := c.openUV; uv != nil; uv = uv.next {
		mark(uv)
	}
}

// yieldSignal unwinds execute() without finishing the frame stack: CALL
// raises it instead of invoking the yield native directly, carrying the
// values yield(...) was called with back up to Resume.
type yieldSignal struct{ values []Value }

func (y *yieldSignal) Error() string { return "yield outside coroutine" }

// Resume transfers control into co, running it until it yields, returns,
// or errors. The first resume of a freshly created coroutine calls its
// entry closure with args; later resumes deliver args to the pending
// yield as its "return" value (only the first value matters; additional
// values are ignored, matching Call's single-result convention). It
// reports the coroutine's own yielded or returned values and whether the
// coroutine is now dead.
func (th *Thread) Resume(co *Coroutine, args []Value) (result []Value, done bool, err error) {
	if co.status == coroutineDead {
		return nil, true, th.runtimeError("cannot resume a dead coroutine")
	}
	if co.status == coroutineRunning {
		return nil, false, th.runtimeError("coroutine is already running")
	}

	callerFrames, callerStack, callerOpenUV := th.frames, th.stack, th.openUV
	th.frames, th.stack, th.openUV = co.frames, co.stack, co.openUV
	co.status = coroutineRunning

	starting := len(th.frames) == 0
	if starting {
		th.push(co.entry)
		for _, a := range args {
			th.push(a)
		}
		if _, cerr := th.call(co.entry, len(args)); cerr != nil {
			co.status = coroutineDead
			th.frames, th.stack, th.openUV = callerFrames, callerStack, callerOpenUV
			return nil, true, cerr
		}
	} else if len(args) > 0 {
		th.push(args[0])
	} else {
		th.push(Nil{})
	}

	value, rerr := th.execute()

	co.frames, co.stack, co.openUV = th.frames, th.stack, th.openUV
	th.frames, th.stack, th.openUV = callerFrames, callerStack, callerOpenUV

	if ys, ok := rerr.(*yieldSignal); ok {
		co.status = coroutineSuspended
		return ys.values, false, nil
	}
	co.status = coroutineDead
	if rerr != nil {
		return nil, true, rerr
	}
	return []Value{value}, true, nil
}
