package machine

import (
	"fmt"
	"strings"
)

// RuntimeError is a failure raised by the interpreter while executing
// bytecode: a type mismatch, an arity mismatch, an undefined name, and so
// on. It carries the call stack at the moment of failure so the driver can
// print a Lox-style traceback.
type RuntimeError struct {
	Message string
	Frames  []TraceFrame
}

// TraceFrame names one entry of a RuntimeError's traceback.
type TraceFrame struct {
	Line int
	Name string // function name, or "script" for the top-level frame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	if len(e.Frames) > 0 {
		fmt.Fprintf(&b, "[Line %d] ", e.Frames[0].Line)
	}
	b.WriteString(e.Message)
	for _, f := range e.Frames {
		name := f.Name
		if name == "" {
			name = "script"
		}
		fmt.Fprintf(&b, "\n[Line %d] in %s", f.Line, name)
	}
	return b.String()
}

func runtimeErrorf(format string, args ...any) error {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// ExitError is raised by the `exit` native to unwind the interpreter with
// a specific process exit code, distinct from a RuntimeError: the driver
// should report it silently and exit(Code) rather than print a traceback.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }
