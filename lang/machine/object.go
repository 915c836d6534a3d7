package machine

import "github.com/archerlang/archer/lang/gc"

// Nil is the machine's nil value.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Bool is the machine's boolean value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// leafObject is embedded by heap objects with no outgoing references
// (strings, natives): Trace is a no-op and there is nothing extra to Free.
type leafObject struct{ gc.Header }

func (leafObject) Trace(func(gc.Object)) {}
func (leafObject) Free()                 {}

// markValue marks v with the collector's mark function if v is itself a
// heap object; numbers, booleans and nil carry no further references.
func markValue(v Value, mark func(gc.Object)) {
	if o, ok := v.(gc.Object); ok {
		mark(o)
	}
}
