// Package machine implements the runtime value model, heap objects and the
// bytecode interpreter loop that executes compiler.Chunk programs.
package machine

// Value is the interface implemented by every value the machine can put on
// its stack or store in a variable: nil, booleans, numbers, and every
// heap-allocated Object.
type Value interface {
	String() string
	Type() string
}

// Truthy reports whether v is true in a boolean context. Only nil and the
// boolean false are falsey; every other value, including 0 and the empty
// string, is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Hashable is implemented by values usable as Map keys.
type Hashable interface {
	Value
	Hash() uint32
}

// Attributable is a value with named fields or methods readable by `x.name`.
type Attributable interface {
	Value
	GetField(name string) (Value, bool)
}

// SettableFields is an Attributable value whose fields may be assigned by
// `x.name = v`.
type SettableFields interface {
	Attributable
	SetField(name string, v Value) error
}

// Subscriptable is a value indexable by `x[k]`.
type Subscriptable interface {
	Value
	GetIndex(key Value) (Value, error)
}

// SettableIndex is a Subscriptable value whose elements may be assigned by
// `x[k] = v`.
type SettableIndex interface {
	Subscriptable
	SetIndex(key Value, v Value) error
}

// Iterable values can be driven by the iterator-form `for`.
type Iterable interface {
	Value
	MakeIterator() *Iterator
}

// Callable is any value that may appear as the callee of a CALL instruction.
type Callable interface {
	Value
	Arity() int
}
