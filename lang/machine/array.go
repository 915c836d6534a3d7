package machine

import (
	"strings"

	"github.com/archerlang/archer/lang/gc"
)

// Array is a fixed-length container, created from Go with NewArray or
// NewArrayFrom: indexable, never grown or shrunk. Script source has no
// array literal and no Array global, and arrays do not support slicing.
type Array struct {
	gc.Header
	elems []Value
}

// NewArray returns an array of the given length, every slot initialized to
// Nil{}.
func NewArray(length int) *Array {
	elems := make([]Value, length)
	for i := range elems {
		elems[i] = Nil{}
	}
	return &Array{elems: elems}
}

// NewArrayFrom wraps an existing slice as an array literal's value.
// Callers must not modify elems afterwards.
func NewArrayFrom(elems []Value) *Array { return &Array{elems: elems} }

func (a *Array) Type() string { return "array" }

func (a *Array) String() string {
	var b strings.Builder
	b.WriteString("array(")
	for i, e := range a.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (a *Array) Len() int  { return len(a.elems) }
func (a *Array) Size() int { return 24 + 8*len(a.elems) }
func (a *Array) Free()     { a.elems = nil }

func (a *Array) Trace(mark func(gc.Object)) {
	for _, e := range a.elems {
		markValue(e, mark)
	}
}

func (a *Array) GetIndex(key Value) (Value, error) {
	i, err := indexOf(key, len(a.elems))
	if err != nil {
		return nil, err
	}
	return a.elems[i], nil
}

func (a *Array) SetIndex(key Value, v Value) error {
	i, err := indexOf(key, len(a.elems))
	if err != nil {
		return err
	}
	a.elems[i] = v
	return nil
}

func (a *Array) GetField(name string) (Value, bool) {
	if name == "length" {
		return NewNative(name, 0, func(*Thread, []Value) (Value, error) {
			return Number(a.Len()), nil
		}), true
	}
	return nil, false
}

func (a *Array) MakeIterator() *Iterator {
	i := 0
	return &Iterator{source: a, next: func() (Value, bool) {
		if i >= len(a.elems) {
			return nil, false
		}
		v := a.elems[i]
		i++
		return v, true
	}}
}
