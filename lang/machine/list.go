package machine

import (
	"strings"

	"github.com/archerlang/archer/lang/gc"
)

// List is a growable, mutable sequence. Array (see array.go) is its
// fixed-length sibling: both are heap objects sharing this file's bounds
// checking (indexOf); each formats itself.
type List struct {
	gc.Header
	elems []Value
}

func NewList(elems []Value) *List { return &List{elems: elems} }

func (l *List) Type() string { return "list" }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

func (l *List) Len() int { return len(l.elems) }

func (l *List) Size() int { return 24 + 8*cap(l.elems) }

func (l *List) Trace(mark func(gc.Object)) {
	for _, e := range l.elems {
		markValue(e, mark)
	}
}

func (l *List) Free() { l.elems = nil }

func (l *List) GetIndex(key Value) (Value, error) {
	i, err := indexOf(key, len(l.elems))
	if err != nil {
		return nil, err
	}
	return l.elems[i], nil
}

func (l *List) SetIndex(key Value, v Value) error {
	i, err := indexOf(key, len(l.elems))
	if err != nil {
		return err
	}
	l.elems[i] = v
	return nil
}

func (l *List) MakeIterator() *Iterator {
	i := 0
	return &Iterator{source: l, next: func() (Value, bool) {
		if i >= len(l.elems) {
			return nil, false
		}
		v := l.elems[i]
		i++
		return v, true
	}}
}

func (l *List) Add(v Value) { l.elems = append(l.elems, v) }

func (l *List) RemoveAt(i int) (Value, error) {
	if i < 0 || i >= len(l.elems) {
		return nil, runtimeErrorf("list index out of range")
	}
	v := l.elems[i]
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
	return v, nil
}

func (l *List) Clear() { l.elems = l.elems[:0] }

// GetField exposes List's instance methods the same way a class exposes
// methods, so `list.add(x)` dispatches through the compiler's fused
// INVOKE path like any other `.name(...)` call.
func (l *List) GetField(name string) (Value, bool) {
	switch name {
	case "length":
		return NewNative(name, 0, func(*Thread, []Value) (Value, error) {
			return Number(l.Len()), nil
		}), true
	case "add":
		return NewNative(name, 1, func(_ *Thread, args []Value) (Value, error) {
			l.Add(args[0])
			return Nil{}, nil
		}), true
	case "removeAt":
		return NewNative(name, 1, func(th *Thread, args []Value) (Value, error) {
			n, ok := args[0].(Number)
			if !ok {
				return nil, runtimeErrorf("removeAt expects a number")
			}
			return l.RemoveAt(int(n))
		}), true
	case "clear":
		return NewNative(name, 0, func(*Thread, []Value) (Value, error) {
			l.Clear()
			return Nil{}, nil
		}), true
	}
	return nil, false
}

// indexOf resolves a subscript key to a bounds-checked slice index,
// supporting Python-style negative indices from the end.
func indexOf(key Value, length int) (int, error) {
	n, ok := key.(Number)
	if !ok {
		return 0, runtimeErrorf("index must be a number")
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, runtimeErrorf("index out of range")
	}
	return i, nil
}
