package machine

import (
	"strings"

	"github.com/dolthub/swiss"

	"github.com/archerlang/archer/lang/gc"
)

// Map is a hash table keyed by any Hashable value. Keys compare by the
// same identity rule as the language's equality operator (interned
// pointer identity for strings, value equality for numbers and booleans),
// which is exactly Go's native interface equality for this value set, so
// the backing swiss.Map is keyed on Value directly.
type Map struct {
	gc.Header
	entries *swiss.Map[Value, Value]
}

func NewMap(size int) *Map {
	if size < 1 {
		size = 1
	}
	return &Map{entries: swiss.NewMap[Value, Value](uint32(size))}
}

func (m *Map) Type() string { return "map" }

// each walks every key/value pair currently in the map.
func (m *Map) each(f func(k, v Value)) {
	it := m.entries.Iterator()
	for it.Next() {
		k, v := it.Pair()
		f(k, v)
	}
}

func (m *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	m.each(func(k, v Value) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k.String())
		b.WriteString(": ")
		b.WriteString(v.String())
	})
	b.WriteByte('}')
	return b.String()
}

func (m *Map) Len() int  { return m.entries.Count() }
func (m *Map) Size() int { return 48 + 32*m.entries.Count() }

func (m *Map) Free() { m.entries = nil }

func (m *Map) Trace(mark func(gc.Object)) {
	m.each(func(k, v Value) {
		markValue(k, mark)
		markValue(v, mark)
	})
}

func asMapKey(key Value) (Value, error) {
	if _, ok := key.(Hashable); !ok {
		return nil, runtimeErrorf("unhashable type used as map key: %s", key.Type())
	}
	return key, nil
}

func (m *Map) GetIndex(key Value) (Value, error) {
	k, err := asMapKey(key)
	if err != nil {
		return nil, err
	}
	v, ok := m.entries.Get(k)
	if !ok {
		return nil, runtimeErrorf("key not found: %s", key.String())
	}
	return v, nil
}

func (m *Map) SetIndex(key Value, v Value) error {
	k, err := asMapKey(key)
	if err != nil {
		return err
	}
	m.entries.Put(k, v)
	return nil
}

func (m *Map) IsEmpty() bool { return m.entries.Count() == 0 }

func (m *Map) ContainsKey(key Value) bool {
	k, err := asMapKey(key)
	if err != nil {
		return false
	}
	_, ok := m.entries.Get(k)
	return ok
}

func (m *Map) GetOrDefault(key, def Value) Value {
	k, err := asMapKey(key)
	if err != nil {
		return def
	}
	if v, ok := m.entries.Get(k); ok {
		return v
	}
	return def
}

func (m *Map) PutIfAbsent(key, v Value) error {
	k, err := asMapKey(key)
	if err != nil {
		return err
	}
	if _, ok := m.entries.Get(k); !ok {
		m.entries.Put(k, v)
	}
	return nil
}

func (m *Map) PutAll(other *Map) {
	other.each(func(k, v Value) { m.entries.Put(k, v) })
}

func (m *Map) Remove(key Value) (Value, bool) {
	k, err := asMapKey(key)
	if err != nil {
		return nil, false
	}
	v, ok := m.entries.Get(k)
	if ok {
		m.entries.Delete(k)
	}
	return v, ok
}

func (m *Map) Clear() { m.entries = swiss.NewMap[Value, Value](1) }

// GetField exposes Map's instance methods (length, isEmpty, containsKey,
// getOrDefault, putIfAbsent, putAll, remove, clear) through the same
// fused INVOKE path as any other `.name(...)` call.
func (m *Map) GetField(name string) (Value, bool) {
	switch name {
	case "length":
		return NewNative(name, 0, func(*Thread, []Value) (Value, error) {
			return Number(m.Len()), nil
		}), true
	case "isEmpty":
		return NewNative(name, 0, func(*Thread, []Value) (Value, error) {
			return Bool(m.IsEmpty()), nil
		}), true
	case "containsKey":
		return NewNative(name, 1, func(_ *Thread, args []Value) (Value, error) {
			return Bool(m.ContainsKey(args[0])), nil
		}), true
	case "getOrDefault":
		return NewNative(name, 2, func(_ *Thread, args []Value) (Value, error) {
			return m.GetOrDefault(args[0], args[1]), nil
		}), true
	case "putIfAbsent":
		return NewNative(name, 2, func(_ *Thread, args []Value) (Value, error) {
			return Nil{}, m.PutIfAbsent(args[0], args[1])
		}), true
	case "putAll":
		return NewNative(name, 1, func(_ *Thread, args []Value) (Value, error) {
			other, ok := args[0].(*Map)
			if !ok {
				return nil, runtimeErrorf("putAll expects a map")
			}
			m.PutAll(other)
			return Nil{}, nil
		}), true
	case "remove":
		return NewNative(name, 1, func(_ *Thread, args []Value) (Value, error) {
			v, ok := m.Remove(args[0])
			if !ok {
				return Nil{}, nil
			}
			return v, nil
		}), true
	case "clear":
		return NewNative(name, 0, func(*Thread, []Value) (Value, error) {
			m.Clear()
			return Nil{}, nil
		}), true
	}
	return nil, false
}

func (m *Map) MakeIterator() *Iterator {
	var keys []Value
	m.each(func(k, v Value) { keys = append(keys, k) })
	i := 0
	return &Iterator{source: m, next: func() (Value, bool) {
		if i >= len(keys) {
			return nil, false
		}
		k := keys[i]
		i++
		return k, true
	}}
}
