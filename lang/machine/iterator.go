package machine

import "github.com/archerlang/archer/lang/gc"

// Iterator is the runtime value produced by an Iterable's MakeIterator and
// driven by the interpreter's ITER_NEXT opcode. ITER_INIT leaves it sitting
// in a hidden local slot on the value stack for the duration of the loop,
// so it is itself a heap object: it keeps source alive for tracing even
// though the stack no longer holds the original iterable once ITER_INIT
// has consumed it.
type Iterator struct {
	gc.Header
	source Value
	next   func() (Value, bool)
}

func (it *Iterator) String() string { return "<iterator>" }
func (it *Iterator) Type() string   { return "iterator" }
func (it *Iterator) Size() int      { return 32 }

func (it *Iterator) Trace(mark func(gc.Object)) { markValue(it.source, mark) }
func (it *Iterator) Free()                      { it.next = nil; it.source = nil }

// Next advances the iterator, returning the next element and true, or a
// zero Value and false once exhausted.
func (it *Iterator) Next() (Value, bool) { return it.next() }

// MakeIterator returns it itself, so an Iterator produced directly by a
// native (range's *Iterator) satisfies Iterable the same as a List, Array
// or Map and can be driven by ITER_INIT without an intermediate wrapper.
func (it *Iterator) MakeIterator() *Iterator { return it }

// NewCountIterator returns an iterator over 0..n-1, the value the `range`
// native hands to `for x in range(n)`. It has no source collection to keep
// alive, unlike List/Array/Map's iterators.
func NewCountIterator(n int) *Iterator {
	i := 0
	return &Iterator{next: func() (Value, bool) {
		if i >= n {
			return nil, false
		}
		v := Number(i)
		i++
		return v, true
	}}
}
