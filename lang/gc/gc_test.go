package gc_test

import (
	"testing"

	"github.com/archerlang/archer/lang/gc"
	"github.com/stretchr/testify/require"
)

// fakeObject is a minimal gc.Object with an optional reference to another
// object, letting tests build small reachability graphs.
type fakeObject struct {
	gc.Header
	name  string
	ref   gc.Object
	freed bool
}

func (f *fakeObject) Trace(mark func(gc.Object)) {
	if f.ref != nil {
		mark(f.ref)
	}
}

func (f *fakeObject) Free() { f.freed = true }
func (f *fakeObject) Size() int { return 16 }

func TestCollectSweepsUnreachable(t *testing.T) {
	c := gc.New()
	var root *fakeObject
	c.Roots = func(mark func(gc.Object)) {
		if root != nil {
			mark(root)
		}
	}

	kept := &fakeObject{name: "kept"}
	dropped := &fakeObject{name: "dropped"}
	root = kept
	c.Register(kept)
	c.Register(dropped)

	c.Collect()

	require.False(t, kept.freed, "reachable object must survive a collection")
	require.True(t, dropped.freed, "unreachable object must be swept")
}

func TestCollectTracesReferences(t *testing.T) {
	c := gc.New()
	child := &fakeObject{name: "child"}
	parent := &fakeObject{name: "parent", ref: child}
	c.Roots = func(mark func(gc.Object)) { mark(parent) }

	c.Register(parent)
	c.Register(child)
	c.Collect()

	require.False(t, parent.freed)
	require.False(t, child.freed, "object reachable only via Trace must survive")
}

// TestRegisterIdempotent guards against the objects list being corrupted by
// registering the same object twice, which previously orphaned whatever had
// been linked in between the two calls.
func TestRegisterIdempotent(t *testing.T) {
	c := gc.New()
	a := &fakeObject{name: "a"}
	b := &fakeObject{name: "b"}
	all := []*fakeObject{a, b}
	c.Roots = func(mark func(gc.Object)) {
		for _, o := range all {
			mark(o)
		}
	}

	c.Register(a)
	c.Register(b)
	// Re-registering a (as Intern + a native call site both attempting to
	// register the same interned value would do) must not relink it ahead
	// of b and drop b from the list.
	c.Register(a)

	c.Collect()
	require.False(t, a.freed)
	require.False(t, b.freed, "registering a twice must not orphan b from the objects list")
}

func TestStressModeCollectsOnEveryAllocation(t *testing.T) {
	c := gc.New()
	c.SetStressMode(true)

	var collected int
	c.Roots = func(mark func(gc.Object)) {}
	o1 := &fakeObject{}
	c.Register(o1)
	_, _, n := c.Stats()
	collected = n
	require.Equal(t, 1, collected)

	o2 := &fakeObject{}
	c.Register(o2)
	_, _, n = c.Stats()
	require.Equal(t, 2, n)
}

func TestSweepInternsRunsBetweenTraceAndSweep(t *testing.T) {
	c := gc.New()
	o := &fakeObject{}
	c.Roots = func(mark func(gc.Object)) {}

	var swept bool
	c.SweepInterns = func() { swept = true }

	c.Register(o)
	c.Collect()

	require.True(t, swept)
	require.True(t, o.freed)
}
