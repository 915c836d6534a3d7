// Package gc implements a precise, non-moving, tri-color mark-sweep
// collector. It has no notion of the language's value model: it manages
// anything that satisfies Object, and the machine package supplies roots
// and traversal for its own heap types. Go's runtime allocator and garbage
// collector remain underneath it; this package's bookkeeping decides when
// an object is logically dead and unlinks it (zeroing out whatever
// references Free chooses to drop) so Go's collector can reclaim the
// backing memory. It mirrors the collection algorithm a native VM would
// implement over raw memory, adapted to run as bookkeeping on top of a
// managed runtime instead of beneath one.
package gc

// Object is implemented by every heap value the collector manages.
type Object interface {
	marked() bool
	setMarked(bool)
	next() Object
	setNext(Object)
	registered() bool
	setRegistered(bool)

	// Trace calls mark for every Object this object directly references.
	Trace(mark func(Object))
	// Free releases resources held directly by the object other than
	// references to further Objects, which the collector already
	// reaches via Trace. Typically this means dropping those
	// references so Go's own collector can reclaim them.
	Free()
	// Size reports the object's approximate heap footprint in bytes,
	// used to drive the allocation threshold.
	Size() int
}

// Header is embedded in every heap object to provide the collector's
// mark bit and intrusive linked-list pointer.
type Header struct {
	isMarked   bool
	nextObj    Object
	isRegistered bool
}

func (h *Header) marked() bool       { return h.isMarked }
func (h *Header) setMarked(m bool)   { h.isMarked = m }
func (h *Header) next() Object       { return h.nextObj }
func (h *Header) setNext(o Object)   { h.nextObj = o }
func (h *Header) registered() bool   { return h.isRegistered }
func (h *Header) setRegistered(r bool) { h.isRegistered = r }

// Marked reports whether the object survived the most recent trace phase.
// Exported so weak structures outside this package (a string intern table,
// a module cache) can decide what to drop between trace and sweep.
func (h *Header) Marked() bool { return h.isMarked }

const defaultThreshold = 1 << 20 // 1 MiB, per the collector's initial threshold

// Collector is a tri-color mark-sweep garbage collector triggered from the
// allocator whenever bytesAllocated exceeds threshold.
type Collector struct {
	bytesAllocated int64
	threshold      int64
	objects        Object
	stress         bool

	// Roots enumerates every live reference reachable without going
	// through the heap: stack slots, frames, open upvalues, globals,
	// intern-table values, compiler constants, and so on. It is set once
	// by the owning Thread before any allocation occurs.
	Roots func(mark func(Object))

	// SweepInterns, if set, runs between the trace and sweep phases to
	// drop dead entries from a weak table (the string intern table)
	// whose keys would otherwise keep every string alive forever.
	SweepInterns func()

	collections int
}

// New returns a collector with the standard 1 MiB initial threshold.
func New() *Collector {
	return &Collector{threshold: defaultThreshold}
}

// SetStressMode forces a collection on every single allocation, for
// exercising GC bugs that only manifest under heavy collection pressure.
func (c *Collector) SetStressMode(on bool) { c.stress = on }

// Stats returns the collector's current bookkeeping, for diagnostics.
func (c *Collector) Stats() (bytesAllocated, threshold int64, collections int) {
	return c.bytesAllocated, c.threshold, c.collections
}

// Register links a newly allocated object into the collector and accounts
// for its size, triggering a collection if the threshold (or stress mode)
// demands it. Idempotent: registering an already-registered object (for
// instance a string handed back by an intern table that registered it
// itself) is a no-op, since relinking it would corrupt the objects list.
func (c *Collector) Register(o Object) {
	if o.registered() {
		return
	}
	o.setRegistered(true)
	o.setNext(c.objects)
	c.objects = o
	c.bytesAllocated += int64(o.Size())
	if c.stress || c.bytesAllocated > c.threshold {
		c.Collect()
	}
}

// Collect runs one full mark-sweep cycle.
func (c *Collector) Collect() {
	c.collections++
	if c.Roots == nil {
		return
	}

	var gray []Object
	mark := func(o Object) {
		if o == nil || o.marked() {
			return
		}
		o.setMarked(true)
		gray = append(gray, o)
	}

	c.Roots(mark)
	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		o.Trace(mark)
	}

	if c.SweepInterns != nil {
		c.SweepInterns()
	}

	var prev Object
	cur := c.objects
	for cur != nil {
		next := cur.next()
		if cur.marked() {
			cur.setMarked(false)
			prev = cur
		} else {
			if prev == nil {
				c.objects = next
			} else {
				prev.setNext(next)
			}
			c.bytesAllocated -= int64(cur.Size())
			cur.Free()
		}
		cur = next
	}

	c.threshold = c.bytesAllocated * 2
	if c.threshold < defaultThreshold {
		c.threshold = defaultThreshold
	}
}
