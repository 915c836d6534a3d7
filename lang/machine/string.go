package machine

import (
	"hash/fnv"

	"github.com/dolthub/swiss"

	"github.com/archerlang/archer/lang/gc"
)

// String is an interned, immutable heap string. Two String objects with the
// same contents are always the same pointer, so equality is pointer
// identity.
type String struct {
	leafObject
	Value string
	hash  uint32
}

func (s *String) String() string { return s.Value }
func (s *String) Type() string   { return "string" }
func (s *String) Hash() uint32   { return s.hash }

// Size reports String's approximate heap footprint, used to drive the
// collector's allocation threshold.
func (s *String) Size() int { return 32 + len(s.Value) }

// Len reports the string's length in runes, matching GetIndex's indexing.
func (s *String) Len() int { return len([]rune(s.Value)) }

func (s *String) GetIndex(key Value) (Value, error) {
	n, ok := key.(Number)
	if !ok {
		return nil, runtimeErrorf("string index must be a number")
	}
	runes := []rune(s.Value)
	i := int(n)
	if i < 0 {
		i += len(runes)
	}
	if i < 0 || i >= len(runes) {
		return nil, runtimeErrorf("string index out of range")
	}
	return internTableInstance.intern(string(runes[i])), nil
}

// internTable is the shared intern pool for every String allocated by the
// running process. Interning means string equality is pointer comparison
// and every literal/concatenation result funnels through the same table.
type internTable struct {
	strings   *swiss.Map[string, *String]
	collector *gc.Collector
}

var internTableInstance = &internTable{strings: swiss.NewMap[string, *String](256)}

// attach registers the collector that newly interned strings should be
// accounted against, and wires sweepDeadInterns as its intern-table sweep
// hook. Called once when a Thread's Collector is constructed.
func (t *internTable) attach(c *gc.Collector) {
	t.collector = c
	c.SweepInterns = sweepDeadInterns
}

func (t *internTable) intern(s string) *String {
	if v, ok := t.strings.Get(s); ok {
		return v
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	str := &String{Value: s, hash: h.Sum32()}
	t.strings.Put(s, str)
	if t.collector != nil {
		t.collector.Register(str)
	}
	return str
}

// Intern returns the canonical *String for s, allocating it on first use.
func Intern(s string) *String { return internTableInstance.intern(s) }

// AttachCollector wires the intern table to the given collector so future
// interned strings are tracked and swept. Safe to call for every new
// Thread; later calls simply repoint the hook at the new collector.
func AttachCollector(c *gc.Collector) { internTableInstance.attach(c) }

// sweepDeadInterns removes every interned string whose mark bit is clear,
// called between the collector's trace and sweep phases so the subsequent
// sweep is free to reclaim them. The intern table itself is a weak map: it
// must not keep strings alive past their last external reference.
func sweepDeadInterns() {
	var dead []string
	it := internTableInstance.strings.Iterator()
	for it.Next() {
		k, v := it.Pair()
		if !v.Marked() {
			dead = append(dead, k)
		}
	}
	for _, k := range dead {
		internTableInstance.strings.Delete(k)
	}
}
