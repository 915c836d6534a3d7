package machine

import "github.com/archerlang/archer/lang/gc"

// TypeObject is the runtime value bound to a built-in type's global name,
// exposing its static natives as attributes so script code can write
// `Coroutine.create(fn)`. lang/stdlib binds only Coroutine this way; no
// String or Array global is installed. Grounded on the teacher's
// registration of built-in type names as globals (spec.md 4.6).
type TypeObject struct {
	gc.Header
	name    string
	statics map[string]Value
}

// NewTypeObject returns a TypeObject named name with the given static
// attributes (typically *Native values).
func NewTypeObject(name string, statics map[string]Value) *TypeObject {
	return &TypeObject{name: name, statics: statics}
}

func (t *TypeObject) String() string { return "<type " + t.name + ">" }
func (t *TypeObject) Type() string   { return "type" }
func (t *TypeObject) Size() int      { return 32 + 16*len(t.statics) }

func (t *TypeObject) GetField(name string) (Value, bool) {
	v, ok := t.statics[name]
	return v, ok
}

func (t *TypeObject) Trace(mark func(gc.Object)) {
	for _, v := range t.statics {
		markValue(v, mark)
	}
}

func (t *TypeObject) Free() { t.statics = nil }
