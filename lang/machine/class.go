package machine

import (
	"fmt"

	"github.com/archerlang/archer/lang/gc"
)

// Class is a runtime class object: a name and a method table keyed by
// interned name. INHERIT copies the superclass's method table into the
// subclass at class-creation time and records the superclass in Super;
// method lookup never walks Super, since the methods are already flattened.
// super-dispatch instead goes through the hidden "super" local or upvalue
// captured at each method's definition site.
type Class struct {
	gc.Header
	Name    string
	Methods map[string]*Closure
	Statics map[string]*Closure
	Super   *Class // kept for reflection/diagnostics; methods are already flattened
}

func NewClass(name string) *Class {
	return &Class{Name: name, Methods: map[string]*Closure{}, Statics: map[string]*Closure{}}
}

func (c *Class) Type() string   { return "class" }
func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (c *Class) Size() int      { return 48 + 16*(len(c.Methods)+len(c.Statics)) }

func (c *Class) Trace(mark func(gc.Object)) {
	for _, m := range c.Methods {
		mark(m)
	}
	for _, m := range c.Statics {
		mark(m)
	}
	if c.Super != nil {
		mark(c.Super)
	}
}

func (c *Class) Free() { c.Methods = nil; c.Statics = nil }

// Arity reports the constructor's arity: init's, if defined, else zero.
func (c *Class) Arity() int {
	if init, ok := c.Methods["init"]; ok {
		return init.Arity()
	}
	return 0
}

// GetField resolves a static method or class-level attribute, consulted
// when a class value itself (not an instance) is the receiver of `.`.
func (c *Class) GetField(name string) (Value, bool) {
	if m, ok := c.Statics[name]; ok {
		return m, true
	}
	return nil, false
}

// Instance is an object created by calling a Class.
type Instance struct {
	gc.Header
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: map[string]Value{}}
}

func (i *Instance) Type() string   { return "instance" }
func (i *Instance) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name) }
func (i *Instance) Size() int      { return 32 + 16*len(i.Fields) }

func (i *Instance) Trace(mark func(gc.Object)) {
	mark(i.Class)
	for _, v := range i.Fields {
		markValue(v, mark)
	}
}

func (i *Instance) Free() { i.Fields = nil }

func (i *Instance) GetField(name string) (Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	if m, ok := i.Class.Methods[name]; ok {
		return &BoundMethod{Receiver: i, Method: m}, true
	}
	return nil, false
}

func (i *Instance) SetField(name string, v Value) error {
	i.Fields[name] = v
	return nil
}

// BoundMethod fuses a closure with the receiver it was accessed through,
// so calling it implicitly supplies `this`.
type BoundMethod struct {
	gc.Header
	Receiver Value
	Method   *Closure
}

func (b *BoundMethod) Type() string   { return "bound method" }
func (b *BoundMethod) String() string { return b.Method.String() }
func (b *BoundMethod) Arity() int     { return b.Method.Arity() }
func (b *BoundMethod) Size() int      { return 32 }

func (b *BoundMethod) Trace(mark func(gc.Object)) {
	markValue(b.Receiver, mark)
	mark(b.Method)
}

func (b *BoundMethod) Free() { b.Receiver = nil; b.Method = nil }
