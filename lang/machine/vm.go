package machine

import (
	"fmt"
	"math"

	"github.com/archerlang/archer/lang/compiler"
)

// execute runs the dispatch loop until the outermost frame returns or a
// runtime error occurs. It is re-entered by resume() for a coroutine's own
// thread, and by th.run() for a thread's top-level program.
func (th *Thread) execute() (Value, error) {
	for {
		th.steps++
		if th.MaxSteps > 0 && th.steps > uint64(th.MaxSteps) {
			return nil, th.runtimeError("step limit exceeded")
		}

		fr := &th.frames[len(th.frames)-1]
		code := fr.closure.Fn.proto.Chunk.Code
		op := compiler.OpCode(code[fr.ip])
		fr.ip++

		switch op {
		case compiler.LOAD_CONSTANT:
			idx := int(code[fr.ip])
			fr.ip++
			th.push(th.constantValue(fr, idx))

		case compiler.LOAD_TRUE:
			th.push(Bool(true))
		case compiler.LOAD_FALSE:
			th.push(Bool(false))
		case compiler.LOAD_NIL:
			th.push(Nil{})

		case compiler.NOT_EQUAL, compiler.EQUAL:
			b := th.pop()
			a := th.pop()
			eq := valuesEqual(a, b)
			if op == compiler.NOT_EQUAL {
				eq = !eq
			}
			th.push(Bool(eq))

		case compiler.GREATER, compiler.GREATER_EQUAL, compiler.LESS, compiler.LESS_EQUAL:
			b, aok := th.peek(0).(Number)
			a, bok := th.peek(1).(Number)
			if !aok || !bok {
				return nil, th.runtimeError("Operands must be numbers")
			}
			th.pop()
			th.pop()
			var result bool
			switch op {
			case compiler.GREATER:
				result = a > b
			case compiler.GREATER_EQUAL:
				result = a >= b
			case compiler.LESS:
				result = a < b
			case compiler.LESS_EQUAL:
				result = a <= b
			}
			th.push(Bool(result))

		case compiler.NOT:
			th.push(Bool(!Truthy(th.pop())))

		case compiler.NEGATE:
			n, ok := th.peek(0).(Number)
			if !ok {
				return nil, th.runtimeError("operand must be a number")
			}
			th.pop()
			th.push(-n)

		case compiler.INC:
			n, ok := th.peek(0).(Number)
			if !ok {
				return nil, th.runtimeError("operand must be a number")
			}
			th.pop()
			th.push(n + 1)
		case compiler.DEC:
			n, ok := th.peek(0).(Number)
			if !ok {
				return nil, th.runtimeError("operand must be a number")
			}
			th.pop()
			th.push(n - 1)

		case compiler.ADD:
			b := th.peek(0)
			a := th.peek(1)
			sb, sbok := b.(*String)
			sa, saok := a.(*String)
			if saok && sbok {
				th.pop()
				th.pop()
				th.push(Intern(sa.Value + sb.Value))
				break
			}
			nb, nbok := b.(Number)
			na, naok := a.(Number)
			if naok && nbok {
				th.pop()
				th.pop()
				th.push(na + nb)
				break
			}
			return nil, th.runtimeError("Operands must be numbers")

		case compiler.SUBTRACT, compiler.MULTIPLY, compiler.DIVIDE, compiler.MODULO, compiler.POWER:
			b, bok := th.peek(0).(Number)
			a, aok := th.peek(1).(Number)
			if !aok || !bok {
				return nil, th.runtimeError("Operands must be numbers")
			}
			th.pop()
			th.pop()
			var z Number
			switch op {
			case compiler.SUBTRACT:
				z = a - b
			case compiler.MULTIPLY:
				z = a * b
			case compiler.DIVIDE:
				z = a / b
			case compiler.MODULO:
				z = Number(math.Mod(float64(a), float64(b)))
			case compiler.POWER:
				z = Number(math.Pow(float64(a), float64(b)))
			}
			th.push(z)

		case compiler.BITWISE_NOT:
			n, ok := th.peek(0).(Number)
			if !ok {
				return nil, th.runtimeError("operand must be a number")
			}
			th.pop()
			th.push(Number(^truncToInt64(n)))

		case compiler.BITWISE_AND, compiler.BITWISE_OR, compiler.BITWISE_XOR,
			compiler.LEFT_SHIFT, compiler.RIGHT_SHIFT:
			b, bok := th.peek(0).(Number)
			a, aok := th.peek(1).(Number)
			if !aok || !bok {
				return nil, th.runtimeError("Operands must be numbers")
			}
			th.pop()
			th.pop()
			x, y := truncToInt64(a), truncToInt64(b)
			var z int64
			switch op {
			case compiler.BITWISE_AND:
				z = x & y
			case compiler.BITWISE_OR:
				z = x | y
			case compiler.BITWISE_XOR:
				z = x ^ y
			case compiler.LEFT_SHIFT:
				z = x << uint(y)
			case compiler.RIGHT_SHIFT:
				z = x >> uint(y)
			}
			th.push(Number(z))

		case compiler.JUMP:
			fr.ip = int(th.readShort(fr))

		case compiler.JUMP_IF_FALSE:
			target := th.readShort(fr)
			if !Truthy(th.peek(0)) {
				fr.ip = int(target)
			}

		case compiler.POP_JUMP_IF_FALSE:
			target := th.readShort(fr)
			if !Truthy(th.pop()) {
				fr.ip = int(target)
			}

		case compiler.POP_JUMP_IF_EQUAL:
			target := th.readShort(fr)
			b := th.pop()
			a := th.pop()
			if valuesEqual(a, b) {
				fr.ip = int(target)
			}

		case compiler.JUMP_IF_NOT_NIL:
			target := th.readShort(fr)
			if _, isNil := th.peek(0).(Nil); !isNil {
				fr.ip = int(target)
			}

		case compiler.LOOP:
			fr.ip = int(th.readShort(fr))

		case compiler.ITER_INIT:
			iterable, ok := th.pop().(Iterable)
			if !ok {
				return nil, th.runtimeError("value is not iterable")
			}
			it := iterable.MakeIterator()
			// Pushed before Register so a collection this allocation
			// triggers already sees the iterator (and the source it keeps
			// alive) as a root.
			th.push(it)
			th.Register(it)

		case compiler.ITER_NEXT:
			target := th.readShort(fr)
			it := th.peek(0).(*Iterator)
			if v, ok := it.Next(); ok {
				th.push(v)
			} else {
				fr.ip = int(target)
			}

		case compiler.GET_GLOBAL:
			name := th.constantValue(fr, int(code[fr.ip])).(*String).Value
			fr.ip++
			v, ok := th.Globals[name]
			if !ok {
				return nil, th.runtimeError("undefined variable '%s'", name)
			}
			th.push(v)

		case compiler.SET_GLOBAL:
			name := th.constantValue(fr, int(code[fr.ip])).(*String).Value
			fr.ip++
			if _, ok := th.Globals[name]; !ok {
				return nil, th.runtimeError("undefined variable '%s'", name)
			}
			th.Globals[name] = th.peek(0)

		case compiler.DEFINE_GLOBAL:
			name := th.constantValue(fr, int(code[fr.ip])).(*String).Value
			fr.ip++
			th.Globals[name] = th.pop()

		case compiler.GET_LOCAL:
			slot := int(code[fr.ip])
			fr.ip++
			th.push(th.stack[fr.base+slot])

		case compiler.SET_LOCAL:
			slot := int(code[fr.ip])
			fr.ip++
			th.stack[fr.base+slot] = th.peek(0)

		case compiler.CALL:
			argc := int(code[fr.ip])
			fr.ip++
			callee := th.peek(argc)
			if n, ok := callee.(*Native); ok && n.isYield {
				values := append([]Value(nil), th.stack[len(th.stack)-argc:]...)
				th.stack = th.stack[:len(th.stack)-argc-1]
				return nil, &yieldSignal{values: values}
			}
			pushed, err := th.call(callee, argc)
			if err != nil {
				return nil, err
			}
			if pushed {
				continue // new frame now on top; re-enter loop to pick it up
			}

		case compiler.RETURN:
			result := th.pop()
			base := fr.base
			th.closeUpvalues(base)
			th.frames = th.frames[:len(th.frames)-1]
			th.stack = th.stack[:base]
			if len(th.frames) == 0 {
				return result, nil
			}
			th.push(result)

		case compiler.CLOSURE:
			idx := int(code[fr.ip])
			fr.ip++
			proto, _ := th.constantValue(fr, idx).(*Function)
			upvalues := make([]*Upvalue, proto.proto.UpvalueCount)
			for i := range upvalues {
				isLocal := code[fr.ip]
				index := int(code[fr.ip+1])
				fr.ip += 2
				if isLocal != 0 {
					upvalues[i] = th.captureUpvalue(fr.base + index)
				} else {
					upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			cl := newClosure(proto, upvalues)
			// Pushed before Register so a collection this allocation
			// triggers already sees the closure (and the Function it
			// references) as a root.
			th.push(cl)
			th.Register(proto)
			th.Register(cl)

		case compiler.CLOSE_UPVALUE:
			th.closeUpvalues(len(th.stack) - 1)
			th.pop()

		case compiler.LOAD_UPVALUE:
			idx := int(code[fr.ip])
			fr.ip++
			th.push(fr.closure.Upvalues[idx].get())

		case compiler.STORE_UPVALUE:
			idx := int(code[fr.ip])
			fr.ip++
			fr.closure.Upvalues[idx].set(th.peek(0))

		case compiler.CLASS:
			idx := int(code[fr.ip])
			fr.ip++
			name := th.constantValue(fr, idx).(*String).Value
			cls := NewClass(name)
			th.push(cls)
			th.Register(cls)

		case compiler.INHERIT:
			subclass, ok := th.peek(0).(*Class)
			if !ok {
				return nil, th.runtimeError("subclass must be a class")
			}
			superclass, ok := th.peek(1).(*Class)
			if !ok {
				return nil, th.runtimeError("superclass must be a class")
			}
			for n, m := range superclass.Methods {
				subclass.Methods[n] = m
			}
			for n, m := range superclass.Statics {
				subclass.Statics[n] = m
			}
			subclass.Super = superclass
			th.pop()

		case compiler.LOAD_PROPERTY, compiler.LOAD_PROPERTY_SAFE:
			idx := int(code[fr.ip])
			fr.ip++
			name := th.constantValue(fr, idx).(*String).Value
			obj := th.pop()
			if _, isNil := obj.(Nil); isNil && op == compiler.LOAD_PROPERTY_SAFE {
				th.push(Nil{})
				break
			}
			v, err := getField(obj, name)
			if err != nil {
				return nil, th.wrapError(err)
			}
			th.push(v)

		case compiler.STORE_PROPERTY, compiler.STORE_PROPERTY_SAFE:
			idx := int(code[fr.ip])
			fr.ip++
			name := th.constantValue(fr, idx).(*String).Value
			v := th.pop()
			obj := th.pop()
			if _, isNil := obj.(Nil); isNil && op == compiler.STORE_PROPERTY_SAFE {
				th.push(Nil{})
				break
			}
			if err := setField(obj, name, v); err != nil {
				return nil, th.wrapError(err)
			}
			th.push(v)

		case compiler.METHOD, compiler.STATIC_METHOD:
			idx := int(code[fr.ip])
			fr.ip++
			name := th.constantValue(fr, idx).(*String).Value
			closure := th.pop().(*Closure)
			cls := th.peek(0).(*Class)
			if op == compiler.METHOD {
				cls.Methods[name] = closure
			} else {
				cls.Statics[name] = closure
			}

		case compiler.INVOKE, compiler.INVOKE_SAFE:
			idx := int(code[fr.ip])
			argc := int(code[fr.ip+1])
			fr.ip += 2
			name := th.constantValue(fr, idx).(*String).Value
			pushed, err := th.invoke(name, argc, op == compiler.INVOKE_SAFE)
			if err != nil {
				return nil, err
			}
			if pushed {
				continue
			}

		case compiler.GET_SUPER:
			idx := int(code[fr.ip])
			fr.ip++
			name := th.constantValue(fr, idx).(*String).Value
			superclass := th.pop().(*Class)
			this := th.pop()
			method, ok := superclass.Methods[name]
			if !ok {
				return nil, th.runtimeError("undefined property '%s'", name)
			}
			bound := &BoundMethod{Receiver: this, Method: method}
			th.push(bound)
			th.Register(bound)

		case compiler.SUPER_INVOKE:
			idx := int(code[fr.ip])
			argc := int(code[fr.ip+1])
			fr.ip += 2
			name := th.constantValue(fr, idx).(*String).Value
			superclass, ok := th.pop().(*Class)
			if !ok {
				return nil, th.runtimeError("super must be a class")
			}
			method, ok := superclass.Methods[name]
			if !ok {
				return nil, th.runtimeError("undefined property '%s'", name)
			}
			pushed, err := th.call(&BoundMethod{Receiver: th.peek(argc), Method: method}, argc)
			if err != nil {
				return nil, err
			}
			if pushed {
				continue
			}

		case compiler.LOAD_SUBSCRIPT, compiler.LOAD_SUBSCRIPT_SAFE:
			key := th.pop()
			obj := th.pop()
			if _, isNil := obj.(Nil); isNil && op == compiler.LOAD_SUBSCRIPT_SAFE {
				th.push(Nil{})
				break
			}
			v, err := getIndex(obj, key)
			if err != nil {
				return nil, th.wrapError(err)
			}
			th.push(v)

		case compiler.STORE_SUBSCRIPT, compiler.STORE_SUBSCRIPT_SAFE:
			v := th.pop()
			key := th.pop()
			obj := th.pop()
			if _, isNil := obj.(Nil); isNil && op == compiler.STORE_SUBSCRIPT_SAFE {
				th.push(Nil{})
				break
			}
			if err := setIndex(obj, key, v); err != nil {
				return nil, th.wrapError(err)
			}
			th.push(v)

		case compiler.LIST:
			n := int(code[fr.ip])
			fr.ip++
			elems := append([]Value(nil), th.stack[len(th.stack)-n:]...)
			th.stack = th.stack[:len(th.stack)-n]
			l := NewList(elems)
			th.push(l)
			th.Register(l)

		case compiler.ARRAY:
			n := int(code[fr.ip])
			fr.ip++
			elems := append([]Value(nil), th.stack[len(th.stack)-n:]...)
			th.stack = th.stack[:len(th.stack)-n]
			a := NewArrayFrom(elems)
			th.push(a)
			th.Register(a)

		case compiler.MAP:
			n := int(code[fr.ip])
			fr.ip++
			m := NewMap(n)
			base := len(th.stack) - 2*n
			for i := 0; i < n; i++ {
				k := th.stack[base+2*i]
				v := th.stack[base+2*i+1]
				if err := m.SetIndex(k, v); err != nil {
					return nil, th.wrapError(err)
				}
			}
			th.stack = th.stack[:base]
			th.push(m)
			th.Register(m)

		case compiler.POP:
			th.pop()

		case compiler.DUP:
			th.push(th.peek(0))

		case compiler.DUP_TWO:
			a := th.peek(1)
			b := th.peek(0)
			th.push(a)
			th.push(b)

		case compiler.SWAP:
			n := len(th.stack)
			th.stack[n-1], th.stack[n-2] = th.stack[n-2], th.stack[n-1]

		case compiler.SWAP_THREE:
			n := len(th.stack)
			th.stack[n-2], th.stack[n-3] = th.stack[n-3], th.stack[n-2]

		case compiler.SWAP_FOUR:
			n := len(th.stack)
			a, b, c := th.stack[n-4], th.stack[n-3], th.stack[n-2]
			th.stack[n-4] = c
			th.stack[n-3] = a
			th.stack[n-2] = b

		case compiler.PRINT:
			fmt.Fprintln(th.stdout(), th.pop().String())

		case compiler.BUILD_STRING:
			n := int(code[fr.ip])
			fr.ip++
			var b []byte
			for _, v := range th.stack[len(th.stack)-n:] {
				b = append(b, v.String()...)
			}
			th.stack = th.stack[:len(th.stack)-n]
			th.push(Intern(string(b)))

		case compiler.IMPORT:
			idx := int(code[fr.ip])
			fr.ip++
			path := th.constantValue(fr, idx).(*String).Value
			v, err := th.importModule(path)
			if err != nil {
				return nil, th.wrapError(err)
			}
			th.push(v)

		default:
			return nil, th.runtimeError("unimplemented opcode %s", op)
		}
	}
}

func (th *Thread) readShort(fr *frame) uint16 {
	code := fr.closure.Fn.proto.Chunk.Code
	v := uint16(code[fr.ip]) | uint16(code[fr.ip+1])<<8
	fr.ip += 2
	return v
}

// wrapError promotes a plain runtimeErrorf error (no traceback yet) into a
// *RuntimeError carrying the current call stack, leaving an already-typed
// *RuntimeError (from a nested call) untouched.
func (th *Thread) wrapError(err error) error {
	if re, ok := err.(*RuntimeError); ok && len(re.Frames) > 0 {
		return err
	}
	return th.runtimeError("%s", err.Error())
}

// constantValue materializes the chunk constant at idx as a runtime Value,
// wrapping nested function prototypes and interning string literals.
func (th *Thread) constantValue(fr *frame, idx int) Value {
	raw := fr.closure.Fn.proto.Chunk.Constants[idx]
	switch c := raw.(type) {
	case float64:
		return Number(c)
	case string:
		return Intern(c)
	case bool:
		return Bool(c)
	case nil:
		return Nil{}
	case *compiler.Function:
		return newFunction(c, fr.closure.Fn.Module)
	default:
		panic(fmt.Sprintf("unexpected constant %T", raw))
	}
}

// valuesEqual implements the language's equality: numbers by IEEE value,
// strings by interned pointer identity (already the same as Go's == on a
// *String), everything else by reference/representation identity.
func valuesEqual(a, b Value) bool {
	switch a := a.(type) {
	case Number:
		b, ok := b.(Number)
		return ok && a == b
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case Nil:
		_, ok := b.(Nil)
		return ok
	default:
		return a == b
	}
}
