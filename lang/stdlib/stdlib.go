// Package stdlib installs the language's built-in globals (clock, abs, pow,
// typeof, and the rest of the natives spec.md and its coroutine extension
// call for) into a freshly created machine.Thread, the way a host program
// wires up the interpreter before running a script.
package stdlib

import (
	"bufio"
	"fmt"
	"math"
	"time"

	"github.com/archerlang/archer/lang/machine"
)

// Install binds every built-in name this implementation defines into th's
// global table. A host embedding the interpreter calls this once per
// Thread, before RunFunction.
func Install(th *machine.Thread) {
	for name, fn := range natives {
		th.Globals[name] = machine.NewNative(name, fn.arity, fn.body)
	}
	th.Globals["yield"] = machine.YieldNative()
	th.Globals["resume"] = machine.NewNative("resume", -1, resumeNative)
	th.Globals["Coroutine"] = machine.NewTypeObject("Coroutine", map[string]machine.Value{
		"create": machine.NewNative("create", 1, coroutineCreateNative),
	})
}

type native struct {
	arity int
	body  machine.NativeFunc
}

var natives = map[string]native{
	"clock":  {0, clockNative},
	"abs":    {1, absNative},
	"pow":    {2, powNative},
	"typeof": {1, typeofNative},
	"str":    {1, strNative},
	"len":    {1, lenNative},
	"min":    {2, minNative},
	"max":    {2, maxNative},
	"range":  {1, rangeNative},
	"input":  {0, inputNative},
	"exit":   {1, exitNative},
}

func clockNative(*machine.Thread, []machine.Value) (machine.Value, error) {
	return machine.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

func absNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	n, ok := args[0].(machine.Number)
	if !ok {
		return nil, fmt.Errorf("abs() expects a number")
	}
	return machine.Number(math.Abs(float64(n))), nil
}

func powNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	base, ok1 := args[0].(machine.Number)
	exp, ok2 := args[1].(machine.Number)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("pow() expects two numbers")
	}
	return machine.Number(math.Pow(float64(base), float64(exp))), nil
}

func typeofNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	return machine.Intern(args[0].Type()), nil
}

func strNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	return machine.Intern(args[0].String()), nil
}

func lenNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	type lengther interface{ Len() int }
	l, ok := args[0].(lengther)
	if !ok {
		return nil, fmt.Errorf("len() expects a list, array, map or string")
	}
	return machine.Number(l.Len()), nil
}

func minNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	a, ok1 := args[0].(machine.Number)
	b, ok2 := args[1].(machine.Number)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("min() expects two numbers")
	}
	if a < b {
		return a, nil
	}
	return b, nil
}

func maxNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	a, ok1 := args[0].(machine.Number)
	b, ok2 := args[1].(machine.Number)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("max() expects two numbers")
	}
	if a > b {
		return a, nil
	}
	return b, nil
}

// rangeNative returns an iterator over 0..n-1, grounded on the language's
// `for x in range(n)` surface form.
func rangeNative(th *machine.Thread, args []machine.Value) (machine.Value, error) {
	n, ok := args[0].(machine.Number)
	if !ok {
		return nil, fmt.Errorf("range() expects a number")
	}
	return machine.NewCountIterator(int(n)), nil
}

// coroutineCreateNative is Coroutine.create(fn): wraps a closure as a
// suspended coroutine without running any of its body yet.
func coroutineCreateNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	cl, ok := args[0].(*machine.Closure)
	if !ok {
		return nil, fmt.Errorf("Coroutine.create() expects a function")
	}
	return machine.NewCoroutine(cl), nil
}

// resumeNative is resume(co, ...): transfers control into co until it
// yields, returns or errors, reporting its yielded/returned values as a
// list and whether it is now dead via co.status.
func resumeNative(th *machine.Thread, args []machine.Value) (machine.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("resume() expects a coroutine")
	}
	co, ok := args[0].(*machine.Coroutine)
	if !ok {
		return nil, fmt.Errorf("resume() expects a coroutine")
	}
	values, _, err := th.Resume(co, args[1:])
	if err != nil {
		return nil, err
	}
	return machine.NewList(values), nil
}

func inputNative(th *machine.Thread, _ []machine.Value) (machine.Value, error) {
	scanner := bufio.NewScanner(th.StdinReader())
	if !scanner.Scan() {
		return machine.Nil{}, nil
	}
	return machine.Intern(scanner.Text()), nil
}

func exitNative(_ *machine.Thread, args []machine.Value) (machine.Value, error) {
	n, _ := args[0].(machine.Number)
	return nil, &machine.ExitError{Code: int(n)}
}
