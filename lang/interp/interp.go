// Package interp wires the scanner, parser, compiler and machine together
// into the single entry point a host (the CLI, a future embedder) calls to
// run a script: scan, parse, compile, execute, and translate whatever goes
// wrong into one of a small set of exit statuses.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/archerlang/archer/lang/ast"
	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/machine"
	"github.com/archerlang/archer/lang/parser"
	"github.com/archerlang/archer/lang/stdlib"
)

// Status is the outcome of running a program, mirroring the four results
// a host needs to pick an exit code for.
type Status int

const (
	OK Status = iota
	CompileError
	RuntimeError
	Exited // the script called exit(n); see ExitCode
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case CompileError:
		return "COMPILE_ERROR"
	case RuntimeError:
		return "RUNTIME_ERROR"
	case Exited:
		return "EXITED"
	default:
		return "UNKNOWN"
	}
}

// Interpreter owns one machine.Thread and its globals, surviving across
// repeated Run calls so a REPL session accumulates state the way
// top-level `var`/`fun`/`class` bindings are expected to.
type Interpreter struct {
	Thread *machine.Thread

	// Debug, if set, disassembles and prints every compiled chunk to the
	// thread's Stderr before running it.
	Debug bool
}

// New returns an Interpreter with its standard library installed and,
// unless resolver is nil, `import` statements wired to resolve modules
// through it.
func New(name string, resolver func(th *machine.Thread, moduleName string) (machine.Value, error)) *Interpreter {
	th := machine.NewThread(name)
	stdlib.Install(th)
	th.Load = resolver
	return &Interpreter{Thread: th}
}

// Run scans, parses, compiles and executes source as a module named
// moduleName (used in import caching and diagnostics), writing compile or
// runtime diagnostics to the thread's Stderr (os.Stderr if unset) and
// reporting the resulting status. ExitCode is meaningful only when the
// returned status is Exited.
func (in *Interpreter) Run(source []byte, moduleName string) (status Status, exitCode int) {
	stderr := in.stderr()

	prog, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return CompileError, 0
	}

	if in.Debug {
		fmt.Fprintf(stderr, "== %s AST ==\n", moduleName)
		printer := ast.Printer{Output: stderr}
		_ = printer.Print(prog)
	}

	proto, err := compiler.Compile(prog)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return CompileError, 0
	}

	if in.Debug {
		fmt.Fprintf(stderr, "== %s bytecode ==\n", moduleName)
		var dump func(fn *compiler.Function, name string)
		dump = func(fn *compiler.Function, name string) {
			fn.Chunk.Disassemble(stderr, name)
			for _, k := range fn.Chunk.Constants {
				if sub, ok := k.(*compiler.Function); ok {
					dump(sub, sub.String())
				}
			}
		}
		dump(proto, moduleName)
	}

	_, err = in.Thread.RunFunction(proto, moduleName)
	if err == nil {
		return OK, 0
	}

	if ee, ok := err.(*machine.ExitError); ok {
		return Exited, ee.Code
	}
	fmt.Fprintln(stderr, err)
	return RuntimeError, 0
}

func (in *Interpreter) stderr() io.Writer {
	if in.Thread.Stderr != nil {
		return in.Thread.Stderr
	}
	return os.Stderr
}
