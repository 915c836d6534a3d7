// Package maincmd implements the archer command-line driver: flag parsing,
// REPL and file-run modes, and exit-code selection, leaving the language
// implementation itself to lang/interp and the packages it wires together.
package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/interp"
	"github.com/archerlang/archer/lang/machine"
	"github.com/archerlang/archer/lang/parser"
)

const binName = "archer"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and interpreter for the %[1]s programming language. With a <path>
argument, reads and runs that file. With no arguments, starts a REPL that
reads one line at a time from standard input.

Valid flag options are:
       -d --debug                Print the parsed AST and disassembled
                                  bytecode for every chunk before running it.
       --stress-gc                Force a garbage collection before every
                                  single allocation, to shake out bugs in
                                  object lifetime tracking. May also be set
                                  via the %[2]sSTRESS_GC environment variable.
       -h --help                  Show this help and exit.
       -v --version               Print version and exit.

More information on the %[1]s repository:
       https://github.com/archerlang/archer
`, binName, strings.ToUpper(binName)+"_")
)

// Cmd is the archer binary's command-line interface, populated by
// mainer.Parser from argv and (for StressGC) the environment.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help     bool `flag:"h,help"`
	Version  bool `flag:"v,version"`
	Debug    bool `flag:"d,debug"`
	StressGC bool `flag:"stress-gc" env:"STRESS_GC"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("at most one file path may be given, got %d", len(c.args))
	}
	return nil
}

// Main is the binary's entire logic: parse flags, then either run a file,
// run a REPL, or print help/version, returning the process exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	in := interp.New(binName, nil)
	in.Debug = c.Debug
	in.Thread.Stdout = stdio.Stdout
	in.Thread.Stderr = stdio.Stderr
	in.Thread.Stdin = stdio.Stdin
	in.Thread.SetStressGC(c.StressGC)

	if len(c.args) == 1 {
		return runFile(ctx, in, stdio, c.args[0])
	}
	return runRepl(ctx, in, stdio)
}

func runFile(ctx context.Context, in *interp.Interpreter, stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return exitIOFailure
	}
	in.Thread.Load = fileResolver(filepath.Dir(path))

	status, code := in.Run(src, moduleNameFor(path))
	return exitCodeFor(status, code)
}

func runRepl(ctx context.Context, in *interp.Interpreter, stdio mainer.Stdio) mainer.ExitCode {
	in.Thread.Load = fileResolver(".")
	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		select {
		case <-ctx.Done():
			return mainer.Success
		default:
		}
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return mainer.Success
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		// REPL errors never abort the session; only a file run's exit code
		// reflects COMPILE_ERROR/RUNTIME_ERROR/exit(n).
		in.Run([]byte(line), "<stdin>")
	}
}

func moduleNameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileResolver returns the import resolver a script's `import "name";`
// statements go through: it reads "<dir>/<name>.archer", compiles it and runs it
// in its own isolated global namespace via machine.Thread.RunModule.
func fileResolver(dir string) func(th *machine.Thread, name string) (machine.Value, error) {
	return func(th *machine.Thread, name string) (machine.Value, error) {
		path := filepath.Join(dir, name+".archer")
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", name, err)
		}
		prog, err := parser.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", name, err)
		}
		proto, err := compiler.Compile(prog)
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", name, err)
		}
		return th.RunModule(proto, name)
	}
}

const (
	exitOK           mainer.ExitCode = 0
	exitCompileError mainer.ExitCode = 65
	exitRuntimeError mainer.ExitCode = 70
	exitIOFailure    mainer.ExitCode = 74
)

func exitCodeFor(status interp.Status, exitedCode int) mainer.ExitCode {
	switch status {
	case interp.OK:
		return exitOK
	case interp.CompileError:
		return exitCompileError
	case interp.RuntimeError:
		return exitRuntimeError
	case interp.Exited:
		return mainer.ExitCode(exitedCode)
	default:
		return exitRuntimeError
	}
}
