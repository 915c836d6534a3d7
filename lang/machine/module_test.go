package machine_test

import (
	"bytes"
	"testing"

	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/machine"
	"github.com/archerlang/archer/lang/parser"
	"github.com/archerlang/archer/lang/stdlib"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) *compiler.Function {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	proto, err := compiler.Compile(prog)
	require.NoError(t, err)
	return proto
}

// TestRunModuleIsolatesGlobals guards the import-vs-main-script globals
// bug: a module's top-level bindings must not leak into, or be clobbered
// by, the importing script's own globals.
func TestRunModuleIsolatesGlobals(t *testing.T) {
	th := machine.NewThread("main")
	stdlib.Install(th)

	moduleProto := compileSource(t, `var x = 1; fun helper() { return 99; }`)

	th.Load = func(th *machine.Thread, name string) (machine.Value, error) {
		return th.RunModule(moduleProto, name)
	}

	var out bytes.Buffer
	th.Stdout = &out

	mainProto := compileSource(t, `
		var x = 2;
		import "helpers";
		print x;
		print helpers.x;
		print helpers.helper();
	`)

	_, err := th.RunFunction(mainProto, "main")
	require.NoError(t, err)
	require.Equal(t, "2\n1\n99\n", out.String())
}

// TestRunModuleExportsCapturedAtCompletion ensures a module's exports
// reflect the bindings present when its top-level code finishes running.
func TestRunModuleExportsCapturedAtCompletion(t *testing.T) {
	th := machine.NewThread("main")
	stdlib.Install(th)

	proto := compileSource(t, `var a = 1; var b = a + 1;`)
	mod, err := th.RunModule(proto, "mymod")
	require.NoError(t, err)
	require.Equal(t, "mymod", mod.Name)

	a, ok := mod.GetField("a")
	require.True(t, ok)
	require.Equal(t, machine.Number(1), a)

	b, ok := mod.GetField("b")
	require.True(t, ok)
	require.Equal(t, machine.Number(2), b)
}

// TestRunModulePropagatesRuntimeErrors checks that a runtime error in an
// imported module aborts the import and surfaces as the importer's error.
func TestRunModulePropagatesRuntimeErrors(t *testing.T) {
	th := machine.NewThread("main")
	stdlib.Install(th)

	badProto := compileSource(t, `print nil + 1;`)
	th.Load = func(th *machine.Thread, name string) (machine.Value, error) {
		return th.RunModule(badProto, name)
	}

	mainProto := compileSource(t, `import "bad";`)
	_, err := th.RunFunction(mainProto, "main")
	require.Error(t, err)
}

// TestStressGCSurvivesHeavyAllocation exercises the Register idempotency
// fix under collection-on-every-allocation pressure: interned strings
// handed back from natives, freshly allocated lists and closures must all
// stay correctly linked through many forced collections.
func TestStressGCSurvivesHeavyAllocation(t *testing.T) {
	th := machine.NewThread("main")
	stdlib.Install(th)
	th.SetStressGC(true)

	var out bytes.Buffer
	th.Stdout = &out

	proto := compileSource(t, `
		var total = 0;
		for (i in range(50)) {
			var s = str(i);
			var parts = [s, "x"];
			total = total + len(s) + len(parts);
		}
		print total;
	`)

	_, err := th.RunFunction(proto, "stress")
	require.NoError(t, err)
	require.Equal(t, "190\n", out.String())
}
