package stdlib_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/machine"
	"github.com/archerlang/archer/lang/parser"
	"github.com/archerlang/archer/lang/stdlib"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, src string, stdin string) (string, error) {
	t.Helper()
	th := machine.NewThread("test")
	stdlib.Install(th)
	var out bytes.Buffer
	th.Stdout = &out
	th.Stdin = strings.NewReader(stdin)

	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	proto, err := compiler.Compile(prog)
	require.NoError(t, err)

	_, err = th.RunFunction(proto, "test")
	return out.String(), err
}

func TestInstallBindsEveryNative(t *testing.T) {
	th := machine.NewThread("test")
	stdlib.Install(th)

	for _, name := range []string{
		"clock", "abs", "pow", "typeof", "str", "len", "min", "max",
		"range", "input", "exit", "yield", "resume", "Coroutine",
	} {
		_, ok := th.Globals[name]
		require.True(t, ok, "missing global %q", name)
	}
}

func TestAbsPowMinMax(t *testing.T) {
	out, err := runScript(t, `
		print abs(-5);
		print pow(2, 10);
		print min(3, 7);
		print max(3, 7);
	`, "")
	require.NoError(t, err)
	require.Equal(t, "5\n1024\n3\n7\n", out)
}

func TestTypeofAndStr(t *testing.T) {
	out, err := runScript(t, `
		print typeof(1);
		print typeof("s");
		print typeof(nil);
		print typeof(true);
		print str(42);
	`, "")
	require.NoError(t, err)
	require.Equal(t, "number\nstring\nnil\nbool\n42\n", out)
}

func TestLenAcrossContainers(t *testing.T) {
	out, err := runScript(t, `
		print len("hello");
		print len([1, 2, 3]);
	`, "")
	require.NoError(t, err)
	require.Equal(t, "5\n3\n", out)
}

func TestLenRejectsUnsupportedType(t *testing.T) {
	_, err := runScript(t, `print len(1);`, "")
	require.Error(t, err)
}

func TestInputReadsFromStdin(t *testing.T) {
	out, err := runScript(t, `print input();`, "hello world\n")
	require.NoError(t, err)
	require.Equal(t, "hello world\n", out)
}

func TestExitReturnsExitError(t *testing.T) {
	_, err := runScript(t, `exit(3);`, "")
	require.Error(t, err)
	ee, ok := err.(*machine.ExitError)
	require.True(t, ok)
	require.Equal(t, 3, ee.Code)
}

func TestCoroutineCreateRejectsNonFunction(t *testing.T) {
	_, err := runScript(t, `Coroutine.create(1);`, "")
	require.Error(t, err)
}

func TestResumeRejectsNonCoroutine(t *testing.T) {
	_, err := runScript(t, `resume(1);`, "")
	require.Error(t, err)
}

func TestResumeDeliversArgsAfterFirstResume(t *testing.T) {
	out, err := runScript(t, `
		fun echo() {
			var first = yield(nil);
			print first;
		}
		var co = Coroutine.create(echo);
		resume(co);
		resume(co, 42);
	`, "")
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}
