package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/archerlang/archer/lang/interp"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (stdout, stderr string, status interp.Status, code int) {
	t.Helper()
	in := interp.New("test", nil)
	var out, errBuf bytes.Buffer
	in.Thread.Stdout = &out
	in.Thread.Stderr = &errBuf
	status, code = in.Run([]byte(src), "test")
	return out.String(), errBuf.String(), status, code
}

func TestRunPrintsExpressions(t *testing.T) {
	out, _, status, _ := run(t, `print 1 + 2;`)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "3\n", out)
}

func TestRunMapLiteralsAndIndexing(t *testing.T) {
	src := `
		var m = {"a": 1, "b": 2};
		print m["a"];
		print m.length();
		m["c"] = 3;
		print m.containsKey("c");
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "1\n2\ntrue\n", out)
}

func TestRunVariablesAndFunctions(t *testing.T) {
	src := `
		fun add(a, b) {
			return a + b;
		}
		var x = add(2, 3);
		print x;
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "5\n", out)
}

func TestRunClosuresCaptureUpvalues(t *testing.T) {
	src := `
		fun counter() {
			var n = 0;
			fun inc() {
				n = n + 1;
				return n;
			}
			return inc;
		}
		var c = counter();
		print c();
		print c();
		print c();
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestRunClassesAndMethods(t *testing.T) {
	src := `
		class Point {
			init(x, y) {
				this.x = x;
				this.y = y;
			}
			sum() {
				return this.x + this.y;
			}
		}
		var p = Point(3, 4);
		print p.sum();
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "7\n", out)
}

// TestRunClassInheritanceMethodResolutionOrder pins spec.md's MRO scenario:
// class B < A with both defining m: B().m() calls B's; B().n() where only
// A defines n calls A's; within B, super.m() calls A's.
func TestRunClassInheritanceMethodResolutionOrder(t *testing.T) {
	src := `
		class A {
			m() { return "A.m"; }
			n() { return "A.n"; }
		}
		class B < A {
			m() { return "B.m"; }
			callSuperM() { return super.m(); }
		}
		var b = B();
		print b.m();
		print b.n();
		print b.callSuperM();
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "B.m\nA.n\nA.m\n", out)
}

func TestRunForInOverRange(t *testing.T) {
	src := `
		var total = 0;
		for (i in range(5)) {
			total = total + i;
		}
		print total;
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "10\n", out)
}

func TestRunCoroutineYieldResume(t *testing.T) {
	src := `
		fun gen() {
			yield(1);
			yield(2);
			return 3;
		}
		var co = Coroutine.create(gen);
		print resume(co);
		print resume(co);
		print resume(co);
		print co.status;
	`
	out, _, status, _ := run(t, src)
	require.Equal(t, interp.OK, status)
	require.Equal(t, "[1]\n[2]\n[3]\ndead\n", out)
}

func TestRunCompileErrorReportsStatus(t *testing.T) {
	_, errOut, status, _ := run(t, `var x = ;`)
	require.Equal(t, interp.CompileError, status)
	require.NotEmpty(t, errOut)
}

func TestRunRuntimeErrorReportsStatus(t *testing.T) {
	_, errOut, status, _ := run(t, `print nil + 1;`)
	require.Equal(t, interp.RuntimeError, status)
	require.NotEmpty(t, errOut)
}

// TestRunRuntimeErrorMessageFormat pins the exact stderr shape spec.md's
// end-to-end scenario names: the failing line prefixed with "[Line n] ",
// followed by one "[Line n] in <frame>" line per call-stack frame.
func TestRunRuntimeErrorMessageFormat(t *testing.T) {
	_, errOut, status, _ := run(t, `print "x" - 1;`)
	require.Equal(t, interp.RuntimeError, status)
	require.Equal(t, "[Line 1] Operands must be numbers\n[Line 1] in script\n", errOut)
}

func TestRunExitedReportsCode(t *testing.T) {
	_, _, status, code := run(t, `exit(7);`)
	require.Equal(t, interp.Exited, status)
	require.Equal(t, 7, code)
}

func TestRunUsesDefaultStderrWhenUnset(t *testing.T) {
	in := interp.New("test", nil)
	status, _ := in.Run([]byte(`var x = ;`), "test")
	require.Equal(t, interp.CompileError, status)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "OK", interp.OK.String())
	require.Equal(t, "COMPILE_ERROR", interp.CompileError.String())
	require.Equal(t, "RUNTIME_ERROR", interp.RuntimeError.String())
	require.Equal(t, "EXITED", interp.Exited.String())
}

func TestRunDebugDumpsASTAndBytecode(t *testing.T) {
	in := interp.New("test", nil)
	var out, errBuf bytes.Buffer
	in.Thread.Stdout = &out
	in.Thread.Stderr = &errBuf
	in.Debug = true

	status, _ := in.Run([]byte(`print 1;`), "dbg")
	require.Equal(t, interp.OK, status)
	require.True(t, strings.Contains(errBuf.String(), "AST"))
	require.True(t, strings.Contains(errBuf.String(), "bytecode"))
}
