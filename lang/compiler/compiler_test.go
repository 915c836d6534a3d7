package compiler_test

import (
	"strings"
	"testing"

	"github.com/archerlang/archer/lang/compiler"
	"github.com/archerlang/archer/lang/parser"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *compiler.Function {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	proto, err := compiler.Compile(prog)
	require.NoError(t, err)
	return proto
}

func TestCompileTopLevelScript(t *testing.T) {
	proto := compile(t, `print 1 + 2;`)
	require.Equal(t, "", proto.Name)
	require.Equal(t, 0, proto.Arity)
	require.NotEmpty(t, proto.Chunk.Code)
	require.Equal(t, "<script>", proto.String())
}

func TestCompileDedupesNumberAndStringConstants(t *testing.T) {
	proto := compile(t, `
		print 1;
		print 1;
		print "same";
		print "same";
	`)
	var numCount, strCount int
	for _, c := range proto.Chunk.Constants {
		switch v := c.(type) {
		case float64:
			if v == 1 {
				numCount++
			}
		case string:
			if v == "same" {
				strCount++
			}
		}
	}
	require.Equal(t, 1, numCount, "equal number literals should share a constant slot")
	require.Equal(t, 1, strCount, "equal string literals should share a constant slot")
}

func TestCompileFunctionArityAndName(t *testing.T) {
	prog, err := parser.Parse([]byte(`fun add(a, b) { return a + b; }`))
	require.NoError(t, err)
	proto, err := compiler.Compile(prog)
	require.NoError(t, err)
	var fn *compiler.Function
	for _, k := range proto.Chunk.Constants {
		if f, ok := k.(*compiler.Function); ok {
			fn = f
		}
	}
	require.NotNil(t, fn)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, 2, fn.Arity)
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	_, err := parser.Parse([]byte(`var x = ;`))
	require.Error(t, err)
}

func TestCompileReportsSemanticErrors(t *testing.T) {
	prog, err := parser.Parse([]byte(`break;`))
	require.NoError(t, err)
	_, err = compiler.Compile(prog)
	require.Error(t, err, "break outside a loop must be a compile error")
}

func TestChunkLineTableTracksSourceLines(t *testing.T) {
	proto := compile(t, "print 1;\nprint 2;\nprint 3;")
	require.Equal(t, 1, proto.Chunk.Line(0))
	last := len(proto.Chunk.Code) - 1
	require.Equal(t, 3, proto.Chunk.Line(last))
}

func TestChunkDisassembleDoesNotPanic(t *testing.T) {
	proto := compile(t, `
		fun fib(n) {
			if (n < 2) { return n; }
			return fib(n - 1) + fib(n - 2);
		}
		print fib(5);
	`)
	var b strings.Builder
	proto.Chunk.Disassemble(&b, "test")
	require.NotEmpty(t, b.String())
	require.Contains(t, b.String(), "test")
}
