package ast_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/archerlang/archer/lang/ast"
	"github.com/archerlang/archer/lang/parser"
	"github.com/stretchr/testify/require"
)

func TestPrinterPrintsEveryStatement(t *testing.T) {
	src := `
		var x = 1;
		fun add(a, b) { return a + b; }
		print add(x, 2);
		if (x > 0) { print "pos"; } else { print "neg"; }
		while (x < 1) { x = x + 1; }
		class Point { init(x, y) { this.x = x; } }
	`
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)

	var b strings.Builder
	p := ast.Printer{Output: &b}
	require.NoError(t, p.Print(prog))

	out := b.String()
	for _, want := range []string{
		"VarStmt x", "FunStmt add", "Call", "IfStmt", "WhileStmt", "ClassStmt Point",
	} {
		require.Contains(t, out, want)
	}
}

func TestPrinterPropagatesWriteError(t *testing.T) {
	prog, err := parser.Parse([]byte(`print 1;`))
	require.NoError(t, err)

	p := ast.Printer{Output: failingWriter{}}
	require.Error(t, p.Print(prog))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

var errWrite = errors.New("write failed")
