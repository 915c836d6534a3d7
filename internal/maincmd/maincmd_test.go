package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/archerlang/archer/lang/interp"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		status interp.Status
		code   int
		want   mainer.ExitCode
	}{
		{interp.OK, 0, exitOK},
		{interp.CompileError, 0, exitCompileError},
		{interp.RuntimeError, 0, exitRuntimeError},
		{interp.Exited, 7, mainer.ExitCode(7)},
	}
	for _, c := range cases {
		require.Equal(t, c.want, exitCodeFor(c.status, c.code))
	}
}

func TestModuleNameFor(t *testing.T) {
	require.Equal(t, "main", moduleNameFor("/a/b/main.archer"))
	require.Equal(t, "script", moduleNameFor("script.archer"))
}

func TestFileResolverRunsImportedModuleIsolated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.archer"), []byte(`var name = "world";`), 0o644))

	in := interp.New("test", nil)
	in.Thread.Load = fileResolver(dir)
	var out bytes.Buffer
	in.Thread.Stdout = &out

	status, _ := in.Run([]byte(`
		import "greet";
		print greet.name;
	`), "main")
	require.Equal(t, interp.OK, status)
	require.Equal(t, "world\n", out.String())
}

func TestFileResolverReportsMissingFile(t *testing.T) {
	dir := t.TempDir()
	in := interp.New("test", nil)
	in.Thread.Load = fileResolver(dir)
	var errOut bytes.Buffer
	in.Thread.Stderr = &errOut

	status, _ := in.Run([]byte(`import "missing";`), "main")
	require.Equal(t, interp.RuntimeError, status)
	require.True(t, strings.Contains(errOut.String(), "missing"))
}

func TestCmdValidateRejectsMultiplePaths(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"a.archer", "b.archer"})
	require.Error(t, c.Validate())
}

func TestCmdValidateAllowsHelpRegardlessOfArgs(t *testing.T) {
	c := &Cmd{Help: true}
	c.SetArgs([]string{"a.archer", "b.archer"})
	require.NoError(t, c.Validate())
}

func TestCmdMainPrintsHelp(t *testing.T) {
	c := &Cmd{}
	var out, errOut bytes.Buffer
	code := c.Main([]string{"archer", "--help"}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "usage: archer")
}

func TestCmdMainRunsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.archer")
	require.NoError(t, os.WriteFile(path, []byte(`print 1 + 1;`), 0o644))

	c := &Cmd{}
	var out, errOut bytes.Buffer
	code := c.Main([]string{"archer", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})
	require.Equal(t, exitOK, code)
	require.Equal(t, "2\n", out.String())
}

func TestCmdMainReportsMissingFile(t *testing.T) {
	c := &Cmd{}
	var out, errOut bytes.Buffer
	code := c.Main([]string{"archer", "/no/such/file.archer"}, mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: strings.NewReader("")})
	require.Equal(t, exitIOFailure, code)
}
