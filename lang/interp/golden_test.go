package interp_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/archerlang/archer/internal/filetest"
	"github.com/archerlang/archer/lang/interp"
)

var testUpdateInterpTests = flag.Bool("test.update-interp-tests", false, "If set, replace expected interp golden output with actual output.")

// TestRunGoldenScripts runs every *.archer file under testdata/in and
// compares its stdout against the matching golden file in testdata/out,
// the way the teacher's parser/resolver suites diff fixtures with
// internal/filetest.
func TestRunGoldenScripts(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")
	for _, fi := range filetest.SourceFiles(t, srcDir, ".archer") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			in := interp.New(fi.Name(), nil)
			var out bytes.Buffer
			in.Thread.Stdout = &out

			status, _ := in.Run(src, fi.Name())
			if status != interp.OK {
				t.Fatalf("unexpected status %s running %s", status, fi.Name())
			}

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateInterpTests)
		})
	}
}
