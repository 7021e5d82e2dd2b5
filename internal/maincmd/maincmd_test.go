package maincmd_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/mna/lolc/internal/filetest"
	"github.com/mna/lolc/internal/maincmd"
)

var testUpdateResolveTests = flag.Bool("test.update-resolve-tests", false, "If set, replace expected resolve test results with actual results.")

// TestResolve runs the resolve subcommand over every
// fixture under testdata/in and diffs its RPN dump against the
// corresponding golden file in testdata/out, the same fixture-directory
// convention the rest of the example pack's CLI tests use.
func TestResolve(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lol") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var out, eout bytes.Buffer
			stdio := mainer.Stdio{
				Stdin:  bytes.NewReader(src),
				Stdout: &out,
				Stderr: &eout,
			}

			c := &maincmd.Cmd{}
			// error already reported to eout by the command itself
			_ = c.Resolve(ctx, stdio, nil)

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateResolveTests)
			filetest.DiffErrors(t, fi, eout.String(), resultDir, testUpdateResolveTests)
		})
	}
}
