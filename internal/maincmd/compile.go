package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/lolc/lang/codegen"
	"github.com/mna/lolc/lang/resolve"
)

// Compile runs the full tokenize-parse-lower-resolve-codegen pipeline and
// prints the generated C
// translation unit to stdout. This is the tool's end-to-end command
// (it still has to be named; there is no default command): standard
// input in, a C unit expecting runtime/support.h on standard output.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := readFile(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	a, p, err := lowerFile(stdio, f)
	if err != nil {
		return err
	}
	resolve.Resolve(p)

	src, err := codegen.Generate(p, a)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	fmt.Fprint(stdio.Stdout, src)
	return nil
}
