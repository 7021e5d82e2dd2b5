package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/mna/lolc/runtime"
)

// Support writes the embedded runtime/support.h header to stdout, so a
// build pipeline can materialize it without vendoring the lolc source
// tree alongside the compiled binary.
func (c *Cmd) Support(ctx context.Context, stdio mainer.Stdio, args []string) error {
	_, err := stdio.Stdout.Write([]byte(runtime.SupportHeader))
	return err
}
