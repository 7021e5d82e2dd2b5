package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/lolc/lang/scanner"
)

// Tokenize runs the scanner alone and prints one "<stdin>:line:col: token"
// line per token to stdout, as a debug dump of the raw token stream.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := readFile(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	toks, err := scanner.Tokenize(f)
	for _, t := range toks {
		fmt.Fprintf(stdio.Stdout, "%s: %s\n", f.PositionString(int(t.Pos)), t.Token)
	}
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	return nil
}
