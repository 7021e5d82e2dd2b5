package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoPos(t *testing.T) {
	require.False(t, NoPos.Valid())
	require.True(t, Pos(0).Valid())
}

func TestFilePosition(t *testing.T) {
	src := "(lambda (x)\n  (+ x 1))\n"
	f := NewFile("fib.lol", []byte(src))
	for i, r := range src {
		if r == '\n' {
			f.AddLine(i + 1)
		}
	}

	line, col := f.Position(0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	// offset of "(+" on the second line
	idx := len("(lambda (x)\n  ")
	line, col = f.Position(idx)
	require.Equal(t, 2, line)
	require.Equal(t, 3, col)
	require.Equal(t, "  (+ x 1))", f.Line(idx))

	require.Equal(t, "fib.lol:2:3", f.PositionString(idx))
}
