package ast

import (
	"testing"

	"github.com/mna/lolc/lang/token"
	"github.com/stretchr/testify/require"
)

func TestArenaSymbolText(t *testing.T) {
	src := []byte("(+ x 1)")
	a := NewArena(src)
	sym := a.AddSymbol(token.Pos(1)) // offset of '+'
	require.Equal(t, "+", a.SymbolText(sym))

	sym2 := a.AddSymbol(token.Pos(3)) // offset of 'x'
	require.Equal(t, "x", a.SymbolText(sym2))
}

func TestArenaStringText(t *testing.T) {
	src := []byte(`"hello \"world\""`)
	a := NewArena(src)
	s := a.AddString(token.Pos(0))
	require.Equal(t, `hello \"world\"`, a.StringText(s))
}

func TestArenaListChain(t *testing.T) {
	src := []byte("(a b)")
	a := NewArena(src)
	sa := a.AddSymbol(token.Pos(1))
	sb := a.AddSymbol(token.Pos(3))

	c1 := a.AddCell(sa)
	c2 := a.AddCell(sb)
	a.SetNext(c1, c2)

	got := a.Elements(c1)
	require.Equal(t, []ID{sa, sb}, got)
	require.Equal(t, "(a b)", a.Print(c1))
}

func TestArenaEmptyList(t *testing.T) {
	a := NewArena(nil)
	require.Equal(t, []ID(nil), a.Elements(NoID))
	require.Equal(t, "()", a.Print(NoID))
}
