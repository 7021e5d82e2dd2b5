package parser

import (
	"testing"

	"github.com/mna/lolc/lang/ast"
	"github.com/mna/lolc/lang/token"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Arena, ast.ID) {
	t.Helper()
	f := token.NewFile("test.lol", []byte(src))
	a, id, err := Parse(f)
	require.NoError(t, err)
	return a, id
}

func TestParseIdentity(t *testing.T) {
	a, id := parse(t, "(lambda (x) x)")
	require.Equal(t, "(lambda (x) x)", a.Print(id))
}

func TestParseNested(t *testing.T) {
	a, id := parse(t, "(lambda (x) ((lambda (a b) (+ a b)) x 1))")
	require.Equal(t, "(lambda (x) ((lambda (a b) (+ a b)) x 1))", a.Print(id))
}

func TestParseString(t *testing.T) {
	a, id := parse(t, `(put-str "hello")`)
	require.Equal(t, `(put-str "hello")`, a.Print(id))
}

func TestParseEmptyList(t *testing.T) {
	a, id := parse(t, "()")
	require.Equal(t, "()", a.Print(id))
}

func TestParseUnexpectedEndOfList(t *testing.T) {
	f := token.NewFile("test.lol", []byte("(lambda (x)"))
	_, _, err := Parse(f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected end of list")
}

func TestParseLooseRParen(t *testing.T) {
	f := token.NewFile("test.lol", []byte(")"))
	_, _, err := Parse(f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected end of list")
}
