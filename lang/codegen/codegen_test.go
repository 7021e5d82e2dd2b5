package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/lolc/lang/codegen"
	"github.com/mna/lolc/lang/parser"
	"github.com/mna/lolc/lang/resolve"
	"github.com/mna/lolc/lang/rpn"
	"github.com/mna/lolc/lang/token"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	f := token.NewFile("t.lol", []byte(src))
	a, id, err := parser.Parse(f)
	require.NoError(t, err)
	p, err := rpn.Lower(a, id)
	require.NoError(t, err)
	resolve.Resolve(p)
	out, err := codegen.Generate(p, a)
	require.NoError(t, err)
	return out
}

// Every generated unit includes the runtime header and a main driver
// that pushes argc, pushes the outermost lambda, and calls it.
func TestGenerateDriver(t *testing.T) {
	out := generate(t, "(lambda (argc) argc)")
	require.Contains(t, out, `#include "support.h"`)
	require.Contains(t, out, "int main(int argc, char **argv) {")
	require.Contains(t, out, "supPushNumber(argc);")
	require.Contains(t, out, "supCall();")
	require.Contains(t, out, "return (int)top.v.number;")
}

// A local parameter reference compiles to supGet/supSet by hop count, not
// by name.
func TestGenerateLocalHops(t *testing.T) {
	out := generate(t, "(lambda (x) x)")
	require.Contains(t, out, "supBind();")
	require.Contains(t, out, "supGet(0);")
	require.NotContains(t, out, `"x"`)
}

// A captured outer parameter compiles to the captured-chain ops, and the
// nested lambda is emitted as its own static function before the
// enclosing one (innermost-first, matching LambdaTable's order), so
// genLambda0 precedes genLambda1 in the output.
func TestGenerateCapture(t *testing.T) {
	out := generate(t, "(lambda (x) ((lambda (y) (+ x y)) 332))")
	require.Contains(t, out, "supBindCaptured();")
	require.Contains(t, out, "supGetCaptured(0);")
	require.Contains(t, out, "static void genLambda0(void) {")
	require.Contains(t, out, "static void genLambda1(void) {")
	require.Less(t,
		indexOf(out, "static void genLambda0(void) {"),
		indexOf(out, "static void genLambda1(void) {"),
	)
}

// Built-in symbols resolve to their fixed support.h descriptor names.
func TestGenerateBuiltin(t *testing.T) {
	out := generate(t, "(lambda (x) (+ x 1))")
	require.Contains(t, out, "supPushLambda(&sup_builtin_add);")
}

// An unknown free symbol is a fatal codegen error naming the offending
// symbol and listing known built-ins.
func TestGenerateUnknownBuiltin(t *testing.T) {
	_, err := func() (string, error) {
		f := token.NewFile("t.lol", []byte("(lambda (x) (frobnicate x))"))
		a, id, err := parser.Parse(f)
		require.NoError(t, err)
		p, err := rpn.Lower(a, id)
		require.NoError(t, err)
		resolve.Resolve(p)
		return codegen.Generate(p, a)
	}()
	require.Error(t, err)
	require.Contains(t, err.Error(), `"frobnicate"`)
	require.Contains(t, err.Error(), "known built-ins")
}

// if's condition value is duplicated onto the explicit stack before
// condition_start, balancing the supStackDrop that runs on either branch.
func TestGenerateIfDup(t *testing.T) {
	out := generate(t, "(lambda (x) (if x 1 2))")
	require.Contains(t, out, "supStackDup();\n\tif (top.v.number) { supStackDrop();")
	require.Contains(t, out, "} else { supStackDrop();")
}

// A call argument's value is duplicated onto the explicit stack before
// the next argument (or the callee expression) overwrites top.
func TestGenerateCallArgDup(t *testing.T) {
	out := generate(t, "(lambda (a b) (+ a b))")
	require.Contains(t, out, "supGet(1);\n\tsupStackDup();")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
