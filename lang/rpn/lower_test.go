package rpn

import (
	"testing"

	"github.com/mna/lolc/lang/parser"
	"github.com/mna/lolc/lang/token"
	"github.com/stretchr/testify/require"
)

func lower(t *testing.T, src string) *Program {
	t.Helper()
	f := token.NewFile("test.lol", []byte(src))
	a, id, err := parser.Parse(f)
	require.NoError(t, err)
	p, err := Lower(a, id)
	require.NoError(t, err)
	return p
}

func ops(p *Program) []Op {
	out := make([]Op, len(p.Instrs))
	for i, ins := range p.Instrs {
		out[i] = ins.Op
	}
	return out
}

func TestLowerIdentity(t *testing.T) {
	p := lower(t, "(lambda (x) x)")
	require.Equal(t, []Op{Lambda, ScopeBegin, LambdaContextLoad, Bind, Get, ScopeEnd, LambdaRet}, ops(p))
	require.Equal(t, []int{0}, p.LambdaTable)
	require.Equal(t, "x", p.Instrs[3].Name)
	require.Equal(t, "x", p.Instrs[4].Name)
}

func TestLowerNumberLiteral(t *testing.T) {
	p := lower(t, "(lambda (x) 42)")
	require.Equal(t, Op(PushNumber), p.Instrs[4].Op)
	require.Equal(t, int64(42), p.Instrs[4].Num)
}

func TestLowerCall(t *testing.T) {
	p := lower(t, "(lambda (x) (+ x 1))")
	require.Equal(t, []Op{
		Lambda, ScopeBegin, LambdaContextLoad, Bind,
		Get, PushNumber, Get, Call,
		ScopeEnd, LambdaRet,
	}, ops(p))
	require.Equal(t, uint32(2), p.Instrs[7].Arg) // call arity
}

func TestLowerIf(t *testing.T) {
	p := lower(t, "(lambda (x) (if x 1 2))")
	kinds := ops(p)
	require.Contains(t, kinds, ConditionStart)
	require.Contains(t, kinds, ConditionElse)
	require.Contains(t, kinds, ConditionEnd)

	// verify backpatching: condition_start targets condition_else's index
	var startIdx, elseIdx, endIdx int
	for i, ins := range p.Instrs {
		switch ins.Op {
		case ConditionStart:
			startIdx = i
		case ConditionElse:
			elseIdx = i
		case ConditionEnd:
			endIdx = i
		}
	}
	require.Equal(t, uint32(elseIdx), p.Instrs[startIdx].Arg)
	require.Equal(t, uint32(endIdx), p.Instrs[elseIdx].Arg)
}

func TestLowerLet(t *testing.T) {
	p := lower(t, "(lambda (x) (let (y 1) (+ x y)))")
	kinds := ops(p)
	require.Contains(t, kinds, Bind)
	require.Contains(t, kinds, Set)
}

func TestLowerNestedLambda(t *testing.T) {
	p := lower(t, "(lambda (x) ((lambda (y) (+ x y)) 332))")
	require.Len(t, p.LambdaTable, 2)
	// innermost first: the outer lambda's own table entry is appended
	// only once its whole body (including the nested lambda) has been
	// lowered, so the inner lambda's (higher) instruction index comes
	// first and the outer's (index 0, the very first instruction) comes
	// last.
	require.Equal(t, 0, p.LambdaTable[1])
	require.NotEqual(t, 0, p.LambdaTable[0])
	require.Equal(t, Lambda, p.Instrs[p.LambdaTable[0]].Op)
	require.Equal(t, Lambda, p.Instrs[p.LambdaTable[1]].Op)
}

func TestLowerEmptyCallIsFatal(t *testing.T) {
	f := token.NewFile("t.lol", []byte("()"))
	a, id, err := parser.Parse(f)
	require.NoError(t, err)
	_, err = Lower(a, id)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty call detected")
}

func TestLowerStringLiteral(t *testing.T) {
	p := lower(t, `(lambda (x) (put-str "hi"))`)
	require.Contains(t, ops(p), Str)
}
