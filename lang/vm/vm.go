// Package vm is a Go-side reference executor for resolved rpn.Programs.
// The runtime ABI is specified as a contract against a C compiler, and
// this module never invokes one: vm interprets the same instruction
// stream codegen emits C for, giving the rest of the compiler something
// to be tested end-to-end against without a host toolchain.
//
// A Machine holds process-wide interpreter state (the value stack, the
// bind array, the current closure chain) and recurses once per lambda
// invocation, the same shape a tree-walking call stack takes. Captured
// bindings are boxed in a cell so that an outer and an inner nested
// function can share one mutable slot by reference instead of by value.
// RPN here has no backward jumps, so the interpreter walks the
// instruction list straight through rather than running an explicit
// program-counter dispatch loop.
package vm

import (
	"fmt"
	"io"

	"github.com/mna/lolc/lang/ast"
	"github.com/mna/lolc/lang/rpn"
)

// Kind discriminates the tagged Value variants the runtime ABI
// describes: number, string, or a callable (lambda closure or
// built-in).
type Kind uint8

const (
	KindNumber Kind = iota
	KindString
	KindLambda
	KindBuiltin
)

// cell is one link of the closure chain, mirroring HeapVariable in
// runtime/support.h: a boxed value an inner lambda can reach by
// reference across frame boundaries.
type cell struct {
	v    Value
	next *cell
}

// Value is the Go-side analog of runtime/support.h's ManagedVariable: a
// kind tag plus whichever payload field that kind uses.
type Value struct {
	Kind Kind
	Num  int64
	Str  string

	lambdaIdx int    // rpn index of the `lambda` instruction, KindLambda only
	ctx       *cell  // captured chain at creation time, KindLambda only
	builtin   string // surface name, KindBuiltin only
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%d", v.Num)
	case KindString:
		return v.Str
	case KindLambda:
		return fmt.Sprintf("<lambda@%d>", v.lambdaIdx)
	case KindBuiltin:
		return fmt.Sprintf("<builtin %s>", v.builtin)
	default:
		return "<invalid>"
	}
}

// RuntimeError reports a failure a real C runtime would have reached via
// fatalError.
type RuntimeError struct{ Msg string }

func (e *RuntimeError) Error() string { return e.Msg }

// Machine holds the process-wide interpreter state: the resolved
// program, the stack and bind array (growable slices here, with no
// 1024-slot limit as in runtime/support.h), and the current closure
// chain head. One Machine runs exactly
// one program to completion, single-threaded and strictly sequential,
// the same execution model the generated C program runs under.
type Machine struct {
	prog  *rpn.Program
	arena *ast.Arena
	retOf map[int]int

	top   Value
	stack []Value
	binds []Value
	ctx   *cell

	dupAfter map[int]bool
	argv     []string

	// Stdout receives put-str output; nil discards it.
	Stdout io.Writer
}

// Run interprets p to completion, pushing len(argv) as the CLI argument
// count and argv itself as the strings prog-arg indexes into, then
// invoking the outermost lambda exactly as the generated C main does.
// stdout receives put-str output; nil discards it.
func Run(p *rpn.Program, a *ast.Arena, argv []string, stdout io.Writer) (Value, error) {
	if !p.IsResolved() {
		return Value{}, &RuntimeError{Msg: "vm: program is not fully resolved"}
	}
	if len(p.LambdaTable) == 0 {
		return Value{}, &RuntimeError{Msg: "vm: program has no top-level lambda"}
	}

	m := &Machine{
		prog:     p,
		arena:    a,
		retOf:    matchLambdaRet(p),
		dupAfter: make(map[int]bool, len(p.ArgBoundaries)),
		Stdout:   stdout,
	}
	for _, idx := range p.ArgBoundaries {
		m.dupAfter[idx] = true
	}

	outermost := p.LambdaTable[len(p.LambdaTable)-1]
	m.top = Value{Kind: KindNumber, Num: int64(len(argv))}
	m.argv = argv
	m.pushLambda(outermost)
	if err := m.call(); err != nil {
		return Value{}, err
	}
	return m.top, nil
}

func matchLambdaRet(p *rpn.Program) map[int]int {
	retOf := make(map[int]int)
	var stack []int
	for i, ins := range p.Instrs {
		switch ins.Op {
		case rpn.Lambda:
			stack = append(stack, i)
		case rpn.LambdaRet:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			retOf[top] = i
		}
	}
	return retOf
}

func (m *Machine) pushLambda(idx int) {
	m.top = Value{Kind: KindLambda, lambdaIdx: idx, ctx: m.ctx}
}

// call dispatches on m.top exactly as supCall does: a builtin runs its
// Go implementation directly, a lambda recurses into exec over its own
// instruction range.
func (m *Machine) call() error {
	switch m.top.Kind {
	case KindLambda:
		return m.execLambda(m.top.lambdaIdx)
	case KindBuiltin:
		return m.callBuiltin(m.top.builtin)
	default:
		return &RuntimeError{Msg: fmt.Sprintf("attempted to invoke a %v", m.top.Kind)}
	}
}
