package rpn

import (
	"fmt"
	"strconv"

	"github.com/mna/lolc/lang/ast"
)

// LowerError is a fatal error raised while lowering the AST to RPN.
type LowerError struct {
	Msg string
}

func (e *LowerError) Error() string { return e.Msg }

// Lower walks the AST rooted at id and produces its RPN form. It
// recognizes six surface forms (number literal, identifier, string
// literal, lambda, if, let) plus the general call form.
func Lower(a *ast.Arena, id ast.ID) (*Program, error) {
	l := &lowerer{arena: a, prog: &Program{}}
	if err := l.expr(id); err != nil {
		return nil, err
	}
	return l.prog, nil
}

type lowerer struct {
	arena *ast.Arena
	prog  *Program
}

func (l *lowerer) emit(ins Instr) int {
	l.prog.Instrs = append(l.prog.Instrs, ins)
	return len(l.prog.Instrs) - 1
}

func (l *lowerer) patch(idx int, target uint32) {
	l.prog.Instrs[idx].Arg = target
}

// expr lowers a single AST node, dispatching on whether it is a symbol, a
// string, or a list (and if a list, whether its head identifies lambda,
// if, let, or an ordinary call).
func (l *lowerer) expr(id ast.ID) error {
	if id == ast.NoID {
		return &LowerError{Msg: "empty call detected"}
	}

	n := l.arena.Get(id)
	switch n.Kind {
	case ast.KindString:
		l.emit(Instr{Op: Str, Arg: uint32(n.Offset)})
		return nil

	case ast.KindSymbol:
		return l.symbol(id)

	case ast.KindList:
		return l.list(id)
	}
	return &LowerError{Msg: fmt.Sprintf("unknown node kind %v", n.Kind)}
}

// symbol lowers a bare symbol: a base-10 signed 64-bit integer literal
// becomes push_number, anything else becomes an (unresolved) get.
func (l *lowerer) symbol(id ast.ID) error {
	text := l.arena.SymbolText(id)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		l.emit(Instr{Op: PushNumber, Num: n})
		return nil
	}
	l.emit(Instr{Op: Get, Name: text})
	return nil
}

// list lowers a parenthesized form: empty is fatal, otherwise dispatch on
// the head symbol's text.
func (l *lowerer) list(head ast.ID) error {
	elems := l.arena.Elements(head)
	if len(elems) == 0 {
		return &LowerError{Msg: "empty call detected"}
	}

	if headName, ok := l.headSymbol(elems[0]); ok {
		switch headName {
		case "lambda":
			return l.lambda(elems)
		case "if":
			return l.ifExpr(elems)
		case "let":
			return l.let(elems)
		}
	}
	return l.call(elems)
}

// headSymbol reports the text of id if it is a symbol node, so the
// lowerer can recognize lambda/if/let only when they appear as the head
// of a call.
func (l *lowerer) headSymbol(id ast.ID) (string, bool) {
	n := l.arena.Get(id)
	if n.Kind != ast.KindSymbol {
		return "", false
	}
	return l.arena.SymbolText(id), true
}

func (l *lowerer) assertSymbol(id ast.ID, context string) (string, error) {
	n := l.arena.Get(id)
	if n.Kind != ast.KindSymbol {
		return "", &LowerError{Msg: fmt.Sprintf("%s: expected a symbol", context)}
	}
	return l.arena.SymbolText(id), nil
}

func (l *lowerer) assertList(id ast.ID, context string) ([]ast.ID, error) {
	if id == ast.NoID {
		return nil, nil
	}
	n := l.arena.Get(id)
	if n.Kind != ast.KindList {
		return nil, &LowerError{Msg: fmt.Sprintf("%s: expected a list", context)}
	}
	return l.arena.Elements(id), nil
}

// lambda lowers (lambda (p1 .. pn) body).
func (l *lowerer) lambda(elems []ast.ID) error {
	if len(elems) != 3 {
		return &LowerError{Msg: "lambda: expected (lambda (params) body)"}
	}
	params, err := l.assertList(elems[1], "lambda params")
	if err != nil {
		return err
	}

	lambdaIdx := l.emit(Instr{Op: Lambda, Arg: uint32(len(params))})

	scopeIdx := l.beginScope()
	l.emit(Instr{Op: LambdaContextLoad})

	for _, p := range params {
		name, err := l.assertSymbol(p, "lambda param")
		if err != nil {
			return err
		}
		l.emit(Instr{Op: Bind, Name: name})
	}

	if err := l.expr(elems[2]); err != nil {
		return err
	}

	l.emit(Instr{Op: ScopeEnd, Arg: uint32(scopeIdx)})
	l.emit(Instr{Op: LambdaRet})

	// Record this lambda's index only after its body (and any lambdas
	// nested inside it) has been fully lowered, so LambdaTable ends up
	// ordered innermost-first: the code generator can then emit each
	// function before any enclosing one that references it, with no
	// forward declarations needed.
	l.prog.LambdaTable = append(l.prog.LambdaTable, lambdaIdx)
	return nil
}

// ifExpr lowers (if c t e).
func (l *lowerer) ifExpr(elems []ast.ID) error {
	if len(elems) != 4 {
		return &LowerError{Msg: "if: expected (if cond then else)"}
	}

	if err := l.scoped(elems[1]); err != nil {
		return err
	}
	// The condition's value is duplicated onto the explicit stack so that
	// condition_start's unconditional stack drop (run on either branch)
	// has a balanced slot to pop regardless of which branch executes; top
	// itself is untouched, since the branch not taken is never reached.
	l.prog.ArgBoundaries = append(l.prog.ArgBoundaries, len(l.prog.Instrs)-1)
	startIdx := l.emit(Instr{Op: ConditionStart})
	if err := l.scoped(elems[2]); err != nil {
		return err
	}
	elseIdx := l.emit(Instr{Op: ConditionElse})
	l.patch(startIdx, uint32(elseIdx))

	if err := l.scoped(elems[3]); err != nil {
		return err
	}
	endIdx := l.emit(Instr{Op: ConditionEnd})
	l.patch(elseIdx, uint32(endIdx))
	return nil
}

// let lowers (let (n1 e1 .. nk ek) body).
func (l *lowerer) let(elems []ast.ID) error {
	if len(elems) != 3 {
		return &LowerError{Msg: "let: expected (let (bindings) body)"}
	}
	pairs, err := l.assertList(elems[1], "let bindings")
	if err != nil {
		return err
	}
	if len(pairs)%2 != 0 {
		return &LowerError{Msg: "let: bindings must come in name/value pairs"}
	}

	scopeIdx := l.beginScope()

	for i := 0; i < len(pairs); i += 2 {
		name, err := l.assertSymbol(pairs[i], "let binding name")
		if err != nil {
			return err
		}
		l.emit(Instr{Op: PushNumber, Num: 0})
		l.emit(Instr{Op: Bind, Name: name})
		if err := l.expr(pairs[i+1]); err != nil {
			return err
		}
		l.emit(Instr{Op: Set, Name: name})
	}

	if err := l.expr(elems[2]); err != nil {
		return err
	}
	l.emit(Instr{Op: ScopeEnd, Arg: uint32(scopeIdx)})
	return nil
}

// call lowers (f a1 .. am): arguments left-to-right, then f, then call.
// Each argument's last instruction is recorded in ArgBoundaries so the
// code generator knows where top must be relocated onto the explicit
// stack before the next argument (or f itself) overwrites it.
func (l *lowerer) call(elems []ast.ID) error {
	for _, a := range elems[1:] {
		if err := l.expr(a); err != nil {
			return err
		}
		l.prog.ArgBoundaries = append(l.prog.ArgBoundaries, len(l.prog.Instrs)-1)
	}
	if err := l.expr(elems[0]); err != nil {
		return err
	}
	l.emit(Instr{Op: Call, Arg: uint32(len(elems) - 1)})
	return nil
}

// scoped lowers expr inside its own scope_begin/scope_end bracket, used
// by if's three sub-expressions and (via let/lambda's own wrapping) not
// duplicated elsewhere.
func (l *lowerer) scoped(id ast.ID) error {
	scopeIdx := l.beginScope()
	if err := l.expr(id); err != nil {
		return err
	}
	l.emit(Instr{Op: ScopeEnd, Arg: uint32(scopeIdx)})
	return nil
}

// beginScope emits a scope_begin instruction labeled with its own RPN
// index, used as the scope's id.
func (l *lowerer) beginScope() int {
	idx := len(l.prog.Instrs)
	l.emit(Instr{Op: ScopeBegin, Arg: uint32(idx)})
	return idx
}
