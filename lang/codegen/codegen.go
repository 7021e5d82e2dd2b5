// Package codegen translates a fully-resolved rpn.Program into C source
// text against runtime/support.h. It splits generation state in two:
// pcomp holds one long-lived state for the whole translation unit, and
// fcomp holds one short-lived state per function-unit, accumulated then
// linearized into the unit's output.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mna/lolc/lang/ast"
	"github.com/mna/lolc/lang/rpn"
)

// Error is a fatal error raised while generating C source, e.g. a free
// symbol that names no known built-in.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// builtins maps a surface symbol to the descriptor runtime/support.h
// defines for it: a fixed name table, closed by construction.
var builtins = map[string]string{
	"+":          "sup_builtin_add",
	"-":          "sup_builtin_subtract",
	"=":          "sup_builtin_equals",
	"<":          "sup_builtin_less_than",
	"or":         "sup_builtin_bitwise_or",
	"and":        "sup_builtin_bitwise_and",
	"prog-arg":   "sup_builtin_program_argument",
	"str-to-num": "sup_builtin_string_to_number",
	"num-to-str": "sup_builtin_number_to_string",
	"put-str":    "sup_builtin_put_string",
}

// Generate compiles a resolved program to a complete C translation unit.
// arena is required to recover string literal text, which rpn.Str
// instructions address only by source offset.
func Generate(p *rpn.Program, a *ast.Arena) (string, error) {
	if !p.IsResolved() {
		return "", &Error{Msg: "codegen: program is not fully resolved"}
	}
	if len(p.LambdaTable) == 0 {
		return "", &Error{Msg: "codegen: program has no top-level lambda"}
	}

	pc := &pcomp{
		prog:     p,
		arena:    a,
		lambda:   swiss.NewMap[int, int](uint32(len(p.LambdaTable))), // rpn index of `lambda` -> K
		dupAfter: make(map[int]bool, len(p.ArgBoundaries)),
	}
	for k, idx := range p.LambdaTable {
		pc.lambda.Put(idx, k)
	}
	for _, idx := range p.ArgBoundaries {
		pc.dupAfter[idx] = true
	}
	pc.matchLambdaRet()

	var out strings.Builder
	out.WriteString("/* generated by lolc; do not edit by hand */\n")
	out.WriteString("#include \"support.h\"\n\n")

	for k, idx := range p.LambdaTable {
		fn, err := pc.function(k, idx)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
		out.WriteByte('\n')
	}

	outermost, _ := pc.lambda.Get(p.LambdaTable[len(p.LambdaTable)-1])
	fmt.Fprintf(&out, "int main(int argc, char **argv) {\n")
	out.WriteString("\tprogram_args = argv;\n")
	out.WriteString("\tprogram_args_count = argc;\n")
	out.WriteString("\tsupPushNumber(argc);\n")
	fmt.Fprintf(&out, "\tsupPushLambda(&lambda_type_%d);\n", outermost)
	out.WriteString("\tsupCall();\n")
	out.WriteString("\treturn (int)top.v.number;\n")
	out.WriteString("}\n")

	return out.String(), nil
}

// pcomp holds state shared across the whole translation unit: the
// program being read from, and the index of each lambda instruction's
// matching lambda_ret (needed to know how far a nested lambda's body
// extends, so its instructions can be skipped rather than re-emitted
// when encountered from an enclosing function).
type pcomp struct {
	prog     *rpn.Program
	arena    *ast.Arena
	lambda   *swiss.Map[int, int] // rpn index of `lambda` -> lambda number K
	retOf    map[int]int          // rpn index of `lambda` -> rpn index of its `lambda_ret`
	dupAfter map[int]bool         // rpn index -> emit supStackDup() right after it
}

// matchLambdaRet does one forward bracket-matching scan over the whole
// program, pairing each lambda with its lambda_ret by nesting depth.
func (pc *pcomp) matchLambdaRet() {
	pc.retOf = make(map[int]int)
	var stack []int
	for i, ins := range pc.prog.Instrs {
		switch ins.Op {
		case rpn.Lambda:
			stack = append(stack, i)
		case rpn.LambdaRet:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pc.retOf[top] = i
		}
	}
}

// function generates the C function and static descriptor for the K-th
// lambda, whose `lambda` instruction sits at lambdaIdx.
func (pc *pcomp) function(k, lambdaIdx int) (string, error) {
	fc := &fcomp{pcomp: pc, k: k}
	fmt.Fprintf(&fc.body, "static void genLambda%d(void) {\n", k)

	end := pc.retOf[lambdaIdx]
	i := lambdaIdx + 1
	for i < end {
		n, err := fc.instr(i)
		if err != nil {
			return "", err
		}
		if pc.dupAfter[i+n-1] {
			fc.body.WriteString("\tsupStackDup();\n")
		}
		i += n
	}

	fc.body.WriteString("}\n")
	fmt.Fprintf(&fc.body, "static ManagedType lambda_type_%d = {\"lambda\", genLambda%d};\n", k, k)
	return fc.body.String(), nil
}

// fcomp holds state for one function-unit: its own accumulating output
// buffer. It reads the enclosing pcomp for cross-function facts (which
// rpn index belongs to which lambda number).
type fcomp struct {
	pcomp *pcomp
	k     int
	body  strings.Builder
}

// instr emits the C for the instruction at i and returns how many RPN
// instructions it consumed (more than one only for a nested lambda,
// whose entire body is skipped here since it is emitted as its own
// function elsewhere).
func (fc *fcomp) instr(i int) (int, error) {
	p := fc.pcomp.prog
	ins := p.Instrs[i]

	switch ins.Op {
	case rpn.Lambda:
		k, ok := fc.pcomp.lambda.Get(i)
		if !ok {
			return 0, &Error{Msg: "codegen: lambda instruction missing from lambda table"}
		}
		fmt.Fprintf(&fc.body, "\tsupPushLambda(&lambda_type_%d);\n", k)
		return fc.pcomp.retOf[i] - i + 1, nil

	case rpn.LambdaContextLoad:
		fc.body.WriteString("\tcontext_stack = top.v.ctx;\n")

	case rpn.ScopeBegin:
		fmt.Fprintf(&fc.body, "\tHeapVariable *ctx_%d = context_stack; int32_t binds_%d = binds_index;\n", ins.Arg, ins.Arg)

	case rpn.ScopeEnd:
		fmt.Fprintf(&fc.body, "\tcontext_stack = ctx_%d; binds_index = binds_%d;\n", ins.Arg, ins.Arg)

	case rpn.ConditionStart:
		fc.body.WriteString("\tif (top.v.number) { supStackDrop();\n")

	case rpn.ConditionElse:
		fc.body.WriteString("\t} else { supStackDrop();\n")

	case rpn.ConditionEnd:
		fc.body.WriteString("\t}\n")

	case rpn.Bind:
		fc.body.WriteString("\tsupBind();\n")

	case rpn.BindCaptured:
		fc.body.WriteString("\tsupBindCaptured();\n")

	case rpn.GetByHops:
		fmt.Fprintf(&fc.body, "\tsupGet(%d);\n", ins.Arg)

	case rpn.SetByHops:
		fmt.Fprintf(&fc.body, "\tsupSet(%d);\n", ins.Arg)

	case rpn.GetCapturedByHops:
		fmt.Fprintf(&fc.body, "\tsupGetCaptured(%d);\n", ins.Arg)

	case rpn.SetCapturedByHops:
		fmt.Fprintf(&fc.body, "\tsupSetCaptured(%d);\n", ins.Arg)

	case rpn.PushNumber:
		fmt.Fprintf(&fc.body, "\tsupPushNumber(%dLL);\n", ins.Num)

	case rpn.Str:
		fmt.Fprintf(&fc.body, "\tsupPushString(%q);\n", fc.pcomp.arena.StringTextAtOffset(ins.Arg))

	case rpn.Call:
		fc.body.WriteString("\tsupCall();\n")

	case rpn.Get:
		name, err := fc.builtin(ins.Name)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&fc.body, "\tsupPushLambda(&%s);\n", name)

	default:
		return 0, &Error{Msg: fmt.Sprintf("codegen: unexpected instruction %s at index %d", ins.Op, i)}
	}
	return 1, nil
}

// builtin resolves an unresolved get (one no resolve pass rewrote to a
// hop-based form) to its built-in descriptor. By the time codegen runs,
// an unresolved get can only name a built-in, since resolve promotes
// every get naming a real bind to a hop-based form; an unknown name here
// is fatal.
func (fc *fcomp) builtin(name string) (string, error) {
	if sym, ok := builtins[name]; ok {
		return sym, nil
	}
	known := maps.Keys(builtins)
	slices.Sort(known)
	return "", &Error{Msg: fmt.Sprintf("codegen: unknown free symbol %q (known built-ins: %s)", name, strings.Join(known, ", "))}
}
