// Package rpn defines the flat reverse-Polish instruction set LOL lowers
// into and the pass that produces it from an AST. The resolve package
// further rewrites name-based instructions in place; codegen consumes
// the final, fully-resolved instruction list.
package rpn

import "fmt"

// Op tags an Instr's operation.
type Op uint8

//nolint:revive
const (
	Lambda             Op = iota // payload: Arg = arg count
	LambdaContextLoad             // -
	LambdaRet                     // -
	ScopeBegin                    // payload: Arg = scope id
	ScopeEnd                      // payload: Arg = scope id
	ConditionStart                // payload: Arg = target index (backpatched)
	ConditionElse                 // payload: Arg = target index (backpatched)
	ConditionEnd                  // -
	Bind                          // payload: Name
	BindCaptured                  // payload: Name
	Set                           // payload: Name
	Get                           // payload: Name
	SetCaptured                   // payload: Name
	GetCaptured                   // payload: Name
	SetByHops                     // payload: Arg = hop count
	GetByHops                     // payload: Arg = hop count
	SetCapturedByHops             // payload: Arg = hop count
	GetCapturedByHops             // payload: Arg = hop count
	PushNumber                    // payload: Num
	Call                          // payload: Arg = arity
	Str                           // payload: Arg = source offset
	Placeholder                   // reserved; never emitted by lowering
)

func (o Op) String() string {
	return opNames[o]
}

var opNames = [...]string{
	Lambda:             "lambda",
	LambdaContextLoad:  "lambda_context_load",
	LambdaRet:          "lambda_ret",
	ScopeBegin:         "scope_begin",
	ScopeEnd:           "scope_end",
	ConditionStart:     "condition_start",
	ConditionElse:      "condition_else",
	ConditionEnd:       "condition_end",
	Bind:               "bind",
	BindCaptured:       "bind_captured",
	Set:                "set",
	Get:                "get",
	SetCaptured:        "set_captured",
	GetCaptured:        "get_captured",
	SetByHops:          "set_by_hops",
	GetByHops:          "get_by_hops",
	SetCapturedByHops:  "set_captured_by_hops",
	GetCapturedByHops:  "get_captured_by_hops",
	PushNumber:         "push_number",
	Call:               "call",
	Str:                "str",
	Placeholder:        "placeholder",
}

// Instr is one instruction in the flat RPN sequence. Only the payload
// field(s) relevant to Op are meaningful.
type Instr struct {
	Op   Op
	Arg  uint32 // argument count / scope id / hop count / target index / source offset
	Name string // symbol name, pre- and mid-resolution
	Num  int64  // PushNumber payload
}

func (i Instr) String() string {
	switch i.Op {
	case Lambda, ScopeBegin, ScopeEnd, ConditionStart, ConditionElse, Call:
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	case SetByHops, GetByHops, SetCapturedByHops, GetCapturedByHops:
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	case Str:
		return fmt.Sprintf("%s @%d", i.Op, i.Arg)
	case Bind, BindCaptured, Set, Get, SetCaptured, GetCaptured:
		return fmt.Sprintf("%s %s", i.Op, i.Name)
	case PushNumber:
		return fmt.Sprintf("%s %d", i.Op, i.Num)
	default:
		return i.Op.String()
	}
}

// Program is the flat instruction sequence produced by lowering, together
// with the table of indices at which lambda bodies begin. LambdaTable is
// ordered innermost-first, so the code generator can emit each body as
// its own C function without needing a forward declaration for any
// lambda it calls.
type Program struct {
	Instrs      []Instr
	LambdaTable []int

	// ArgBoundaries holds the index of the last instruction of every
	// value-producing subexpression whose result must survive past a
	// point where top would otherwise be overwritten: each of a call's
	// arguments (before the next argument, or the callee expression,
	// clobbers top) and an if's condition (before its own test clobbers
	// nothing, but a stack slot must still balance the unconditional
	// stack drop that runs on either branch). Codegen and vm both
	// emit/perform a stack duplication right after every instruction
	// listed here.
	ArgBoundaries []int
}

// Dump renders the program as one instruction per line, for the lower
// subcommand's debug dump.
func (p *Program) Dump() string {
	var out string
	for i, ins := range p.Instrs {
		out += fmt.Sprintf("%4d: %s\n", i, ins)
	}
	return out
}

// IsResolved reports whether every load/store reference naming a local
// or captured binding has been rewritten to a hop-based one. bind and
// bind_captured are declaration markers, not references, and are
// expected to remain; so is a plain get left over once resolution finds
// no enclosing binding of that name anywhere in the program. resolve
// leaves those alone deliberately, since they name a built-in, not an
// unresolved local (see resolve.reclassifyLoads). set, set_captured and
// get_captured always have a matching bind by construction, so any of
// those still present means resolution was never run or failed partway.
func (p *Program) IsResolved() bool {
	for _, ins := range p.Instrs {
		switch ins.Op {
		case Set, SetCaptured, GetCaptured:
			return false
		}
	}
	return true
}
