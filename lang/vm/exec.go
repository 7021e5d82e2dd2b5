package vm

import "github.com/mna/lolc/lang/rpn"

// scopeSnapshot is the Go-side analog of codegen's per-scope C locals
// (ctx_<id>, binds_<id>): the context-chain head and bind-array depth
// to restore when the matching scope_end runs.
type scopeSnapshot struct {
	ctx   *cell
	binds int
}

// execLambda runs one activation of the lambda whose `lambda`
// instruction is at idx, from its own recursive call via m.call. It owns
// its scope snapshots as a local map, exactly as a generated C function
// owns its own ctx_<id>/binds_<id> locals: since Go's call stack already
// gives every recursive invocation a fresh frame, reentrant calls (direct
// or mutual recursion) naturally get independent snapshot maps.
func (m *Machine) execLambda(idx int) error {
	snapshots := make(map[uint32]scopeSnapshot)
	end := m.retOf[idx]
	i := idx + 1
	for i < end {
		n, err := m.exec(i, snapshots)
		if err != nil {
			return err
		}
		if m.dupAfter[i+n-1] {
			m.stackDup()
		}
		i += n
	}
	return nil
}

// exec runs the instruction at i and returns how many instructions it
// consumed (more than one only when i is a nested `lambda`, whose body
// is skipped here and will run later, in its own execLambda activation,
// when it is eventually called).
func (m *Machine) exec(i int, snapshots map[uint32]scopeSnapshot) (int, error) {
	ins := m.prog.Instrs[i]

	switch ins.Op {
	case rpn.Lambda:
		m.pushLambda(i)
		return m.retOf[i] - i + 1, nil

	case rpn.LambdaContextLoad:
		m.ctx = m.top.ctx

	case rpn.ScopeBegin:
		snapshots[ins.Arg] = scopeSnapshot{ctx: m.ctx, binds: len(m.binds)}

	case rpn.ScopeEnd:
		snap := snapshots[ins.Arg]
		m.ctx = snap.ctx
		m.binds = m.binds[:snap.binds]

	case rpn.ConditionStart:
		if m.top.Num == 0 {
			return m.skipToElse(i), nil
		}
		m.stackDrop()

	case rpn.ConditionElse:
		return m.skipToEnd(i), nil

	case rpn.ConditionEnd:
		// merge point; nothing to do

	case rpn.Bind:
		m.binds = append(m.binds, m.top)

	case rpn.BindCaptured:
		m.ctx = &cell{v: m.top, next: m.ctx}

	case rpn.GetByHops:
		m.top = m.binds[len(m.binds)-1-int(ins.Arg)]

	case rpn.SetByHops:
		m.binds[len(m.binds)-1-int(ins.Arg)] = m.top

	case rpn.GetCapturedByHops:
		c := m.ctx
		for h := 0; h < int(ins.Arg); h++ {
			c = c.next
		}
		m.top = c.v

	case rpn.SetCapturedByHops:
		c := m.ctx
		for h := 0; h < int(ins.Arg); h++ {
			c = c.next
		}
		c.v = m.top

	case rpn.PushNumber:
		m.top = Value{Kind: KindNumber, Num: ins.Num}

	case rpn.Str:
		m.top = Value{Kind: KindString, Str: m.arena.StringTextAtOffset(ins.Arg)}

	case rpn.Call:
		if err := m.call(); err != nil {
			return 0, err
		}

	case rpn.Get:
		m.top = Value{Kind: KindBuiltin, builtin: ins.Name}

	default:
		return 0, &RuntimeError{Msg: "vm: unexpected instruction " + ins.Op.String()}
	}
	return 1, nil
}

func (m *Machine) stackDup()  { m.stack = append(m.stack, m.top) }
func (m *Machine) stackDrop() { m.top = m.stack[len(m.stack)-1]; m.stack = m.stack[:len(m.stack)-1] }

// skipToElse advances past a not-taken then-branch when condition_start
// finds top zero, landing the caller's loop on the else branch. depth
// tracks nested ifs (whose own condition_start/condition_end pairs must
// not be mistaken for this if's own else/end markers).
func (m *Machine) skipToElse(condStart int) int {
	depth := 0
	for j := condStart + 1; j < len(m.prog.Instrs); j++ {
		switch m.prog.Instrs[j].Op {
		case rpn.ConditionStart:
			depth++
		case rpn.ConditionElse:
			if depth == 0 {
				m.stackDrop()
				return j + 1 - condStart
			}
		case rpn.ConditionEnd:
			depth--
		}
	}
	return len(m.prog.Instrs) - condStart
}

// skipToEnd advances past a taken then-branch's else clause, landing the
// caller's loop just past condition_end, with the same nested-if
// depth-tracking as skipToElse.
func (m *Machine) skipToEnd(condElse int) int {
	depth := 0
	for j := condElse + 1; j < len(m.prog.Instrs); j++ {
		switch m.prog.Instrs[j].Op {
		case rpn.ConditionStart:
			depth++
		case rpn.ConditionEnd:
			if depth == 0 {
				return j + 1 - condElse
			}
			depth--
		}
	}
	return len(m.prog.Instrs) - condElse
}
