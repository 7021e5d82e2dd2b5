package resolve

import "github.com/mna/lolc/lang/rpn"

// resolveLocalHops is hop resolution's first pass: rewrite every remaining local get
// / set into a hop count against the bind-array, counting each bind at
// non-positive depth between the reference and its matching bind
// (exclusive of the match itself) as one hop, and ignoring bindings at
// positive depth (already-closed sibling blocks).
func resolveLocalHops(p *rpn.Program) {
	for i, ref := range p.Instrs {
		if ref.Op != rpn.Get && ref.Op != rpn.Set {
			continue
		}
		var depth, hops int
		for j := i - 1; j >= 0; j-- {
			cur := p.Instrs[j]
			switch cur.Op {
			case rpn.ScopeBegin:
				depth--
			case rpn.ScopeEnd:
				depth++
			}
			if depth > 0 {
				continue
			}
			if cur.Op != rpn.Bind {
				continue
			}
			if cur.Name == ref.Name {
				if ref.Op == rpn.Get {
					p.Instrs[i] = rpn.Instr{Op: rpn.GetByHops, Arg: uint32(hops)}
				} else {
					p.Instrs[i] = rpn.Instr{Op: rpn.SetByHops, Arg: uint32(hops)}
				}
				break
			}
			hops++
		}
	}
}

// resolveClosureHops is hop resolution's second pass, the same algorithm run over
// bind_captured / get_captured / set_captured instead, producing hop
// counts against the closure chain.
func resolveClosureHops(p *rpn.Program) {
	for i, ref := range p.Instrs {
		if ref.Op != rpn.GetCaptured && ref.Op != rpn.SetCaptured {
			continue
		}
		var depth, hops int
		for j := i - 1; j >= 0; j-- {
			cur := p.Instrs[j]
			switch cur.Op {
			case rpn.ScopeBegin:
				depth--
			case rpn.ScopeEnd:
				depth++
			}
			if depth > 0 {
				continue
			}
			if cur.Op != rpn.BindCaptured {
				continue
			}
			if cur.Name == ref.Name {
				if ref.Op == rpn.GetCaptured {
					p.Instrs[i] = rpn.Instr{Op: rpn.GetCapturedByHops, Arg: uint32(hops)}
				} else {
					p.Instrs[i] = rpn.Instr{Op: rpn.SetCapturedByHops, Arg: uint32(hops)}
				}
				break
			}
			hops++
		}
	}
}
