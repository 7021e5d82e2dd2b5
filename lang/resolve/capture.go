package resolve

import "github.com/mna/lolc/lang/rpn"

// promoteCapturedBinds is the first capture-analysis pass: for each
// get/set, walk backward until the binding it refers to is found (the first
// bind/bind_captured of the same name at non-positive depth, i.e. the
// innermost enclosing declaration; binds inside already-closed scopes are
// skipped); if that binding is a plain bind found beyond a
// lambda boundary (negative depth, with a lambda_context_load seen along
// the way), promote it in place to bind_captured.
func promoteCapturedBinds(p *rpn.Program) {
	for i, ref := range p.Instrs {
		if ref.Op != rpn.Get && ref.Op != rpn.Set {
			continue
		}
		var st scanState
		for j := i - 1; j >= 0; j-- {
			cur := p.Instrs[j]
			st.step(cur)
			if st.depth > 0 {
				continue
			}
			if (cur.Op == rpn.Bind || cur.Op == rpn.BindCaptured) && cur.Name == ref.Name {
				if cur.Op == rpn.Bind && st.depth < 0 && st.lambdaPassed {
					p.Instrs[j].Op = rpn.BindCaptured
				}
				break
			}
		}
	}
}

// reclassifyLoads is Pass B: for each remaining get, find the innermost
// enclosing binding at non-positive depth and reclassify the get as
// get_captured if that binding is captured, or leave it as a local get
// otherwise. A get with no matching binding anywhere refers to a
// built-in and is left untouched for codegen to resolve.
func reclassifyLoads(p *rpn.Program) {
	for i, ref := range p.Instrs {
		if ref.Op != rpn.Get {
			continue
		}
		var depth int
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
			if cur.Op == rpn.BindCaptured && cur.Name == ref.Name {
				p.Instrs[i].Op = rpn.GetCaptured
				break
			}
			if cur.Op == rpn.Bind && cur.Name == ref.Name {
				break
			}
		}
	}
}

// reclassifyStores is Pass C, symmetric to Pass B over set instructions.
func reclassifyStores(p *rpn.Program) {
	for i, ref := range p.Instrs {
		if ref.Op != rpn.Set {
			continue
		}
		var depth int
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
			if cur.Op == rpn.BindCaptured && cur.Name == ref.Name {
				p.Instrs[i].Op = rpn.SetCaptured
				break
			}
			if cur.Op == rpn.Bind && cur.Name == ref.Name {
				break
			}
		}
	}
}
