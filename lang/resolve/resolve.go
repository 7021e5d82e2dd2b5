// Package resolve implements the two post-lowering stages, capture
// analysis and hop resolution: five backward linear scans over the flat
// RPN that turn every name-based bind/get/set into either a local
// bind-array reference or a heap closure-chain reference, addressed by
// hop count rather than by name.
//
// Each pass is a literal backward walk from every reference toward the
// start of the program: for any reference, the nearest matching bind
// behind it in an enclosing scope (binds inside already-closed scopes are
// skipped) is its binding site, whether that bind sits
// in the same function or has to be promoted across a lambda boundary
// first. A forward single-pass resolver keeping an explicit stack of
// per-scope bindings would be asymptotically better, but the
// backward-scan form is the simplest direct statement of "nearest
// enclosing bind wins" and stays the primary, obviously-correct
// implementation.
package resolve

import "github.com/mna/lolc/lang/rpn"

// Resolve runs Capture Analysis followed by Hop Resolution over p,
// mutating it in place. After Resolve returns, p.IsResolved() is true:
// no set, set_captured or get_captured instruction remains, and a plain
// get remains only where no binding of its name exists (a built-in).
// bind and bind_captured stay in place as declaration markers.
func Resolve(p *rpn.Program) {
	promoteCapturedBinds(p)
	reclassifyLoads(p)
	reclassifyStores(p)
	resolveLocalHops(p)
	resolveClosureHops(p)
}

// scanState tracks the scope-nesting depth delta accumulated while
// walking backward from a reference's own index: scope_end increments,
// scope_begin decrements, so depth is zero exactly when the cursor sits
// in the same scope the reference started in, and lambdaPassed latches
// once the walk has crossed into an enclosing function.
type scanState struct {
	depth        int
	lambdaPassed bool
}

func (s *scanState) step(ins rpn.Instr) {
	switch ins.Op {
	case rpn.ScopeBegin:
		s.depth--
	case rpn.ScopeEnd:
		s.depth++
	case rpn.LambdaContextLoad:
		if s.depth <= 0 {
			s.lambdaPassed = true
		}
	}
}
