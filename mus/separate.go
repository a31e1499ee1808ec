package mus

import (
	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/ts"
)

// separateDeclaredInvariants removes every declared invariant from
// initConjuncts and transConjuncts (in both its as-is and next-state
// forms), so they can be registered as their own INVAR units instead of
// silently riding along inside an INIT or TRANS unit.
//
// All declared invariants must have Always == true; anything else is a
// structural error.
func separateDeclaredInvariants(solver smt.Solver, system *ts.TransitionSystem, initConjuncts, transConjuncts map[smt.Term]bool) error {
	nextMap := system.NextMap()
	for _, c := range system.Constraints {
		if !c.Always {
			return newStructuralError("declared invariant %q has a non-'always' flag", c.Term)
		}
		delete(initConjuncts, c.Term)
		delete(transConjuncts, c.Term)
		nexted := solver.Substitute(c.Term, nextMap)
		delete(transConjuncts, nexted)
	}
	return nil
}
