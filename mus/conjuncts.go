package mus

import "github.com/fmcheck/mus-engine/smt"

// extractTopLevelConjuncts walks the right spine of a right-associated
// conjunction: while the root is a binary And, emit the right child and
// recurse on the left; at the fixed point, emit the remaining term unless
// it is the boolean constant true.
//
// Assumes And nodes built by the front-end are exactly binary, so only
// the two-child shape is peeled; an And with any other arity is treated
// as an atomic, unpeelable conjunct.
func extractTopLevelConjuncts(solver smt.Solver, conjunction smt.Term) map[smt.Term]bool {
	conjuncts := make(map[smt.Term]bool)
	t := conjunction
	for t.Op() == smt.And && len(t.Children()) == 2 {
		children := t.Children()
		conjuncts[children[1]] = true
		t = children[0]
	}
	if t != solver.MakeBool(true) {
		conjuncts[t] = true
	}
	return conjuncts
}

// conjunctSlice returns m's keys as a slice, in an arbitrary but stable
// (insertion-independent) order: sorted by string form.
// extractTopLevelConjuncts itself returns a set (order doesn't matter
// there), but downstream control-variable registration needs a
// deterministic order so that repeated runs over the same system produce
// identically-indexed MUS bitmasks.
func conjunctSlice(m map[smt.Term]bool) []smt.Term {
	out := make([]smt.Term, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sortTerms(out)
	return out
}
