// Package ts holds the transition-system and property data model.
// Constructing one from BTOR2/SMV is explicitly out of scope — these are
// plain value types a front-end would populate.
package ts

import "github.com/fmcheck/mus-engine/smt"

// Constraint is a declared invariant paired with an "always holds,
// including initially" flag. The engine only ever sees true here —
// callers that declare an invariant which need not hold initially are a
// structural-error condition the engine rejects.
type Constraint struct {
	Term   smt.Term
	Always bool
}

// TransitionSystem bundles init/trans formulae, declared invariants, and
// the state/input variable sets.
type TransitionSystem struct {
	Init  smt.Term
	Trans smt.Term

	Constraints []Constraint

	StateVars map[smt.Term]bool
	InputVars map[smt.Term]bool

	// nextOf/currOf implement the Next/Curr/IsNextVar queries: nextOf
	// maps a current-state variable to its next-state symbol.
	nextOf map[smt.Term]smt.Term
	currOf map[smt.Term]smt.Term
}

// New returns a TransitionSystem. nextOf must map every entry of stateVars
// to its next-state symbol.
func New(init, trans smt.Term, constraints []Constraint, stateVars, inputVars map[smt.Term]bool, nextOf map[smt.Term]smt.Term) *TransitionSystem {
	currOf := make(map[smt.Term]smt.Term, len(nextOf))
	for c, n := range nextOf {
		currOf[n] = c
	}
	return &TransitionSystem{
		Init:        init,
		Trans:       trans,
		Constraints: constraints,
		StateVars:   stateVars,
		InputVars:   inputVars,
		nextOf:      nextOf,
		currOf:      currOf,
	}
}

// Next returns the next-state symbol for a current-state variable v.
func (t *TransitionSystem) Next(v smt.Term) smt.Term {
	return t.nextOf[v]
}

// Curr returns the current-state variable for a next-state symbol n, the
// partial inverse of Next.
func (t *TransitionSystem) Curr(n smt.Term) (smt.Term, bool) {
	v, ok := t.currOf[n]
	return v, ok
}

// IsNextVar reports whether term is a next-state symbol of some state
// variable in this system.
func (t *TransitionSystem) IsNextVar(term smt.Term) bool {
	_, ok := t.currOf[term]
	return ok
}

// NextMap returns the state-variable -> next-state-symbol mapping used by
// the constraint separator to find invariants in their next-state form.
func (t *TransitionSystem) NextMap() map[smt.Term]smt.Term {
	return t.nextOf
}
