package ts

import "github.com/fmcheck/mus-engine/smt"

// Property pairs a transition system with the safety term the engine
// checks holds in every reachable state.
type Property struct {
	TS   *TransitionSystem
	Term smt.Term
}

// NewProperty returns a Property over ts checking that phi holds at every
// reachable state.
func NewProperty(ts *TransitionSystem, phi smt.Term) Property {
	return Property{TS: ts, Term: phi}
}
