// Package unroll provides the time-index unroller: a stateful helper
// mapping an untimed term and a tick to a timed term in
// which every declared symbol is renamed to a tick-qualified instance. It
// is a thin, generic facility — the MUS engine's actual unrolling policy
// (which ticks, how many) lives in mus/unitunroll.go.
//
// The Unroller only renames symbols it was told about at construction
// (state variables and inputs). Any other symbol it encounters — notably
// a Tseitin auxiliary boolean minted mid-query — passes through
// unrenamed: the unroller knows nothing about freshly-minted auxiliary
// variables. Callers that need those timed are responsible for the
// renaming themselves (mus/tseitin.go).
package unroll

import (
	"fmt"

	"github.com/fmcheck/mus-engine/smt"
)

// Unroller renames declared symbols in a term to tick-qualified instances,
// caching on (symbol, tick) so repeated unrolling shares structure the way
// the underlying solver's hash-consing expects.
type Unroller struct {
	solver smt.Solver

	// nextOf maps a current-state symbol to its declared next-state
	// symbol, so AtTime knows to advance next-state occurrences to
	// tick+1 rather than tick. currOf is its inverse.
	nextOf map[smt.Term]smt.Term
	currOf map[smt.Term]smt.Term

	// inputVars are renamed at tick i, same as current-state variables,
	// but never appear as the target of a next-state equality.
	inputVars map[smt.Term]bool

	timed map[timedKey]smt.Term
}

type timedKey struct {
	base smt.Term
	tick int
}

// New returns an Unroller backed by solver, over the given current-state
// symbols (the keys of nextOf), their declared next-state counterparts
// (the values of nextOf), and inputVars. Any symbol outside these three
// sets is left untouched by AtTime.
func New(solver smt.Solver, nextOf map[smt.Term]smt.Term, inputVars map[smt.Term]bool) *Unroller {
	curr := make(map[smt.Term]smt.Term, len(nextOf))
	for c, n := range nextOf {
		curr[n] = c
	}
	return &Unroller{
		solver:    solver,
		nextOf:    nextOf,
		currOf:    curr,
		inputVars: inputVars,
		timed:     make(map[timedKey]smt.Term),
	}
}

// AtTime returns t with every declared symbol replaced by its timed
// instance: current-state variables and inputs become v@i, next-state
// occurrences become v@(i+1). Timed symbols are created on demand and
// cached.
func (u *Unroller) AtTime(t smt.Term, tick int) smt.Term {
	subst := make(map[smt.Term]smt.Term)
	u.collectSubst(t, tick, subst, make(map[smt.Term]bool))
	if len(subst) == 0 {
		return t
	}
	return u.solver.Substitute(t, subst)
}

func (u *Unroller) collectSubst(t smt.Term, tick int, subst map[smt.Term]smt.Term, seen map[smt.Term]bool) {
	if seen[t] {
		return
	}
	seen[t] = true
	if t.IsSymbol() {
		if _, already := subst[t]; already {
			return
		}
		switch {
		case u.currOf[t] != nil:
			subst[t] = u.timedSymbol(u.currOf[t], tick+1)
		case u.nextOf[t] != nil || u.inputVars[t]:
			subst[t] = u.timedSymbol(t, tick)
		}
		// Anything else (not a declared state/input var) is left alone.
		return
	}
	for _, c := range t.Children() {
		u.collectSubst(c, tick, subst, seen)
	}
}

// TimedSymbol returns (creating if necessary) the tick-qualified instance
// of an arbitrary symbol, bypassing the declared-variable restriction
// AtTime enforces. It exists for mus/tseitin.go's manual cross-time
// propagation of auxiliary variables, which by design the generic
// unrolling rule above does not reach.
func (u *Unroller) TimedSymbol(base smt.Term, tick int) smt.Term {
	return u.timedSymbol(base, tick)
}

func (u *Unroller) timedSymbol(base smt.Term, tick int) smt.Term {
	key := timedKey{base: base, tick: tick}
	if existing, ok := u.timed[key]; ok {
		return existing
	}
	name := fmt.Sprintf("%s@%d", base.String(), tick)
	if existing, ok := u.solver.GetSymbol(name); ok {
		u.timed[key] = existing
		return existing
	}
	sym, err := u.solver.MakeSymbol(name, base.Sort())
	if err != nil {
		// A symbol already carrying this name was reused above (even if it
		// came from a different base symbol), so MakeSymbol failing here
		// is not something this package can recover from.
		panic(fmt.Sprintf("unroll: %v", err))
	}
	u.timed[key] = sym
	return sym
}
