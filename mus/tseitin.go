package mus

import (
	"fmt"

	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/unroll"
)

// tseitinState carries the Tseitin decomposer's bookkeeping for the
// lifetime of one query build: a counter for fresh names, the mapping
// from each auxiliary to the sub-term it stands for, and the ordered list
// of auxiliaries — the Tseitin auxiliary state carried alongside the rest
// of the MUS query state.
type tseitinState struct {
	solver smt.Solver
	u      *unroll.Unroller
	cvs    *controlVarRegistry

	counter   int
	auxToTerm map[smt.Term]smt.Term
	auxOrder  []smt.Term

	musAssertions        []musAssertion
	contextualAssertions []smt.Term
}

func newTseitinState(solver smt.Solver, u *unroll.Unroller, cvs *controlVarRegistry) *tseitinState {
	return &tseitinState{
		solver:    solver,
		u:         u,
		cvs:       cvs,
		auxToTerm: make(map[smt.Term]smt.Term),
	}
}

// decompose rewrites t into a fresh auxiliary boolean that stands in for
// it, minting a TSEITIN control variable and recording the MUS/contextual
// assertions that tie the auxiliary to t's structure across the k-step
// unrolling. The returned term is the fresh leaf the caller should use in
// t's place.
func (ts *tseitinState) decompose(t smt.Term, k int) (smt.Term, error) {
	if t.Op() == smt.NoOp {
		return t, nil
	}

	children := t.Children()
	decomposedChildren := make([]smt.Term, len(children))
	for i, c := range children {
		// ITE's condition child is passed through unchanged; for every
		// other operator and position, children are decomposed just like
		// t itself.
		if t.Op() == smt.Ite && i == 0 {
			decomposedChildren[i] = c
			continue
		}
		dc, err := ts.decompose(c, k)
		if err != nil {
			return nil, err
		}
		decomposedChildren[i] = dc
	}

	if !t.Op().TseitinRebuildable() {
		return nil, newStructuralError("tseitin decomposition: unsupported operator %q", t.Op())
	}
	rebuilt := ts.solver.MakeTerm(t.Op(), decomposedChildren...)

	ts.counter++
	auxName := fmt.Sprintf("tseitin_aux_%d", ts.counter)
	aux, err := ts.solver.MakeSymbol(auxName, smt.BoolSort)
	if err != nil {
		return nil, err
	}
	ts.auxToTerm[aux] = rebuilt
	ts.auxOrder = append(ts.auxOrder, aux)

	cv, err := ts.cvs.makeControlVarNamed(TSEITIN, fmt.Sprintf("%d", ts.counter))
	if err != nil {
		return nil, err
	}

	unrolledDecomposed, err := ts.unrolledDecomposedForm(aux, rebuilt, k)
	if err != nil {
		return nil, err
	}
	ts.musAssertions = append(ts.musAssertions, musAssertion{
		controlVar: cv,
		body:       unrolledDecomposed,
	})

	// a <=> AND_i a@i, so timed instances agree with the untimed aux.
	timedInstances := make([]smt.Term, k)
	for i := 0; i < k; i++ {
		timedInstances[i] = ts.u.TimedSymbol(aux, i)
	}
	var conj smt.Term
	if k == 0 {
		conj = ts.solver.MakeBool(true)
	} else if k == 1 {
		conj = timedInstances[0]
	} else {
		conj = ts.solver.MakeTerm(smt.And, timedInstances...)
	}
	ts.contextualAssertions = append(ts.contextualAssertions,
		ts.solver.MakeTerm(smt.Equal, aux, conj))

	return aux, nil
}

// unrolledDecomposedForm builds, for each tick i in [0,k), the equation
// a@i = t'@i, where t' is substituted so every
// auxiliary introduced so far reads as its own tick-i instance before the
// standard unroller renames everything else, then conjoins across ticks.
func (ts *tseitinState) unrolledDecomposedForm(aux, rebuilt smt.Term, k int) (smt.Term, error) {
	if k <= 0 {
		return ts.solver.MakeBool(true), nil
	}
	perTick := make([]smt.Term, k)
	for i := 0; i < k; i++ {
		auxSubst := make(map[smt.Term]smt.Term, len(ts.auxOrder))
		for _, a := range ts.auxOrder {
			auxSubst[a] = ts.u.TimedSymbol(a, i)
		}
		withAuxTimed := ts.solver.Substitute(rebuilt, auxSubst)
		rhs := ts.u.AtTime(withAuxTimed, i)
		lhs := ts.u.TimedSymbol(aux, i)
		perTick[i] = ts.solver.MakeTerm(smt.Equal, lhs, rhs)
	}
	if k == 1 {
		return perTick[0], nil
	}
	return ts.solver.MakeTerm(smt.And, perTick...), nil
}
