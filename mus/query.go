package mus

import (
	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/ts"
	"github.com/fmcheck/mus-engine/unroll"
)

// musAssertion records one mus_assert(cv, body) call: the control variable
// and the timed body it was equated to in the solver.
type musAssertion struct {
	controlVar smt.Term
	body       smt.Term
}

// queryState is the MUS query state: everything a single check_until call
// accumulates before handing off to the enumerator.
type queryState struct {
	cvs *controlVarRegistry

	musAssertions        []musAssertion
	contextualAssertions []smt.Term

	tseitin *tseitinState // nil unless Tseitin mode is on
}

func (q *queryState) mustAssert(solver smt.Solver, cv, body smt.Term) {
	q.musAssertions = append(q.musAssertions, musAssertion{controlVar: cv, body: body})
	solver.AssertFormula(solver.MakeTerm(smt.Equal, cv, body))
}

func (q *queryState) contextualAssert(solver smt.Solver, body smt.Term) {
	q.contextualAssertions = append(q.contextualAssertions, body)
	solver.AssertFormula(body)
}

// hardAssertions returns every assertion that always holds in this query —
// the contextual assertions plus each mus_assertion's cv = body equation —
// the set the reference enumerator treats as fixed background theory while
// it toggles control variables on and off.
func (q *queryState) hardAssertions(solver smt.Solver) []smt.Term {
	out := make([]smt.Term, 0, len(q.contextualAssertions)+len(q.musAssertions))
	out = append(out, q.contextualAssertions...)
	for _, a := range q.musAssertions {
		out = append(out, solver.MakeTerm(smt.Equal, a.controlVar, a.body))
	}
	return out
}

// buildQuery builds the control-variable-indirected query. property.TS
// must already have declared invariants populated; k is the bound the
// caller wants to check up to.
func buildQuery(solver smt.Solver, property ts.Property, k int, opts Options) (*queryState, error) {
	system := property.TS
	u := unroll.New(solver, system.NextMap(), system.InputVars)

	q := &queryState{cvs: newControlVarRegistry(solver)}
	if opts.ApplyTseitin {
		q.tseitin = newTseitinState(solver, u, q.cvs)
	}

	var initConjuncts map[smt.Term]bool
	if opts.AtomicInit {
		initConjuncts = map[smt.Term]bool{system.Init: true}
	} else {
		initConjuncts = extractTopLevelConjuncts(solver, system.Init)
	}
	transConjuncts := extractTopLevelConjuncts(solver, system.Trans)

	if err := separateDeclaredInvariants(solver, system, initConjuncts, transConjuncts); err != nil {
		return nil, err
	}

	// INIT units: registered in the conjunct set's (sorted, deterministic)
	// iteration order. This must happen before buildTransUnits below, since
	// buildTransUnits runs Tseitin decomposition (when enabled) as a side
	// effect and mints TSEITIN control variables into the same q.cvs
	// registry — INIT has to be fully registered first or TSEITIN vars
	// would land ahead of it.
	if opts.AtomicInit {
		cv, err := q.cvs.makeAtomicControlVar(INIT)
		if err != nil {
			return nil, err
		}
		q.mustAssert(solver, cv, unrollAt(u, system.Init, 0))
	} else {
		for _, ic := range conjunctSlice(initConjuncts) {
			cv, err := q.cvs.makeControlVarForTerm(INIT, ic)
			if err != nil {
				return nil, err
			}
			q.mustAssert(solver, cv, unrollAt(u, ic, 0))
		}
	}

	units, transContextual, err := buildTransUnits(solver, system, u, transConjuncts, k, opts.CombineSuffix, opts.IncludeYosysInternalNetnames, q.tseitin)
	if err != nil {
		return nil, err
	}
	for _, body := range transContextual {
		q.contextualAssert(solver, body)
	}

	// TRANS units: registered in buildTransUnits' deterministic order.
	for _, unit := range units {
		cv, err := q.cvs.makeControlVarNamed(TRANS, unit.id)
		if err != nil {
			return nil, err
		}
		q.mustAssert(solver, cv, unit.body)
	}

	// Declared invariants: registered in ts.Constraints' own order.
	for _, c := range system.Constraints {
		cv, err := q.cvs.makeControlVarForTerm(INVAR, c.Term)
		if err != nil {
			return nil, err
		}
		q.mustAssert(solver, cv, unrollUntilBound(solver, u, c.Term, k+1))
	}

	// SPEC: the query asks whether the property fails at any reached state.
	specCV, err := q.cvs.makeControlVarForTerm(SPEC, property.Term)
	if err != nil {
		return nil, err
	}
	notPhi := solver.MakeTerm(smt.Not, unrollUntilBound(solver, u, property.Term, k+1))
	q.mustAssert(solver, specCV, notPhi)

	// The Tseitin decomposer only records what it minted; asserting it to
	// the solver is the query builder's job, same as every other
	// mus_assert/contextual_assert call above. TSEITIN control variables
	// were minted into q.cvs during the buildTransUnits call above, as part
	// of decomposing each trans conjunct — which now runs after every INIT
	// control variable is registered, and before the TRANS loop above mints
	// its own per-unit control variables. So the full registration order is
	// INIT, TSEITIN, TRANS, INVAR, SPEC: TSEITIN lands inside the trans
	// phase, strictly after INIT and strictly before INVAR/SPEC.
	if q.tseitin != nil {
		for _, a := range q.tseitin.musAssertions {
			q.mustAssert(solver, a.controlVar, a.body)
		}
		for _, body := range q.tseitin.contextualAssertions {
			q.contextualAssert(solver, body)
		}
	}

	return q, nil
}
