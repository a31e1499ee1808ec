package musspec

import (
	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/smt/memsolver"
	"github.com/fmcheck/mus-engine/ts"
)

// oneBitLatchFixture builds a count2-style 1-bit counter fixed at zero
// (init ¬s, trans s'=s) under the property "s is always false", which
// holds forever. Its unique MUS is the full {INIT, TRANS, SPEC} triple:
// dropping any one of the three leaves a satisfiable residual.
func oneBitLatchFixture() (*memsolver.Solver, ts.Property) {
	s := memsolver.New()
	curr, _ := s.MakeSymbol("s", smt.BoolSort)
	next, _ := s.MakeSymbol("s'", smt.BoolSort)

	init := s.MakeTerm(smt.Not, curr)
	trans := s.MakeTerm(smt.Equal, next, curr)
	system := ts.New(init, trans, nil,
		map[smt.Term]bool{curr: true}, nil,
		map[smt.Term]smt.Term{curr: next})
	prop := ts.NewProperty(system, s.MakeTerm(smt.Not, curr))
	return s, prop
}

// twoIndependentInvariantsFixture builds a count2mus-style fixture with two
// structurally unrelated latches s1, s2, each declared (via a separate
// always-true invariant) to hold in every state while also initialized to
// false — a direct, independent contradiction at t=0 for each one. Since
// init is built as a conjunction and left non-atomic, extractTopLevelConjuncts
// splits it into two separate INIT control variables, giving exactly two
// disjoint minimal unsat subsets: {INIT_¬s1, INVAR_s1} and
// {INIT_¬s2, INVAR_s2}. Neither TRANS nor SPEC participates in either MUS.
func twoIndependentInvariantsFixture() (*memsolver.Solver, ts.Property) {
	s := memsolver.New()
	s1, _ := s.MakeSymbol("s1", smt.BoolSort)
	s2, _ := s.MakeSymbol("s2", smt.BoolSort)
	n1, _ := s.MakeSymbol("s1'", smt.BoolSort)
	n2, _ := s.MakeSymbol("s2'", smt.BoolSort)
	p, _ := s.MakeSymbol("p", smt.BoolSort)

	init := s.MakeTerm(smt.And, s.MakeTerm(smt.Not, s1), s.MakeTerm(smt.Not, s2))
	trans := s.MakeTerm(smt.And,
		s.MakeTerm(smt.Equal, n1, s1),
		s.MakeTerm(smt.Equal, n2, s2))
	constraints := []ts.Constraint{
		{Term: s1, Always: true},
		{Term: s2, Always: true},
	}
	system := ts.New(init, trans, constraints,
		map[smt.Term]bool{s1: true, s2: true}, map[smt.Term]bool{p: true},
		map[smt.Term]smt.Term{s1: n1, s2: n2})

	// A property over the free input p, which no other unit mentions:
	// SPEC's body NOT(p@0 AND ... AND p@k) is satisfiable (p@0 = false)
	// alongside any other set of units, so SPEC joins neither MUS. (A
	// tautological property would not do: SPEC's body would then be
	// NOT(true), and {SPEC} alone would be a third MUS.)
	prop := ts.NewProperty(system, p)
	return s, prop
}

// satisfiableLatchFixture builds a count2-style fixture whose property is
// violated from the very first state: init asserts ¬s while the property
// claims s holds everywhere. The full query (every control variable forced
// true) is therefore satisfiable (s stays false forever, consistent with
// every hard equation) and there is no MUS — the scenario meant to exercise
// enumerator/remus's documented process-exit-on-SAT behavior.
func satisfiableLatchFixture() (*memsolver.Solver, ts.Property) {
	s := memsolver.New()
	curr, _ := s.MakeSymbol("s", smt.BoolSort)
	next, _ := s.MakeSymbol("s'", smt.BoolSort)

	init := s.MakeTerm(smt.Not, curr)
	trans := s.MakeTerm(smt.Equal, next, curr)
	system := ts.New(init, trans, nil,
		map[smt.Term]bool{curr: true}, nil,
		map[smt.Term]smt.Term{curr: next})
	prop := ts.NewProperty(system, curr)
	return s, prop
}
