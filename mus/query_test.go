package mus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/smt/memsolver"
	"github.com/fmcheck/mus-engine/ts"
	"github.com/fmcheck/mus-engine/unroll"
)

func counterFixture(t *testing.T) (*memsolver.Solver, ts.Property, smt.Term, smt.Term) {
	t.Helper()
	s := memsolver.New()
	curr, err := s.MakeSymbol("cnt", smt.BoolSort)
	require.NoError(t, err)
	next, err := s.MakeSymbol("cnt'", smt.BoolSort)
	require.NoError(t, err)
	input, err := s.MakeSymbol("en", smt.BoolSort)
	require.NoError(t, err)

	init := s.MakeTerm(smt.Not, curr)
	trans := s.MakeTerm(smt.Equal, next, s.MakeTerm(smt.And, curr, input))
	system := ts.New(init, trans, nil,
		map[smt.Term]bool{curr: true}, map[smt.Term]bool{input: true},
		map[smt.Term]smt.Term{curr: next})
	prop := ts.NewProperty(system, curr)
	return s, prop, curr, next
}

func TestBuildQueryAtomicInitRegistersSingleInitUnit(t *testing.T) {
	s, prop, _, _ := counterFixture(t)
	opts := buildOptions(WithAtomicInit(true))

	q, err := buildQuery(s, prop, 1, opts)
	require.NoError(t, err)

	var sawInit int
	for _, a := range q.musAssertions {
		if a.controlVar.String() == "INIT" {
			sawInit++
		}
	}
	assert.Equal(t, 1, sawInit)
}

func TestBuildQueryNonAtomicInitExtractsConjuncts(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)
	b, _ := s.MakeSymbol("b", smt.BoolSort)
	next, _ := s.MakeSymbol("a'", smt.BoolSort)

	init := s.MakeTerm(smt.And, a, b)
	trans := s.MakeTerm(smt.Equal, next, a)
	system := ts.New(init, trans, nil, map[smt.Term]bool{a: true}, nil,
		map[smt.Term]smt.Term{a: next})
	prop := ts.NewProperty(system, a)

	q, err := buildQuery(s, prop, 1, buildOptions())
	require.NoError(t, err)

	var initCVs int
	for _, cv := range q.cvs.vars() {
		if cv.String() == "INIT_a" || cv.String() == "INIT_b" {
			initCVs++
		}
	}
	assert.Equal(t, 2, initCVs)
}

func TestBuildQueryRegistersTransUnitPerStateVar(t *testing.T) {
	s, prop, _, _ := counterFixture(t)
	q, err := buildQuery(s, prop, 2, buildOptions())
	require.NoError(t, err)

	var sawTrans bool
	for _, cv := range q.cvs.vars() {
		if cv.String() == "TRANS_cnt" {
			sawTrans = true
		}
	}
	assert.True(t, sawTrans)
}

func TestBuildQueryRegistersSpecControlVar(t *testing.T) {
	s, prop, _, _ := counterFixture(t)
	q, err := buildQuery(s, prop, 1, buildOptions())
	require.NoError(t, err)

	var sawSpec bool
	for _, a := range q.musAssertions {
		if a.controlVar.String() == "SPEC_cnt" {
			sawSpec = true
		}
	}
	assert.True(t, sawSpec)
}

func TestBuildQueryDeclaredInvariantGetsInvarControlVar(t *testing.T) {
	s := memsolver.New()
	curr, _ := s.MakeSymbol("s", smt.BoolSort)
	next, _ := s.MakeSymbol("s'", smt.BoolSort)
	inv, _ := s.MakeSymbol("inv", smt.BoolSort)

	init := s.MakeTerm(smt.And, curr, inv)
	trans := s.MakeTerm(smt.And, s.MakeTerm(smt.Equal, next, curr), inv)
	system := ts.New(init, trans, []ts.Constraint{{Term: inv, Always: true}},
		map[smt.Term]bool{curr: true}, nil, map[smt.Term]smt.Term{curr: next})
	prop := ts.NewProperty(system, curr)

	q, err := buildQuery(s, prop, 1, buildOptions())
	require.NoError(t, err)

	// separateDeclaredInvariants strips inv out of init/trans, and
	// buildQuery re-registers it as its own INVAR unit; since
	// makeControlVarForTerm hashes INVAR names (controlvars_test.go:
	// TestMakeControlVarForTermUsesHashForInvar), assert one exists whose
	// name doesn't literally read "inv" but whose body is inv's
	// until-bound unrolling.
	wantBody := unrollUntilBound(s, unroll.New(s, system.NextMap(), system.InputVars), inv, 2)
	var literallyNamedInv, invarUnits int
	for _, a := range q.musAssertions {
		if a.controlVar.String() == "inv" {
			literallyNamedInv++
		}
		if strings.HasPrefix(a.controlVar.String(), "INVAR_") && a.body == wantBody {
			invarUnits++
		}
	}
	assert.Equal(t, 0, literallyNamedInv, "INVAR control vars must not be literally named after their term")
	assert.Equal(t, 1, invarUnits, "expected one INVAR control var equated to inv's until-bound unrolling")
	assert.Len(t, system.Constraints, 1)
}

func TestBuildQueryTseitinModeAssertsMintedConstraints(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)
	b, _ := s.MakeSymbol("b", smt.BoolSort)
	c, _ := s.MakeSymbol("c", smt.BoolSort)
	next, _ := s.MakeSymbol("a'", smt.BoolSort)

	init := s.MakeTerm(smt.And, a, s.MakeTerm(smt.Or, b, c))
	trans := s.MakeTerm(smt.Equal, next, a)
	system := ts.New(init, trans, nil, map[smt.Term]bool{a: true}, nil,
		map[smt.Term]smt.Term{a: next})
	prop := ts.NewProperty(system, a)

	opts := buildOptions(WithTseitin(true))
	q, err := buildQuery(s, prop, 1, opts)
	require.NoError(t, err)
	require.NotNil(t, q.tseitin)

	// Every tseitin mus_assertion and contextual_assertion must have been
	// replayed into the query's own accumulated state (the bug this test
	// guards against: tseitin.go never calls solver.AssertFormula itself).
	for _, ta := range q.tseitin.musAssertions {
		var found bool
		for _, qa := range q.musAssertions {
			if qa.controlVar == ta.controlVar {
				found = true
			}
		}
		assert.True(t, found, "tseitin mus_assertion for %s missing from query state", ta.controlVar)
	}
	for _, tc := range q.tseitin.contextualAssertions {
		var found bool
		for _, qc := range q.contextualAssertions {
			if qc == tc {
				found = true
			}
		}
		assert.True(t, found, "tseitin contextual assertion missing from query state")
	}
}

func TestBuildQueryTseitinModeRegistersInitControlVarsBeforeTseitinOnes(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)
	b, _ := s.MakeSymbol("b", smt.BoolSort)
	c, _ := s.MakeSymbol("c", smt.BoolSort)
	next, _ := s.MakeSymbol("a'", smt.BoolSort)

	init := s.MakeTerm(smt.And, a, s.MakeTerm(smt.Or, b, c))
	trans := s.MakeTerm(smt.Equal, next, a)
	system := ts.New(init, trans, nil, map[smt.Term]bool{a: true}, nil,
		map[smt.Term]smt.Term{a: next})
	prop := ts.NewProperty(system, a)

	opts := buildOptions(WithTseitin(true))
	q, err := buildQuery(s, prop, 1, opts)
	require.NoError(t, err)
	require.NotNil(t, q.tseitin)

	var lastInitIdx, firstTseitinIdx = -1, -1
	for i, cv := range q.cvs.vars() {
		name := cv.String()
		switch {
		case name == "INIT" || len(name) > 5 && name[:5] == "INIT_":
			lastInitIdx = i
		case len(name) > 8 && name[:8] == "TSEITIN_" && firstTseitinIdx == -1:
			firstTseitinIdx = i
		}
	}
	require.NotEqual(t, -1, lastInitIdx, "expected at least one INIT control var")
	require.NotEqual(t, -1, firstTseitinIdx, "expected at least one TSEITIN control var")
	assert.Less(t, lastInitIdx, firstTseitinIdx, "every INIT control var must register before any TSEITIN control var")
}

func TestHardAssertionsIncludesContextualAndMusEquations(t *testing.T) {
	s, prop, _, _ := counterFixture(t)
	q, err := buildQuery(s, prop, 1, buildOptions())
	require.NoError(t, err)

	hard := q.hardAssertions(s)
	assert.Len(t, hard, len(q.contextualAssertions)+len(q.musAssertions))
}

func TestBuildQueryRejectsMisdeclaredInvariant(t *testing.T) {
	s := memsolver.New()
	curr, _ := s.MakeSymbol("s", smt.BoolSort)
	next, _ := s.MakeSymbol("s'", smt.BoolSort)
	inv, _ := s.MakeSymbol("inv", smt.BoolSort)

	system := ts.New(s.MakeBool(true), s.MakeBool(true),
		[]ts.Constraint{{Term: inv, Always: false}},
		map[smt.Term]bool{curr: true}, nil, map[smt.Term]smt.Term{curr: next})
	prop := ts.NewProperty(system, curr)

	_, err := buildQuery(s, prop, 1, buildOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
}
