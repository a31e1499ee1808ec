package mus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/smt/memsolver"
)

func TestExtractTopLevelConjunctsRightAssociated(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)
	b, _ := s.MakeSymbol("b", smt.BoolSort)
	c, _ := s.MakeSymbol("c", smt.BoolSort)

	// a AND (b AND c) peels: emit (b AND c), then recurse on a (not And, so
	// emitted whole). Result: {a, (b AND c)}.
	conjunction := s.MakeTerm(smt.And, a, s.MakeTerm(smt.And, b, c))
	got := extractTopLevelConjuncts(s, conjunction)
	require.Len(t, got, 2)
	assert.True(t, got[a])
	assert.True(t, got[s.MakeTerm(smt.And, b, c)])
}

func TestExtractTopLevelConjunctsSkipsLiteralTrue(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)

	conjunction := s.MakeTerm(smt.And, s.MakeBool(true), a)
	got := extractTopLevelConjuncts(s, conjunction)

	assert.Len(t, got, 1)
	assert.True(t, got[a])
}

func TestExtractTopLevelConjunctsNonBinaryAndIsAtomic(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)
	b, _ := s.MakeSymbol("b", smt.BoolSort)
	c, _ := s.MakeSymbol("c", smt.BoolSort)

	// A ternary And (not built via the binary right-spine convention) is
	// treated as one atomic, unpeelable conjunct.
	ternary := s.MakeTerm(smt.And, a, b, c)
	got := extractTopLevelConjuncts(s, ternary)
	assert.Len(t, got, 1)
	assert.True(t, got[ternary])
}

func TestConjunctSliceIsDeterministic(t *testing.T) {
	s := memsolver.New()
	a, _ := s.MakeSymbol("a", smt.BoolSort)
	b, _ := s.MakeSymbol("b", smt.BoolSort)

	set := map[smt.Term]bool{a: true, b: true}
	first := conjunctSlice(set)
	second := conjunctSlice(set)
	assert.Equal(t, first, second)
	assert.True(t, first[0].String() < first[1].String())
}
