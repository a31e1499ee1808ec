package mus

import (
	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/unroll"
)

// unrollAt returns t timed at tick i.
func unrollAt(u *unroll.Unroller, t smt.Term, i int) smt.Term {
	return u.AtTime(t, i)
}

// unrollUntilBound returns the conjunction of t timed at every tick in
// [0, k). k=1 collapses to the single timed instance rather than a unary
// conjunction; k=0 is the boolean constant true.
func unrollUntilBound(solver smt.Solver, u *unroll.Unroller, t smt.Term, k int) smt.Term {
	if k <= 0 {
		return solver.MakeBool(true)
	}
	if k == 1 {
		return u.AtTime(t, 0)
	}
	timed := make([]smt.Term, k)
	for i := 0; i < k; i++ {
		timed[i] = u.AtTime(t, i)
	}
	return solver.MakeTerm(smt.And, timed...)
}
