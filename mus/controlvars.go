package mus

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/fmcheck/mus-engine/smt"
)

// ConstraintKind classifies a control variable. A CONTROL_TERMS bookkeeping
// kind is deliberately omitted: the latest reference variant drops it, and
// so does this module.
type ConstraintKind uint8

const (
	INIT ConstraintKind = iota
	TRANS
	INVAR
	SPEC
	// TSEITIN labels control variables minted for Tseitin auxiliaries. It
	// is bookkeeping the way CONTROL_TERMS was, but unlike CONTROL_TERMS
	// it is load-bearing: it's how tseitinState.decompose names the control
	// variable it hands back to the query builder.
	TSEITIN
)

func (k ConstraintKind) String() string {
	switch k {
	case INIT:
		return "INIT"
	case TRANS:
		return "TRANS"
	case INVAR:
		return "INVAR"
	case SPEC:
		return "SPEC"
	case TSEITIN:
		return "TSEITIN"
	default:
		return "?"
	}
}

// controlVarRegistry mints fresh boolean control variables and remembers
// the order they were registered in: insertion order is observable (it
// defines MUS bitmask indexing) and duplicates are forbidden.
type controlVarRegistry struct {
	solver  smt.Solver
	ordered []smt.Term
	seen    map[string]bool
}

func newControlVarRegistry(solver smt.Solver) *controlVarRegistry {
	return &controlVarRegistry{
		solver: solver,
		seen:   make(map[string]bool),
	}
}

// makeControlVarNamed mints a control variable named "<KIND>" or
// "<KIND>_<suffix>".
func (r *controlVarRegistry) makeControlVarNamed(kind ConstraintKind, suffix string) (smt.Term, error) {
	name := kind.String()
	if suffix != "" {
		name = name + "_" + suffix
	}
	if r.seen[name] {
		return nil, errors.Wrapf(smt.ErrNameCollision, "control variable %q", name)
	}
	cv, err := r.solver.MakeSymbol(name, smt.BoolSort)
	if err != nil {
		return nil, errors.Wrapf(err, "minting control variable %q", name)
	}
	r.seen[name] = true
	r.ordered = append(r.ordered, cv)
	return cv, nil
}

// makeControlVarForTerm picks the control variable identifier: for INVAR
// it is the term's hash (bodies don't round-trip distinctly through string
// form); for everything else it's the term's string form.
func (r *controlVarRegistry) makeControlVarForTerm(kind ConstraintKind, t smt.Term) (smt.Term, error) {
	var suffix string
	if kind == INVAR {
		suffix = strconv.FormatUint(t.Hash(), 10)
	} else {
		suffix = t.String()
	}
	return r.makeControlVarNamed(kind, suffix)
}

// makeAtomicControlVar mints the single "<KIND>" control variable with no
// suffix, used for the atomic-init case and the SPEC control variable's
// kind-only fallback is not used (SPEC always carries the property term).
func (r *controlVarRegistry) makeAtomicControlVar(kind ConstraintKind) (smt.Term, error) {
	return r.makeControlVarNamed(kind, "")
}

// vars returns the control variables in registration order. Callers must
// register in the order INIT, TRANS, INVAR, SPEC.
func (r *controlVarRegistry) vars() []smt.Term {
	return r.ordered
}
