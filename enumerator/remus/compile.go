package remus

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/fmcheck/mus-engine/smt"
)

// compiler translates boolean-sort smt.Term values into gini's CNF circuit
// builder (logic.C), the same Tseitin-style gate compiler used elsewhere
// in this codebase's dependency management solver (there, over
// Constraint.apply; here, over an smt.Term tree). It is deliberately
// narrow: remus is the reference enumerator this module ships for
// self-containedness, not a general SMT-to-CNF bit-blaster, so any
// non-boolean sort is a hard error rather than something silently
// approximated.
type compiler struct {
	c      *logic.C
	lits   map[smt.Term]z.Lit
	trueT  smt.Term
	falseT smt.Term
}

// litOrConst is compile's result: either a gini literal, or a literal
// constant the compiler folded away without allocating a circuit node for
// it. Folding constants at compile time means gini never needs to
// represent "true"/"false" as literals of their own.
type litOrConst struct {
	lit      z.Lit
	isConst  bool
	constVal bool
}

func newCompiler(solver smt.Solver, cap int) *compiler {
	return &compiler{
		c:      logic.NewCCap(cap),
		lits:   make(map[smt.Term]z.Lit),
		trueT:  solver.MakeBool(true),
		falseT: solver.MakeBool(false),
	}
}

// litFor returns a genuine gini literal for t, minting one for a constant
// if the compiler hasn't needed to represent it standalone before (this
// only happens when a bare constant appears where a literal, not a
// fold, is required — e.g. as a whole top-level assertion).
func (cp *compiler) litFor(t smt.Term) (z.Lit, error) {
	r, err := cp.compile(t)
	if err != nil {
		return z.LitNull, err
	}
	if !r.isConst {
		return r.lit, nil
	}
	// Materialize the constant as x OR NOT x (true) or its negation
	// (false) so callers that need an actual literal (e.g. a contextual
	// assertion that happens to be literal true) still get one.
	x := cp.c.Lit()
	taut := cp.c.Or(x, x.Not())
	if r.constVal {
		return taut, nil
	}
	return taut.Not(), nil
}

func (cp *compiler) compile(t smt.Term) (litOrConst, error) {
	if t == cp.trueT {
		return litOrConst{isConst: true, constVal: true}, nil
	}
	if t == cp.falseT {
		return litOrConst{isConst: true, constVal: false}, nil
	}
	if existing, ok := cp.lits[t]; ok {
		return litOrConst{lit: existing}, nil
	}

	if t.Sort() != smt.BoolSort {
		return litOrConst{}, errors.Errorf("remus: cannot SAT-compile non-boolean term %q (sort %s)", t, t.Sort())
	}

	var result litOrConst
	var err error
	switch t.Op() {
	case smt.NoOp:
		if !t.IsSymbol() {
			return litOrConst{}, errors.Errorf("remus: unrecognized boolean leaf %q", t)
		}
		result = litOrConst{lit: cp.c.Lit()}
	case smt.Not:
		var child litOrConst
		child, err = cp.compile1(t)
		if err == nil {
			if child.isConst {
				result = litOrConst{isConst: true, constVal: !child.constVal}
			} else {
				result = litOrConst{lit: child.lit.Not()}
			}
		}
	case smt.And:
		result, err = cp.compileAnd(t.Children())
	case smt.Or:
		result, err = cp.compileOr(t.Children())
	case smt.Equal:
		result, err = cp.compileEqual(t.Children())
	case smt.Ite:
		result, err = cp.compileIte(t.Children())
	default:
		return litOrConst{}, errors.Errorf("remus: unsupported operator %q for SAT compilation", t.Op())
	}
	if err != nil {
		return litOrConst{}, err
	}

	if !result.isConst {
		cp.lits[t] = result.lit
	}
	return result, nil
}

func (cp *compiler) compile1(t smt.Term) (litOrConst, error) {
	children := t.Children()
	if len(children) != 1 {
		return litOrConst{}, errors.Errorf("remus: %q expects exactly one child", t.Op())
	}
	return cp.compile(children[0])
}

func (cp *compiler) compileAnd(children []smt.Term) (litOrConst, error) {
	var lits []z.Lit
	for _, c := range children {
		r, err := cp.compile(c)
		if err != nil {
			return litOrConst{}, err
		}
		if r.isConst {
			if !r.constVal {
				return litOrConst{isConst: true, constVal: false}, nil
			}
			continue
		}
		lits = append(lits, r.lit)
	}
	if len(lits) == 0 {
		return litOrConst{isConst: true, constVal: true}, nil
	}
	if len(lits) == 1 {
		return litOrConst{lit: lits[0]}, nil
	}
	return litOrConst{lit: cp.c.Ands(lits...)}, nil
}

func (cp *compiler) compileOr(children []smt.Term) (litOrConst, error) {
	var lits []z.Lit
	for _, c := range children {
		r, err := cp.compile(c)
		if err != nil {
			return litOrConst{}, err
		}
		if r.isConst {
			if r.constVal {
				return litOrConst{isConst: true, constVal: true}, nil
			}
			continue
		}
		lits = append(lits, r.lit)
	}
	if len(lits) == 0 {
		return litOrConst{isConst: true, constVal: false}, nil
	}
	if len(lits) == 1 {
		return litOrConst{lit: lits[0]}, nil
	}
	return litOrConst{lit: cp.c.Ors(lits...)}, nil
}

func (cp *compiler) compileEqual(children []smt.Term) (litOrConst, error) {
	if len(children) != 2 {
		return litOrConst{}, errors.Errorf("remus: equality expects exactly two children, got %d", len(children))
	}
	a, err := cp.compile(children[0])
	if err != nil {
		return litOrConst{}, err
	}
	b, err := cp.compile(children[1])
	if err != nil {
		return litOrConst{}, err
	}
	switch {
	case a.isConst && b.isConst:
		return litOrConst{isConst: true, constVal: a.constVal == b.constVal}, nil
	case a.isConst:
		if a.constVal {
			return litOrConst{lit: b.lit}, nil
		}
		return litOrConst{lit: b.lit.Not()}, nil
	case b.isConst:
		if b.constVal {
			return litOrConst{lit: a.lit}, nil
		}
		return litOrConst{lit: a.lit.Not()}, nil
	default:
		// a <=> b == (a AND b) OR (NOT a AND NOT b)
		return litOrConst{lit: cp.c.Or(cp.c.And(a.lit, b.lit), cp.c.And(a.lit.Not(), b.lit.Not()))}, nil
	}
}

// compileIte bit-blasts a boolean mux: ite(c, then, else) == (c AND then)
// OR (NOT c AND else). A bitvector-sorted ITE (a real multi-bit mux, as
// opposed to a single-bit one) never reaches this function: its own sort
// is the "then" branch's sort, so compile's boolean-sort check at the top
// of the switch already rejected it.
func (cp *compiler) compileIte(children []smt.Term) (litOrConst, error) {
	if len(children) != 3 {
		return litOrConst{}, errors.Errorf("remus: ite expects exactly three children, got %d", len(children))
	}
	c, err := cp.compile(children[0])
	if err != nil {
		return litOrConst{}, err
	}
	thenB, err := cp.compile(children[1])
	if err != nil {
		return litOrConst{}, err
	}
	elseB, err := cp.compile(children[2])
	if err != nil {
		return litOrConst{}, err
	}

	if c.isConst {
		if c.constVal {
			return thenB, nil
		}
		return elseB, nil
	}
	switch {
	case thenB.isConst && elseB.isConst:
		if thenB.constVal == elseB.constVal {
			return litOrConst{isConst: true, constVal: thenB.constVal}, nil
		}
		if thenB.constVal {
			return litOrConst{lit: c.lit}, nil
		}
		return litOrConst{lit: c.lit.Not()}, nil
	case thenB.isConst:
		if thenB.constVal {
			return litOrConst{lit: cp.c.Or(c.lit, elseB.lit)}, nil
		}
		return litOrConst{lit: cp.c.And(c.lit.Not(), elseB.lit)}, nil
	case elseB.isConst:
		if elseB.constVal {
			return litOrConst{lit: cp.c.Or(c.lit.Not(), thenB.lit)}, nil
		}
		return litOrConst{lit: cp.c.And(c.lit, thenB.lit)}, nil
	default:
		return litOrConst{lit: cp.c.Or(cp.c.And(c.lit, thenB.lit), cp.c.And(c.lit.Not(), elseB.lit))}, nil
	}
}
