// Package memsolver is the one concrete smt.Solver this module ships: a
// hash-consed, immutable term DAG held entirely in memory. It exists
// because no off-the-shelf general-purpose SMT term-DAG library fits this
// engine's needs — see DESIGN.md for the full justification — and because
// the engine needs at least one "logging" (non-rewriting) solver to
// demonstrate and test the control-variable indirection the design calls
// for.
package memsolver

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fmcheck/mus-engine/smt"
)

// Solver is a hash-consed smt.Solver. The zero value is not usable; call
// New or NewRewriting.
type Solver struct {
	logging bool

	symbols map[string]smt.Term
	cache   map[string]*term // structural signature -> canonical node
	trueT   *term
	falseT  *term

	Assertions []smt.Term
}

var _ smt.Solver = (*Solver)(nil)
var _ smt.IsLogging = (*Solver)(nil)

// New returns a logging (non-rewriting) Solver: MakeTerm always conses a
// fresh structural node and never simplifies it away. This is the variant
// the engine requires for MUS queries.
func New() *Solver {
	return newSolver(true)
}

// NewRewriting returns a solver that applies a handful of boolean
// simplifications (and/or/not over constants) as terms are built. It backs
// the mus_dump_smt2 dump path, which deliberately wants a *non*-logging
// solver so the dumped query reads naturally.
func NewRewriting() *Solver {
	return newSolver(false)
}

func newSolver(logging bool) *Solver {
	s := &Solver{
		logging: logging,
		symbols: make(map[string]smt.Term),
		cache:   make(map[string]*term),
	}
	s.trueT = s.internLeaf("true", smt.BoolSort, false)
	s.falseT = s.internLeaf("false", smt.BoolSort, false)
	return s
}

// Logging implements smt.IsLogging.
func (s *Solver) Logging() bool { return s.logging }

func (s *Solver) MakeSort(kind smt.SortKind, args ...int) smt.Sort {
	switch kind {
	case smt.Bool:
		return smt.BoolSort
	case smt.BV:
		width := 1
		if len(args) > 0 {
			width = args[0]
		}
		return smt.BVSort(width)
	default:
		return smt.Sort{Kind: kind}
	}
}

func (s *Solver) MakeSymbol(name string, sort smt.Sort) (smt.Term, error) {
	if _, exists := s.symbols[name]; exists {
		return nil, errors.Wrapf(smt.ErrNameCollision, "symbol %q", name)
	}
	t := s.internLeaf(name, sort, true)
	s.symbols[name] = t
	return t, nil
}

func (s *Solver) GetSymbol(name string) (smt.Term, bool) {
	t, ok := s.symbols[name]
	return t, ok
}

func (s *Solver) MakeBool(v bool) smt.Term {
	if v {
		return s.trueT
	}
	return s.falseT
}

func (s *Solver) internLeaf(str string, sort smt.Sort, symbol bool) *term {
	key := "leaf:" + str
	if existing, ok := s.cache[key]; ok {
		return existing
	}
	t := &term{
		op:     smt.NoOp,
		sort:   sort,
		str:    str,
		symbol: symbol,
		hash:   fnvHash(key),
	}
	s.cache[key] = t
	return t
}

func (s *Solver) MakeTerm(op smt.Op, children ...smt.Term) smt.Term {
	if !s.logging {
		if simplified, ok := s.simplify(op, children); ok {
			return simplified
		}
	}
	return s.intern(op, children)
}

func (s *Solver) intern(op smt.Op, children []smt.Term) smt.Term {
	sig := signature(op, children)
	if existing, ok := s.cache[sig]; ok {
		return existing
	}
	t := &term{
		op:       op,
		children: append([]smt.Term(nil), children...),
		sort:     resultSort(op, children),
		str:      renderTerm(op, children),
		hash:     fnvHash(sig),
	}
	s.cache[sig] = t
	return t
}

// simplify implements the handful of boolean rewrites NewRewriting applies.
// It returns ok=false when no rewrite applies, in which case the caller
// falls back to plain interning.
func (s *Solver) simplify(op smt.Op, children []smt.Term) (smt.Term, bool) {
	switch op {
	case smt.Not:
		if c, ok := children[0].(*term); ok {
			if c == s.trueT {
				return s.falseT, true
			}
			if c == s.falseT {
				return s.trueT, true
			}
		}
	case smt.And:
		kept := make([]smt.Term, 0, len(children))
		for _, c := range children {
			if ct, ok := c.(*term); ok && ct == s.falseT {
				return s.falseT, true
			}
			if ct, ok := c.(*term); ok && ct == s.trueT {
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			return s.trueT, true
		}
		if len(kept) == 1 {
			return kept[0], true
		}
		return s.intern(smt.And, kept), true
	case smt.Or:
		kept := make([]smt.Term, 0, len(children))
		for _, c := range children {
			if ct, ok := c.(*term); ok && ct == s.trueT {
				return s.trueT, true
			}
			if ct, ok := c.(*term); ok && ct == s.falseT {
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			return s.falseT, true
		}
		if len(kept) == 1 {
			return kept[0], true
		}
		return s.intern(smt.Or, kept), true
	}
	return nil, false
}

func (s *Solver) Substitute(t smt.Term, m map[smt.Term]smt.Term) smt.Term {
	memo := make(map[smt.Term]smt.Term, len(m))
	return s.substitute(t, m, memo)
}

func (s *Solver) substitute(t smt.Term, m, memo map[smt.Term]smt.Term) smt.Term {
	if repl, ok := m[t]; ok {
		return repl
	}
	if done, ok := memo[t]; ok {
		return done
	}
	children := t.Children()
	if len(children) == 0 {
		memo[t] = t
		return t
	}
	newChildren := make([]smt.Term, len(children))
	changed := false
	for i, c := range children {
		nc := s.substitute(c, m, memo)
		newChildren[i] = nc
		if nc != c {
			changed = true
		}
	}
	var result smt.Term
	if changed {
		result = s.MakeTerm(t.Op(), newChildren...)
	} else {
		result = t
	}
	memo[t] = result
	return result
}

func (s *Solver) AssertFormula(t smt.Term) {
	s.Assertions = append(s.Assertions, t)
}

// term is the concrete node memsolver hands out as an smt.Term.
type term struct {
	op       smt.Op
	children []smt.Term
	sort     smt.Sort
	str      string
	hash     uint64
	symbol   bool
}

func (t *term) Op() smt.Op           { return t.op }
func (t *term) Children() []smt.Term { return t.children }
func (t *term) Sort() smt.Sort       { return t.sort }
func (t *term) String() string       { return t.str }
func (t *term) Hash() uint64         { return t.hash }
func (t *term) IsSymbol() bool       { return t.symbol }

func resultSort(op smt.Op, children []smt.Term) smt.Sort {
	switch op {
	case smt.And, smt.Or, smt.Not, smt.Equal:
		return smt.BoolSort
	case smt.BVAnd, smt.BVOr, smt.BVNot:
		return children[0].Sort()
	case smt.Ite:
		return children[1].Sort()
	default:
		return smt.BoolSort
	}
}

func renderTerm(op smt.Op, children []smt.Term) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("(%s %s)", op, strings.Join(parts, " "))
}

// signature is the hash-cons key: operator plus each child's own hash, in
// the exact order given. Identity is structural, not semantic — two And
// terms with the same operands in different orders are distinct nodes,
// which matters because extract_top_level_conjuncts (mus package) walks
// And's right spine and depends on child order being exactly what the
// caller built.
func signature(op smt.Op, children []smt.Term) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", op)
	for _, c := range children {
		fmt.Fprintf(&b, "%x,", c.Hash())
	}
	return b.String()
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
