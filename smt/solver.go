package smt

import "github.com/pkg/errors"

// ErrNameCollision is returned by MakeSymbol when a symbol of that name
// already exists. Fresh symbol creation must fail loudly on collision —
// callers (the control-var registry) guarantee uniqueness by construction
// and treat this as a structural bug, not a recoverable condition.
var ErrNameCollision = errors.New("symbol name already in use")

// Solver is the subset of an SMT solver's API the engine depends on. It is
// a deliberately external collaborator: this module does not decide
// satisfiability, only builds terms and hands assertions to one of these.
//
// Implementations MUST be "logging": AssertFormula and MakeTerm must
// preserve term structure rather than rewriting it away, since the
// control-variable indirection (mus.Engine) depends on the solver not
// collapsing `cv = body` into something unrecognizable.
type Solver interface {
	MakeSort(kind SortKind, args ...int) Sort
	MakeSymbol(name string, sort Sort) (Term, error)
	MakeTerm(op Op, children ...Term) Term
	MakeBool(v bool) Term
	// Substitute returns t with every occurrence of a key in m replaced by
	// the corresponding value, preserving sharing elsewhere in the DAG.
	Substitute(t Term, m map[Term]Term) Term
	AssertFormula(t Term)
	GetSymbol(name string) (Term, bool)
}

// IsLogging is implemented by solvers that can assert their logging-ness;
// mus.Engine uses it to enforce the logging_smt_solver configuration
// requirement.
type IsLogging interface {
	Logging() bool
}
