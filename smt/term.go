package smt

// Term is an opaque, hash-consed, immutable node of an SMT term DAG.
// Concrete solvers (smt/memsolver being the one this module ships) decide
// identity and hashing; callers never construct a Term value directly —
// they go through a Solver.
type Term interface {
	// Op returns NoOp for leaves (symbols, boolean constants).
	Op() Op
	// Children returns this term's operands, in order. Leaves return nil.
	Children() []Term
	// Sort returns this term's sort.
	Sort() Sort
	// String renders the term in a stable, structural form suitable for
	// use as a control-variable identifier.
	String() string
	// Hash returns a structural hash, stable for the lifetime of the
	// owning Solver. Used as the INVAR identifier (term strings don't
	// round-trip distinctly for some invariant shapes).
	Hash() uint64
	// IsSymbol reports whether this term is a free variable (as opposed
	// to a constant or compound term).
	IsSymbol() bool
}
