package mus

import (
	"sort"

	"github.com/fmcheck/mus-engine/smt"
)

// sortTerms orders terms by string form in place. Used wherever this
// package needs a deterministic iteration order over an otherwise
// unordered set: iteration order is not semantically significant, but
// must be stable within one run.
func sortTerms(terms []smt.Term) {
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].String() < terms[j].String()
	})
}
