package mus

import (
	"regexp"
	"strings"

	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/ts"
	"github.com/fmcheck/mus-engine/unroll"
)

// transUnit is one TRANS control-var candidate: an identifier (used only
// to build a readable control-variable name) paired with its (already
// k-unrolled, or Tseitin-decomposed) timed body.
type transUnit struct {
	id   string
	body smt.Term
}

// identifyTransUnit picks the conjunct's identifier: if the conjunct's
// root operator is equality and the left child is a next-state variable
// (i.e. `next(v) = rhs`), the identifier is v (the *current*-state
// variable); otherwise the identifier is the conjunct's string form.
func identifyTransUnit(system *ts.TransitionSystem, conjunct smt.Term) string {
	if conjunct.Op() == smt.Equal {
		children := conjunct.Children()
		if len(children) == 2 {
			if curr, ok := system.Curr(children[0]); ok {
				return curr.String()
			}
		}
	}
	return conjunct.String()
}

// isYosysInternalNetname reports whether id names an internally-generated
// netname: any identifier whose string form begins with "$".
func isYosysInternalNetname(id string) bool {
	return strings.HasPrefix(id, "$")
}

// buildTransUnits assigns identifiers to transConjuncts, optionally
// contextually-asserting (rather than registering as toggleable) any unit
// whose identifier looks Yosys-internal, then optionally combines units by
// a configured suffix regex. Combining is incompatible with Tseitin mode —
// the caller is responsible for rejecting that combination before calling
// buildTransUnits with tseitin enabled.
//
// Returns the units in a deterministic order (each identifier placed where
// its first conjunct falls when the conjuncts are sorted by string form)
// along with the contextual (non-toggleable) bodies that were filtered out.
func buildTransUnits(
	solver smt.Solver,
	system *ts.TransitionSystem,
	u *unroll.Unroller,
	transConjuncts map[smt.Term]bool,
	k int,
	combineSuffix string,
	includeYosysInternal bool,
	tseitin *tseitinState,
) (units []transUnit, contextual []smt.Term, err error) {
	byID := make(map[string]smt.Term, len(transConjuncts))
	order := make([]string, 0, len(transConjuncts))

	conjuncts := conjunctSlice(transConjuncts)
	for _, tc := range conjuncts {
		id := identifyTransUnit(system, tc)

		var body smt.Term
		if tseitin != nil {
			body, err = tseitin.decompose(tc, k)
			if err != nil {
				return nil, nil, err
			}
		} else {
			body = unrollUntilBound(solver, u, tc, k)
		}

		if !includeYosysInternal && isYosysInternalNetname(id) {
			contextual = append(contextual, body)
			continue
		}
		if existing, ok := byID[id]; ok {
			// Two distinct conjuncts mapped to the same identifier
			// (e.g. two non-equality conjuncts with the same string
			// form, which can't happen under hash-consing, or two
			// state-update equalities for the same variable — a
			// malformed, non-functional transition relation). Either
			// way the safe behaviour is to conjoin rather than drop.
			byID[id] = solver.MakeTerm(smt.And, existing, body)
		} else {
			byID[id] = body
			order = append(order, id)
		}
	}

	if combineSuffix != "" {
		byID, order, err = combineBySuffix(solver, byID, order, combineSuffix)
		if err != nil {
			return nil, nil, err
		}
	}

	units = make([]transUnit, 0, len(order))
	for _, id := range order {
		units = append(units, transUnit{id: id, body: byID[id]})
	}
	return units, contextual, nil
}

// combineBySuffix groups trans units whose identifier matches
// "(.*)<suffix>" by the captured prefix and conjoins them into a single
// unit under that prefix.
func combineBySuffix(solver smt.Solver, byID map[string]smt.Term, order []string, suffix string) (map[string]smt.Term, []string, error) {
	re, err := regexp.Compile("(.*)" + suffix)
	if err != nil {
		return nil, nil, newConfigurationError("mus_combine_suffix %q: %v", suffix, err)
	}

	combined := make(map[string]smt.Term, len(byID))
	var combinedOrder []string
	seenPrefix := make(map[string]bool)

	for _, id := range order {
		body := byID[id]
		m := re.FindStringSubmatch(id)
		if m == nil {
			combined[id] = body
			combinedOrder = append(combinedOrder, id)
			continue
		}
		prefix := m[1]
		if existing, ok := combined[prefix]; ok {
			combined[prefix] = solver.MakeTerm(smt.And, existing, body)
		} else {
			combined[prefix] = body
			if !seenPrefix[prefix] {
				combinedOrder = append(combinedOrder, prefix)
				seenPrefix[prefix] = true
			}
		}
	}
	return combined, combinedOrder, nil
}
