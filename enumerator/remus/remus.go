// Package remus is the reference implementation of the enumerator.Enumerator
// contract: a MARCO-style ("mapping regions of CNF") MUS enumerator built on
// github.com/go-air/gini, the incremental SAT solver also used elsewhere in
// this codebase's dependency tree for its own boolean reasoning (there,
// package management constraints; here, a MUS query's hard assertions and
// control variables). The gate-builder idiom (logic.C, ToCnf,
// Assume/Solve/Value) follows that same usage's lit_mapping.go and
// solve.go style directly.
//
// remus enumerates by iterating a "map" SAT instance whose models are
// candidate subsets of the control variables: each candidate is tested
// against the hard assertions, shrunk to a MUS (if unsatisfiable) or grown
// to a maximal satisfiable subset (if satisfiable), and the map instance is
// blocked from proposing a superset of a found MUS or a subset of a found
// MSS. This is the standard way to enumerate more than one MUS without
// re-deriving the whole unsatisfiable core from scratch each time.
package remus

import (
	"context"
	"os"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/fmcheck/mus-engine/enumerator"
	"github.com/fmcheck/mus-engine/smt"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// FlagSet exposes remus's tunables in a pflag.FlagSet a consuming binary can
// bind into its own command line. remus owns no CLI of its own — a
// front-end command line is explicitly out of scope here — so this is how
// a host program discovers the knobs, the same arrangement cmd/olm's
// wiring uses for the packages it composes.
var FlagSet = pflag.NewFlagSet("remus", pflag.ContinueOnError)

var maxSeeds = FlagSet.Int("remus-max-seeds", 100000,
	"maximum number of map-solver seeds remus explores before giving up on finding further MUSes")

// Remus is a reference enumerator.Enumerator.
type Remus struct {
	controlVars []smt.Term
	names       []string

	lits []z.Lit // lits[i] is the gini literal for controlVars[i]

	hard *gini.Gini // carries the compiled hard assertions (contextual + mus-assertion equalities)
	mp   *gini.Gini // the MARCO map instance, same variable numbering as hard's control-var lits

	muses []enumerator.MUS

	log *logrus.Entry
}

// New compiles hardAssertions (the query's contextual assertions and
// Tseitin/trans-unit equalities — everything that must always hold) and
// controlVars (the toggleable units, in registration order) into gini
// circuits and returns a Remus ready to Enumerate.
func New(solver smt.Solver, hardAssertions []smt.Term, controlVars []smt.Term) (*Remus, error) {
	cp := newCompiler(solver, len(controlVars)+len(hardAssertions)*4)

	lits := make([]z.Lit, len(controlVars))
	for i, cv := range controlVars {
		lit, err := cp.litFor(cv)
		if err != nil {
			return nil, errors.Wrapf(err, "remus: compiling control variable %q", cv)
		}
		lits[i] = lit
	}

	hardLits := make([]z.Lit, len(hardAssertions))
	for i, a := range hardAssertions {
		lit, err := cp.litFor(a)
		if err != nil {
			return nil, errors.Wrapf(err, "remus: compiling hard assertion %q", a)
		}
		hardLits[i] = lit
	}

	hard := gini.New()
	cp.c.ToCnf(hard)
	// Hard assertions must hold regardless of which control variables are
	// toggled, so they are taught as permanent unit clauses rather than
	// per-Solve assumptions.
	for _, lit := range hardLits {
		addUnitClause(hard, lit)
	}

	mp := gini.New()
	for range controlVars {
		mp.Lit() // co-index the map instance's variables 1:1 with hard's control-var lits
	}

	names := make([]string, len(controlVars))
	for i, cv := range controlVars {
		names[i] = cv.String()
	}

	return &Remus{
		controlVars: controlVars,
		names:       names,
		lits:        lits,
		hard:        hard,
		mp:          mp,
		log:         logrus.WithField("component", "remus"),
	}, nil
}

// addUnitClause asserts lit as always true in g. gini's inter.Adder (which
// *gini.Gini implements) exposes this as a single-literal Add/Clause call;
// go-air/gini's convention is a zero-terminated Add sequence, the same
// style used by this codebase's own CardinalityConstrainer wiring
// elsewhere.
func addUnitClause(g inter.S, lit z.Lit) {
	g.Add(lit)
	g.Add(z.LitNull)
}

// Dimension implements enumerator.Enumerator.
func (r *Remus) Dimension() int {
	return len(r.controlVars)
}

// Muses implements enumerator.Enumerator.
func (r *Remus) Muses() []enumerator.MUS {
	return r.muses
}

// IsValid implements enumerator.Enumerator.
func (r *Remus) IsValid(formula []bool) bool {
	assumed := make([]z.Lit, 0, len(formula))
	for i, on := range formula {
		if on {
			assumed = append(assumed, r.lits[i])
		}
	}
	r.hard.Assume(assumed...)
	outcome := r.hard.Solve()
	return outcome == satisfiable
}

// Enumerate implements enumerator.Enumerator. It reproduces a documented
// limitation of the real MUST backend this contract models: when the whole
// query (every control variable forced true) is satisfiable, there is no
// MUS to find and the reference backend this module stands in for
// terminates the host process with exit code 1 rather than returning an
// error. Callers that cannot tolerate that must check satisfiability with
// IsValid first, or run Enumerate in a subprocess.
func (r *Remus) Enumerate(ctx context.Context) error {
	full := make([]bool, len(r.controlVars))
	for i := range full {
		full[i] = true
	}
	if r.IsValid(full) {
		r.log.Error("MUS query is satisfiable; no minimal unsatisfiable subset exists")
		os.Exit(1)
	}

	for seeds := 0; seeds < *maxSeeds; seeds++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		seed, ok := r.nextSeed()
		if !ok {
			return nil
		}

		if r.testSeed(seed) == satisfiable {
			mss := r.grow(seed)
			r.blockSubsetsOf(mss)
			continue
		}

		mus := r.shrink(seed)
		r.recordMUS(mus)
		r.blockSupersetsOf(mus)
	}
	r.log.Warnf("remus: stopped after %d seeds without exhausting the map instance; MUS enumeration is incomplete", *maxSeeds)
	return nil
}

// nextSeed asks the map instance for a model and returns it as the set of
// control-variable indices it turns on.
func (r *Remus) nextSeed() ([]int, bool) {
	if r.mp.Solve() != satisfiable {
		return nil, false
	}
	seed := make([]int, 0, len(r.lits))
	for i, lit := range r.lits {
		if r.mp.Value(lit) {
			seed = append(seed, i)
		}
	}
	return seed, true
}

func (r *Remus) testSeed(seed []int) int {
	assumed := make([]z.Lit, len(seed))
	for i, idx := range seed {
		assumed[i] = r.lits[idx]
	}
	r.hard.Assume(assumed...)
	return r.hard.Solve()
}

// shrink deletion-minimizes an unsatisfiable seed into a MUS: a subset that
// is itself unsatisfiable but becomes satisfiable if any one member is
// removed.
func (r *Remus) shrink(seed []int) []int {
	remaining := append([]int(nil), seed...)
	for i := 0; i < len(remaining); {
		candidate := remove(remaining, i)
		if r.testSeed(candidate) == unsatisfiable {
			remaining = candidate
			continue
		}
		i++
	}
	return remaining
}

// grow extends a satisfiable seed to a maximal satisfiable subset by
// greedily adding every control variable that keeps it satisfiable.
func (r *Remus) grow(seed []int) []int {
	in := make([]bool, len(r.controlVars))
	for _, idx := range seed {
		in[idx] = true
	}
	for i := range r.controlVars {
		if in[i] {
			continue
		}
		in[i] = true
		if r.testSeedMask(in) != satisfiable {
			in[i] = false
		}
	}
	mss := make([]int, 0, len(r.controlVars))
	for i, on := range in {
		if on {
			mss = append(mss, i)
		}
	}
	return mss
}

func (r *Remus) testSeedMask(in []bool) int {
	var assumed []z.Lit
	for i, on := range in {
		if on {
			assumed = append(assumed, r.lits[i])
		}
	}
	r.hard.Assume(assumed...)
	return r.hard.Solve()
}

func (r *Remus) recordMUS(indices []int) {
	bitmask := make([]bool, len(r.controlVars))
	for _, idx := range indices {
		bitmask[idx] = true
	}
	r.muses = append(r.muses, enumerator.MUS{BoolMUS: bitmask})

	entry := r.log.WithField("mus", len(r.muses))
	entry.Infof("MUS #%d", len(r.muses))
	for _, idx := range indices {
		entry.Infof("  %s", r.names[idx])
	}
}

// blockSupersetsOf adds a map clause forbidding any future seed that
// contains every one of mus's members (so the same MUS, or a superset of
// it, is never proposed again).
func (r *Remus) blockSupersetsOf(mus []int) {
	for _, idx := range mus {
		r.mp.Add(r.lits[idx].Not())
	}
	r.mp.Add(z.LitNull)
}

// blockSubsetsOf adds a map clause requiring any future seed to include at
// least one control variable outside mss (so no subset of this maximal
// satisfiable region is explored again).
func (r *Remus) blockSubsetsOf(mss []int) {
	in := make([]bool, len(r.controlVars))
	for _, idx := range mss {
		in[idx] = true
	}
	// If mss already covers every control variable, the loop below adds no
	// literals and the clause degenerates to the empty (unsatisfiable)
	// clause, which is the correct way to tell the map instance there is
	// nothing left to explore beyond this region.
	for i, on := range in {
		if !on {
			r.mp.Add(r.lits[i])
		}
	}
	r.mp.Add(z.LitNull)
}

func remove(s []int, i int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}
