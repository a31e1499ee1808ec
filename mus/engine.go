// Package mus implements the MUS query builder and engine façade: given a
// transition system, a safety property, and a bound k, it builds a
// control-variable-indirected SMT query and hands it to a pluggable MUS
// enumerator, projecting the MUSes it finds back onto readable control
// variables and logging them.
package mus

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fmcheck/mus-engine/enumerator"
	"github.com/fmcheck/mus-engine/enumerator/remus"
	"github.com/fmcheck/mus-engine/mus/musmetrics"
	"github.com/fmcheck/mus-engine/smt"
	"github.com/fmcheck/mus-engine/smt/memsolver"
	"github.com/fmcheck/mus-engine/ts"
)

// ProverResult reflects that the engine is a sound but incomplete proof
// procedure, so FALSE is never actually returned by
// CheckUntil (see its doc comment) but is kept in the type for parity with
// the contract a more complete front-end could eventually implement.
type ProverResult int

const (
	Unknown ProverResult = iota
	True
	False
)

func (r ProverResult) String() string {
	switch r {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// EnumeratorFactory builds the back-end enumerator over a compiled query.
// Engine defaults to enumerator/remus; tests substitute a fake to avoid
// remus's process-exit-on-SAT behavior.
type EnumeratorFactory func(solver smt.Solver, hardAssertions []smt.Term, controlVars []smt.Term) (enumerator.Enumerator, error)

func defaultEnumeratorFactory(solver smt.Solver, hardAssertions []smt.Term, controlVars []smt.Term) (enumerator.Enumerator, error) {
	return remus.New(solver, hardAssertions, controlVars)
}

type engineState int

const (
	stateConstructed engineState = iota
	stateBuilt
	stateEnumerating
	stateDone
)

// Engine is the query-build-then-enumerate façade. Not safe for
// concurrent use; it is single-threaded, synchronous, and push-only.
type Engine struct {
	solver   smt.Solver
	property ts.Property
	opts     Options
	factory  EnumeratorFactory

	state engineState
	query *queryState
	enum  enumerator.Enumerator

	log *logrus.Entry
}

// New constructs an Engine. It validates opts before touching solver.
func New(solver smt.Solver, property ts.Property, opts ...Option) (*Engine, error) {
	o := buildOptions(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if logging, ok := solver.(smt.IsLogging); ok && !logging.Logging() {
		return nil, newConfigurationError("solver must be a logging variant")
	}
	return &Engine{
		solver:   solver,
		property: property,
		opts:     o,
		factory:  defaultEnumeratorFactory,
		log:      logrus.WithField("component", "mus.Engine"),
	}, nil
}

// WithEnumeratorFactory overrides the enumerator construction used by
// CheckUntil/CheckUntilYieldingMUSes. Exposed as a setter rather than an
// Option (Options is the front-end-facing configuration table; the
// enumerator factory is a Go-level test seam, not a configuration value a
// front-end would ever set).
func (e *Engine) WithEnumeratorFactory(f EnumeratorFactory) *Engine {
	e.factory = f
	return e
}

// build runs the query builder exactly once.
func (e *Engine) build(k int) error {
	if e.state != stateConstructed {
		return newConfigurationError("check_until called more than once on this engine instance")
	}
	q, err := buildQuery(e.solver, e.property, k, e.opts)
	if err != nil {
		return err
	}
	e.query = q
	e.state = stateBuilt

	if e.opts.DumpSMT2 {
		if err := e.dumpSMT2(); err != nil {
			return errors.Wrap(err, "mus_dump_smt2")
		}
	}
	return nil
}

// dumpSMT2 rebuilds every recorded mus_assertion's cv = body equation in a
// fresh rewriting solver and renders those equations, followed by the
// contextual assertions, to mus_query.smt2 in the current working directory.
func (e *Engine) dumpSMT2() error {
	dump := memsolver.NewRewriting()
	var terms []smt.Term
	for _, a := range e.query.musAssertions {
		terms = append(terms, dump.MakeTerm(smt.Equal, a.controlVar, a.body))
	}
	terms = append(terms, e.query.contextualAssertions...)

	f, err := os.Create("mus_query.smt2")
	if err != nil {
		return err
	}
	defer f.Close()
	return smt.WriteSMT2(f, terms)
}

// CheckUntil always returns True on success: the engine demonstrates
// unsatisfiability by exhibiting MUSes rather than deciding satisfiability,
// so a satisfiable query is reported by the enumerator terminating the
// process, not by a False return.
func (e *Engine) CheckUntil(ctx context.Context, k int) (ProverResult, error) {
	if _, err := e.checkUntilYieldingMUSes(ctx, k); err != nil {
		return Unknown, err
	}
	return True, nil
}

// CheckUntilYieldingMUSes is CheckUntil but returns the MUSes found instead
// of discarding them.
func (e *Engine) CheckUntilYieldingMUSes(ctx context.Context, k int) ([]enumerator.MUS, error) {
	return e.checkUntilYieldingMUSes(ctx, k)
}

func (e *Engine) checkUntilYieldingMUSes(ctx context.Context, k int) ([]enumerator.MUS, error) {
	if err := e.build(k); err != nil {
		return nil, err
	}

	controlVars := e.query.cvs.vars()
	musmetrics.ObserveQueryBuilt(len(controlVars))

	enum, err := e.factory(e.solver, e.query.hardAssertions(e.solver), controlVars)
	if err != nil {
		return nil, errors.Wrap(err, "constructing enumerator")
	}
	e.enum = enum
	e.state = stateEnumerating

	start := time.Now()
	err = enum.Enumerate(ctx)
	musmetrics.ObserveEnumerateDuration(time.Since(start))
	if err != nil {
		return nil, errors.Wrap(err, "enumerate")
	}
	e.state = stateDone

	muses := enum.Muses()
	musmetrics.ObserveMusesFound(len(muses))
	for i, m := range muses {
		e.logMUS(i+1, m, controlVars)
	}
	return muses, nil
}

// projectMUS emits the control variables a MUS bitmask selects, sorted by
// string form for stable reporting.
func projectMUS(m enumerator.MUS, controlVars []smt.Term) []smt.Term {
	var out []smt.Term
	for i, on := range m.BoolMUS {
		if on && i < len(controlVars) {
			out = append(out, controlVars[i])
		}
	}
	sortTerms(out)
	return out
}

func (e *Engine) logMUS(n int, m enumerator.MUS, controlVars []smt.Term) {
	projected := projectMUS(m, controlVars)
	e.log.Infof("MUS #%d", n)
	for _, cv := range projected {
		e.log.Infof("  %s", cv.String())
	}
}
