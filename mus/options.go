package mus

// Options holds the engine's configuration table, built with the
// functional-options pattern used throughout this codebase (e.g.
// solver.WithInput / solver.WithTracer).
type Options struct {
	// LoggingSMTSolver must be true; without it, rewriting in the
	// underlying solver would collapse control-var equalities. Checked
	// by Engine.New, not silently defaulted, because a caller that
	// forgets this flag gets a query that looks right but isn't.
	LoggingSMTSolver bool

	// AtomicInit, when true, treats the entire init formula as one INIT
	// unit rather than decomposing it into conjuncts.
	AtomicInit bool

	// ApplyTseitin, when true, Tseitin-decomposes trans units (§4.6).
	// Incompatible with CombineSuffix.
	ApplyTseitin bool

	// IncludeYosysInternalNetnames, when false (the default), asserts
	// trans units whose identifier begins with "$" contextually instead
	// of as toggleable units.
	IncludeYosysInternalNetnames bool

	// CombineSuffix, if non-empty, is a regex suffix that groups trans
	// units by identifier prefix (§4.5).
	CombineSuffix string

	// DumpSMT2, when true, dumps the full MUS query to mus_query.smt2.
	DumpSMT2 bool
}

// Option mutates an Options value being built up by New.
type Option func(*Options)

// WithAtomicInit sets AtomicInit.
func WithAtomicInit(v bool) Option {
	return func(o *Options) { o.AtomicInit = v }
}

// WithTseitin sets ApplyTseitin.
func WithTseitin(v bool) Option {
	return func(o *Options) { o.ApplyTseitin = v }
}

// WithYosysInternalNetnames sets IncludeYosysInternalNetnames.
func WithYosysInternalNetnames(v bool) Option {
	return func(o *Options) { o.IncludeYosysInternalNetnames = v }
}

// WithCombineSuffix sets CombineSuffix.
func WithCombineSuffix(suffix string) Option {
	return func(o *Options) { o.CombineSuffix = suffix }
}

// WithDumpSMT2 sets DumpSMT2.
func WithDumpSMT2(v bool) Option {
	return func(o *Options) { o.DumpSMT2 = v }
}

// buildOptions applies opts over defaults. LoggingSMTSolver defaults to
// true because it is the only legal value for a functioning query — a
// caller that wants to exercise the config-error path constructs Options
// directly rather than going through New's functional options.
func buildOptions(opts ...Option) Options {
	o := Options{LoggingSMTSolver: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// validate enforces the engine's configuration-error checks, before any
// solver mutation.
func (o Options) validate() error {
	if !o.LoggingSMTSolver {
		return newConfigurationError("logging_smt_solver is required")
	}
	if o.ApplyTseitin && o.CombineSuffix != "" {
		return newConfigurationError("mus_apply_tseitin is incompatible with mus_combine_suffix")
	}
	return nil
}
