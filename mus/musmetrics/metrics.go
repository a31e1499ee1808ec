// Package musmetrics carries the engine's observability surface:
// prometheus.NewCounter/NewGauge plus a package-level Register(), the same
// shape used for this codebase's own resource-count metrics, adapted here
// to MUS-query counts. A library component still gets observability wired
// in even though a CLI/metrics *endpoint* is out of scope — prometheus's
// client is carried into the engine itself regardless.
package musmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queriesBuilt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mus_queries_built_total",
			Help: "Number of MUS queries successfully built by the engine façade.",
		},
	)

	musesFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mus_muses_found_total",
			Help: "Number of minimal unsatisfiable subsets found across all queries.",
		},
	)

	controlVariables = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mus_control_variables",
			Help: "Number of control variables registered by the most recently built query.",
		},
	)

	enumerateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mus_enumerate_duration_seconds",
			Help:    "Wall-clock time spent inside the enumerator's Enumerate call.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers every metric in this package with the default
// Prometheus registry, mirroring the package-level Register seen
// elsewhere in this codebase.
func Register() {
	prometheus.MustRegister(queriesBuilt)
	prometheus.MustRegister(musesFound)
	prometheus.MustRegister(controlVariables)
	prometheus.MustRegister(enumerateDuration)
}

// ObserveQueryBuilt records that a query was built with the given number of
// registered control variables.
func ObserveQueryBuilt(numControlVars int) {
	queriesBuilt.Inc()
	controlVariables.Set(float64(numControlVars))
}

// ObserveMusesFound adds n to the running count of MUSes found.
func ObserveMusesFound(n int) {
	musesFound.Add(float64(n))
}

// ObserveEnumerateDuration records how long an Enumerate call took.
func ObserveEnumerateDuration(d time.Duration) {
	enumerateDuration.Observe(d.Seconds())
}
