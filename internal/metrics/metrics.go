// Package metrics exposes recompute pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Phases lists every value the phase gauge can take.
var Phases = []string{"idle", "computing", "refreshing", "stable"}

var (
	recomputesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "greatcircle_recomputes_started_total",
		Help: "Recompute passes spawned.",
	})

	recomputesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "greatcircle_recomputes_completed_total",
		Help: "Recompute passes whose raster was deposited.",
	})

	recomputesSuperseded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "greatcircle_recomputes_superseded_total",
		Help: "Recompute passes abandoned because a newer one was requested.",
	})

	staleDeposits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "greatcircle_stale_deposits_total",
		Help: "Finished rasters rejected by the mailbox for an old generation.",
	})

	degenerateFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greatcircle_degenerate_fallbacks_total",
			Help: "Rotation bases that fell back to a simpler anchor set.",
		},
		[]string{"fallback"},
	)

	recomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "greatcircle_recompute_duration_seconds",
		Help:    "Time spent in the per-pixel loop of a completed recompute.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	phase = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "greatcircle_render_phase",
			Help: "1 for the render state machine's current phase, 0 otherwise.",
		},
		[]string{"phase"},
	)
)

func init() {
	prometheus.MustRegister(recomputesStarted)
	prometheus.MustRegister(recomputesCompleted)
	prometheus.MustRegister(recomputesSuperseded)
	prometheus.MustRegister(staleDeposits)
	prometheus.MustRegister(degenerateFallbacks)
	prometheus.MustRegister(recomputeDuration)
	prometheus.MustRegister(phase)

	SetPhase("idle")
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncRecomputesStarted()    { recomputesStarted.Inc() }
func IncRecomputesSuperseded() { recomputesSuperseded.Inc() }
func IncStaleDeposits()        { staleDeposits.Inc() }

// RecordRecompute counts a deposited raster and observes its duration.
func RecordRecompute(elapsed time.Duration) {
	recomputesCompleted.Inc()
	recomputeDuration.Observe(elapsed.Seconds())
}

// IncDegenerateFallback counts a basis built from fewer anchors than given.
func IncDegenerateFallback(kind string) {
	degenerateFallbacks.WithLabelValues(kind).Inc()
}

// SetPhase marks name as the current phase.
func SetPhase(name string) {
	for _, p := range Phases {
		v := 0.0
		if p == name {
			v = 1
		}
		phase.WithLabelValues(p).Set(v)
	}
}
