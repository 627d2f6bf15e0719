package sigscript

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation modes used as metric label values.
const (
	ModeScript   = "script"
	ModeFallback = "fallback"
)

// Metrics tracks script evaluation.
type Metrics struct {
	Evaluations       *prometheus.CounterVec
	Returns           prometheus.Counter
	EvaluationLatency prometheus.Histogram
	Ticks             prometheus.Counter
}

// NewMetrics creates the evaluation metrics and registers them when registry is set.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{}

	m.Evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sigscript",
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Total number of signal head evaluations by mode",
	}, []string{"mode"})

	m.Returns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigscript",
		Subsystem: "engine",
		Name:      "returns_total",
		Help:      "Total number of script evaluations ended by RETURN",
	})

	m.EvaluationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sigscript",
		Subsystem: "engine",
		Name:      "evaluation_latency_seconds",
		Help:      "Signal head evaluation latency in seconds",
		Buckets:   []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
	})

	m.Ticks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigscript",
		Subsystem: "engine",
		Name:      "ticks_total",
		Help:      "Total number of simulation ticks processed",
	})

	if registry != nil {
		registry.MustRegister(m.Evaluations, m.Returns, m.EvaluationLatency, m.Ticks)
	}

	return m
}
