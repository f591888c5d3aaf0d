package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bububa/instructor-gemini"
)

// Collector records rounds and calls on its own Prometheus registry.
type Collector struct {
	roundsTotal  *prometheus.CounterVec
	tokensTotal  *prometheus.CounterVec
	callsTotal   *prometheus.CounterVec
	callRounds   *prometheus.HistogramVec
	callDuration *prometheus.HistogramVec
	registry     *prometheus.Registry
}

var _ instructor.Metrics = (*Collector)(nil)

// NewCollector creates a Collector whose metric names start with namespace,
// "instructor" when empty.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "instructor"
	}
	registry := prometheus.NewRegistry()

	roundsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Round trips by model and finish reason",
		},
		[]string{"model", "finish_reason"},
	)
	tokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported in usage metadata by model and kind",
		},
		[]string{"model", "kind"},
	)
	callsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Finished calls by model and outcome",
		},
		[]string{"model", "outcome"},
	)
	callRounds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_rounds",
			Help:      "Round trips per successful call",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
		[]string{"model"},
	)
	callDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of calls by model and outcome",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{"model", "outcome"},
	)

	registry.MustRegister(roundsTotal)
	registry.MustRegister(tokensTotal)
	registry.MustRegister(callsTotal)
	registry.MustRegister(callRounds)
	registry.MustRegister(callDuration)

	return &Collector{
		roundsTotal:  roundsTotal,
		tokensTotal:  tokensTotal,
		callsTotal:   callsTotal,
		callRounds:   callRounds,
		callDuration: callDuration,
		registry:     registry,
	}
}

func (c *Collector) ObserveRound(ctx context.Context, model string, reason instructor.FinishReason, usage instructor.UsageMetadata) {
	c.roundsTotal.WithLabelValues(model, reason.String()).Inc()
	c.tokensTotal.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokenCount))
	c.tokensTotal.WithLabelValues(model, "candidates").Add(float64(usage.CandidatesTokenCount))
	c.tokensTotal.WithLabelValues(model, "total").Add(float64(usage.TotalTokenCount))
}

func (c *Collector) ObserveCall(ctx context.Context, model string, outcome string, rounds int, elapsed time.Duration) {
	c.callsTotal.WithLabelValues(model, outcome).Inc()
	c.callDuration.WithLabelValues(model, outcome).Observe(elapsed.Seconds())
	if outcome == instructor.OutcomeSuccess {
		c.callRounds.WithLabelValues(model).Observe(float64(rounds))
	}
}

// Registry returns the Prometheus registry for HTTP exposure
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
