package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bububa/instructor-gemini"
)

func TestCollectorObserveRound(t *testing.T) {
	collector := NewCollector("")
	ctx := context.Background()

	usage := instructor.UsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5, TotalTokenCount: 15}
	collector.ObserveRound(ctx, "gemini-2.5-flash", instructor.FinishReasonMaxTokens, usage)
	collector.ObserveRound(ctx, "gemini-2.5-flash", instructor.FinishReasonStop, usage)
	collector.ObserveRound(ctx, "gemini-2.5-flash", instructor.FinishReasonStop, usage)

	assert.Equal(t, 2, testutil.CollectAndCount(collector.roundsTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.roundsTotal.WithLabelValues("gemini-2.5-flash", "STOP")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.roundsTotal.WithLabelValues("gemini-2.5-flash", "MAX_TOKENS")))
	assert.Equal(t, float64(45), testutil.ToFloat64(collector.tokensTotal.WithLabelValues("gemini-2.5-flash", "total")))
	assert.Equal(t, float64(30), testutil.ToFloat64(collector.tokensTotal.WithLabelValues("gemini-2.5-flash", "prompt")))
}

func TestCollectorObserveCall(t *testing.T) {
	collector := NewCollector("test")
	ctx := context.Background()

	collector.ObserveCall(ctx, "m", instructor.OutcomeSuccess, 2, time.Second)
	collector.ObserveCall(ctx, "m", string(instructor.TransportError), 0, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.callsTotal.WithLabelValues("m", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.callsTotal.WithLabelValues("m", "transport")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.callRounds))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.callDuration))
}

func TestCollectorRegistry(t *testing.T) {
	collector := NewCollector("")
	collector.ObserveCall(context.Background(), "m", instructor.OutcomeSuccess, 1, time.Second)

	families, err := collector.Registry().Gather()
	assert.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "instructor_calls_total")
}
