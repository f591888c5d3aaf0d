package instructor

import (
	"context"
	"time"
)

// Metrics observes round trips and finished calls.
type Metrics interface {
	ObserveRound(ctx context.Context, model string, reason FinishReason, usage UsageMetadata)
	ObserveCall(ctx context.Context, model string, outcome string, rounds int, elapsed time.Duration)
}

// OutcomeSuccess is the call outcome label of successful calls; failed calls
// are labeled with their ErrorKind.
const OutcomeSuccess = "success"

type NoopMetrics struct{}

func (NoopMetrics) ObserveRound(context.Context, string, FinishReason, UsageMetadata) {}

func (NoopMetrics) ObserveCall(context.Context, string, string, int, time.Duration) {}
