package noderank

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

// StabilityEvaluator runs repeated probes against one node and decides
// whether it is stable. Stability is all-or-nothing: a single failed attempt
// anywhere in the window disqualifies the node.
type StabilityEvaluator struct {
	prober   Prober
	attempts int
	delay    time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// NewStabilityEvaluator creates an evaluator issuing at most attempts probes
// with delay between them. attempts values below 1 fall back to the default.
func NewStabilityEvaluator(prober Prober, attempts int, delay time.Duration, logger *slog.Logger) *StabilityEvaluator {
	if attempts < 1 {
		attempts = DefaultRequiredAttempts
	}
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StabilityEvaluator{
		prober:   prober,
		attempts: attempts,
		delay:    delay,
		clock:    clock.New(),
		logger:   logger.With("component", "stability"),
	}
}

// Evaluate probes the node sequentially, waiting the configured delay
// between attempts. It short-circuits on the first unhealthy attempt:
// remaining attempts are never issued.
func (e *StabilityEvaluator) Evaluate(ctx context.Context, node Node) StabilityResult {
	var totalLatencyMs float64

	for attempt := 1; attempt <= e.attempts; attempt++ {
		if attempt > 1 && e.delay > 0 {
			if err := e.sleep(ctx); err != nil {
				return StabilityResult{
					Stable:       false,
					AttemptsMade: attempt - 1,
					Reason:       "evaluation cancelled",
				}
			}
		}

		result := e.prober.Probe(ctx, node)
		if !result.Healthy {
			reason := result.Error
			if reason == "" {
				reason = "connection failed"
			}
			e.logger.Debug("node unstable",
				"node", node.ID,
				"attempt", attempt,
				"reason", reason)
			return StabilityResult{
				Stable:       false,
				AttemptsMade: attempt,
				Reason:       reason,
			}
		}
		totalLatencyMs += result.LatencyMs
	}

	avg := totalLatencyMs / float64(e.attempts)
	e.logger.Debug("node stable", "node", node.ID, "averageLatencyMs", avg)
	return StabilityResult{
		Stable:           true,
		AttemptsMade:     e.attempts,
		AverageLatencyMs: avg,
		// Reaching this branch requires zero failures across the full window.
		SuccessRate: 1.0,
	}
}

func (e *StabilityEvaluator) sleep(ctx context.Context) error {
	timer := e.clock.Timer(e.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
