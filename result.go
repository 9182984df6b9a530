package noderank

import (
	"fmt"
	"math"
	"time"
)

// ProbeResult is the outcome of a single connectivity probe against a node.
// It is created once per attempt and never mutated afterwards.
type ProbeResult struct {
	// Healthy reports whether the probe passed classification.
	Healthy bool `json:"healthy"`

	// LatencyMs is the measured round-trip time in milliseconds.
	// It is 0 and not meaningful when the probe failed at the transport level.
	LatencyMs float64 `json:"latencyMs,omitempty"`

	// TimestampMs is the wall-clock time the probe completed, in Unix milliseconds.
	TimestampMs int64 `json:"timestampMs"`

	// StatusCode is the protocol-level status when one was available,
	// 0 otherwise (connection succeeded but no status could be read).
	StatusCode int `json:"statusCode,omitempty"`

	// Error is a human-readable failure description, set only when unhealthy.
	Error string `json:"error,omitempty"`
}

// StabilityResult is derived from an ordered sequence of probe attempts
// against one node.
type StabilityResult struct {
	// Stable is true only if every attempt in the window succeeded.
	Stable bool `json:"stable"`

	// AttemptsMade is how many probes were actually issued. On failure it is
	// the 1-based index of the first failing attempt.
	AttemptsMade int `json:"attemptsMade"`

	// Reason describes why the node was rejected; set iff not stable.
	Reason string `json:"reason,omitempty"`

	// AverageLatencyMs is the arithmetic mean of the attempts' latencies;
	// set iff stable.
	AverageLatencyMs float64 `json:"averageLatencyMs,omitempty"`

	// SuccessRate is 1.0 when stable. A stable result requires zero failures
	// across the full window, so any other value marks the node unstable.
	SuccessRate float64 `json:"successRate"`
}

// ScoredNode is a node that passed both stability testing and a final
// confirmation probe, annotated with its ranking inputs.
type ScoredNode struct {
	Node

	// LatencyMs is the confirmation probe's latency.
	LatencyMs float64 `json:"latencyMs"`

	// AverageLatencyMs is the mean latency observed during stability testing.
	AverageLatencyMs float64 `json:"averageLatencyMs"`

	// Score is the ranking value; higher is better.
	Score float64 `json:"score"`
}

// RunStats aggregates the outcome of one CheckAll invocation. Counters are
// reset at the start of every run; nothing accumulates across runs.
type RunStats struct {
	TotalChecked int `json:"totalChecked"`
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`

	// HealthRatePercent is Succeeded/TotalChecked*100 rounded to one decimal
	// place. An empty run yields 0 rather than a division error.
	HealthRatePercent float64 `json:"healthRatePercent"`
}

// HealthRate renders the health rate as a percentage string, e.g. "50.0%".
func (s RunStats) HealthRate() string {
	return fmt.Sprintf("%.1f%%", s.HealthRatePercent)
}

// finalize computes the derived rate once all counters are settled.
func (s *RunStats) finalize() {
	if s.TotalChecked == 0 {
		s.HealthRatePercent = 0
		return
	}
	rate := float64(s.Succeeded) / float64(s.TotalChecked) * 100
	s.HealthRatePercent = math.Round(rate*10) / 10
}

// Report is the full result of one CheckAll invocation.
type Report struct {
	// RunID uniquely identifies this invocation across logs, events and metrics.
	RunID string `json:"runId"`

	// Healthy holds the surviving nodes sorted by score, highest first.
	// Nodes with equal scores keep their relative input order.
	Healthy []ScoredNode `json:"healthy"`

	// Stats aggregates the per-node outcomes of this run.
	Stats RunStats `json:"stats"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"startedAt"`

	// Duration is how long the run took end to end.
	Duration time.Duration `json:"duration"`
}
