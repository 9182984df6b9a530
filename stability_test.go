package noderank

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProber replays a fixed result sequence per node and counts calls.
// Once a script runs out its last result repeats.
type scriptedProber struct {
	mu      sync.Mutex
	scripts map[string][]ProbeResult
	calls   map[string]int
}

func newScriptedProber() *scriptedProber {
	return &scriptedProber{
		scripts: make(map[string][]ProbeResult),
		calls:   make(map[string]int),
	}
}

func (p *scriptedProber) script(nodeID string, results ...ProbeResult) {
	p.scripts[nodeID] = results
}

func (p *scriptedProber) callCount(nodeID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[nodeID]
}

func (p *scriptedProber) Probe(ctx context.Context, node Node) ProbeResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	script := p.scripts[node.ID]
	idx := p.calls[node.ID]
	p.calls[node.ID]++

	if len(script) == 0 {
		return unhealthyResult("no script for node")
	}
	if idx >= len(script) {
		idx = len(script) - 1
	}
	return script[idx]
}

func healthyResult(latencyMs float64) ProbeResult {
	return ProbeResult{
		Healthy:     true,
		LatencyMs:   latencyMs,
		TimestampMs: time.Now().UnixMilli(),
		StatusCode:  200,
	}
}

func unhealthyResult(msg string) ProbeResult {
	return ProbeResult{
		Healthy:     false,
		TimestampMs: time.Now().UnixMilli(),
		Error:       msg,
	}
}

func TestStabilityAllAttemptsHealthy(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a", healthyResult(100), healthyResult(110), healthyResult(90))

	eval := NewStabilityEvaluator(prober, 3, 0, nil)
	result := eval.Evaluate(context.Background(), Node{ID: "a"})

	require.True(t, result.Stable)
	assert.Equal(t, 3, result.AttemptsMade)
	assert.Equal(t, 100.0, result.AverageLatencyMs)
	assert.Equal(t, 1.0, result.SuccessRate)
	assert.Empty(t, result.Reason)
	assert.Equal(t, 3, prober.callCount("a"))
}

func TestStabilityShortCircuitsOnFirstFailure(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a",
		healthyResult(100),
		healthyResult(110),
		unhealthyResult("connection refused"),
		healthyResult(90))

	eval := NewStabilityEvaluator(prober, 4, 0, nil)
	result := eval.Evaluate(context.Background(), Node{ID: "a"})

	require.False(t, result.Stable)
	assert.Equal(t, 3, result.AttemptsMade)
	assert.Equal(t, "connection refused", result.Reason)
	assert.Zero(t, result.AverageLatencyMs)
	assert.Zero(t, result.SuccessRate)

	// The fourth attempt must never be issued.
	assert.Equal(t, 3, prober.callCount("a"))
}

func TestStabilityFirstAttemptFails(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a", unhealthyResult("dns lookup failed"))

	eval := NewStabilityEvaluator(prober, 3, 0, nil)
	result := eval.Evaluate(context.Background(), Node{ID: "a"})

	require.False(t, result.Stable)
	assert.Equal(t, 1, result.AttemptsMade)
	assert.Equal(t, "dns lookup failed", result.Reason)
	assert.Equal(t, 1, prober.callCount("a"))
}

func TestStabilityGenericReasonWhenErrorEmpty(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a", ProbeResult{Healthy: false})

	eval := NewStabilityEvaluator(prober, 3, 0, nil)
	result := eval.Evaluate(context.Background(), Node{ID: "a"})

	require.False(t, result.Stable)
	assert.Equal(t, "connection failed", result.Reason)
}

func TestStabilitySingleAttemptWindow(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a", healthyResult(42))

	eval := NewStabilityEvaluator(prober, 1, 0, nil)
	result := eval.Evaluate(context.Background(), Node{ID: "a"})

	require.True(t, result.Stable)
	assert.Equal(t, 1, result.AttemptsMade)
	assert.Equal(t, 42.0, result.AverageLatencyMs)
}

func TestStabilityWaitsBetweenAttempts(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a", healthyResult(10), healthyResult(10), healthyResult(10))

	delay := 20 * time.Millisecond
	eval := NewStabilityEvaluator(prober, 3, delay, nil)

	start := time.Now()
	result := eval.Evaluate(context.Background(), Node{ID: "a"})
	elapsed := time.Since(start)

	require.True(t, result.Stable)
	// Two gaps between three attempts.
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}

func TestStabilityCancelledDuringDelay(t *testing.T) {
	prober := newScriptedProber()
	prober.script("a", healthyResult(10), healthyResult(10))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	eval := NewStabilityEvaluator(prober, 2, 5*time.Second, nil)
	result := eval.Evaluate(ctx, Node{ID: "a"})

	require.False(t, result.Stable)
	assert.Equal(t, 1, result.AttemptsMade)
	assert.Equal(t, "evaluation cancelled", result.Reason)
	assert.Equal(t, 1, prober.callCount("a"))
}
