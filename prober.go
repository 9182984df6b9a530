package noderank

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"
)

// Prober issues a single bounded-time connectivity check against one node.
//
// Implementations classify the outcome themselves and never return a Go
// error: every transport failure degrades to an unhealthy ProbeResult.
type Prober interface {
	Probe(ctx context.Context, node Node) ProbeResult
}

// HTTPProber probes nodes with a header-only HTTP request.
type HTTPProber struct {
	client       *http.Client
	timeout      time.Duration
	maxLatencyMs float64
	clock        clock.Clock
	logger       *slog.Logger
}

// NewHTTPProber creates a prober with the given per-probe timeout and
// latency ceiling. Zero values fall back to the package defaults.
func NewHTTPProber(timeout time.Duration, maxLatencyMs float64, logger *slog.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	if maxLatencyMs <= 0 {
		maxLatencyMs = DefaultMaxLatencyMs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPProber{
		client:       &http.Client{},
		timeout:      timeout,
		maxLatencyMs: maxLatencyMs,
		clock:        clock.New(),
		logger:       logger.With("component", "prober"),
	}
}

// Probe issues one HEAD request against the node's address and classifies
// the response. The request is cancelled once the configured timeout elapses.
func (p *HTTPProber) Probe(ctx context.Context, node Node) ProbeResult {
	if _, err := url.ParseRequestURI(node.Address); err != nil {
		return p.failure(node, fmt.Sprintf("invalid address: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, node.Address, nil)
	if err != nil {
		return p.failure(node, fmt.Sprintf("invalid address: %v", err))
	}

	start := p.clock.Now()
	resp, err := p.client.Do(req)
	elapsed := p.clock.Since(start)

	if err != nil {
		msg := err.Error()
		if reqCtx.Err() == context.DeadlineExceeded {
			msg = fmt.Sprintf("probe timed out after %v", p.timeout)
		}
		return p.failure(node, msg)
	}
	defer resp.Body.Close()

	latencyMs := float64(elapsed) / float64(time.Millisecond)
	result := ProbeResult{
		Healthy:     validateResponse(latencyMs, resp.StatusCode, p.maxLatencyMs),
		LatencyMs:   latencyMs,
		TimestampMs: p.clock.Now().UnixMilli(),
		StatusCode:  resp.StatusCode,
	}
	if !result.Healthy {
		result.Error = classifyRejection(latencyMs, resp.StatusCode, p.maxLatencyMs)
	}

	p.logger.Debug("probe completed",
		"node", node.ID,
		"healthy", result.Healthy,
		"latencyMs", latencyMs,
		"status", resp.StatusCode)
	return result
}

func (p *HTTPProber) failure(node Node, msg string) ProbeResult {
	p.logger.Debug("probe failed", "node", node.ID, "error", msg)
	return ProbeResult{
		Healthy:     false,
		TimestampMs: p.clock.Now().UnixMilli(),
		Error:       msg,
	}
}

// validateResponse classifies one measured response. A response is healthy
// iff the latency sits within [1ms, maxLatencyMs] and, when a protocol
// status is available (statusCode > 0), the status is below 400.
//
// Latencies under 1ms are rejected as clock artifacts rather than accepted
// as "too good": a zero reading means the measurement is broken, not fast.
func validateResponse(latencyMs float64, statusCode int, maxLatencyMs float64) bool {
	if latencyMs > maxLatencyMs {
		return false
	}
	if latencyMs < 1 {
		return false
	}
	if statusCode > 0 && statusCode >= 400 {
		return false
	}
	return true
}

// classifyRejection produces the human-readable reason matching
// validateResponse's verdict.
func classifyRejection(latencyMs float64, statusCode int, maxLatencyMs float64) string {
	switch {
	case latencyMs > maxLatencyMs:
		return fmt.Sprintf("latency %.1fms exceeds limit of %.0fms", latencyMs, maxLatencyMs)
	case latencyMs < 1:
		return fmt.Sprintf("latency %.3fms below measurable floor", latencyMs)
	case statusCode >= 400:
		return fmt.Sprintf("unexpected status code %d", statusCode)
	default:
		return "connection failed"
	}
}
