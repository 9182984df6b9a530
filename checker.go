package noderank

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Checker drives the full health evaluation: stability testing, confirmation
// probing, scoring and registry bookkeeping across a node list.
type Checker struct {
	cfg      Config
	logger   *slog.Logger
	registry *Registry

	prober     Prober
	httpClient *http.Client
	clock      clock.Clock
	metrics    *Metrics
	publisher  *Publisher
}

// NewChecker creates a checker writing its outcomes into registry.
func NewChecker(cfg Config, registry *Registry, opts ...Option) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()

	if registry == nil {
		registry = NewRegistry()
	}

	c := &Checker{
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "checker", "pool", cfg.Pool),
		registry: registry,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.prober == nil {
		p := NewHTTPProber(cfg.CheckTimeout, cfg.MaxLatencyMs, cfg.Logger)
		p.clock = c.clock
		if c.httpClient != nil {
			p.client = c.httpClient
		}
		c.prober = p
	}

	return c, nil
}

// Registry returns the registry this checker writes to.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// CheckAll evaluates every node in order and returns the ranked survivors
// plus aggregate statistics for this run.
//
// Nodes are processed strictly sequentially. A node joins the healthy output
// only if it passes the full stability window and one further confirmation
// probe; the confirmation can still fail after a stable window since
// conditions change between attempts. Per-node failures never abort the run.
// The only error returned is context cancellation between nodes.
func (c *Checker) CheckAll(ctx context.Context, nodes []Node) (*Report, error) {
	runID := uuid.NewString()
	startedAt := c.clock.Now()
	logger := c.logger.With("run", runID)

	logger.Info("health check run started", "nodes", len(nodes))

	var stats RunStats
	healthy := make([]ScoredNode, 0, len(nodes))

	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled after %d of %d nodes: %w",
				stats.TotalChecked, len(nodes), err)
		}

		outcome := c.checkNode(ctx, runID, node)
		stats.TotalChecked++
		if outcome == nil {
			stats.Failed++
			continue
		}
		stats.Succeeded++
		healthy = append(healthy, *outcome)
	}

	// Highest score first; ties keep input order.
	sort.SliceStable(healthy, func(i, j int) bool {
		return healthy[i].Score > healthy[j].Score
	})

	stats.finalize()

	report := &Report{
		RunID:     runID,
		Healthy:   healthy,
		Stats:     stats,
		StartedAt: startedAt,
		Duration:  c.clock.Since(startedAt),
	}

	if c.metrics != nil {
		c.metrics.observeRun(c.cfg.Pool, report)
	}
	if c.publisher != nil {
		if err := c.publisher.PublishRunSummary(ctx, report); err != nil {
			logger.Warn("failed to publish run summary", "error", err)
		}
	}

	logger.Info("health check run finished",
		"healthy", stats.Succeeded,
		"failed", stats.Failed,
		"healthRate", stats.HealthRate(),
		"duration", report.Duration)
	return report, nil
}

// checkNode runs the stability window and confirmation probe for one node,
// updating the registry. It returns nil when the node failed.
func (c *Checker) checkNode(ctx context.Context, runID string, node Node) *ScoredNode {
	evaluator := NewStabilityEvaluator(c.prober, c.cfg.RequiredAttempts, c.cfg.InterAttemptDelay, c.cfg.Logger)
	evaluator.clock = c.clock

	stability := evaluator.Evaluate(ctx, node)
	if !stability.Stable {
		c.logger.Debug("node failed stability testing",
			"node", node.ID,
			"attempts", stability.AttemptsMade,
			"reason", stability.Reason)
		c.recordFailure(ctx, runID, node, stability.Reason)
		return nil
	}

	confirmation := c.prober.Probe(ctx, node)
	if !confirmation.Healthy {
		reason := confirmation.Error
		if reason == "" {
			reason = "confirmation probe failed"
		}
		c.logger.Debug("node failed confirmation probe", "node", node.ID, "reason", reason)
		c.recordFailure(ctx, runID, node, reason)
		return nil
	}

	scored := ScoredNode{
		Node:             node,
		LatencyMs:        confirmation.LatencyMs,
		AverageLatencyMs: stability.AverageLatencyMs,
		Score:            Score(confirmation.LatencyMs, stability.AverageLatencyMs),
	}

	c.registry.MarkHealthy(node, confirmation, stability)
	if c.metrics != nil {
		c.metrics.observeNode(c.cfg.Pool, node.ID, true, confirmation.LatencyMs)
	}
	if c.publisher != nil {
		if err := c.publisher.PublishOutcome(ctx, NodeOutcome{
			RunID:     runID,
			NodeID:    node.ID,
			Healthy:   true,
			LatencyMs: confirmation.LatencyMs,
			Score:     scored.Score,
		}); err != nil {
			c.logger.Warn("failed to publish node outcome", "node", node.ID, "error", err)
		}
	}
	return &scored
}

func (c *Checker) recordFailure(ctx context.Context, runID string, node Node, reason string) {
	c.registry.MarkUnhealthy(node.ID)
	if c.metrics != nil {
		c.metrics.observeNode(c.cfg.Pool, node.ID, false, 0)
	}
	if c.publisher != nil {
		if err := c.publisher.PublishOutcome(ctx, NodeOutcome{
			RunID:   runID,
			NodeID:  node.ID,
			Healthy: false,
			Reason:  reason,
		}); err != nil {
			c.logger.Warn("failed to publish node outcome", "node", node.ID, "error", err)
		}
	}
}
