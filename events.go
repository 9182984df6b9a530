package noderank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NodeOutcome is the event published after each node's classification.
type NodeOutcome struct {
	RunID     string  `json:"runId,omitempty"`
	NodeID    string  `json:"nodeId"`
	Healthy   bool    `json:"healthy"`
	LatencyMs float64 `json:"latencyMs,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// RunSummary is the event published once per completed run.
type RunSummary struct {
	RunID      string   `json:"runId"`
	Stats      RunStats `json:"stats"`
	BestNodeID string   `json:"bestNodeId,omitempty"`
	DurationMs int64    `json:"durationMs"`
}

// Publisher pushes check outcomes onto a NATS subject tree so external
// consumers can follow pool health without polling:
//
//	noderank.<pool>.node.<nodeID>   per-node outcomes
//	noderank.<pool>.run             run summaries
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewPublisher creates a publisher for the given pool over an existing NATS
// connection. The connection stays owned by the caller.
func NewPublisher(nc *nats.Conn, pool string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		nc:     nc,
		prefix: fmt.Sprintf("noderank.%s", pool),
		logger: logger.With("component", "publisher", "pool", pool),
	}
}

// PublishOutcome publishes one node's classification.
func (p *Publisher) PublishOutcome(ctx context.Context, outcome NodeOutcome) error {
	subject := fmt.Sprintf("%s.node.%s", p.prefix, outcome.NodeID)
	return p.publish(subject, outcome)
}

// PublishRunSummary publishes the aggregate result of a completed run.
func (p *Publisher) PublishRunSummary(ctx context.Context, report *Report) error {
	summary := RunSummary{
		RunID:      report.RunID,
		Stats:      report.Stats,
		DurationMs: report.Duration.Milliseconds(),
	}
	if len(report.Healthy) > 0 {
		summary.BestNodeID = report.Healthy[0].ID
	}
	return p.publish(fmt.Sprintf("%s.run", p.prefix), summary)
}

func (p *Publisher) publish(subject string, payload any) error {
	if p.nc == nil || p.nc.IsClosed() {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("event published", "subject", subject)
	return nil
}
