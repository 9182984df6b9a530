package noderank

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noderank/noderank/testutil"
)

func TestPublisherEmitsOutcomesAndSummary(t *testing.T) {
	ns := testutil.StartNATS(t)
	nc := ns.Connect(t)

	sub, err := nc.SubscribeSync("noderank.test.>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	prober := newScriptedProber()
	prober.script("a", healthyResult(55), healthyResult(55), healthyResult(55), healthyResult(50))
	prober.script("b", unhealthyResult("connection refused"))

	pubConn := ns.Connect(t)
	publisher := NewPublisher(pubConn, "test", nil)

	checker, err := NewChecker(testConfig(), nil, WithProber(prober), WithPublisher(publisher))
	require.NoError(t, err)

	report, err := checker.CheckAll(context.Background(), []Node{
		{ID: "a", Address: "https://a.example.com"},
		{ID: "b", Address: "https://b.example.com"},
	})
	require.NoError(t, err)

	// One outcome per node, then one run summary.
	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "noderank.test.node.a", msg.Subject)

	var outcomeA NodeOutcome
	require.NoError(t, json.Unmarshal(msg.Data, &outcomeA))
	assert.True(t, outcomeA.Healthy)
	assert.Equal(t, report.RunID, outcomeA.RunID)
	assert.Equal(t, 70.0, outcomeA.Score)

	msg, err = sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "noderank.test.node.b", msg.Subject)

	var outcomeB NodeOutcome
	require.NoError(t, json.Unmarshal(msg.Data, &outcomeB))
	assert.False(t, outcomeB.Healthy)
	assert.Equal(t, "connection refused", outcomeB.Reason)

	msg, err = sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "noderank.test.run", msg.Subject)

	var summary RunSummary
	require.NoError(t, json.Unmarshal(msg.Data, &summary))
	assert.Equal(t, report.RunID, summary.RunID)
	assert.Equal(t, "a", summary.BestNodeID)
	assert.Equal(t, 2, summary.Stats.TotalChecked)
	assert.Equal(t, "50.0%", summary.Stats.HealthRate())
}

func TestPublisherClosedConnection(t *testing.T) {
	ns := testutil.StartNATS(t)

	nc, err := nats.Connect(ns.URL())
	require.NoError(t, err)
	nc.Close()

	publisher := NewPublisher(nc, "test", nil)
	err = publisher.PublishOutcome(context.Background(), NodeOutcome{NodeID: "a"})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}
