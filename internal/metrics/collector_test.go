package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ankitchan/sast-ai-agent/workflow"
)

// The collector must satisfy the engine Observer contract.
var _ workflow.Observer = (*Collector)(nil)

func TestCollector_CountsRunsByStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("test", registry, zaptest.NewLogger(t))

	c.RunCompleted("rag", 5, 120*time.Millisecond, nil)
	c.RunCompleted("rag", 31, time.Second, errors.New("step limit"))
	c.RunCompleted("research", 8, 300*time.Millisecond, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.runsTotal.WithLabelValues("rag", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.runsTotal.WithLabelValues("rag", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.runsTotal.WithLabelValues("research", "success")))
}

func TestCollector_CountsNodeExecutions(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("test", registry, zaptest.NewLogger(t))

	c.NodeExecuted("rag", "retrieve", 10*time.Millisecond, nil)
	c.NodeExecuted("rag", "retrieve", 12*time.Millisecond, nil)
	c.NodeExecuted("rag", "retrieve", time.Millisecond, errors.New("backend down"))

	assert.Equal(t, float64(2), testutil.ToFloat64(c.nodesTotal.WithLabelValues("rag", "retrieve", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.nodesTotal.WithLabelValues("rag", "retrieve", "error")))
}

func TestCollector_CountsRoutesAndStepLimits(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("test", registry, zaptest.NewLogger(t))

	c.RouteDecided("rag", "evaluate", "rewrite")
	c.RouteDecided("rag", "evaluate", "rewrite")
	c.RouteDecided("rag", "evaluate", "synthesize")
	c.StepLimitHit("rag")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.routesTotal.WithLabelValues("rag", "evaluate", "rewrite")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.routesTotal.WithLabelValues("rag", "evaluate", "synthesize")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.stepLimitHits.WithLabelValues("rag")))
}

func TestCollector_ObservesEngineRuns(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector("test", registry, zaptest.NewLogger(t))

	plan, err := workflow.NewBuilder("counting").
		AddNode("first", func(ctx context.Context, s *workflow.ChatState) (workflow.Update, error) {
			return workflow.Update{}, nil
		}).
		AddNode("second", func(ctx context.Context, s *workflow.ChatState) (workflow.Update, error) {
			return workflow.Update{}, nil
		}).
		AddEdge("first", "second").
		AddEdge("second", workflow.End).
		SetStart("first").
		Compile()
	require.NoError(t, err)

	_, err = plan.Run(context.Background(), workflow.ChatState{}, workflow.WithObserver(c))
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.runsTotal.WithLabelValues("counting", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.nodesTotal.WithLabelValues("counting", "first", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.nodesTotal.WithLabelValues("counting", "second", "success")))
}
