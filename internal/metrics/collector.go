// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector exposes workflow execution metrics. It satisfies the
// engine's Observer contract and is safe for concurrent runs; all
// underlying prometheus vectors are concurrency-safe.
type Collector struct {
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	runSteps      *prometheus.HistogramVec
	nodesTotal    *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec
	routesTotal   *prometheus.CounterVec
	stepLimitHits *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector registers the workflow metrics on the given registerer.
// A nil registerer uses the default prometheus registry.
func NewCollector(namespace string, registerer prometheus.Registerer, logger *zap.Logger) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(registerer)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_runs_total",
			Help:      "Total number of workflow runs",
		},
		[]string{"graph", "status"},
	)

	c.runDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_run_duration_seconds",
			Help:      "Workflow run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"graph"},
	)

	c.runSteps = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_run_steps",
			Help:      "Node executions per workflow run",
			Buckets:   []float64{1, 2, 5, 10, 15, 20, 30},
		},
		[]string{"graph"},
	)

	c.nodesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_node_executions_total",
			Help:      "Total number of node executions",
		},
		[]string{"graph", "node", "status"},
	)

	c.nodeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_node_duration_seconds",
			Help:      "Node execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"graph", "node"},
	)

	c.routesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_route_decisions_total",
			Help:      "Total number of conditional route decisions",
		},
		[]string{"graph", "node", "label"},
	)

	c.stepLimitHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_step_limit_hits_total",
			Help:      "Total number of runs terminated by the step ceiling",
		},
		[]string{"graph"},
	)

	return c
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RunCompleted implements the engine Observer contract.
func (c *Collector) RunCompleted(graph string, steps int, duration time.Duration, err error) {
	c.runsTotal.WithLabelValues(graph, statusLabel(err)).Inc()
	c.runDuration.WithLabelValues(graph).Observe(duration.Seconds())
	c.runSteps.WithLabelValues(graph).Observe(float64(steps))
}

// NodeExecuted implements the engine Observer contract.
func (c *Collector) NodeExecuted(graph, node string, duration time.Duration, err error) {
	c.nodesTotal.WithLabelValues(graph, node, statusLabel(err)).Inc()
	c.nodeDuration.WithLabelValues(graph, node).Observe(duration.Seconds())
}

// RouteDecided implements the engine Observer contract.
func (c *Collector) RouteDecided(graph, node, label string) {
	c.routesTotal.WithLabelValues(graph, node, label).Inc()
}

// StepLimitHit implements the engine Observer contract.
func (c *Collector) StepLimitHit(graph string) {
	c.logger.Warn("step limit hit", zap.String("graph", graph))
	c.stepLimitHits.WithLabelValues(graph).Inc()
}
