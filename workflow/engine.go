package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// DefaultMaxSteps is the global step ceiling applied when a run does
// not override it. It bounds pathological cycles such as an evaluator
// that never marks itself sufficient.
const DefaultMaxSteps = 30

// Observer receives engine execution events. Implementations must be
// safe for concurrent use; a compiled Plan may serve many runs at once.
type Observer interface {
	RunCompleted(graph string, steps int, duration time.Duration, err error)
	NodeExecuted(graph, node string, duration time.Duration, err error)
	RouteDecided(graph, node, label string)
	StepLimitHit(graph string)
}

// Plan is a compiled, immutable workflow graph. Safe for concurrent
// runs; each run owns its own ChatState.
type Plan struct {
	name        string
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	start       string
	logger      *zap.Logger
}

// Name returns the workflow name.
func (p *Plan) Name() string { return p.name }

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	maxSteps int
	observer Observer
}

// WithMaxSteps overrides the default step ceiling for one run.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// WithObserver attaches an execution observer for one run.
func WithObserver(o Observer) RunOption {
	return func(c *runConfig) { c.observer = o }
}

// Run walks the graph from the start node: it executes the current
// node, merges its partial update, resolves the next node (fixed edge
// first, router otherwise), and repeats until it reaches End. Every
// iteration counts against the step ceiling; exceeding it fails the run
// with a STEP_LIMIT_EXCEEDED error so callers can give a tailored
// response rather than a raw fault.
func (p *Plan) Run(ctx context.Context, initial ChatState, opts ...RunOption) (*ChatState, error) {
	cfg := runConfig{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	state := initial
	current := p.start
	steps := 0
	started := time.Now()

	logger.Info("run started",
		zap.String("start", current),
		zap.Int("max_steps", cfg.maxSteps),
		zap.Int("seed_messages", len(state.Messages)),
	)

	finish := func(err error) (*ChatState, error) {
		elapsed := time.Since(started)
		if cfg.observer != nil {
			cfg.observer.RunCompleted(p.name, steps, elapsed, err)
		}
		if err != nil {
			logger.Error("run failed", zap.Int("steps", steps), zap.Duration("elapsed", elapsed), zap.Error(err))
			return nil, err
		}
		logger.Info("run completed", zap.Int("steps", steps), zap.Duration("elapsed", elapsed))
		return &state, nil
	}

	for {
		if current == End {
			return finish(nil)
		}

		select {
		case <-ctx.Done():
			return finish(ctx.Err())
		default:
		}

		steps++
		if steps > cfg.maxSteps {
			if cfg.observer != nil {
				cfg.observer.StepLimitHit(p.name)
			}
			return finish(types.NewErrorf(types.ErrStepLimit,
				"graph %s exceeded %d steps at node %q", p.name, cfg.maxSteps, current))
		}

		node := p.nodes[current]
		nodeStart := time.Now()
		update, err := node(ctx, &state)
		if cfg.observer != nil {
			cfg.observer.NodeExecuted(p.name, current, time.Since(nodeStart), err)
		}
		if err != nil {
			return finish(types.NewErrorf(types.ErrNodeFailed, "node %q failed", current).WithCause(err))
		}
		state.Apply(update)

		logger.Debug("node executed",
			zap.String("node", current),
			zap.Int("step", steps),
			zap.Int("messages", len(state.Messages)),
		)

		next, err := p.route(current, &state, cfg.observer, logger)
		if err != nil {
			return finish(err)
		}
		current = next
	}
}

// route resolves the successor of a node against the post-merge state.
func (p *Plan) route(current string, state *ChatState, obs Observer, logger *zap.Logger) (string, error) {
	if next, ok := p.edges[current]; ok {
		return next, nil
	}

	ce := p.conditional[current]
	label := ce.router(state)
	if obs != nil {
		obs.RouteDecided(p.name, current, label)
	}
	next, ok := ce.targets[label]
	if !ok {
		return "", types.NewErrorf(types.ErrRouteUnknown,
			"graph %s: node %q routed to unmapped label %q", p.name, current, label)
	}
	logger.Debug("route decided",
		zap.String("node", current),
		zap.String("label", label),
		zap.String("next", next),
	)
	return next, nil
}
