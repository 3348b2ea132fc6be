package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// End is the terminal marker. Routing to End completes the run.
const End = "__end__"

// NodeFunc is a unit of work: it reads the current state and returns a
// partial update to be merged in. Side effects inside the node are the
// node's business; the engine only sequences calls and merges output.
type NodeFunc func(ctx context.Context, state *ChatState) (Update, error)

// RouterFunc inspects the post-merge state and returns the label of the
// branch to take. The label must be a key of the target table
// registered with AddConditionalEdge.
type RouterFunc func(state *ChatState) string

type conditionalEdge struct {
	router  RouterFunc
	targets map[string]string
}

// Builder assembles a workflow graph. Construction errors are deferred
// to Compile so call chains stay fluent.
type Builder struct {
	name        string
	nodes       map[string]NodeFunc
	edges       map[string]string
	conditional map[string]conditionalEdge
	start       string
	logger      *zap.Logger
}

// NewBuilder creates a graph builder for a named workflow.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:        name,
		nodes:       make(map[string]NodeFunc),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge),
		logger:      zap.NewNop(),
	}
}

// WithLogger sets the logger used by the builder and compiled plan.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// AddNode registers a named node.
func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	b.nodes[name] = fn
	return b
}

// AddEdge registers an unconditional edge. The target may be End.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.edges[from] = to
	return b
}

// AddConditionalEdge registers a router for a node together with the
// label-to-node table its labels resolve through. Target values may be
// End.
func (b *Builder) AddConditionalEdge(from string, router RouterFunc, targets map[string]string) *Builder {
	b.conditional[from] = conditionalEdge{router: router, targets: targets}
	return b
}

// SetStart designates the start node.
func (b *Builder) SetStart(name string) *Builder {
	b.start = name
	return b
}

// Compile validates the graph and returns an executable plan.
// Validation fails with a GRAPH_INVALID error when a referenced node is
// undeclared, the start node is unset, or a node is a dead end (neither
// a fixed nor a conditional outgoing edge).
func (b *Builder) Compile() (*Plan, error) {
	if len(b.nodes) == 0 {
		return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s has no nodes", b.name)
	}
	if b.start == "" {
		return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s has no start node", b.name)
	}
	if _, ok := b.nodes[b.start]; !ok {
		return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: start node %q is not declared", b.name, b.start)
	}

	for from, to := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: edge from undeclared node %q", b.name, from)
		}
		if err := b.checkTarget(from, to); err != nil {
			return nil, err
		}
	}
	for from, ce := range b.conditional {
		if _, ok := b.nodes[from]; !ok {
			return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: conditional edge from undeclared node %q", b.name, from)
		}
		if ce.router == nil {
			return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: node %q has a nil router", b.name, from)
		}
		if len(ce.targets) == 0 {
			return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: node %q has an empty routing table", b.name, from)
		}
		for label, to := range ce.targets {
			if err := b.checkTarget(from, to); err != nil {
				return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: label %q: %v", b.name, label, err)
			}
		}
	}

	// Dead-end check: every node must have a way out.
	for name := range b.nodes {
		_, hasEdge := b.edges[name]
		_, hasCond := b.conditional[name]
		if !hasEdge && !hasCond {
			return nil, types.NewErrorf(types.ErrGraphInvalid, "graph %s: node %q is a dead end", b.name, name)
		}
	}

	b.logger.Debug("graph compiled",
		zap.String("graph", b.name),
		zap.Int("nodes", len(b.nodes)),
		zap.String("start", b.start),
	)

	return &Plan{
		name:        b.name,
		nodes:       b.nodes,
		edges:       b.edges,
		conditional: b.conditional,
		start:       b.start,
		logger:      b.logger.With(zap.String("graph", b.name)),
	}, nil
}

func (b *Builder) checkTarget(from, to string) error {
	if to == End {
		return nil
	}
	if _, ok := b.nodes[to]; !ok {
		return types.NewErrorf(types.ErrGraphInvalid, "graph %s: node %q references undeclared node %q", b.name, from, to)
	}
	return nil
}
