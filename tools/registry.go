// Package tools provides the tool registry and the built-in tools
// available to the tool-using pipeline.
package tools

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// Tool is an executable tool. Input and output are plain text; the
// calling agent owns any structure inside them.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) (string, error)
}

// Registry holds tools by name. Safe for concurrent Register and
// Execute calls.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With(zap.String("component", "tool_registry")),
	}
}

// Register adds a tool, replacing any previous tool of the same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Execute looks up and runs a tool in one call.
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", types.NewErrorf(types.ErrToolNotFound, "tool %q is not registered", name)
	}

	result, err := tool.Execute(ctx, input)
	if err != nil {
		r.logger.Warn("tool execution failed", zap.String("tool", name), zap.Error(err))
		return "", types.NewErrorf(types.ErrToolFailed, "tool %q failed", name).WithCause(err)
	}
	return result, nil
}
