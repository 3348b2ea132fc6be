package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/tools"
	"github.com/Ankitchan/sast-ai-agent/types"
	"github.com/Ankitchan/sast-ai-agent/workflow"
)

const toolExhaustedAnswer = "I couldn't complete this request within limits. " +
	"Try breaking it into smaller questions."

// ToolPipeline is a ReAct-style assembly over a tool registry:
//
//	agent → {tools, End}
//	tools → agent
//
// The agent delegate either answers or names a tool; a tool invocation
// is recorded as an assistant message carrying the tool name, and the
// tool result comes back as a tool message the agent sees on its next
// turn. The engine step ceiling bounds the loop.
type ToolPipeline struct {
	agent    ToolAgent
	registry *tools.Registry
	plan     *workflow.Plan
	maxSteps int
	logger   *zap.Logger
	observer workflow.Observer
}

// ToolOption configures the tool assembly.
type ToolOption func(*ToolPipeline)

// WithToolMaxSteps overrides the engine step ceiling.
func WithToolMaxSteps(n int) ToolOption {
	return func(p *ToolPipeline) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

// WithToolObserver attaches an engine observer to every run.
func WithToolObserver(o workflow.Observer) ToolOption {
	return func(p *ToolPipeline) { p.observer = o }
}

// NewToolPipeline compiles the ReAct graph around the agent delegate
// and tool registry.
func NewToolPipeline(agent ToolAgent, registry *tools.Registry, logger *zap.Logger, opts ...ToolOption) (*ToolPipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ToolPipeline{
		agent:    agent,
		registry: registry,
		maxSteps: workflow.DefaultMaxSteps,
		logger:   logger.With(zap.String("component", "tool_pipeline")),
	}

	plan, err := workflow.NewBuilder("tool_chat").
		WithLogger(p.logger).
		AddNode("agent", p.agentNode).
		AddNode("tools", p.toolsNode).
		AddConditionalEdge("agent", func(s *workflow.ChatState) string {
			return s.NextStep
		}, map[string]string{
			"tools":   "tools",
			"respond": workflow.End,
		}).
		AddEdge("tools", "agent").
		SetStart("agent").
		Compile()
	if err != nil {
		return nil, err
	}
	p.plan = plan

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Pipeline.
func (p *ToolPipeline) Name() string { return "tool_chat" }

func (p *ToolPipeline) agentNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	decision, err := p.agent.Decide(ctx, state.Messages)
	if err != nil {
		return workflow.Update{}, err
	}

	if decision.Tool == "" {
		return workflow.Update{
			Messages: []types.Message{types.NewAssistantMessage(decision.Answer)},
			NextStep: workflow.String("respond"),
		}, nil
	}

	// A tool call rides in an assistant message: Name carries the tool,
	// Content carries the input.
	call := types.NewAssistantMessage(decision.Input)
	call.Name = decision.Tool
	return workflow.Update{
		Messages: []types.Message{call},
		NextStep: workflow.String("tools"),
	}, nil
}

func (p *ToolPipeline) toolsNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	call := state.LastMessage()

	result, err := p.registry.Execute(ctx, call.Name, call.Content)
	if err != nil {
		return workflow.Update{}, err
	}
	p.logger.Debug("tool executed", zap.String("tool", call.Name))
	return workflow.Update{
		Messages: []types.Message{types.NewToolMessage(call.Name, result)},
	}, nil
}

// Process implements Pipeline.
func (p *ToolPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	messages := append([]types.Message{}, history...)
	messages = append(messages, types.NewUserMessage(message))

	var opts []workflow.RunOption
	opts = append(opts, workflow.WithMaxSteps(p.maxSteps))
	if p.observer != nil {
		opts = append(opts, workflow.WithObserver(p.observer))
	}

	final, err := p.plan.Run(ctx, workflow.ChatState{Messages: messages}, opts...)
	switch {
	case err == nil:
	case types.IsCode(err, types.ErrStepLimit):
		p.logger.Warn("tool run exhausted step ceiling", zap.Error(err))
		return toolExhaustedAnswer, nil
	case types.IsCode(err, types.ErrNodeFailed):
		p.logger.Error("tool delegate failed", zap.Error(err))
		return "I encountered an error while processing your request: " + err.Error(), nil
	default:
		return "", err
	}

	if len(final.Messages) == 0 {
		return "", types.NewError(types.ErrEmptyResult, "tool run produced no messages")
	}
	return final.LastMessage().Content, nil
}
