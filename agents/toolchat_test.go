package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ankitchan/sast-ai-agent/tools"
	"github.com/Ankitchan/sast-ai-agent/types"
)

// scriptedAgent replays a fixed sequence of decisions, recording the
// messages it was shown at each turn.
type scriptedAgent struct {
	decisions []ToolDecision
	turns     [][]types.Message
}

func (a *scriptedAgent) Decide(ctx context.Context, messages []types.Message) (ToolDecision, error) {
	a.turns = append(a.turns, append([]types.Message{}, messages...))
	if len(a.decisions) == 0 {
		return ToolDecision{Answer: "done"}, nil
	}
	d := a.decisions[0]
	a.decisions = a.decisions[1:]
	return d, nil
}

func TestToolPipeline_SingleToolCall(t *testing.T) {
	registry := tools.NewRegistry(zaptest.NewLogger(t))
	registry.Register(tools.Calculator{})

	agent := &scriptedAgent{decisions: []ToolDecision{
		{Tool: "calculator", Input: "6 * 7"},
		{Answer: "The result is 42."},
	}}
	pipeline, err := NewToolPipeline(agent, registry, zaptest.NewLogger(t))
	require.NoError(t, err)

	answer, err := pipeline.Process(context.Background(), "what is 6 times 7?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The result is 42.", answer)

	// Second turn saw the tool result appended to the conversation.
	require.Len(t, agent.turns, 2)
	last := agent.turns[1][len(agent.turns[1])-1]
	assert.Equal(t, types.RoleTool, last.Role)
	assert.Equal(t, "calculator", last.Name)
	assert.Equal(t, "42", last.Content)
}

func TestToolPipeline_DirectAnswerSkipsTools(t *testing.T) {
	agent := &scriptedAgent{decisions: []ToolDecision{
		{Answer: "hello there"},
	}}
	pipeline, err := NewToolPipeline(agent, tools.NewRegistry(nil), zaptest.NewLogger(t))
	require.NoError(t, err)

	answer, err := pipeline.Process(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", answer)
	assert.Len(t, agent.turns, 1)
}

func TestToolPipeline_UnknownToolIsCaughtAtBoundary(t *testing.T) {
	agent := &scriptedAgent{decisions: []ToolDecision{
		{Tool: "ghost", Input: "boo"},
	}}
	pipeline, err := NewToolPipeline(agent, tools.NewRegistry(nil), zaptest.NewLogger(t))
	require.NoError(t, err)

	answer, err := pipeline.Process(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "I encountered an error")
}

func TestToolPipeline_LoopExhaustionReturnsDegradedAnswer(t *testing.T) {
	// An agent that keeps calling tools forever hits the ceiling and
	// gets the friendly exhaustion text instead of an error.
	registry := tools.NewRegistry(nil)
	registry.Register(tools.Calculator{})

	looping := toolAgentFunc(func(ctx context.Context, messages []types.Message) (ToolDecision, error) {
		return ToolDecision{Tool: "calculator", Input: "1 + 1"}, nil
	})
	pipeline, err := NewToolPipeline(looping, registry, zaptest.NewLogger(t), WithToolMaxSteps(6))
	require.NoError(t, err)

	answer, err := pipeline.Process(context.Background(), "loop forever", nil)
	require.NoError(t, err)
	assert.Equal(t, toolExhaustedAnswer, answer)
}

type toolAgentFunc func(ctx context.Context, messages []types.Message) (ToolDecision, error)

func (f toolAgentFunc) Decide(ctx context.Context, messages []types.Message) (ToolDecision, error) {
	return f(ctx, messages)
}
