package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ankitchan/sast-ai-agent/types"
)

func appendNode(content string) NodeFunc {
	return func(ctx context.Context, state *ChatState) (Update, error) {
		return Update{Messages: []types.Message{types.NewAssistantMessage(content)}}, nil
	}
}

func TestPlan_RunLinear(t *testing.T) {
	plan, err := NewBuilder("linear").
		WithLogger(zaptest.NewLogger(t)).
		AddNode("first", appendNode("one")).
		AddNode("second", appendNode("two")).
		AddEdge("first", "second").
		AddEdge("second", End).
		SetStart("first").
		Compile()
	require.NoError(t, err)

	final, err := plan.Run(context.Background(), ChatState{
		Messages: []types.Message{types.NewUserMessage("go")},
	})
	require.NoError(t, err)

	require.Len(t, final.Messages, 3)
	assert.Equal(t, "one", final.Messages[1].Content)
	assert.Equal(t, "two", final.Messages[2].Content)
}

func TestPlan_RunRoutesOnPostMergeState(t *testing.T) {
	// The decide node sets NextStep in its own update; the router must
	// see the merged value.
	plan, err := NewBuilder("post-merge").
		AddNode("decide", func(ctx context.Context, state *ChatState) (Update, error) {
			return Update{NextStep: String("left")}, nil
		}).
		AddNode("left", appendNode("took left")).
		AddNode("right", appendNode("took right")).
		AddConditionalEdge("decide", func(s *ChatState) string { return s.NextStep }, map[string]string{
			"left":  "left",
			"right": "right",
		}).
		AddEdge("left", End).
		AddEdge("right", End).
		SetStart("decide").
		Compile()
	require.NoError(t, err)

	final, err := plan.Run(context.Background(), ChatState{})
	require.NoError(t, err)
	assert.Equal(t, "took left", final.LastMessage().Content)
}

func TestPlan_RunStepLimit(t *testing.T) {
	// A cycle with no forced exit must hit the ceiling, not spin.
	plan, err := NewBuilder("cycle").
		AddNode("a", noopNode).
		AddNode("b", noopNode).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetStart("a").
		Compile()
	require.NoError(t, err)

	_, err = plan.Run(context.Background(), ChatState{}, WithMaxSteps(7))
	require.Error(t, err)
	assert.Equal(t, types.ErrStepLimit, types.GetErrorCode(err))
}

func TestPlan_RunDefaultCeiling(t *testing.T) {
	executed := 0
	plan, err := NewBuilder("default-ceiling").
		AddNode("loop", func(ctx context.Context, state *ChatState) (Update, error) {
			executed++
			return Update{}, nil
		}).
		AddEdge("loop", "loop").
		SetStart("loop").
		Compile()
	require.NoError(t, err)

	_, err = plan.Run(context.Background(), ChatState{})
	require.Error(t, err)
	assert.Equal(t, types.ErrStepLimit, types.GetErrorCode(err))
	assert.Equal(t, DefaultMaxSteps, executed)
}

func TestPlan_RunNodeFailure(t *testing.T) {
	boom := errors.New("delegate exploded")
	plan, err := NewBuilder("failing").
		AddNode("bad", func(ctx context.Context, state *ChatState) (Update, error) {
			return Update{}, boom
		}).
		AddEdge("bad", End).
		SetStart("bad").
		Compile()
	require.NoError(t, err)

	_, err = plan.Run(context.Background(), ChatState{})
	require.Error(t, err)
	assert.Equal(t, types.ErrNodeFailed, types.GetErrorCode(err))
	assert.ErrorIs(t, err, boom)
}

func TestPlan_RunUnmappedLabel(t *testing.T) {
	plan, err := NewBuilder("bad-route").
		AddNode("a", noopNode).
		AddNode("b", noopNode).
		AddConditionalEdge("a", func(*ChatState) string { return "missing" }, map[string]string{
			"known": "b",
		}).
		AddEdge("b", End).
		SetStart("a").
		Compile()
	require.NoError(t, err)

	_, err = plan.Run(context.Background(), ChatState{})
	require.Error(t, err)
	assert.Equal(t, types.ErrRouteUnknown, types.GetErrorCode(err))
}

func TestPlan_RunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := NewBuilder("cancelled").
		AddNode("a", noopNode).
		AddEdge("a", "a").
		SetStart("a").
		Compile()
	require.NoError(t, err)

	_, err = plan.Run(ctx, ChatState{})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	nodes     []string
	labels    []string
	completed bool
	limitHits int
	steps     int
}

func (r *recordingObserver) RunCompleted(graph string, steps int, d time.Duration, err error) {
	r.completed = true
	r.steps = steps
}
func (r *recordingObserver) NodeExecuted(graph, node string, d time.Duration, err error) {
	r.nodes = append(r.nodes, node)
}
func (r *recordingObserver) RouteDecided(graph, node, label string) {
	r.labels = append(r.labels, label)
}
func (r *recordingObserver) StepLimitHit(graph string) { r.limitHits++ }

func TestPlan_RunObserver(t *testing.T) {
	plan, err := NewBuilder("observed").
		AddNode("a", func(ctx context.Context, state *ChatState) (Update, error) {
			return Update{NextStep: String("done")}, nil
		}).
		AddNode("b", noopNode).
		AddConditionalEdge("a", func(s *ChatState) string { return s.NextStep }, map[string]string{
			"done": "b",
		}).
		AddEdge("b", End).
		SetStart("a").
		Compile()
	require.NoError(t, err)

	obs := &recordingObserver{}
	_, err = plan.Run(context.Background(), ChatState{}, WithObserver(obs))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, obs.nodes)
	assert.Equal(t, []string{"done"}, obs.labels)
	assert.True(t, obs.completed)
	assert.Equal(t, 2, obs.steps)
	assert.Zero(t, obs.limitHits)
}

func TestPlan_RunIsolatesConcurrentStates(t *testing.T) {
	plan, err := NewBuilder("concurrent").
		AddNode("echo", func(ctx context.Context, state *ChatState) (Update, error) {
			return Update{Messages: []types.Message{
				types.NewAssistantMessage(state.CurrentQuery()),
			}}, nil
		}).
		AddEdge("echo", End).
		SetStart("echo").
		Compile()
	require.NoError(t, err)

	done := make(chan string, 2)
	for _, q := range []string{"alpha", "beta"} {
		go func(q string) {
			final, err := plan.Run(context.Background(), ChatState{
				Messages: []types.Message{types.NewUserMessage(q)},
			})
			if err != nil {
				done <- "error"
				return
			}
			done <- final.LastMessage().Content
		}(q)
	}

	got := map[string]bool{<-done: true, <-done: true}
	assert.True(t, got["alpha"])
	assert.True(t, got["beta"])
}
