package workflow

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// Merge semantics under arbitrary partial updates: unset fields persist,
// the message log only grows, and set fields win last-write.
func TestChatState_ApplyRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		state := ChatState{
			Messages: []types.Message{
				types.NewUserMessage(rapid.String().Draw(t, "seed")),
			},
			Feedback:          rapid.String().Draw(t, "feedback0"),
			IsSufficient:      rapid.Bool().Draw(t, "sufficient0"),
			RetryCount:        rapid.IntRange(0, 10).Draw(t, "retry0"),
			MaxRetries:        rapid.IntRange(0, 10).Draw(t, "max0"),
			CurrentQueryIndex: rapid.IntRange(0, 5).Draw(t, "idx0"),
			NextStep:          rapid.String().Draw(t, "next0"),
		}
		expected := state

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			var u Update
			if rapid.Bool().Draw(t, "setMessages") {
				u.Messages = []types.Message{
					types.NewAssistantMessage(rapid.String().Draw(t, "msg")),
				}
				expected.Messages = append(expected.Messages, u.Messages...)
			}
			if rapid.Bool().Draw(t, "setFeedback") {
				v := rapid.String().Draw(t, "fb")
				u.Feedback = &v
				expected.Feedback = v
			}
			if rapid.Bool().Draw(t, "setSufficient") {
				v := rapid.Bool().Draw(t, "suf")
				u.IsSufficient = &v
				expected.IsSufficient = v
			}
			if rapid.Bool().Draw(t, "setRetry") {
				v := rapid.IntRange(0, 100).Draw(t, "rc")
				u.RetryCount = &v
				expected.RetryCount = v
			}
			if rapid.Bool().Draw(t, "setNext") {
				v := rapid.String().Draw(t, "ns")
				u.NextStep = &v
				expected.NextStep = v
			}
			state.Apply(u)
		}

		if state.Feedback != expected.Feedback ||
			state.IsSufficient != expected.IsSufficient ||
			state.RetryCount != expected.RetryCount ||
			state.MaxRetries != expected.MaxRetries ||
			state.CurrentQueryIndex != expected.CurrentQueryIndex ||
			state.NextStep != expected.NextStep {
			t.Fatalf("scalar fields diverged: got %+v want %+v", state, expected)
		}
		if len(state.Messages) != len(expected.Messages) {
			t.Fatalf("message count diverged: got %d want %d", len(state.Messages), len(expected.Messages))
		}
		for i := range state.Messages {
			if state.Messages[i].Content != expected.Messages[i].Content {
				t.Fatalf("message %d diverged", i)
			}
		}
	})
}
