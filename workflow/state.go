package workflow

import (
	"github.com/Ankitchan/sast-ai-agent/types"
)

// ChatState is the conversation state threaded through a single run.
// Messages are append-only; the scalar control fields merge
// last-write-wins per field; Plan and Report are replaced whole-value.
// A ChatState is owned by exactly one run and never shared.
type ChatState struct {
	Messages []types.Message

	// RAG control fields
	Feedback     string
	IsSufficient bool
	RetryCount   int
	MaxRetries   int

	// CurrentQueryIndex pins the message that is "the current query"
	// for the whole run. It is fixed once, at the moment the
	// triggering user message is appended, and is never recomputed
	// from the tail of Messages.
	CurrentQueryIndex int

	// Research control fields
	NextStep string
	Plan     *types.ResearchPlan
	Report   *types.Report
}

// Update is a partial state update returned by a node. Nil fields are
// untouched by the merge; Messages are appended, never replaced.
type Update struct {
	Messages []types.Message

	Feedback          *string
	IsSufficient      *bool
	RetryCount        *int
	MaxRetries        *int
	CurrentQueryIndex *int

	NextStep *string
	Plan     *types.ResearchPlan
	Report   *types.Report
}

// Apply merges a partial update into the state. This is the only place
// a node's output becomes visible; nodes must not mutate the state they
// were handed.
func (s *ChatState) Apply(u Update) {
	if len(u.Messages) > 0 {
		s.Messages = append(s.Messages, u.Messages...)
	}
	if u.Feedback != nil {
		s.Feedback = *u.Feedback
	}
	if u.IsSufficient != nil {
		s.IsSufficient = *u.IsSufficient
	}
	if u.RetryCount != nil {
		s.RetryCount = *u.RetryCount
	}
	if u.MaxRetries != nil {
		s.MaxRetries = *u.MaxRetries
	}
	if u.CurrentQueryIndex != nil {
		s.CurrentQueryIndex = *u.CurrentQueryIndex
	}
	if u.NextStep != nil {
		s.NextStep = *u.NextStep
	}
	if u.Plan != nil {
		s.Plan = u.Plan
	}
	if u.Report != nil {
		s.Report = u.Report
	}
}

// CurrentQuery returns the content of the message pinned by
// CurrentQueryIndex, falling back to the last user message when the
// index is out of range.
func (s *ChatState) CurrentQuery() string {
	if s.CurrentQueryIndex >= 0 && s.CurrentQueryIndex < len(s.Messages) {
		return s.Messages[s.CurrentQueryIndex].Content
	}
	return types.LastUserMessage(s.Messages)
}

// LastMessage returns the most recently appended message, or a zero
// Message for an empty log.
func (s *ChatState) LastMessage() types.Message {
	if len(s.Messages) == 0 {
		return types.Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// Pointer helpers for building Updates.

// String returns a pointer to v.
func String(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
