// Package agents assembles concrete workflow pipelines on top of the
// workflow engine: an agentic RAG loop, a deep-research loop, a
// tool-using ReAct loop, and a static-analysis placeholder, fronted by
// a query router. Domain logic lives in delegates the caller supplies;
// the assemblies only define graph shape, state handling, and bounds.
package agents

import (
	"context"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// Pipeline is the contract every assembly exposes outward: process one
// user message against prior history and return the answer text.
type Pipeline interface {
	Name() string
	Process(ctx context.Context, message string, history []types.Message) (string, error)
}

// Generator decides whether a query needs external retrieval. When
// retrieve is true, content is the search query to run; otherwise
// content is the direct answer.
type Generator interface {
	GenerateOrRespond(ctx context.Context, query string) (content string, retrieve bool, err error)
}

// Retriever fetches external content for a search query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Evaluator judges whether retrieved content suffices to answer the
// question, returning feedback about what is missing when it does not.
type Evaluator interface {
	Evaluate(ctx context.Context, question, docs string) (sufficient bool, feedback string, err error)
}

// Rewriter reformulates a query using evaluator feedback.
type Rewriter interface {
	Rewrite(ctx context.Context, question, feedback, docs string) (string, error)
}

// Synthesizer produces the final answer from the pinned question and
// the most recently retrieved content.
type Synthesizer interface {
	Synthesize(ctx context.Context, question, docs string) (string, error)
}

// Planner derives an ordered research plan from a topic.
type Planner interface {
	Plan(ctx context.Context, topic string) (*types.ResearchPlan, error)
}

// Researcher runs the bounded sub-task for one planned question and
// returns the section content.
type Researcher interface {
	Research(ctx context.Context, question types.ResearchQuestion) (string, error)
}

// Finalizer turns the concatenated analysis into the closing report
// text (executive summary, key findings, limitations).
type Finalizer interface {
	Finalize(ctx context.Context, topic, detailedAnalysis string) (string, error)
}

// ReportSaver persists a finalized report. Persistence failures must
// not fail the run; assemblies log and continue.
type ReportSaver interface {
	SaveReport(ctx context.Context, topic string, report *types.Report, markdown string) error
}

// ToolDecision is one step of a tool-using agent: either a tool
// invocation (Tool + Input set) or a final answer (Tool empty).
type ToolDecision struct {
	Tool   string
	Input  string
	Answer string
}

// ToolAgent drives the ReAct loop: given the conversation so far,
// decide the next tool call or produce the final answer.
type ToolAgent interface {
	Decide(ctx context.Context, messages []types.Message) (ToolDecision, error)
}

// Scanner analyzes a target (code snippet or path) for vulnerabilities.
type Scanner interface {
	Scan(ctx context.Context, target string) (string, error)
}

// RepoAnalyzer runs a repository-scoped vulnerability analysis and
// returns the raw analysis text, which may carry a JSON result block.
// The assembly owns extracting and formatting that result.
type RepoAnalyzer interface {
	Analyze(ctx context.Context, repoURL string) (string, error)
}
