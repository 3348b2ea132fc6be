package agents

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
	"github.com/Ankitchan/sast-ai-agent/workflow"
)

// DefaultMaxRetries bounds query rewrites in the RAG loop.
const DefaultMaxRetries = 3

// Answer returned when the run exceeds the step ceiling before the
// loop converges.
const ragExhaustedAnswer = "I had difficulty finding the exact information you're looking for. " +
	"Based on the available documents I can see references to related topics, but I couldn't " +
	"find specific details. You might want to try asking about a specific aspect."

const maxRetriesFeedback = "Maximum retries reached. Using available documents."

// RAGDelegates are the external collaborators of the RAG assembly.
type RAGDelegates struct {
	Generator   Generator
	Retriever   Retriever
	Evaluator   Evaluator
	Rewriter    Rewriter
	Synthesizer Synthesizer
}

// RAGPipeline is the retrieval-evaluation-rewrite assembly:
//
//	generate_or_respond → {retrieve, End}
//	retrieve            → evaluate
//	evaluate            → {synthesize, rewrite}
//	rewrite             → generate_or_respond
//	synthesize          → End
//
// The question evaluated, rewritten against, and synthesized for is
// always the message pinned by CurrentQueryIndex at seed time — never
// the latest message, which drifts onto rewrites and tool output as
// the loop iterates.
type RAGPipeline struct {
	delegates  RAGDelegates
	plan       *workflow.Plan
	maxRetries int
	maxSteps   int
	logger     *zap.Logger
	observer   workflow.Observer
}

// RAGOption configures the RAG assembly.
type RAGOption func(*RAGPipeline)

// WithRAGMaxRetries overrides the rewrite bound.
func WithRAGMaxRetries(n int) RAGOption {
	return func(p *RAGPipeline) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// WithRAGMaxSteps overrides the engine step ceiling.
func WithRAGMaxSteps(n int) RAGOption {
	return func(p *RAGPipeline) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

// WithRAGObserver attaches an engine observer to every run.
func WithRAGObserver(o workflow.Observer) RAGOption {
	return func(p *RAGPipeline) { p.observer = o }
}

// NewRAGPipeline compiles the RAG graph around the given delegates.
func NewRAGPipeline(d RAGDelegates, logger *zap.Logger, opts ...RAGOption) (*RAGPipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &RAGPipeline{
		delegates:  d,
		maxRetries: DefaultMaxRetries,
		maxSteps:   workflow.DefaultMaxSteps,
		logger:     logger.With(zap.String("component", "rag_pipeline")),
	}

	plan, err := workflow.NewBuilder("agentic_rag").
		WithLogger(p.logger).
		AddNode("generate_or_respond", p.generateOrRespond).
		AddNode("retrieve", p.retrieve).
		AddNode("evaluate", p.evaluate).
		AddNode("rewrite", p.rewrite).
		AddNode("synthesize", p.synthesize).
		AddConditionalEdge("generate_or_respond", func(s *workflow.ChatState) string {
			return s.NextStep
		}, map[string]string{
			"retrieve": "retrieve",
			"respond":  workflow.End,
		}).
		AddEdge("retrieve", "evaluate").
		AddConditionalEdge("evaluate", func(s *workflow.ChatState) string {
			if s.IsSufficient {
				return "synthesize"
			}
			return "rewrite"
		}, map[string]string{
			"synthesize": "synthesize",
			"rewrite":    "rewrite",
		}).
		AddEdge("rewrite", "generate_or_respond").
		AddEdge("synthesize", workflow.End).
		SetStart("generate_or_respond").
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
func (p *RAGPipeline) Name() string { return "agentic_rag" }

// generateOrRespond reads the latest query message (original or
// rewritten) and either answers directly or emits a search query.
func (p *RAGPipeline) generateOrRespond(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	query := state.LastMessage().Content

	content, retrieve, err := p.delegates.Generator.GenerateOrRespond(ctx, query)
	if err != nil {
		return workflow.Update{}, err
	}

	next := "respond"
	if retrieve {
		next = "retrieve"
	}
	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(content)},
		NextStep: workflow.String(next),
	}, nil
}

func (p *RAGPipeline) retrieve(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	query := state.LastMessage().Content

	docs, err := p.delegates.Retriever.Retrieve(ctx, query)
	if err != nil {
		return workflow.Update{}, err
	}
	return workflow.Update{
		Messages: []types.Message{types.NewToolMessage("retrieve", docs)},
	}, nil
}

// evaluate forces synthesis once the retry budget is spent; the
// termination guarantee must not depend on the delegate's judgment.
func (p *RAGPipeline) evaluate(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	if state.RetryCount >= state.MaxRetries {
		p.logger.Info("max retries reached, forcing synthesis",
			zap.Int("retry_count", state.RetryCount),
			zap.Int("max_retries", state.MaxRetries),
		)
		return workflow.Update{
			IsSufficient: workflow.Bool(true),
			Feedback:     workflow.String(maxRetriesFeedback),
		}, nil
	}

	question := state.CurrentQuery()
	docs := state.LastMessage().Content

	sufficient, feedback, err := p.delegates.Evaluator.Evaluate(ctx, question, docs)
	if err != nil {
		return workflow.Update{}, err
	}
	p.logger.Debug("documents evaluated",
		zap.Bool("sufficient", sufficient),
		zap.Int("retry_count", state.RetryCount),
	)
	return workflow.Update{
		IsSufficient: workflow.Bool(sufficient),
		Feedback:     workflow.String(feedback),
	}, nil
}

func (p *RAGPipeline) rewrite(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	question := state.CurrentQuery()
	docs := state.LastMessage().Content

	rewritten, err := p.delegates.Rewriter.Rewrite(ctx, question, state.Feedback, docs)
	if err != nil {
		return workflow.Update{}, err
	}
	return workflow.Update{
		Messages:   []types.Message{types.NewAssistantMessage(rewritten)},
		RetryCount: workflow.Int(state.RetryCount + 1),
	}, nil
}

func (p *RAGPipeline) synthesize(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	question := state.CurrentQuery()
	docs := state.LastMessage().Content

	answer, err := p.delegates.Synthesizer.Synthesize(ctx, question, docs)
	if err != nil {
		return workflow.Update{}, err
	}
	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(answer)},
	}, nil
}

// Process implements Pipeline. The current query index is pinned here,
// at the moment the triggering message is appended; evaluation and
// synthesis read that exact message for the rest of the run.
func (p *RAGPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	messages := append([]types.Message{}, history...)
	queryIndex := len(messages)
	messages = append(messages, types.NewUserMessage(message))

	initial := workflow.ChatState{
		Messages:          messages,
		MaxRetries:        p.maxRetries,
		CurrentQueryIndex: queryIndex,
	}

	var opts []workflow.RunOption
	opts = append(opts, workflow.WithMaxSteps(p.maxSteps))
	if p.observer != nil {
		opts = append(opts, workflow.WithObserver(p.observer))
	}

	final, err := p.plan.Run(ctx, initial, opts...)
	switch {
	case err == nil:
	case types.IsCode(err, types.ErrStepLimit):
		p.logger.Warn("rag run exhausted step ceiling", zap.Error(err))
		return ragExhaustedAnswer, nil
	case types.IsCode(err, types.ErrNodeFailed):
		p.logger.Error("rag delegate failed", zap.Error(err))
		return "I encountered an error while searching for information: " + err.Error(), nil
	default:
		return "", err
	}

	if len(final.Messages) == 0 {
		return "", types.NewError(types.ErrEmptyResult, "rag run produced no messages")
	}
	return final.LastMessage().Content, nil
}
