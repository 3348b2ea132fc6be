package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
	"github.com/Ankitchan/sast-ai-agent/workflow"
)

const researchExhaustedAnswer = "I couldn't complete the research within the configured limits. " +
	"Try narrowing the topic or asking about one aspect at a time."

// ResearchDelegates are the external collaborators of the research
// assembly.
type ResearchDelegates struct {
	Planner    Planner
	Researcher Researcher
	Finalizer  Finalizer
}

// ResearchPipeline is the plan-research-evaluate-finalize assembly:
//
//	plan     → research
//	research → evaluate
//	evaluate → {research, finalize}
//	finalize → End
//
// The loop is bounded naturally by the fixed question count from plan:
// the question index advances by exactly one per research step and the
// evaluator routes to finalize once it reaches len(questions).
//
// Unlike the RAG assembly, the topic here is the last user message at
// plan time, not a pinned index; the two selection strategies are
// intentionally different per pipeline.
type ResearchPipeline struct {
	delegates ResearchDelegates
	plan      *workflow.Plan
	saver     ReportSaver
	maxSteps  int
	logger    *zap.Logger
	observer  workflow.Observer
}

// ResearchOption configures the research assembly.
type ResearchOption func(*ResearchPipeline)

// WithReportSaver persists finalized reports. Save failures are logged
// and never fail the run.
func WithReportSaver(s ReportSaver) ResearchOption {
	return func(p *ResearchPipeline) { p.saver = s }
}

// WithResearchMaxSteps overrides the engine step ceiling.
func WithResearchMaxSteps(n int) ResearchOption {
	return func(p *ResearchPipeline) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

// WithResearchObserver attaches an engine observer to every run.
func WithResearchObserver(o workflow.Observer) ResearchOption {
	return func(p *ResearchPipeline) { p.observer = o }
}

// NewResearchPipeline compiles the research graph around the given
// delegates.
func NewResearchPipeline(d ResearchDelegates, logger *zap.Logger, opts ...ResearchOption) (*ResearchPipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ResearchPipeline{
		delegates: d,
		maxSteps:  workflow.DefaultMaxSteps,
		logger:    logger.With(zap.String("component", "research_pipeline")),
	}

	plan, err := workflow.NewBuilder("deep_research").
		WithLogger(p.logger).
		AddNode("plan", p.planNode).
		AddNode("research", p.researchNode).
		AddNode("evaluate", p.evaluateNode).
		AddNode("finalize", p.finalizeNode).
		AddEdge("plan", "research").
		AddEdge("research", "evaluate").
		AddConditionalEdge("evaluate", func(s *workflow.ChatState) string {
			return s.NextStep
		}, map[string]string{
			"research": "research",
			"finalize": "finalize",
		}).
		AddEdge("finalize", workflow.End).
		SetStart("plan").
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
func (p *ResearchPipeline) Name() string { return "deep_research" }

// planNode derives the topic from the last user message and seeds the
// plan plus an empty report section per planned question.
func (p *ResearchPipeline) planNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	topic := types.LastUserMessage(state.Messages)

	researchPlan, err := p.delegates.Planner.Plan(ctx, topic)
	if err != nil {
		return workflow.Update{}, err
	}
	if researchPlan == nil {
		return workflow.Update{}, types.NewError(types.ErrEmptyResult, "planner produced no plan")
	}
	if researchPlan.Topic == "" {
		researchPlan.Topic = topic
	}
	researchPlan.CurrentQuestionIndex = 0

	report := &types.Report{
		DetailedAnalysis: make([]types.ReportSection, len(researchPlan.Questions)),
	}
	for i, q := range researchPlan.Questions {
		report.DetailedAnalysis[i] = types.ReportSection{Title: q.Title}
	}

	p.logger.Info("research plan created",
		zap.String("topic", researchPlan.Topic),
		zap.Int("questions", len(researchPlan.Questions)),
	)

	msg := fmt.Sprintf("Research plan created with %d sections to investigate.", len(researchPlan.Questions))
	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(msg)},
		Plan:     researchPlan,
		Report:   report,
	}, nil
}

// researchNode works on exactly one question per invocation. It clones
// the plan and report before modifying them so the change only becomes
// visible through the merge.
func (p *ResearchPipeline) researchNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	if state.Plan == nil || state.Plan.Done() {
		return workflow.Update{}, nil
	}

	plan := state.Plan.Clone()
	report := state.Report.Clone()
	idx := plan.CurrentQuestionIndex
	question := plan.Questions[idx]

	p.logger.Info("researching question",
		zap.Int("index", idx),
		zap.Int("total", len(plan.Questions)),
		zap.String("title", question.Title),
	)

	content, err := p.delegates.Researcher.Research(ctx, question)
	if err != nil {
		return workflow.Update{}, err
	}

	plan.Questions[idx].Completed = true
	report.DetailedAnalysis[idx].Content = content
	report.DetailedAnalysis[idx].Sources = extractSources(content)
	plan.CurrentQuestionIndex++

	msg := fmt.Sprintf("Completed research for section: %s", question.Title)
	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(msg)},
		Plan:     plan,
		Report:   report,
	}, nil
}

// evaluateNode is a monotonic-counter check: more questions means more
// research, otherwise finalize.
func (p *ResearchPipeline) evaluateNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	if state.Plan.Done() {
		return workflow.Update{
			Messages: []types.Message{types.NewAssistantMessage("All research sections completed. Finalizing report...")},
			NextStep: workflow.String("finalize"),
		}, nil
	}

	next := state.Plan.Questions[state.Plan.CurrentQuestionIndex].Title
	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(fmt.Sprintf("Moving to research section: %s", next))},
		NextStep: workflow.String("research"),
	}, nil
}

// finalizeNode concatenates the filled sections, asks the finalizer for
// the closing text, and assembles the structured report message. A
// malformed finalizer answer leaves the summary fields empty; the
// formatted report shows placeholders instead of failing the run.
func (p *ResearchPipeline) finalizeNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	report := state.Report.Clone()

	var analysis strings.Builder
	for _, section := range report.DetailedAnalysis {
		if section.Content == "" {
			continue
		}
		if analysis.Len() > 0 {
			analysis.WriteString("\n\n")
		}
		fmt.Fprintf(&analysis, "## %s\n%s", section.Title, section.Content)
	}

	finalText, err := p.delegates.Finalizer.Finalize(ctx, state.Plan.Topic, analysis.String())
	if err != nil {
		return workflow.Update{}, err
	}

	sections := strings.Split(finalText, "\n\n")
	if len(sections) >= 3 {
		report.ExecutiveSummary = strings.TrimSpace(strings.ReplaceAll(sections[0], "# Executive Summary", ""))
		report.KeyFindings = strings.TrimSpace(strings.ReplaceAll(sections[1], "# Key Findings", ""))
		report.Limitations = strings.TrimSpace(strings.ReplaceAll(sections[2], "# Limitations and Further Research", ""))
	} else {
		p.logger.Warn("finalizer output could not be split into summary, findings, and limitations",
			zap.Int("parts", len(sections)),
		)
	}

	markdown := FormatReport(report)

	if p.saver != nil {
		if err := p.saver.SaveReport(ctx, state.Plan.Topic, report, markdown); err != nil {
			p.logger.Warn("could not persist report", zap.Error(err))
		}
	}

	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(markdown)},
		Report:   report,
	}, nil
}

// Process implements Pipeline.
func (p *ResearchPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
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
		p.logger.Warn("research run exhausted step ceiling", zap.Error(err))
		return researchExhaustedAnswer, nil
	case types.IsCode(err, types.ErrNodeFailed):
		p.logger.Error("research delegate failed", zap.Error(err))
		return "I encountered an error while researching: " + err.Error(), nil
	default:
		return "", err
	}

	if len(final.Messages) == 0 {
		return "", types.NewError(types.ErrEmptyResult, "research run produced no messages")
	}
	return final.LastMessage().Content, nil
}

// extractSources pulls citation-like lines (those containing a URL)
// out of section content.
func extractSources(content string) []string {
	var sources []string
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "http") && strings.Contains(line, "://") {
			sources = append(sources, strings.TrimSpace(line))
		}
	}
	return sources
}

// FormatReport renders a report as markdown. Missing summary fields
// show "N/A" rather than dropping the heading.
func FormatReport(report *types.Report) string {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	sections := []string{
		"# Research Report\n",
		"## Executive Summary\n" + orNA(report.ExecutiveSummary),
		"## Key Findings\n" + orNA(report.KeyFindings),
		"## Detailed Analysis",
	}

	for _, section := range report.DetailedAnalysis {
		if section.Content == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("### %s\n%s", section.Title, section.Content))
		if len(section.Sources) > 0 {
			lines := make([]string, len(section.Sources))
			for i, src := range section.Sources {
				lines[i] = "- " + src
			}
			sections = append(sections, "**Sources:**\n"+strings.Join(lines, "\n"))
		}
	}

	sections = append(sections, "## Limitations and Further Research\n"+orNA(report.Limitations))
	return strings.Join(sections, "\n\n")
}
