package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
	"github.com/Ankitchan/sast-ai-agent/workflow"
)

// SASTPipeline runs a single scan node and terminates. The scanner
// delegate owns the actual analysis; without one, a placeholder
// acknowledgment is returned.
type SASTPipeline struct {
	scanner Scanner
	plan    *workflow.Plan
	logger  *zap.Logger
}

// PlaceholderScanner acknowledges the scan without analyzing anything.
type PlaceholderScanner struct{}

// Scan implements Scanner.
func (PlaceholderScanner) Scan(ctx context.Context, target string) (string, error) {
	return fmt.Sprintf("SAST analysis for %q initiated. No vulnerabilities found so far.", target), nil
}

// NewSASTPipeline compiles the single-node scan graph. A nil scanner
// falls back to PlaceholderScanner.
func NewSASTPipeline(scanner Scanner, logger *zap.Logger) (*SASTPipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scanner == nil {
		scanner = PlaceholderScanner{}
	}
	p := &SASTPipeline{
		scanner: scanner,
		logger:  logger.With(zap.String("component", "sast_pipeline")),
	}

	plan, err := workflow.NewBuilder("sast").
		WithLogger(p.logger).
		AddNode("scan", p.scanNode).
		AddEdge("scan", workflow.End).
		SetStart("scan").
		Compile()
	if err != nil {
		return nil, err
	}
	p.plan = plan
	return p, nil
}

// Name implements Pipeline.
func (p *SASTPipeline) Name() string { return "sast" }

func (p *SASTPipeline) scanNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	target := types.LastUserMessage(state.Messages)

	result, err := p.scanner.Scan(ctx, target)
	if err != nil {
		return workflow.Update{}, err
	}
	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(result)},
	}, nil
}

// Process implements Pipeline.
func (p *SASTPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	messages := append([]types.Message{}, history...)
	messages = append(messages, types.NewUserMessage(message))

	final, err := p.plan.Run(ctx, workflow.ChatState{Messages: messages})
	if err != nil {
		if types.IsCode(err, types.ErrNodeFailed) {
			p.logger.Error("scan failed", zap.Error(err))
			return "I encountered an error while scanning: " + err.Error(), nil
		}
		return "", err
	}
	return final.LastMessage().Content, nil
}
