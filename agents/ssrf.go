package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
	"github.com/Ankitchan/sast-ai-agent/workflow"
)

var githubURLPattern = regexp.MustCompile(`https://github\.com/[a-zA-Z0-9\-_]+/[a-zA-Z0-9\-_]+`)

const ssrfURLPrompt = "Please provide a valid GitHub repository URL in the format: https://github.com/username/repository"

// SSRFFinding is one vulnerable location reported by the analyzer.
type SSRFFinding struct {
	File              string `json:"file"`
	Line              int    `json:"line"`
	VulnerabilityType string `json:"vulnerability_type"`
	Severity          string `json:"severity"`
	Description       string `json:"description"`
	CodeSnippet       string `json:"code_snippet"`
	AttackVector      string `json:"attack_vector"`
	Recommendation    string `json:"recommendation"`
}

// SSRFAnalysis is the structured result of a repository analysis. The
// analyzer delegate emits it as a JSON block inside its raw output.
type SSRFAnalysis struct {
	Repository           string        `json:"repository"`
	HTTPRequestFiles     []string      `json:"http_request_files"`
	VulnerableFiles      []SSRFFinding `json:"vulnerable_files"`
	TotalFilesAnalyzed   int           `json:"total_files_analyzed"`
	TotalHTTPFiles       int           `json:"total_http_files"`
	TotalVulnerabilities int           `json:"total_vulnerabilities"`
	Summary              string        `json:"summary"`
}

// SSRFPipeline analyzes a GitHub repository for server-side request
// forgery vulnerabilities:
//
//	analyze → report → End
//
// The analyzer delegate owns the repository exploration; the assembly
// owns URL extraction, result parsing (with raw-output degradation when
// the delegate's answer carries no parsable JSON), and report
// formatting.
type SSRFPipeline struct {
	analyzer RepoAnalyzer
	plan     *workflow.Plan
	logger   *zap.Logger
}

// NewSSRFPipeline compiles the analysis graph around the analyzer
// delegate.
func NewSSRFPipeline(analyzer RepoAnalyzer, logger *zap.Logger) (*SSRFPipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &SSRFPipeline{
		analyzer: analyzer,
		logger:   logger.With(zap.String("component", "ssrf_pipeline")),
	}

	plan, err := workflow.NewBuilder("ssrf").
		WithLogger(p.logger).
		AddNode("analyze", p.analyzeNode).
		AddNode("report", p.reportNode).
		AddEdge("analyze", "report").
		AddEdge("report", workflow.End).
		SetStart("analyze").
		Compile()
	if err != nil {
		return nil, err
	}
	p.plan = plan
	return p, nil
}

// Name implements Pipeline.
func (p *SSRFPipeline) Name() string { return "ssrf" }

func (p *SSRFPipeline) analyzeNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	repoURL := githubURLPattern.FindString(types.LastUserMessage(state.Messages))

	p.logger.Info("starting repository analysis", zap.String("repository", repoURL))
	output, err := p.analyzer.Analyze(ctx, repoURL)
	if err != nil {
		return workflow.Update{}, err
	}
	return workflow.Update{
		Messages: []types.Message{types.NewToolMessage("ssrf_analysis", output)},
	}, nil
}

// reportNode parses the analyzer output into the structured result and
// renders the report. Unparsable output degrades to the raw analysis
// text instead of failing the run.
func (p *SSRFPipeline) reportNode(ctx context.Context, state *workflow.ChatState) (workflow.Update, error) {
	repoURL := githubURLPattern.FindString(types.LastUserMessage(state.Messages))
	output := state.LastMessage().Content

	analysis, err := parseSSRFResult(output)
	if err != nil {
		p.logger.Warn("analysis output carried no parsable result", zap.Error(err))
		degraded := fmt.Sprintf("Analysis completed for %s.\n\n%s", repoURL, output)
		return workflow.Update{
			Messages: []types.Message{types.NewAssistantMessage(degraded)},
		}, nil
	}

	return workflow.Update{
		Messages: []types.Message{types.NewAssistantMessage(FormatSSRFReport(repoURL, analysis))},
	}, nil
}

// Process implements Pipeline. A message without a GitHub repository
// URL is answered with usage guidance; the graph never runs.
func (p *SSRFPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	if githubURLPattern.FindString(message) == "" {
		return ssrfURLPrompt, nil
	}

	messages := append([]types.Message{}, history...)
	messages = append(messages, types.NewUserMessage(message))

	final, err := p.plan.Run(ctx, workflow.ChatState{Messages: messages})
	if err != nil {
		if types.IsCode(err, types.ErrNodeFailed) {
			p.logger.Error("analysis failed", zap.Error(err))
			return "Error during SSRF analysis: " + err.Error(), nil
		}
		return "", err
	}
	return final.LastMessage().Content, nil
}

// parseSSRFResult extracts the JSON result block from raw analyzer
// output: a ```json fence first, then any code fence, then the
// outermost brace span.
func parseSSRFResult(output string) (*SSRFAnalysis, error) {
	var jsonStr string
	switch {
	case strings.Contains(output, "```json"):
		rest := strings.SplitN(output, "```json", 2)[1]
		jsonStr = strings.TrimSpace(strings.SplitN(rest, "```", 2)[0])
	case strings.Contains(output, "```"):
		parts := strings.SplitN(output, "```", 3)
		if len(parts) < 3 {
			return nil, fmt.Errorf("unterminated code fence in analysis output")
		}
		jsonStr = strings.TrimSpace(parts[1])
	default:
		start := strings.Index(output, "{")
		end := strings.LastIndex(output, "}")
		if start == -1 || end == -1 || end < start {
			return nil, fmt.Errorf("no JSON found in analysis output")
		}
		jsonStr = output[start : end+1]
	}

	var analysis SSRFAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	return &analysis, nil
}

// FormatSSRFReport renders the structured analysis as markdown. Missing
// counters fall back to list lengths; findings get MEDIUM severity and
// an N/A line marker when unset.
func FormatSSRFReport(repoURL string, analysis *SSRFAnalysis) string {
	totalVulns := analysis.TotalVulnerabilities
	if totalVulns == 0 {
		totalVulns = len(analysis.VulnerableFiles)
	}
	totalHTTP := analysis.TotalHTTPFiles
	if totalHTTP == 0 {
		totalHTTP = len(analysis.HTTPRequestFiles)
	}
	analyzed := "unknown"
	if analysis.TotalFilesAnalyzed > 0 {
		analyzed = fmt.Sprintf("%d", analysis.TotalFilesAnalyzed)
	}

	var b strings.Builder
	b.WriteString("# SSRF Vulnerability Analysis Report\n\n")
	fmt.Fprintf(&b, "**Repository**: %s\n\n", repoURL)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Files Analyzed: %s\n", analyzed)
	fmt.Fprintf(&b, "- Files Making HTTP Requests: %d\n", totalHTTP)
	fmt.Fprintf(&b, "- SSRF Vulnerabilities Found: %d\n\n", totalVulns)

	if analysis.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", analysis.Summary)
	}

	if len(analysis.HTTPRequestFiles) > 0 {
		fmt.Fprintf(&b, "## Files Making HTTP Requests (%d)\n", len(analysis.HTTPRequestFiles))
		for _, file := range analysis.HTTPRequestFiles {
			fmt.Fprintf(&b, "- %s\n", file)
		}
		b.WriteString("\n")
	}

	if len(analysis.VulnerableFiles) == 0 {
		b.WriteString("## No SSRF Vulnerabilities Found\n\n")
		b.WriteString("No SSRF vulnerabilities were detected in the analyzed files.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## SSRF Vulnerabilities Found (%d)\n\n", len(analysis.VulnerableFiles))
	for i, vuln := range analysis.VulnerableFiles {
		file := vuln.File
		if file == "" {
			file = "Unknown file"
		}
		line := "N/A"
		if vuln.Line > 0 {
			line = fmt.Sprintf("%d", vuln.Line)
		}
		severity := vuln.Severity
		if severity == "" {
			severity = "MEDIUM"
		}
		vulnType := vuln.VulnerabilityType
		if vulnType == "" {
			vulnType = "SSRF"
		}
		description := vuln.Description
		if description == "" {
			description = "No description provided"
		}

		fmt.Fprintf(&b, "### %d. %s\n", i+1, file)
		fmt.Fprintf(&b, "- **Line**: %s\n", line)
		fmt.Fprintf(&b, "- **Severity**: %s\n", severity)
		fmt.Fprintf(&b, "- **Type**: %s\n", vulnType)
		fmt.Fprintf(&b, "- **Description**: %s\n", description)
		if vuln.AttackVector != "" {
			fmt.Fprintf(&b, "- **Attack Vector**: %s\n", vuln.AttackVector)
		}
		if vuln.CodeSnippet != "" {
			fmt.Fprintf(&b, "- **Vulnerable Code**:\n```\n%s\n```\n", vuln.CodeSnippet)
		}
		if vuln.Recommendation != "" {
			fmt.Fprintf(&b, "- **Recommendation**: %s\n", vuln.Recommendation)
		}
		b.WriteString("\n")
	}
	return b.String()
}
