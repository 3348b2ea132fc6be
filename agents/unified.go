package agents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/types"
)

// QueryType is the closed set of query classes the router dispatches
// on. Classification delegates must map their free-form output onto
// this enum; the router never branches on raw strings.
type QueryType int

const (
	QueryGeneral QueryType = iota
	QuerySimpleTool
	QueryAgenticRAG
	QueryDeepResearch
	QuerySAST
	QuerySSRF
)

var queryTypeNames = map[QueryType]string{
	QueryGeneral:      "general",
	QuerySimpleTool:   "simple_tool",
	QueryAgenticRAG:   "agentic_rag",
	QueryDeepResearch: "deep_research",
	QuerySAST:         "sast",
	QuerySSRF:         "ssrf",
}

// String returns the wire name of the query type.
func (q QueryType) String() string {
	if name, ok := queryTypeNames[q]; ok {
		return name
	}
	return "general"
}

// ParseQueryType maps a classifier label onto the enum. Unrecognized
// labels report ok=false; callers fall back to QueryGeneral.
func ParseQueryType(label string) (QueryType, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "simple_tool":
		return QuerySimpleTool, true
	case "agentic_rag":
		return QueryAgenticRAG, true
	case "deep_research":
		return QueryDeepResearch, true
	case "sast":
		return QuerySAST, true
	case "ssrf":
		return QuerySSRF, true
	case "general":
		return QueryGeneral, true
	default:
		return QueryGeneral, false
	}
}

// Classifier decides which pipeline should handle a query.
type Classifier interface {
	Classify(ctx context.Context, query string) (QueryType, error)
}

// Router is the front door: it classifies each incoming message and
// dispatches it to the matching pipeline. Every enum value is matched
// exhaustively; unrecognized or failed classification falls back to
// the general pipeline.
type Router struct {
	classifier Classifier

	tool     Pipeline
	rag      Pipeline
	research Pipeline
	sast     Pipeline
	ssrf     Pipeline
	general  Pipeline

	logger *zap.Logger
}

// RouterPipelines names the pipeline behind each query type. General
// is required; any other nil entry falls back to General.
type RouterPipelines struct {
	Tool     Pipeline
	RAG      Pipeline
	Research Pipeline
	SAST     Pipeline
	SSRF     Pipeline
	General  Pipeline
}

// NewRouter builds the unified router.
func NewRouter(classifier Classifier, pipelines RouterPipelines, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipelines.General == nil {
		return nil, types.NewError(types.ErrClassification, "router requires a general fallback pipeline")
	}
	orGeneral := func(p Pipeline) Pipeline {
		if p == nil {
			return pipelines.General
		}
		return p
	}
	return &Router{
		classifier: classifier,
		tool:       orGeneral(pipelines.Tool),
		rag:        orGeneral(pipelines.RAG),
		research:   orGeneral(pipelines.Research),
		sast:       orGeneral(pipelines.SAST),
		ssrf:       orGeneral(pipelines.SSRF),
		general:    pipelines.General,
		logger:     logger.With(zap.String("component", "router")),
	}, nil
}

// Process implements Pipeline.
func (r *Router) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	queryType, err := r.classifier.Classify(ctx, message)
	if err != nil {
		r.logger.Warn("classification failed, falling back to general", zap.Error(err))
		queryType = QueryGeneral
	}

	pipeline := r.pipelineFor(queryType)
	r.logger.Info("query routed",
		zap.String("query_type", queryType.String()),
		zap.String("pipeline", pipeline.Name()),
	)
	return pipeline.Process(ctx, message, history)
}

// Name implements Pipeline.
func (r *Router) Name() string { return "unified" }

func (r *Router) pipelineFor(queryType QueryType) Pipeline {
	switch queryType {
	case QuerySimpleTool:
		return r.tool
	case QueryAgenticRAG:
		return r.rag
	case QueryDeepResearch:
		return r.research
	case QuerySAST:
		return r.sast
	case QuerySSRF:
		return r.ssrf
	case QueryGeneral:
		return r.general
	default:
		return r.general
	}
}

// HeuristicClassifier is a keyword classifier used when no LLM-backed
// classifier is wired in.
type HeuristicClassifier struct{}

// Classify implements Classifier.
func (HeuristicClassifier) Classify(ctx context.Context, query string) (QueryType, error) {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "ssrf", "request forgery"):
		return QuerySSRF, nil
	case containsAny(q, "sql injection", "vulnerability", "sast", "scan this code"):
		return QuerySAST, nil
	case containsAny(q, "research", "comprehensive", "in-depth", "deep dive"):
		return QueryDeepResearch, nil
	case containsAny(q, "document", "report says", "according to", "in the file"):
		return QueryAgenticRAG, nil
	case containsAny(q, "calculate", "compute", "what time", "what date", "+", "*", "/"):
		return QuerySimpleTool, nil
	default:
		return QueryGeneral, nil
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
