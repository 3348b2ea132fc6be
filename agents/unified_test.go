package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ankitchan/sast-ai-agent/types"
)

type namedPipeline struct {
	name  string
	calls int
}

func (p *namedPipeline) Name() string { return p.name }

func (p *namedPipeline) Process(ctx context.Context, message string, history []types.Message) (string, error) {
	p.calls++
	return "handled by " + p.name, nil
}

type fixedClassifier struct {
	queryType QueryType
	err       error
}

func (c fixedClassifier) Classify(ctx context.Context, query string) (QueryType, error) {
	return c.queryType, c.err
}

func routerFixture(t *testing.T, classifier Classifier) (*Router, map[QueryType]*namedPipeline) {
	t.Helper()
	pipes := map[QueryType]*namedPipeline{
		QuerySimpleTool:   {name: "tool"},
		QueryAgenticRAG:   {name: "rag"},
		QueryDeepResearch: {name: "research"},
		QuerySAST:         {name: "sast"},
		QuerySSRF:         {name: "ssrf"},
		QueryGeneral:      {name: "general"},
	}
	router, err := NewRouter(classifier, RouterPipelines{
		Tool:     pipes[QuerySimpleTool],
		RAG:      pipes[QueryAgenticRAG],
		Research: pipes[QueryDeepResearch],
		SAST:     pipes[QuerySAST],
		SSRF:     pipes[QuerySSRF],
		General:  pipes[QueryGeneral],
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return router, pipes
}

func TestRouter_DispatchesEveryQueryType(t *testing.T) {
	for _, queryType := range []QueryType{
		QueryGeneral, QuerySimpleTool, QueryAgenticRAG, QueryDeepResearch, QuerySAST, QuerySSRF,
	} {
		t.Run(queryType.String(), func(t *testing.T) {
			router, pipes := routerFixture(t, fixedClassifier{queryType: queryType})

			answer, err := router.Process(context.Background(), "q", nil)
			require.NoError(t, err)
			assert.Equal(t, "handled by "+pipes[queryType].name, answer)
			assert.Equal(t, 1, pipes[queryType].calls)
		})
	}
}

func TestRouter_ClassificationFailureFallsBackToGeneral(t *testing.T) {
	router, pipes := routerFixture(t, fixedClassifier{
		queryType: QuerySAST,
		err:       errors.New("classifier offline"),
	})

	answer, err := router.Process(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "handled by general", answer)
	assert.Equal(t, 0, pipes[QuerySAST].calls)
}

func TestRouter_NilPipelineFallsBackToGeneral(t *testing.T) {
	general := &namedPipeline{name: "general"}
	router, err := NewRouter(fixedClassifier{queryType: QueryDeepResearch}, RouterPipelines{
		General: general,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	answer, err := router.Process(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "handled by general", answer)
}

func TestRouter_RequiresGeneralPipeline(t *testing.T) {
	_, err := NewRouter(fixedClassifier{}, RouterPipelines{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Equal(t, types.ErrClassification, types.GetErrorCode(err))
}

func TestParseQueryType(t *testing.T) {
	cases := []struct {
		label string
		want  QueryType
		ok    bool
	}{
		{"simple_tool", QuerySimpleTool, true},
		{"AGENTIC_RAG", QueryAgenticRAG, true},
		{"  deep_research ", QueryDeepResearch, true},
		{"sast", QuerySAST, true},
		{"SSRF", QuerySSRF, true},
		{"general", QueryGeneral, true},
		{"make me a sandwich", QueryGeneral, false},
		{"", QueryGeneral, false},
	}
	for _, tc := range cases {
		got, ok := ParseQueryType(tc.label)
		assert.Equal(t, tc.want, got, tc.label)
		assert.Equal(t, tc.ok, ok, tc.label)
	}
}

func TestHeuristicClassifier(t *testing.T) {
	c := HeuristicClassifier{}
	ctx := context.Background()

	cases := map[string]QueryType{
		"scan this code for sql injection":                      QuerySAST,
		"check https://github.com/acme/app for ssrf":            QuerySSRF,
		"is this endpoint open to server-side request forgery":  QuerySSRF,
		"do a deep dive on rust async":                          QueryDeepResearch,
		"what does the document say":                            QueryAgenticRAG,
		"calculate 12 * 9":                                      QuerySimpleTool,
		"hello":                                                 QueryGeneral,
	}
	for query, want := range cases {
		got, err := c.Classify(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, want, got, query)
	}
}
