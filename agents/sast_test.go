package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type scannerFunc func(ctx context.Context, target string) (string, error)

func (f scannerFunc) Scan(ctx context.Context, target string) (string, error) {
	return f(ctx, target)
}

func TestSASTPipeline_PlaceholderScan(t *testing.T) {
	pipeline, err := NewSASTPipeline(nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	answer, err := pipeline.Process(context.Background(), "scan this snippet", nil)
	require.NoError(t, err)
	assert.Equal(t, `SAST analysis for "scan this snippet" initiated. No vulnerabilities found so far.`, answer)
}

func TestSASTPipeline_ScannerFailureIsCaughtAtBoundary(t *testing.T) {
	failing := scannerFunc(func(ctx context.Context, target string) (string, error) {
		return "", errors.New("analyzer crashed")
	})
	pipeline, err := NewSASTPipeline(failing, zaptest.NewLogger(t))
	require.NoError(t, err)

	answer, err := pipeline.Process(context.Background(), "code", nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "I encountered an error while scanning")
	assert.Contains(t, answer, "analyzer crashed")
}
