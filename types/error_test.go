package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError(ErrStepLimit, "step ceiling exceeded")
	assert.Equal(t, "[STEP_LIMIT_EXCEEDED] step ceiling exceeded", err.Error())

	withCause := NewError(ErrNodeFailed, "node retrieve failed").WithCause(errors.New("connection refused"))
	assert.Contains(t, withCause.Error(), "NODE_FAILED")
	assert.Contains(t, withCause.Error(), "connection refused")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrNodeFailed, "wrapped").WithCause(cause)
	assert.ErrorIs(t, err, cause)
}

func TestGetErrorCode(t *testing.T) {
	err := NewErrorf(ErrRouteUnknown, "label %q not mapped", "nope")

	assert.Equal(t, ErrRouteUnknown, GetErrorCode(err))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))

	// Code survives fmt.Errorf wrapping.
	wrapped := fmt.Errorf("run failed: %w", err)
	assert.Equal(t, ErrRouteUnknown, GetErrorCode(wrapped))
	assert.True(t, IsCode(wrapped, ErrRouteUnknown))
	assert.False(t, IsCode(wrapped, ErrStepLimit))
}
