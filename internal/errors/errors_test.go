package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "code and message",
			err:      New(CodeInvalidConfig, "branches must not be empty"),
			expected: "INVALID_CONFIGURATION: branches must not be empty",
		},
		{
			name:     "with stage",
			err:      New(CodeSyncFailed, "commit rejected").WithStage("commit"),
			expected: "SYNC_FAILED [commit]: commit rejected",
		},
		{
			name: "with context sorted by key",
			err: WrapWithContext(stderrors.New("boom"), CodeNetwork, "poll failed", map[string]interface{}{
				"run_id":     int64(7),
				"repository": "org/repo",
			}),
			expected: "NETWORK_ERROR: poll failed (repository=org/repo, run_id=7): boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeNetwork, "ignored"))
	assert.Nil(t, WrapWithContext(nil, CodeNetwork, "ignored", nil))
}

func TestUnwrapChain(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(fmt.Errorf("request failed: %w", cause), CodeNetwork, "dispatch failed")

	require.ErrorIs(t, err, cause)
}

func TestIsMatchesOnCode(t *testing.T) {
	err := Wrap(stderrors.New("401"), CodeUnauthorized, "bad token")

	assert.ErrorIs(t, err, New(CodeUnauthorized, ""))
	assert.NotErrorIs(t, err, New(CodeNetwork, ""))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "structured error",
			err:      New(CodeTimeout, "deadline exceeded"),
			expected: CodeTimeout,
		},
		{
			name:     "wrapped structured error",
			err:      fmt.Errorf("outer: %w", New(CodeConflict, "branch moved")),
			expected: CodeConflict,
		},
		{
			name:     "plain error",
			err:      stderrors.New("plain"),
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCode(tt.err))
		})
	}
}

func TestGetStage(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeSyncFailed, "rejected").WithStage("ensure-pr"))
	assert.Equal(t, "ensure-pr", GetStage(err))
	assert.Empty(t, GetStage(stderrors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "network error", err: New(CodeNetwork, "connection reset"), retryable: true},
		{name: "rate limit", err: New(CodeRateLimit, "secondary limit"), retryable: true},
		{name: "unauthorized", err: New(CodeUnauthorized, "bad token"), retryable: false},
		{name: "conflict", err: New(CodeConflict, "non fast-forward"), retryable: false},
		{name: "plain error", err: stderrors.New("plain"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeSyncFailed, "failed")
	annotated := base.WithContext("branch", "cicd-bootstrap")

	assert.Empty(t, base.Context)
	assert.Equal(t, "cicd-bootstrap", annotated.Context["branch"])
}
