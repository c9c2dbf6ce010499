package main

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: 0,
		},
		{
			name: "plain error",
			err:  stderrors.New("boom"),
			want: exitFailure,
		},
		{
			name: "persist failure",
			err:  errors.New(errors.CodePersistFailed, "write failed"),
			want: exitPersistFailed,
		},
		{
			name: "wrapped persist failure",
			err:  fmt.Errorf("init: %w", errors.New(errors.CodePersistFailed, "write failed")),
			want: exitPersistFailed,
		},
		{
			name: "change pending",
			err:  &exitError{code: exitChangePending, err: stderrors.New("changes pending")},
			want: exitChangePending,
		},
		{
			name: "run failure",
			err:  &exitError{code: exitRunFailed, err: stderrors.New("run concluded with failure")},
			want: exitRunFailed,
		},
		{
			name: "invalid config",
			err:  errors.New(errors.CodeInvalidConfig, "missing service"),
			want: exitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New(errors.CodeTimeout, "run did not complete")
	err := &exitError{code: exitRunFailed, err: cause}

	assert.Equal(t, "TIMEOUT: run did not complete", err.Error())
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
}
