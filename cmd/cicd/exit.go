package main

import (
	stderrors "errors"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
)

// Process exit codes. Zero is success; anything else signals a distinct
// failure class so callers can branch on the outcome.
const (
	exitFailure       = 1
	exitPersistFailed = 2
	exitChangePending = 3
	exitRunFailed     = 4
)

// exitError carries an explicit exit code alongside the underlying error.
// Handlers return it when an outcome maps to a code other than the default.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *exitError
	if stderrors.As(err, &ee) {
		return ee.code
	}

	if errors.GetCode(err) == errors.CodePersistFailed {
		return exitPersistFailed
	}
	return exitFailure
}
