// Package errors provides the structured error handling system for the CI
// workflow sync engine. It extends Go's standard error handling with stable
// error codes, failing-stage annotations, retry classification, and context
// preservation.
package errors

// ErrorCode represents a specific error condition in the sync engine.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Configuration errors.

	// CodeInvalidConfig indicates the project configuration is malformed or
	// missing required fields. It is reported before any network or file activity.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Template errors.

	// CodeTemplateNotFound indicates the requested template could not be resolved.
	CodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"

	// CodeTemplateMalformed indicates the template itself is not parseable.
	CodeTemplateMalformed ErrorCode = "TEMPLATE_MALFORMED"

	// CodeTemplateFailed indicates rendering failed, typically because the
	// template references a configuration field that is absent.
	CodeTemplateFailed ErrorCode = "TEMPLATE_RENDER_FAILED"

	// Persistence errors.

	// CodePersistFailed indicates a local write failed. No partial file is
	// left behind when this code is reported.
	CodePersistFailed ErrorCode = "PERSIST_FAILED"

	// Remote synchronization errors.

	// CodeSyncFailed indicates a remote operation failed at an identified
	// stage. The stage is carried on the error and the operation is safe to
	// retry because each stage is individually idempotent.
	CodeSyncFailed ErrorCode = "SYNC_FAILED"

	// Run lifecycle errors.

	// CodeRunNotFound indicates a dispatched run never became observable
	// within the discovery window.
	CodeRunNotFound ErrorCode = "RUN_NOT_FOUND"

	// CodeTimeout indicates polling exceeded its deadline without reaching a
	// terminal state. The last observed status is carried in the error context.
	CodeTimeout ErrorCode = "TIMEOUT"

	// Transport classification codes.

	// CodeUnauthorized indicates the request lacks valid authentication credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the authenticated identity lacks permission for
	// the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeNotFound indicates a requested remote resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a remote state conflict, such as a concurrent
	// commit to the target branch, that prevents the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// CodeRateLimit indicates the provider's rate limit has been exceeded.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeNetwork indicates a transient network or server-side failure.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeUnknown is the fallback for errors that carry no code of their own.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// retryable lists the codes that represent transient conditions. Everything
// else is permanent for the current invocation.
var retryable = map[ErrorCode]bool{
	CodeNetwork:   true,
	CodeRateLimit: true,
}

// IsRetryableCode reports whether the given code represents a transient
// condition that may succeed on retry.
func IsRetryableCode(code ErrorCode) bool {
	return retryable[code]
}
