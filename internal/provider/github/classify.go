package github

import (
	stderrors "errors"
	"net/http"

	gh "github.com/google/go-github/v75/github"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
)

// classify maps a go-github error onto the engine's error taxonomy. The code
// decides retryability: 401/403/404/409/422 are permanent for this
// invocation, rate limits and 5xx/transport failures are transient.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var rateLimit *gh.RateLimitError
	if stderrors.As(err, &rateLimit) {
		return errors.Wrap(err, errors.CodeRateLimit, op+" hit the rate limit")
	}
	var abuse *gh.AbuseRateLimitError
	if stderrors.As(err, &abuse) {
		return errors.Wrap(err, errors.CodeRateLimit, op+" hit the secondary rate limit")
	}

	var apiErr *gh.ErrorResponse
	if stderrors.As(err, &apiErr) && apiErr.Response != nil {
		switch status := apiErr.Response.StatusCode; {
		case status == http.StatusUnauthorized:
			return errors.Wrap(err, errors.CodeUnauthorized, op+" was rejected: invalid credentials")
		case status == http.StatusForbidden:
			return errors.Wrap(err, errors.CodeForbidden, op+" was rejected: insufficient permissions")
		case status == http.StatusNotFound:
			return errors.Wrap(err, errors.CodeNotFound, op+" failed: resource not found")
		case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
			return errors.Wrap(err, errors.CodeConflict, op+" failed: remote state conflict")
		case status == http.StatusTooManyRequests:
			return errors.Wrap(err, errors.CodeRateLimit, op+" hit the rate limit")
		case status >= 500:
			return errors.Wrap(err, errors.CodeNetwork, op+" failed with a server error")
		default:
			return errors.Wrap(err, errors.CodeNetwork, op+" failed")
		}
	}

	// No structured response at all: connection reset, DNS failure, etc.
	return errors.Wrap(err, errors.CodeNetwork, op+" failed with a transport error")
}

// isNotFound reports whether err is a 404 API response.
func isNotFound(err error) bool {
	var apiErr *gh.ErrorResponse
	return stderrors.As(err, &apiErr) &&
		apiErr.Response != nil &&
		apiErr.Response.StatusCode == http.StatusNotFound
}
