package seedrapi

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/ratelimit"

	"github.com/l3uddz/seedr-adapter/pkg/runtime"
)

// newRetryableClient builds an *http.Client backed by retryablehttp, the
// same construction the teacher uses in pkg/httputils/retryclient.go:
// base 1s / factor 2 / cap 30s exponential backoff (retryablehttp's
// DefaultBackoff), a caller-supplied retry ceiling, and an optional token
// bucket to stay under the remote API's rate limits (spec §4.1, §7).
func newRetryableClient(timeout time.Duration, retryMax int, rl ratelimit.Limiter) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, request *http.Request, _ int) {
		if request != nil {
			request.Header.Set("User-Agent", "seedr-adapter/"+runtime.Version)
		}
		if rl != nil {
			rl.Take()
		}
	}
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil
	// Hand the last response back once retries are exhausted so classifyStatus
	// can report it as RateLimitedError/ServerError rather than a bare
	// transport error.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return retryClient.StandardClient()
}
