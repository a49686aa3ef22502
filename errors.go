package refetch

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for the optional reliability gates.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a dispatch.
	ErrCircuitOpen = errors.New("refetch: circuit open")

	// ErrRateLimited is returned when the rate limiter cannot grant a token
	// before the call's context ends.
	ErrRateLimited = errors.New("refetch: rate limited")
)

// HTTPError reports that the transport completed but returned a non-success
// status. It carries the original input, the effective config and the raw
// response so retry and caller inspection logic can read status and headers.
type HTTPError struct {
	Input    string
	Config   *Config
	Response *http.Response
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	method := ""
	if e.Config != nil {
		method = e.Config.Method
	}
	return fmt.Sprintf("refetch: %s %s responded %s", method, e.Input, e.Response.Status)
}

// StatusCode returns the response status, or 0 when no response is attached.
func (e *HTTPError) StatusCode() int {
	if e == nil || e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Is matches any *HTTPError so callers can use errors.Is with a zero target.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// AbortError reports that the per-attempt timeout elapsed before the
// transport resolved. The in-flight attempt was cancelled.
type AbortError struct {
	Input   string
	Config  *Config
	Timeout time.Duration
	Cause   error
}

func (e *AbortError) Error() string {
	if e == nil {
		return "<nil>"
	}
	method := ""
	if e.Config != nil {
		method = e.Config.Method
	}
	return fmt.Sprintf("refetch: %s %s aborted after %v", method, e.Input, e.Timeout)
}

func (e *AbortError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches any *AbortError so callers can use errors.Is with a zero target.
func (e *AbortError) Is(target error) bool {
	_, ok := target.(*AbortError)
	return ok
}
