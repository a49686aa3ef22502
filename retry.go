package refetch

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/roblav96/refetch/internal/backoff"
)

// retryFallbackCeiling bounds the jittered default backoff used when a
// failure carries no usable retry-after header.
const retryFallbackCeiling = time.Second

// do runs the dispatch-retry loop for one logical call. The retry budget is
// threaded through as loop state; the request and config are never mutated
// between attempts. Retries are strictly sequential.
func (c *Client) do(req *http.Request, body []byte, input string, cfg *Config, requestID, endpoint string) (*http.Response, error) {
	ctx := req.Context()
	remaining := cfg.Retries
	if remaining < 0 {
		remaining = 0
	}

	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
			}
		}
		if c.breaker != nil && !c.breaker.Allow() {
			if c.metrics != nil {
				c.metrics.RecordError("CircuitOpen", cfg.Method, endpoint)
			}
			return nil, ErrCircuitOpen
		}

		resp, err := c.dispatch(cloneAttempt(req, body), input, cfg)

		if c.breaker != nil {
			if err != nil {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
			if c.metrics != nil {
				c.metrics.RecordBreakerState(endpoint, c.breaker.State())
			}
		}

		if err == nil {
			return resp, nil
		}
		if remaining <= 0 || !retryEligible(cfg, err) {
			if c.metrics != nil {
				c.metrics.RecordError(errorType(err), cfg.Method, endpoint)
			}
			return nil, err
		}

		delay := retryDelay(err)
		discardFailedResponse(err)

		if c.metrics != nil {
			c.metrics.RecordRetry(cfg.Method, endpoint)
		}
		if cfg.Debug && c.logger != nil {
			c.logger.Info("scheduling retry",
				"requestID", requestID, "endpoint", endpoint,
				"remaining", remaining, "delay", delay)
		}
		if serr := sleepContext(ctx, delay); serr != nil {
			return nil, err
		}
		remaining--
	}
}

// retryEligible applies the retry predicate: budget handling is the caller's,
// here the method must be in the retryable set and the failure must be an
// abort or a retryable status.
func retryEligible(cfg *Config, err error) bool {
	if !cfg.methodRetryable() {
		return false
	}
	var abortErr *AbortError
	if errors.As(err, &abortErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return cfg.statusRetryable(httpErr.StatusCode())
	}
	return false
}

// retryDelay computes the wait before the next attempt: a usable retry-after
// header wins, otherwise a uniform jitter draw bounded by one second.
func retryDelay(err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Response != nil {
		if d, ok := parseRetryAfter(httpErr.Response.Header.Get("Retry-After")); ok {
			return d
		}
	}
	return backoff.Uniform{}.Delay(retryFallbackCeiling)
}

// parseRetryAfter reads a retry-after value, trying the HTTP-date form first
// (delay is the absolute distance from now) and falling back to a count of
// seconds. ok is false when neither form yields a finite delay.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = -d
		}
		return d, true
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return 0, false
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	return 0, false
}

// discardFailedResponse releases the connection held by a failed attempt that
// is about to be retried.
func discardFailedResponse(err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Response != nil && httpErr.Response.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(httpErr.Response.Body, 4096))
		_ = httpErr.Response.Body.Close()
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, &AbortError{}):
		return "Abort"
	case errors.Is(err, &HTTPError{}):
		return "HTTP"
	case errors.Is(err, ErrCircuitOpen):
		return "CircuitOpen"
	case errors.Is(err, ErrRateLimited):
		return "RateLimit"
	default:
		return "Network"
	}
}
