package refetch

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// WithTransport sets the transport used for every dispatch.
func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithHTTPClient dispatches through an existing *http.Client, keeping its
// redirect and connection behavior.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = TransportFunc(client.Do)
	}
}

// WithStore sets the storage collaborator backing the cookie jar and the
// memoization cache.
func WithStore(store Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithConfig merges cfg into the client's base configuration.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		c.base = c.base.Merge(cfg)
	}
}

// WithPrefixURL makes call inputs relative to prefix.
func WithPrefixURL(prefix string) Option {
	return func(c *Client) {
		c.base.PrefixURL = prefix
	}
}

// WithHeaders merges default headers into the base configuration.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.base = c.base.Merge(Config{Headers: headers})
	}
}

// WithTimeout sets the per-attempt timeout. Negative disables the timer.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.base.Timeout = d
	}
}

// WithRetries sets the retry budget. Negative disables retries.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.base.Retries = n
	}
}

// WithRetryMethods adds methods to the retryable set.
func WithRetryMethods(methods ...string) Option {
	return func(c *Client) {
		c.base.RetryMethods = unionStrings(c.base.RetryMethods, methods)
	}
}

// WithRetryStatusCodes adds status codes to the retryable set.
func WithRetryStatusCodes(codes ...int) Option {
	return func(c *Client) {
		c.base.RetryStatusCodes = unionInts(c.base.RetryStatusCodes, codes)
	}
}

// WithMemoize memoizes successful responses for ttl.
func WithMemoize(ttl time.Duration) Option {
	return func(c *Client) {
		c.base.Memoize = ttl
	}
}

// WithCookies enables the cookie jar for every call.
func WithCookies() Option {
	return func(c *Client) {
		c.base.Cookies = true
	}
}

// WithDebug enables structured lifecycle logging for every call.
func WithDebug() Option {
	return func(c *Client) {
		c.base.Debug = true
	}
}

// WithDelay pauses every call for d before dispatch.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		c.base.Delay = d
	}
}

// WithRandelay pauses every call for a jittered duration bounded by ceiling.
func WithRandelay(ceiling time.Duration) Option {
	return func(c *Client) {
		c.base.Randelay = ceiling
	}
}

// WithHook appends pre-request hooks to the base configuration.
func WithHook(hooks ...Hook) Option {
	return func(c *Client) {
		c.base.BuildRequest = append(c.base.BuildRequest, hooks...)
	}
}

// WithRateLimiter paces dispatch attempts with a token bucket of the given
// sustained rate and burst.
func WithRateLimiter(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBreaker wraps dispatches in a circuit breaker.
func WithBreaker(config BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = NewBreaker(config)
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestIDGenerator replaces the uuid-based request ID generator used in
// debug logs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.requestIDGen = gen
	}
}
