package refetch

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/roblav96/refetch/internal/backoff"
)

// Client is a resilient fetch-style HTTP client layering retries, timeouts,
// response memoization and cookie persistence around a pluggable transport.
// It is safe for concurrent use; independent calls sharing a jar or memo
// namespace are not ordered relative to each other.
type Client struct {
	transport    Transport
	store        Store
	jar          *Jar
	base         Config
	limiter      *rate.Limiter
	breaker      *Breaker
	metrics      *MetricsCollector
	logger       Logger
	requestIDGen func() string
}

// New constructs a Client from the provided functional options. With no
// options it dispatches over http.DefaultTransport, keeps cookies and
// memoized responses in an in-process store, and starts from DefaultConfig.
func New(options ...Option) *Client {
	c := &Client{
		transport:    http.DefaultTransport,
		store:        NewMemoryStore(),
		base:         DefaultConfig(),
		requestIDGen: uuid.NewString,
	}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = NewLogger("debug", false)
	}
	c.jar = NewJar(c.store)
	return c
}

// Extend returns a child client whose base configuration is the deep merge of
// this client's configuration with override. The parent is not mutated; the
// child shares the parent's transport, store and reliability gates.
func (c *Client) Extend(override Config) *Client {
	child := *c
	child.base = c.base.Merge(override)
	return &child
}

// Request executes one call against input, merging the client's base config
// with the given overrides in order. The call works on a clone of the base,
// so hooks may mutate the per-call config without touching the client.
func (c *Client) Request(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	cfg := c.base.clone()
	for _, o := range overrides {
		cfg = cfg.Merge(o)
	}
	return c.execute(ctx, input, cfg)
}

func (c *Client) execute(ctx context.Context, input string, cfg Config) (*Response, error) {
	start := time.Now()
	var requestID string
	if cfg.Debug {
		requestID = c.requestIDGen()
	}

	req, body, err := c.buildRequest(ctx, input, &cfg)
	if err != nil {
		return nil, err
	}

	hostname := req.URL.Hostname()
	endpoint := endpointLabel(req)
	method := req.Method

	if cfg.Debug && c.logger != nil {
		c.logger.Debug("starting request",
			"requestID", requestID, "method", method, "url", req.URL.String())
	}
	if c.metrics != nil {
		c.metrics.RecordRequestStart(method, endpoint)
		defer c.metrics.RecordRequestEnd(method, endpoint)
	}

	var fp string
	if cfg.Memoize > 0 {
		fp = fingerprint(method, req.URL.String(), req.Header, body)
		cached, found, err := c.memoLookup(ctx, hostname, fp)
		if err != nil {
			return nil, err
		}
		if found {
			if c.metrics != nil {
				c.metrics.RecordMemoHit(method, endpoint)
				c.metrics.RecordRequest(method, endpoint, cached.StatusCode, time.Since(start))
			}
			if cfg.Debug && c.logger != nil {
				c.logger.Debug("memoize hit", "requestID", requestID, "fingerprint", fp)
			}
			return newResponse(input, cached), nil
		}
		if c.metrics != nil {
			c.metrics.RecordMemoMiss(method, endpoint)
		}
		if cfg.Debug && c.logger != nil {
			c.logger.Debug("memoize miss", "requestID", requestID, "fingerprint", fp)
		}
	}

	if cfg.Delay > 0 {
		if err := sleepContext(ctx, backoff.Fixed{}.Delay(cfg.Delay)); err != nil {
			return nil, err
		}
	}
	if cfg.Randelay > 0 {
		if err := sleepContext(ctx, backoff.Uniform{}.Delay(cfg.Randelay)); err != nil {
			return nil, err
		}
	}

	resp, err := c.do(req, body, input, &cfg, requestID, endpoint)

	if c.metrics != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.metrics.RecordRequest(method, endpoint, status, time.Since(start))
	}
	if err != nil {
		if cfg.Debug && c.logger != nil {
			c.logger.Warn("request failed", "requestID", requestID, "error", err.Error())
		}
		return nil, err
	}

	if cfg.Cookies {
		stored, err := c.jar.Absorb(ctx, hostname, resp.Header)
		if err != nil {
			return nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordCookiesStored(hostname, stored)
		}
	}
	if cfg.Memoize > 0 {
		if err := c.memoStore(ctx, hostname, fp, resp, cfg.Memoize); err != nil {
			return nil, err
		}
		if cfg.Debug && c.logger != nil {
			c.logger.Debug("response memoized",
				"requestID", requestID, "fingerprint", fp, "ttl", cfg.Memoize)
		}
	}

	if cfg.Debug && c.logger != nil {
		c.logger.Debug("request completed",
			"requestID", requestID, "status", resp.StatusCode, "duration", time.Since(start))
	}
	return newResponse(input, resp), nil
}

// Method shortcuts. Each binds its method and delegates to Request; the bound
// method wins over any Method set in the overrides.

func (c *Client) Get(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodGet})...)
}

func (c *Client) Head(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodHead})...)
}

func (c *Client) Post(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodPost})...)
}

func (c *Client) Put(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodPut})...)
}

func (c *Client) Patch(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodPatch})...)
}

func (c *Client) Delete(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodDelete})...)
}

func (c *Client) Options(ctx context.Context, input string, overrides ...Config) (*Response, error) {
	return c.Request(ctx, input, append(overrides, Config{Method: http.MethodOptions})...)
}

// Body accessors. Each issues the request with a default accept header (the
// overrides can replace it) and interprets the body.

// Text fetches input and returns the body as a string.
func (c *Client) Text(ctx context.Context, input string, overrides ...Config) (string, error) {
	resp, err := c.Request(ctx, input, withAccept("text/*", overrides)...)
	if err != nil {
		return "", err
	}
	return resp.Text()
}

// JSON fetches input and decodes the body into dst. Malformed JSON leaves dst
// zero-valued without an error.
func (c *Client) JSON(ctx context.Context, input string, dst any, overrides ...Config) error {
	resp, err := c.Request(ctx, input, withAccept("application/json", overrides)...)
	if err != nil {
		return err
	}
	return resp.JSON(dst)
}

// Bytes fetches input and returns the raw body.
func (c *Client) Bytes(ctx context.Context, input string, overrides ...Config) ([]byte, error) {
	resp, err := c.Request(ctx, input, withAccept("*/*", overrides)...)
	if err != nil {
		return nil, err
	}
	return resp.Bytes()
}

// Blob fetches input and returns the body with its content type.
func (c *Client) Blob(ctx context.Context, input string, overrides ...Config) ([]byte, string, error) {
	resp, err := c.Request(ctx, input, withAccept("*/*", overrides)...)
	if err != nil {
		return nil, "", err
	}
	return resp.Blob()
}

// FormData fetches input and parses the body as form data.
func (c *Client) FormData(ctx context.Context, input string, overrides ...Config) (url.Values, error) {
	resp, err := c.Request(ctx, input, withAccept("multipart/form-data", overrides)...)
	if err != nil {
		return nil, err
	}
	return resp.FormData()
}

// withAccept prepends an accept default so explicit override headers win.
func withAccept(accept string, overrides []Config) []Config {
	out := make([]Config, 0, len(overrides)+1)
	out = append(out, Config{Headers: map[string]string{"accept": accept}})
	return append(out, overrides...)
}
