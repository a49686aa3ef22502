package refetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// dispatch executes one transport attempt. When the config carries a positive
// timeout the attempt runs under a deadline context: the in-flight call is
// cancelled on expiry and the failure surfaces as *AbortError. Non-2xx
// statuses surface as *HTTPError carrying the raw response. Anything else the
// transport reports propagates unchanged.
func (c *Client) dispatch(req *http.Request, input string, cfg *Config) (*http.Response, error) {
	ctx := req.Context()
	cancel := context.CancelFunc(func() {})
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		req = req.WithContext(ctx)
	}

	resp, err := c.transport.RoundTrip(req)
	if err != nil {
		cancel()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &AbortError{Input: input, Config: cfg, Timeout: cfg.Timeout, Cause: err}
		}
		return nil, err
	}

	// The deadline context must outlive the body read; Close releases it.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Input: input, Config: cfg, Response: resp}
	}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// cloneAttempt duplicates the built request for one dispatch attempt with a
// fresh body reader, so sequential retries never share a consumed stream.
func cloneAttempt(req *http.Request, body []byte) *http.Request {
	out := req.Clone(req.Context())
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	return out
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
