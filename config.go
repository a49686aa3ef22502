package refetch

import (
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is sent on every request unless overridden. It mirrors the
// desktop Chrome string the library has always shipped with.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/79.0.3945.130 Safari/537.36"

// Config is the full set of per-call options. The zero value of a field means
// "inherit" during Merge; a few fields accept negative sentinels to express
// "explicitly disabled" (see Timeout and Retries).
type Config struct {
	// Method is the HTTP method, defaulting to GET.
	Method string

	// Headers maps lowercase header names to values.
	Headers map[string]string

	// JSON, Form and Multipart are the three body sources, evaluated in that
	// priority order when more than one is set.
	JSON      any
	Form      map[string]any
	Multipart map[string]any

	// SearchParams is merged into the resolved URL's query string with
	// last-value-wins semantics per key.
	SearchParams map[string]any

	// PrefixURL makes call inputs relative: "v1/items" against
	// "https://api.example.com" resolves with exactly one joining slash.
	// Inputs beginning with '#', '&' or '?' are appended verbatim.
	PrefixURL string

	// Timeout bounds a single dispatch attempt. Zero inherits the default
	// (10s); a negative value disables the timer entirely. Like
	// http.Client.Timeout, the deadline covers body consumption: a body
	// still being read when the timer fires errors mid-read.
	Timeout time.Duration

	// Retries is the retry budget for one logical call. Zero inherits the
	// default (2); a negative value disables retries.
	Retries int

	// RetryMethods and RetryStatusCodes gate the retry policy. Merging
	// unions the sets.
	RetryMethods     []string
	RetryStatusCodes []int

	// Memoize caches the response under the request fingerprint for the
	// given TTL. Zero or negative disables memoization.
	Memoize time.Duration

	// Cookies enables cookie jar injection and absorption for this call.
	Cookies bool

	// Debug enables structured logging of the call lifecycle.
	Debug bool

	// Delay pauses for a fixed duration before dispatch. Randelay pauses for
	// a random duration between roughly 0.27×Randelay and Randelay.
	Delay    time.Duration
	Randelay time.Duration

	// BuildRequest hooks run sequentially before URL resolution.
	BuildRequest []Hook
}

// DefaultConfig returns the base configuration every client starts from.
func DefaultConfig() Config {
	return Config{
		Method: http.MethodGet,
		Headers: map[string]string{
			"user-agent": DefaultUserAgent,
		},
		SearchParams:     map[string]any{},
		Timeout:          10 * time.Second,
		Retries:          2,
		RetryMethods:     []string{http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions},
		RetryStatusCodes: []int{403, 408, 413, 429, 500, 502, 503, 504},
	}
}

// Merge returns a new Config combining c with override. Neither input is
// mutated. Scalars are replaced when the override sets them, maps are merged
// key-wise with the override winning per key, and the retry sets and hook
// sequence are concatenated (sets deduplicated). The operation is associative
// on overlapping scalar fields.
func (c Config) Merge(override Config) Config {
	out := c.clone()

	if override.Method != "" {
		out.Method = override.Method
	}
	if len(override.Headers) > 0 {
		if out.Headers == nil {
			out.Headers = make(map[string]string, len(override.Headers))
		}
		for k, v := range override.Headers {
			out.Headers[strings.ToLower(k)] = v
		}
	}
	if override.JSON != nil {
		out.JSON = override.JSON
	}
	out.Form = mergeValueMap(out.Form, override.Form)
	out.Multipart = mergeValueMap(out.Multipart, override.Multipart)
	out.SearchParams = mergeValueMap(out.SearchParams, override.SearchParams)
	if override.PrefixURL != "" {
		out.PrefixURL = override.PrefixURL
	}
	if override.Timeout != 0 {
		out.Timeout = override.Timeout
	}
	if override.Retries != 0 {
		out.Retries = override.Retries
	}
	out.RetryMethods = unionStrings(out.RetryMethods, override.RetryMethods)
	out.RetryStatusCodes = unionInts(out.RetryStatusCodes, override.RetryStatusCodes)
	if override.Memoize != 0 {
		out.Memoize = override.Memoize
	}
	if override.Cookies {
		out.Cookies = true
	}
	if override.Debug {
		out.Debug = true
	}
	if override.Delay != 0 {
		out.Delay = override.Delay
	}
	if override.Randelay != 0 {
		out.Randelay = override.Randelay
	}
	if len(override.BuildRequest) > 0 {
		out.BuildRequest = append(out.BuildRequest, override.BuildRequest...)
	}

	return out
}

func (c Config) clone() Config {
	out := c
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	out.Form = mergeValueMap(nil, c.Form)
	out.Multipart = mergeValueMap(nil, c.Multipart)
	out.SearchParams = mergeValueMap(nil, c.SearchParams)
	out.RetryMethods = append([]string(nil), c.RetryMethods...)
	out.RetryStatusCodes = append([]int(nil), c.RetryStatusCodes...)
	out.BuildRequest = append([]Hook(nil), c.BuildRequest...)
	return out
}

func mergeValueMap(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func unionStrings(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, v := range extra {
		seen := false
		for _, have := range out {
			if strings.EqualFold(have, v) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

func unionInts(base, extra []int) []int {
	out := append([]int(nil), base...)
	for _, v := range extra {
		seen := false
		for _, have := range out {
			if have == v {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) methodRetryable() bool {
	for _, m := range c.RetryMethods {
		if strings.EqualFold(m, c.Method) {
			return true
		}
	}
	return false
}

func (c *Config) statusRetryable(status int) bool {
	for _, s := range c.RetryStatusCodes {
		if s == status {
			return true
		}
	}
	return false
}
