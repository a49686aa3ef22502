// Package refetch provides a resilient fetch-style HTTP client wrapping a
// pluggable transport with composable reliability primitives:
//
//   - Retries with retry-after awareness and jittered default backoff
//   - Per-attempt timeouts that abort the in-flight call
//   - Response memoization keyed by a stable request fingerprint
//   - A persistent per-origin cookie jar
//   - Request pacing (fixed and jittered delays), rate limiting and an
//     optional circuit breaker
//   - Prometheus metrics and structured debug logging
//
// Design goals:
//   - Small surface area: functional options configure the client, a typed
//     Config merges per call
//   - Safe concurrent use of a single *Client instance
//   - Pluggable storage: cookies and memoized responses live behind the Store
//     interface (in-memory by default, Redis-backed via RedisStore)
//
// Typical usage:
//
//	client := refetch.New(
//	    refetch.WithPrefixURL("https://api.example.com"),
//	    refetch.WithRetries(2),
//	    refetch.WithCookies(),
//	    refetch.WithMemoize(5*time.Minute),
//	)
//	var out struct{ Name string }
//	err := client.JSON(ctx, "/v1/items", &out)
//
// Concurrent identical requests are not coalesced: two calls with the same
// fingerprint may both miss the memo cache and both dispatch.
package refetch
