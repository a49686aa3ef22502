package refetch

import (
	"context"
	"net/http"
	"time"
)

// Transport executes a single HTTP transaction. *http.Transport and any
// other http.RoundTripper satisfy it.
type Transport interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(*http.Request) (*http.Response, error)

func (f TransportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Hook runs before URL resolution and may mutate the per-call config, for
// example to inject freshly minted auth headers. Hooks run strictly in the
// order configured; an error aborts the call.
type Hook func(ctx context.Context, cfg *Config) error

// Entry is a key/value pair returned by Store.Entries.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the persistence collaborator shared by the cookie jar and the
// memoization cache. Keys are namespaced "<purpose>:<hostname>:...".
//
// TTL semantics are lazy: an entry whose TTL has elapsed is treated as
// absent on the next read. No active eviction loop is required of
// implementations.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Entries(ctx context.Context, prefix string) ([]Entry, error)
}

// Option configures a Client at construction time.
type Option func(*Client)

// Logger receives structured debug output when the Debug flag is enabled.
// Arguments alternate key, value.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
