package refetch

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const cookieNamespace = "cookies"

// cookieAttributes are the set-cookie attribute names that can never be the
// cookie's own name. Matching is case-insensitive with hyphens stripped, so
// both "Max-Age" and "maxage" are recognized.
var cookieAttributes = map[string]struct{}{
	"domain":   {},
	"expires":  {},
	"httponly": {},
	"maxage":   {},
	"path":     {},
	"samesite": {},
	"secure":   {},
}

// cookieRecord is the CBOR-serialized jar entry.
type cookieRecord struct {
	Name    string `cbor:"name"`
	Value   string `cbor:"value"`
	Expires int64  `cbor:"expires,omitempty"` // unix milliseconds, 0 = session cookie
}

// Jar persists cookies per origin hostname in a Store under
// "cookies:<hostname>:<name>" keys. Expiry is enforced lazily by the Store;
// last write wins under concurrent absorption of the same name.
type Jar struct {
	store Store
}

// NewJar creates a jar on the given store.
func NewJar(store Store) *Jar {
	return &Jar{store: store}
}

func cookieKey(hostname, name string) string {
	return cookieNamespace + ":" + hostname + ":" + name
}

// Inject reads every live cookie for hostname and sets a single "cookie"
// header joining name=value pairs with "; ". Jar pairs are appended after any
// cookie header already present. The header is left untouched when the jar
// has nothing for the origin.
func (j *Jar) Inject(ctx context.Context, hostname string, header http.Header) error {
	entries, err := j.store.Entries(ctx, cookieNamespace+":"+hostname+":")
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(entries))
	for _, entry := range entries {
		var rec cookieRecord
		if err := cbor.Unmarshal(entry.Value, &rec); err != nil {
			continue
		}
		pairs = append(pairs, rec.Name+"="+rec.Value)
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Strings(pairs)
	joined := strings.Join(pairs, "; ")
	if existing := header.Get("Cookie"); existing != "" {
		joined = existing + "; " + joined
	}
	header.Set("Cookie", joined)
	return nil
}

// Absorb parses every set-cookie header on a response and stores the named
// cookies for hostname. A future expires attribute becomes the entry's TTL;
// a past one removes the cookie; no expires attribute stores a session cookie
// that persists until explicitly cleared. Attribute-only values are skipped.
// It returns the number of cookies written.
func (j *Jar) Absorb(ctx context.Context, hostname string, header http.Header) (int, error) {
	stored := 0
	for _, raw := range header.Values("Set-Cookie") {
		name, value, expires, ok := parseSetCookie(raw)
		if !ok {
			continue
		}
		if !expires.IsZero() && !expires.After(time.Now()) {
			if err := j.store.Delete(ctx, cookieKey(hostname, name)); err != nil {
				return stored, err
			}
			continue
		}
		rec := cookieRecord{Name: name, Value: value}
		var ttl time.Duration
		if !expires.IsZero() {
			rec.Expires = expires.UnixMilli()
			ttl = time.Until(expires)
		}
		data, err := cbor.Marshal(rec)
		if err != nil {
			return stored, err
		}
		if err := j.store.Set(ctx, cookieKey(hostname, name), data, ttl); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

// parseSetCookie extracts the cookie name, value and optional expiry from one
// set-cookie header value. The name is the sole key that is not a known
// attribute; ok is false for malformed or attribute-only values.
func parseSetCookie(raw string) (name, value string, expires time.Time, ok bool) {
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		normalized := strings.ReplaceAll(strings.ToLower(key), "-", "")
		if _, attr := cookieAttributes[normalized]; attr {
			if normalized == "expires" {
				if t, err := http.ParseTime(val); err == nil {
					expires = t
				}
			}
			continue
		}
		if !ok && key != "" {
			name, value, ok = key, val, true
		}
	}
	return name, value, expires, ok
}
