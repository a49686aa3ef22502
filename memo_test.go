package refetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"
)

func testResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestFingerprintStable(t *testing.T) {
	header := http.Header{"Accept": {"application/json"}, "X-A": {"1"}}
	a := fingerprint("GET", "https://example.com/a", header, nil)
	b := fingerprint("GET", "https://example.com/a", header, nil)
	if a != b {
		t.Errorf("Expected identical fingerprints, got %s and %s", a, b)
	}
}

func TestFingerprintHeaderOrderIndependent(t *testing.T) {
	a := fingerprint("GET", "https://example.com/a", http.Header{"A": {"1"}, "B": {"2"}}, nil)
	b := fingerprint("GET", "https://example.com/a", http.Header{"B": {"2"}, "A": {"1"}}, nil)
	if a != b {
		t.Errorf("Expected header order not to matter, got %s and %s", a, b)
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	base := fingerprint("GET", "https://example.com/a", http.Header{}, nil)
	cases := map[string]string{
		"method": fingerprint("POST", "https://example.com/a", http.Header{}, nil),
		"url":    fingerprint("GET", "https://example.com/b", http.Header{}, nil),
		"header": fingerprint("GET", "https://example.com/a", http.Header{"A": {"1"}}, nil),
		"body":   fingerprint("GET", "https://example.com/a", http.Header{}, []byte("x")),
	}
	for dim, fp := range cases {
		if fp == base {
			t.Errorf("Expected differing %s to change the fingerprint", dim)
		}
	}
}

func TestMemoRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()

	header := http.Header{"Content-Type": {"application/json"}, "X-Id": {"7"}}
	resp := testResponse(201, `{"ok":true}`, header)

	if err := c.memoStore(ctx, "example.com", "fp1", resp, time.Minute); err != nil {
		t.Fatalf("memoStore returned error: %v", err)
	}

	// the original body must still be fully readable after storing
	original, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read original body: %v", err)
	}
	if string(original) != `{"ok":true}` {
		t.Errorf("Original body consumed by snapshot: %q", original)
	}

	cached, found, err := c.memoLookup(ctx, "example.com", "fp1")
	if err != nil {
		t.Fatalf("memoLookup returned error: %v", err)
	}
	if !found {
		t.Fatal("Expected memo hit")
	}
	if cached.StatusCode != 201 {
		t.Errorf("Expected status 201, got %d", cached.StatusCode)
	}
	if got := cached.Header.Get("X-Id"); got != "7" {
		t.Errorf("Expected X-Id header 7, got %q", got)
	}
	body, _ := io.ReadAll(cached.Body)
	if string(body) != `{"ok":true}` {
		t.Errorf("Expected identical body, got %q", body)
	}
}

func TestMemoExpiry(t *testing.T) {
	c := New()
	ctx := context.Background()

	resp := testResponse(200, "cached", nil)
	if err := c.memoStore(ctx, "example.com", "fp2", resp, 10*time.Millisecond); err != nil {
		t.Fatalf("memoStore returned error: %v", err)
	}

	if _, found, _ := c.memoLookup(ctx, "example.com", "fp2"); !found {
		t.Error("Expected hit before TTL elapsed")
	}

	time.Sleep(25 * time.Millisecond)

	if _, found, _ := c.memoLookup(ctx, "example.com", "fp2"); found {
		t.Error("Expected miss after TTL elapsed")
	}
}

func TestMemoLookupMiss(t *testing.T) {
	c := New()
	if _, found, err := c.memoLookup(context.Background(), "example.com", "absent"); err != nil || found {
		t.Errorf("Expected clean miss, got found=%v err=%v", found, err)
	}
}
