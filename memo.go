package refetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
)

const memoNamespace = "memoize"

// memoRecord is the CBOR-serialized snapshot of a memoized response.
type memoRecord struct {
	Body       []byte      `cbor:"body"`
	Header     [][2]string `cbor:"header"`
	StatusCode int         `cbor:"status_code"`
	Status     string      `cbor:"status"`
}

// fingerprint derives the stable request identity used as the memoization
// key: a 64-bit hash over method, fully resolved URL, sorted header entries
// and the request body. Two requests with the same fingerprint are
// interchangeable for memoization regardless of other config.
func fingerprint(method, resolvedURL string, header http.Header, body []byte) string {
	h := xxhash.New()
	_, _ = io.WriteString(h, method)
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, resolvedURL)
	_, _ = h.Write([]byte{0})

	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values := append([]string(nil), header[k]...)
		sort.Strings(values)
		for _, v := range values {
			_, _ = io.WriteString(h, k)
			_, _ = h.Write([]byte{'='})
			_, _ = io.WriteString(h, v)
			_, _ = h.Write([]byte{0})
		}
	}
	_, _ = h.Write(body)
	return strconv.FormatUint(h.Sum64(), 16)
}

func memoKey(hostname, fp string) string {
	return memoNamespace + ":" + hostname + ":" + fp
}

// memoLookup reconstructs a response from a stored snapshot without
// dispatching. A miss, an expired entry or an undecodable record all report
// found=false.
func (c *Client) memoLookup(ctx context.Context, hostname, fp string) (*http.Response, bool, error) {
	data, found, err := c.store.Get(ctx, memoKey(hostname, fp))
	if err != nil || !found {
		return nil, false, err
	}
	var rec memoRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, false, nil
	}
	header := make(http.Header, len(rec.Header))
	for _, kv := range rec.Header {
		header.Add(kv[0], kv[1])
	}
	resp := &http.Response{
		StatusCode:    rec.StatusCode,
		Status:        rec.Status,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(rec.Body)),
		ContentLength: int64(len(rec.Body)),
	}
	return resp, true, nil
}

// memoStore snapshots resp under the fingerprint with the given TTL. The body
// is read once and replaced with an equivalent reader so the caller still
// consumes the full payload.
func (c *Client) memoStore(ctx context.Context, hostname, fp string, resp *http.Response, ttl time.Duration) error {
	body, err := snapshotBody(resp)
	if err != nil {
		return err
	}
	rec := memoRecord{
		Body:       body,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	for k, values := range resp.Header {
		for _, v := range values {
			rec.Header = append(rec.Header, [2]string{k, v})
		}
	}
	sort.Slice(rec.Header, func(i, j int) bool {
		if rec.Header[i][0] != rec.Header[j][0] {
			return rec.Header[i][0] < rec.Header[j][0]
		}
		return rec.Header[i][1] < rec.Header[j][1]
	})
	data, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, memoKey(hostname, fp), data, ttl)
}

// snapshotBody drains a response body and swaps in a replayable reader. This
// is the explicit duplicate-and-consume step that lets a body be both stored
// and returned to the caller.
func snapshotBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
