package refetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchTimeoutSurfacesAbortError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithTimeout(50*time.Millisecond), WithRetries(-1))

	start := time.Now()
	_, err := client.Get(context.Background(), server.URL)
	elapsed := time.Since(start)

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, 50*time.Millisecond, abortErr.Timeout)
	assert.Equal(t, server.URL, abortErr.Input)
	assert.Less(t, elapsed, 150*time.Millisecond, "should abort well before the handler finishes")
}

func TestDispatchNonSuccessSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nothing here"))
	}))
	defer server.Close()

	client := New(WithRetries(-1))

	_, err := client.Get(context.Background(), server.URL)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode())

	body, readErr := io.ReadAll(httpErr.Response.Body)
	require.NoError(t, readErr)
	httpErr.Response.Body.Close()
	assert.Equal(t, "nothing here", string(body))
}

func TestDispatchTimeoutCoversBodyRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("part1"))
		w.(http.Flusher).Flush()
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte("part2"))
	}))
	defer server.Close()

	client := New(WithTimeout(50*time.Millisecond), WithRetries(-1))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "headers arrive within the deadline")

	_, err = resp.Text()
	require.Error(t, err, "the deadline covers body consumption")
}

func TestDispatchNegativeTimeoutNeverAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte("slow but fine"))
	}))
	defer server.Close()

	client := New(WithTimeout(-1), WithRetries(-1))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "slow but fine", text)
}

func TestDispatchTransportErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("connection refused by test transport")
	client := New(
		WithTransport(TransportFunc(func(r *http.Request) (*http.Response, error) {
			return nil, sentinel
		})),
		WithRetries(-1),
	)

	_, err := client.Get(context.Background(), "http://example.test/")
	require.ErrorIs(t, err, sentinel)

	var abortErr *AbortError
	assert.False(t, errors.As(err, &abortErr), "a plain transport failure is not an abort")
}

func TestCloneAttemptGivesEachAttemptAFreshBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://example.test/", nil)
	require.NoError(t, err)
	body := []byte(`{"n":1}`)

	first := cloneAttempt(req, body)
	second := cloneAttempt(req, body)

	firstBytes, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	secondBytes, err := io.ReadAll(second.Body)
	require.NoError(t, err)

	assert.Equal(t, body, firstBytes)
	assert.Equal(t, body, secondBytes)
	assert.Equal(t, int64(len(body)), first.ContentLength)

	rewound, err := second.GetBody()
	require.NoError(t, err)
	rewoundBytes, err := io.ReadAll(rewound)
	require.NoError(t, err)
	assert.Equal(t, body, rewoundBytes)
}

func TestSleepContext(t *testing.T) {
	t.Run("zero duration returns immediately", func(t *testing.T) {
		require.NoError(t, sleepContext(context.Background(), 0))
	})

	t.Run("cancelled context cuts the wait short", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		err := sleepContext(ctx, time.Second)
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})
}
