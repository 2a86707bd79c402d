package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"transcript-scraper/internal/telemetry"
	"transcript-scraper/internal/transcript"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, retries int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Options{
		BaseUrl:   server.URL,
		Timeout:   5 * time.Second,
		Retries:   retries,
		RetryWait: time.Millisecond,
	}, telemetry.SlogAPI{})
	require.NoError(t, err)
	return client
}

func TestFetch(t *testing.T) {
	var userAgent string
	mux := http.NewServeMux()
	mux.HandleFunc("/transcript/1/2016/3/4", func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("user-agent")
		w.Header().Set("content-type", "text/html")
		w.Write([]byte("<html><title>day</title></html>"))
	})
	client := newTestClient(t, mux, 0)

	markup, err := client.Fetch(context.Background(), "/transcript/1/2016/3/4")
	require.NoError(t, err)
	require.Equal(t, "<html><title>day</title></html>", markup)
	require.Contains(t, userAgent, "Mozilla/5.0")
}

func TestFetchNotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler(), 0)

	_, err := client.Fetch(context.Background(), "/transcript/1/2016/3/4")
	var fetchErr *transcript.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusNotFound, fetchErr.Status)
	require.Equal(t, "/transcript/1/2016/3/4", fetchErr.URL)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	client := newTestClient(t, handler, 3)

	markup, err := client.Fetch(context.Background(), "/transcript/1/2016/3/4")
	require.NoError(t, err)
	require.Equal(t, "ok", markup)
	require.Equal(t, int32(3), calls.Load())
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client := newTestClient(t, handler, 2)

	_, err := client.Fetch(context.Background(), "/transcript/1/2016/3/4")
	var fetchErr *transcript.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusTooManyRequests, fetchErr.Status)
	require.Equal(t, int32(3), calls.Load())
}

func TestFetchCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client := newTestClient(t, handler, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "/transcript/1/2016/3/4")
	var fetchErr *transcript.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Zero(t, fetchErr.Status)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
