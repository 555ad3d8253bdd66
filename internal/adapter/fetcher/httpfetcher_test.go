package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"articles":[]}`))
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(discardLogger(), 0)

	reader, err := fetcher.Fetch(context.Background(), testServer.URL)

	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, `{"articles":[]}`, string(data))
}

func TestHTTPFetcher_Fetch_Unauthorized(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(discardLogger(), 0)

	reader, err := fetcher.Fetch(context.Background(), testServer.URL+"?q=go&apiKey=secret")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 401")
	assert.NotContains(t, err.Error(), "secret")
	assert.Nil(t, reader)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	fetcher := NewHTTPFetcher(discardLogger(), 0)

	reader, err := fetcher.Fetch(context.Background(), "invalid://url")

	assert.Error(t, err)
	assert.Nil(t, reader)
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(discardLogger(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader, err := fetcher.Fetch(ctx, testServer.URL)

	assert.Error(t, err)
	assert.Nil(t, reader)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer testServer.Close()
	defer close(release)
	fetcher := NewHTTPFetcher(discardLogger(), 50*time.Millisecond)

	reader, err := fetcher.Fetch(context.Background(), testServer.URL)

	assert.Error(t, err)
	assert.Nil(t, reader)
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://content.guardianapis.com/search?q=go&api-key=abc")
	assert.Contains(t, got, "api-key=%2A%2A%2A")
	assert.NotContains(t, got, "abc")

	assert.Equal(t, "https://example.com/a?q=go", redactURL("https://example.com/a?q=go"))
}
