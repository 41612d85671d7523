package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cookingcapture/api/pkg/errors"
	"github.com/cookingcapture/api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *Fetcher {
	return newFetcherWithClient(&http.Client{Timeout: 5 * time.Second}, 5<<20, logger.NewNop())
}

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>recette</body></html>"))
	}))
	defer server.Close()

	html, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "recette")
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestFetchRetriesOnceAfter403(t *testing.T) {
	var userAgents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents = append(userAgents, r.Header.Get("User-Agent"))
		if len(userAgents) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	html, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "ok")

	// Exactly two attempts with different identities
	require.Len(t, userAgents, 2)
	assert.NotEqual(t, userAgents[0], userAgents[1])
}

func TestFetchPermanentBlock(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	assert.True(t, errors.Is(err, errors.CodeFetchBlocked))

	// The error names the blocked host
	serverURL, parseErr := url.Parse(server.URL)
	require.NoError(t, parseErr)
	assert.ErrorContains(t, err, serverURL.Host)

	// The retry is bounded: primary identity plus one alternate
	assert.Equal(t, 2, attempts)
}

func TestFetchOtherErrorsDoNotRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	assert.True(t, errors.Is(err, errors.CodeFetchFailed))
	assert.Equal(t, 1, attempts)
}

func TestFetchBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 1000; i++ {
			w.Write([]byte("0123456789"))
		}
	}))
	defer server.Close()

	fetcher := newFetcherWithClient(&http.Client{Timeout: 5 * time.Second}, 100, logger.NewNop())
	html, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, html, 100)
}
