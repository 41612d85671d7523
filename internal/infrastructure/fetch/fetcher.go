// Package fetch retrieves webpage HTML for recipe capture.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/ports/outbound"
	apperrors "github.com/cookingcapture/api/pkg/errors"
	"go.uber.org/zap"
)

// fetchState tracks progress through the blocked-page retry sequence.
type fetchState int

const (
	stateFetching fetchState = iota
	stateBlocked
	stateRetryingAlternate
	stateSucceeded
	statePermanentlyBlocked
)

// identity is a browser profile presented to the target site.
type identity struct {
	userAgent      string
	acceptLanguage string
}

// identities holds the primary profile and the single alternate used
// after a 403. The retry is bounded: one alternate, then give up.
var identities = []identity{
	{
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		acceptLanguage: "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
	},
	{
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
		acceptLanguage: "fr-FR,fr;q=0.9,en;q=0.8",
	},
}

// Fetcher downloads pages with a browser-like identity
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
}

var _ outbound.PageFetcher = (*Fetcher)(nil)

// NewFetcher creates a page fetcher from configuration
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Fetch.Timeout,
		},
		maxBodyBytes: cfg.Fetch.MaxBodyBytes,
		logger:       logger.Named("fetch"),
	}
}

// newFetcherWithClient is used by tests to inject a client.
func newFetcherWithClient(client *http.Client, maxBodyBytes int64, logger *zap.Logger) *Fetcher {
	return &Fetcher{client: client, maxBodyBytes: maxBodyBytes, logger: logger}
}

// Fetch retrieves the page at url. Sites that answer 403 get exactly
// one retry with an alternate browser identity; a second refusal is
// reported as a permanent block.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	state := stateFetching
	attempt := 0

	for {
		switch state {
		case stateFetching, stateRetryingAlternate:
			html, status, err := f.fetchOnce(ctx, url, identities[attempt])
			if err != nil {
				return "", apperrors.NewFetchFailedError(url, err)
			}

			switch {
			case status == http.StatusForbidden:
				state = stateBlocked
			case status >= 400:
				return "", apperrors.NewFetchFailedError(url, fmt.Errorf("server returned status %d", status))
			default:
				state = stateSucceeded
				return html, nil
			}

		case stateBlocked:
			if attempt+1 >= len(identities) {
				state = statePermanentlyBlocked
				continue
			}
			attempt++
			f.logger.Info("page blocked, retrying with alternate identity",
				zap.String("url", url),
				zap.Int("attempt", attempt),
			)
			// Brief pause so the retry does not look like a burst
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return "", apperrors.NewFetchFailedError(url, ctx.Err())
			}
			state = stateRetryingAlternate

		case statePermanentlyBlocked:
			f.logger.Warn("page refused all identities", zap.String("url", url))
			return "", apperrors.NewFetchBlockedError(url)
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string, id identity) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", id.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", id.acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}
