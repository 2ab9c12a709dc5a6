// Package fetcher retrieves playlist text over HTTP with a single relay fallback.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/m3u"
	"github.com/stwalsh4118/streamvault/internal/metrics"
)

// DefaultMaxBodySize caps a playlist response body
const DefaultMaxBodySize = 64 << 20

// Options configures a Fetcher
type Options struct {
	// RelayBase is prefixed to the query-escaped target URL; empty disables the relay
	RelayBase string
	// Timeout bounds each attempt; zero means no client timeout
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
	// MaxBodySize rejects larger responses; zero means DefaultMaxBodySize
	MaxBodySize int64
}

// Fetcher performs the direct attempt and, on any failure, exactly one relay attempt
type Fetcher struct {
	client    *http.Client
	relayBase string
	userAgent string
	maxBody   int64
}

// New creates a fetcher
func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	return &Fetcher{
		client:    client,
		relayBase: opts.RelayBase,
		userAgent: opts.UserAgent,
		maxBody:   maxBody,
	}
}

// ValidPlaylist reports whether a response is accepted as playlist text
func ValidPlaylist(statusCode int, body string) bool {
	return statusCode >= 200 && statusCode < 300 && m3u.HasHeader(body)
}

// RelayURL builds the relay address for target
func RelayURL(relayBase, target string) string {
	return relayBase + url.QueryEscape(target)
}

// Fetch returns the playlist text at target. Any direct failure is followed by
// one relay attempt; if that fails too a *FetchError is returned.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	text, directErr := f.attempt(ctx, metrics.AttemptDirect, target)
	if directErr == nil {
		return text, nil
	}

	logger.Log.Warn().
		Err(directErr).
		Str("url", target).
		Msg("Direct playlist fetch failed, trying relay")

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", &FetchError{URL: target, Direct: directErr, Relay: ctxErr}
	}

	if f.relayBase == "" {
		return "", &FetchError{URL: target, Direct: directErr, Relay: ErrRelayDisabled}
	}

	text, relayErr := f.attempt(ctx, metrics.AttemptRelay, RelayURL(f.relayBase, target))
	if relayErr != nil {
		return "", &FetchError{URL: target, Direct: directErr, Relay: relayErr}
	}
	return text, nil
}

func (f *Fetcher) attempt(ctx context.Context, kind, rawURL string) (string, error) {
	text, outcome, err := f.get(ctx, rawURL)
	metrics.RecordFetchAttempt(kind, outcome)
	return text, err
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", metrics.OutcomeError, fmt.Errorf("new request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", metrics.OutcomeError, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", metrics.OutcomeError, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return "", metrics.OutcomeTooLarge, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, f.maxBody)
	}

	text := string(body)
	if ValidPlaylist(resp.StatusCode, text) {
		return text, metrics.OutcomeOK, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", metrics.OutcomeBadStatus, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return "", metrics.OutcomeMissingHeader, ErrMissingHeader
}
