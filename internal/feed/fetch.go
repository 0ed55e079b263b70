package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hedgepod-dev/hedgepod/internal/httpclient"
)

// Fetcher retrieves and parses a podcast feed over HTTP, sharing the
// retry policy and per-host throttling every other outbound request in
// this package uses.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{client: httpclient.Default(), userAgent: userAgent}
}

// FetchErrorKind classifies how a feed fetch failed, so a caller can
// translate it into the store's FeedErrorCode without re-inspecting the
// underlying transport or parse error.
type FetchErrorKind int

const (
	// FetchErrorNetworking covers everything that fails before a response
	// status line is available: DNS, TLS, connection refused, timeouts.
	FetchErrorNetworking FetchErrorKind = iota
	// FetchErrorStatus is a non-2xx HTTP response; StatusCode holds it.
	FetchErrorStatus
	// FetchErrorMalformed is a 2xx response whose body didn't parse as RSS.
	FetchErrorMalformed
)

// FetchError is the typed failure Fetch returns, carrying enough detail
// for the caller to record the exact FeedError the result maps to (in
// particular the HTTP status code, when one was received).
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // meaningful when Kind == FetchErrorStatus
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchErrorStatus:
		return fmt.Sprintf("fetch feed: unexpected status %d", e.StatusCode)
	case FetchErrorMalformed:
		return fmt.Sprintf("fetch feed: malformed feed: %v", e.Err)
	default:
		return fmt.Sprintf("fetch feed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetch downloads source and parses it as a podcast RSS document.
func (f *Fetcher) Fetch(ctx context.Context, source string) (Parsed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return Parsed{}, &FetchError{Kind: FetchErrorNetworking, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	// DoWithRetry takes the per-host GlobalHostSem slot for each attempt.
	resp, err := httpclient.DoWithRetry(ctx, f.client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return Parsed{}, &FetchError{Kind: FetchErrorNetworking, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Parsed{}, &FetchError{Kind: FetchErrorStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Parsed{}, &FetchError{Kind: FetchErrorNetworking, Err: err}
	}
	parsed, err := Parse(body)
	if err != nil {
		return Parsed{}, &FetchError{Kind: FetchErrorMalformed, Err: err}
	}
	return parsed, nil
}
