package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hedgepod-dev/hedgepod/internal/httpclient"
)

// SearchQuery is a typed podcast-search request (spec supplement: the
// search command's free-text argument is wrapped in a named type rather
// than passed around as a bare string, so a search-by-author or
// search-by-category extension has somewhere to add fields later).
type SearchQuery struct {
	Term  string
	Limit int // 0 uses the default of 50
}

// SearchResult is one podcast returned by the iTunes Search API, reduced
// to the fields needed to offer it as a subscription candidate.
type SearchResult struct {
	Name      string
	ArtistName string
	FeedURL   string
}

type itunesSearchResponse struct {
	Results []itunesSearchEntry `json:"results"`
}

type itunesSearchEntry struct {
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	FeedURL        string `json:"feedUrl"`
}

// Searcher queries the iTunes Search API for podcasts.
type Searcher struct {
	client    *http.Client
	userAgent string
	baseURL   string // overridable for tests
}

func NewSearcher(userAgent string) *Searcher {
	return &Searcher{
		client:    httpclient.Default(),
		userAgent: userAgent,
		baseURL:   "https://itunes.apple.com/search",
	}
}

// Search runs q against the iTunes Search API, dropping any result whose
// feedUrl is empty (podcasts the API indexes without a resolvable feed).
func (s *Searcher) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	query := u.Query()
	query.Set("term", q.Term)
	query.Set("entity", "podcast")
	query.Set("limit", fmt.Sprintf("%d", limit))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := httpclient.DoWithRetry(ctx, s.client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return nil, fmt.Errorf("itunes search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes search: unexpected status %d", resp.StatusCode)
	}

	var parsed itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("itunes search: decode response: %w", err)
	}
	out := make([]SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.FeedURL == "" {
			continue
		}
		out = append(out, SearchResult{Name: r.CollectionName, ArtistName: r.ArtistName, FeedURL: r.FeedURL})
	}
	return out, nil
}
