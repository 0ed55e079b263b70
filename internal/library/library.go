// Package library is the data-access actor: the single component that
// owns the store and decides when feeds get refreshed. Everything else
// (the command pipeline, the paginated views) talks to it instead of to
// the store directly, so refresh scheduling and cache invalidation stay
// in one place.
package library

import (
	"context"
	"log"
	"sync"

	"golang.org/x/time/rate"

	"github.com/hedgepod-dev/hedgepod/internal/config"
	"github.com/hedgepod-dev/hedgepod/internal/feed"
	"github.com/hedgepod-dev/hedgepod/internal/statuslog"
	"github.com/hedgepod-dev/hedgepod/internal/store"
)

// Library wraps the store behind the read/write surface the rest of the
// program uses, and owns the background feed-refresh scheduler: a bounded
// pool of goroutines rate-limited so a large "update --all" doesn't open
// fifty sockets to fifty hosts at once.
type Library struct {
	cfg      *config.Config
	store    *store.Store
	cache    *store.Cache
	fetcher  *feed.Fetcher
	searcher *feed.Searcher
	status   *statuslog.Log

	mu            sync.Mutex
	updatingFeeds map[store.FeedID]struct{}
	listener      chan<- Notification

	sem     chan struct{}
	limiter *rate.Limiter
}

// New constructs a Library over an already-open store. cache must wrap
// store (or be store.NewCache(store) directly) so mutations below can
// invalidate it.
func New(cfg *config.Config, st *store.Store, cache *store.Cache, status *statuslog.Log) *Library {
	return &Library{
		cfg:           cfg,
		store:         st,
		cache:         cache,
		fetcher:       feed.NewFetcher(cfg.UserAgent),
		searcher:      feed.NewSearcher(cfg.UserAgent),
		status:        status,
		updatingFeeds: make(map[store.FeedID]struct{}),
		sem:           make(chan struct{}, cfg.MaxConcurrentRefreshes),
		limiter:       rate.NewLimiter(rate.Limit(cfg.RefreshRatePerSecond), 1),
	}
}

// Subscribe registers the single recipient of background notifications,
// replacing any previous one. A nil channel unsubscribes.
func (l *Library) Subscribe(ch chan<- Notification) {
	l.mu.Lock()
	l.listener = ch
	l.mu.Unlock()
}

func (l *Library) notify(n Notification) {
	l.mu.Lock()
	ch := l.listener
	l.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- n:
	default:
		log.Printf("library: dropping notification %T, subscriber not keeping up", n)
	}
}

// EpisodeSummaries returns the [offset, offset+limit) window of q's
// result set. Errors are logged and reported as an empty page rather
// than propagated, matching the read path's "the view degrades, it
// doesn't crash" contract.
func (l *Library) EpisodeSummaries(ctx context.Context, q store.EpisodesQuery, offset, limit int) []store.Episode {
	episodes, err := l.cache.EpisodesPage(ctx, q, offset, limit)
	if err != nil {
		log.Printf("library: fetch episode summaries: %v", err)
		return nil
	}
	return episodes
}

// EpisodesListMetadata reports q's total and new-episode counts.
func (l *Library) EpisodesListMetadata(ctx context.Context, q store.EpisodesQuery) store.EpisodesListMetadata {
	meta, err := l.cache.EpisodesListMetadata(ctx, q)
	if err != nil {
		log.Printf("library: fetch episodes list metadata: %v", err)
		return store.EpisodesListMetadata{}
	}
	return meta
}

// FeedSummariesResult bundles the feed and group listings, matching how
// the feed list column needs both to lay itself out.
type FeedSummariesResult struct {
	Feeds  []store.Feed
	Groups []store.Group
}

func (l *Library) FeedSummaries(ctx context.Context) FeedSummariesResult {
	feeds, err := l.cache.FeedSummaries(ctx)
	if err != nil {
		log.Printf("library: fetch feed summaries: %v", err)
	}
	groups, err := l.cache.Groups(ctx)
	if err != nil {
		log.Printf("library: fetch group summaries: %v", err)
	}
	return FeedSummariesResult{Feeds: feeds, Groups: groups}
}

// Episode returns a single episode, with ok false if it doesn't exist or
// the lookup failed.
func (l *Library) Episode(ctx context.Context, id store.EpisodeID) (store.Episode, bool) {
	ep, err := l.cache.Episode(ctx, id)
	if err != nil {
		log.Printf("library: fetch episode: %v", err)
		return store.Episode{}, false
	}
	return ep, true
}

// Feed returns a single feed, with ok false if it doesn't exist or the
// lookup failed.
func (l *Library) Feed(ctx context.Context, id store.FeedID) (store.Feed, bool) {
	f, err := l.cache.Feed(ctx, id)
	if err != nil {
		log.Printf("library: fetch feed: %v", err)
		return store.Feed{}, false
	}
	return f, true
}

// PlaybackData is what the player needs to start or resume an episode.
type PlaybackData struct {
	MediaURL string
	Status   store.EpisodeStatus
}

// EpisodePlaybackData returns the fields the player needs to start or
// resume id, with ok false if the episode doesn't exist.
func (l *Library) EpisodePlaybackData(ctx context.Context, id store.EpisodeID) (PlaybackData, bool) {
	ep, ok := l.Episode(ctx, id)
	if !ok {
		return PlaybackData{}, false
	}
	return PlaybackData{MediaURL: ep.EnclosureURL, Status: ep.Status}, true
}

// Search queries the iTunes Search API for subscribable podcasts.
func (l *Library) Search(ctx context.Context, q feed.SearchQuery) ([]feed.SearchResult, error) {
	return l.searcher.Search(ctx, q)
}
