package store

import (
	"context"
	"sync"
)

// Provider is the read surface the paging engine depends on. Store
// implements it directly; Cache wraps another Provider and memoizes its
// results.
type Provider interface {
	FeedSummaries(ctx context.Context) ([]Feed, error)
	Feed(ctx context.Context, id FeedID) (Feed, error)
	Groups(ctx context.Context) ([]Group, error)
	EpisodesListMetadata(ctx context.Context, q EpisodesQuery) (EpisodesListMetadata, error)
	EpisodesPage(ctx context.Context, q EpisodesQuery, offset, limit int) ([]Episode, error)
	Episode(ctx context.Context, id EpisodeID) (Episode, error)
}

// queryKey is the comparable projection of EpisodesQuery used to index the
// cache; EpisodesQuery itself holds a *FeedID, which would key by pointer
// identity rather than by value and defeat memoization across calls.
type queryKey struct {
	feedID           FeedID
	allFeeds         bool
	episodeID        EpisodeID
	noEpisodeFilter  bool
	status           EpisodeSummaryStatus
	includeHidden    bool
	includeFeedTitle bool
}

func keyOf(q EpisodesQuery) queryKey {
	k := queryKey{
		status:           q.Status,
		includeHidden:    q.IncludeHidden,
		includeFeedTitle: q.IncludeFeedTitle,
	}
	if q.FeedID == nil {
		k.allFeeds = true
	} else {
		k.feedID = *q.FeedID
	}
	if q.ID == nil {
		k.noEpisodeFilter = true
	} else {
		k.episodeID = *q.ID
	}
	return k
}

type pageKey struct {
	query  queryKey
	offset int
	limit  int
}

// Cache decorates a Provider with in-memory memoization of the two
// families of read queries the paging engine issues repeatedly: list
// metadata per query, and page windows per (query, range). It is
// invalidated by the mutating calls below rather than by a TTL, since
// every write that could change a cached answer goes through this type.
type Cache struct {
	inner Provider

	mu       sync.Mutex
	metadata map[queryKey]EpisodesListMetadata
	pages    map[pageKey][]Episode
}

func NewCache(inner Provider) *Cache {
	return &Cache{
		inner:    inner,
		metadata: make(map[queryKey]EpisodesListMetadata),
		pages:    make(map[pageKey][]Episode),
	}
}

func (c *Cache) FeedSummaries(ctx context.Context) ([]Feed, error) { return c.inner.FeedSummaries(ctx) }
func (c *Cache) Feed(ctx context.Context, id FeedID) (Feed, error) { return c.inner.Feed(ctx, id) }
func (c *Cache) Groups(ctx context.Context) ([]Group, error)       { return c.inner.Groups(ctx) }
func (c *Cache) Episode(ctx context.Context, id EpisodeID) (Episode, error) {
	return c.inner.Episode(ctx, id)
}

func (c *Cache) EpisodesListMetadata(ctx context.Context, q EpisodesQuery) (EpisodesListMetadata, error) {
	k := keyOf(q)
	c.mu.Lock()
	if m, ok := c.metadata[k]; ok {
		c.mu.Unlock()
		return m, nil
	}
	c.mu.Unlock()

	m, err := c.inner.EpisodesListMetadata(ctx, q)
	if err != nil {
		return EpisodesListMetadata{}, err
	}
	c.mu.Lock()
	c.metadata[k] = m
	c.mu.Unlock()
	return m, nil
}

func (c *Cache) EpisodesPage(ctx context.Context, q EpisodesQuery, offset, limit int) ([]Episode, error) {
	key := pageKey{query: keyOf(q), offset: offset, limit: limit}
	c.mu.Lock()
	if p, ok := c.pages[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := c.inner.EpisodesPage(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.pages[key] = p
	c.mu.Unlock()
	return p, nil
}

// InvalidateFeed drops every cached entry for feed and for the
// all-feeds (FeedID == nil) query, since an unfiltered listing's
// contents depend on every feed's episodes.
func (c *Cache) InvalidateFeed(feed FeedID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.metadata {
		if k.allFeeds || k.feedID == feed {
			delete(c.metadata, k)
		}
	}
	for k := range c.pages {
		if k.query.allFeeds || k.query.feedID == feed {
			delete(c.pages, k)
		}
	}
}

// InvalidateAll drops every cached entry. Used when a mutation (like
// set_episode_hidden) can affect any query regardless of feed filter.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata = make(map[queryKey]EpisodesListMetadata)
	c.pages = make(map[pageKey][]Episode)
}
