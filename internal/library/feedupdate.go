package library

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hedgepod-dev/hedgepod/internal/feed"
	"github.com/hedgepod-dev/hedgepod/internal/safeurl"
	"github.com/hedgepod-dev/hedgepod/internal/statuslog"
	"github.com/hedgepod-dev/hedgepod/internal/store"
)

// UpdateQueryKind selects which feeds an Update call targets.
type UpdateQueryKind int

const (
	UpdateSingle UpdateQueryKind = iota
	UpdateAll
	UpdatePending
)

// UpdateQuery names the feed(s) a refresh sweep should cover.
type UpdateQuery struct {
	Kind   UpdateQueryKind
	FeedID store.FeedID // meaningful when Kind == UpdateSingle
}

type updateSource struct {
	id     store.FeedID
	source string
}

// Update schedules a refresh for the feed(s) named by q. Feeds already
// mid-refresh are silently skipped rather than queued again.
func (l *Library) Update(ctx context.Context, q UpdateQuery) {
	feeds, err := l.store.FeedSummaries(ctx)
	if err != nil {
		log.Printf("library: update: list feeds: %v", err)
		return
	}
	var sources []updateSource
	for _, f := range feeds {
		if !f.Enabled {
			continue
		}
		switch q.Kind {
		case UpdateSingle:
			if f.ID != q.FeedID {
				continue
			}
		case UpdatePending:
			if f.Status.Tag != store.FeedPending {
				continue
			}
		case UpdateAll:
		}
		sources = append(sources, updateSource{id: f.ID, source: f.URL})
	}
	l.scheduleUpdate(sources)
}

// AddArchive schedules a refresh of feed against an alternate URL (an
// archive mirror of episodes the live feed has since pruned), merging
// whatever it yields into the same feed without touching the feed's
// subscribed source URL.
func (l *Library) AddArchive(_ context.Context, id store.FeedID, archiveURL string) {
	if !safeurl.IsHTTPOrHTTPS(archiveURL) {
		log.Printf("library: add archive: rejecting non-http(s) URL %q", archiveURL)
		return
	}
	l.scheduleUpdate([]updateSource{{id: id, source: archiveURL}})
}

// AddFeed subscribes to source, rejecting a source already subscribed.
// The new feed is created in Pending status and notified immediately;
// its first refresh is scheduled right away. A source that isn't a
// plain http(s) URL is rejected outright: the command pipeline accepts
// arbitrary user-supplied strings here, and
// without this a "feed" URL could point at file:// or an internal
// address the refresh cycle would then dutifully fetch.
func (l *Library) AddFeed(ctx context.Context, source string, group *store.GroupID) error {
	if !safeurl.IsHTTPOrHTTPS(source) {
		return fmt.Errorf("add feed: %q is not an http(s) URL", source)
	}
	if _, exists, err := l.store.FeedIDByURL(ctx, source); err != nil {
		return err
	} else if exists {
		log.Printf("library: add feed: %q is already subscribed", source)
		return nil
	}

	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	id, err := w.AddFeed(ctx, source, source, group)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()

	if f, ok := l.Feed(ctx, id); ok {
		l.notify(FeedAdded{Feed: f})
	}
	l.scheduleUpdate([]updateSource{{id: id, source: source}})
	return nil
}

// AddGroup creates a new named group, rejecting a duplicate name.
func (l *Library) AddGroup(ctx context.Context, name string) error {
	groups, err := l.store.Groups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.Name == name {
			log.Printf("library: add group: %q already exists", name)
			return nil
		}
	}
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	id, err := w.AddGroup(ctx, name)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	l.notify(GroupAdded{Group: store.Group{ID: id, Name: name}})
	return nil
}

// DeleteFeed removes a feed and its episodes.
func (l *Library) DeleteFeed(ctx context.Context, id store.FeedID) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.DeleteFeed(ctx, id); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	l.notify(FeedDeleted{FeedID: id})
	return nil
}

// DeleteGroup removes a group; its feeds become ungrouped.
func (l *Library) DeleteGroup(ctx context.Context, id store.GroupID) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.DeleteGroup(ctx, id); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	return nil
}

// RenameFeed overrides a feed's display title.
func (l *Library) RenameFeed(ctx context.Context, id store.FeedID, title string) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.RenameFeed(ctx, id, title); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	return nil
}

// RenameGroup changes a group's display name.
func (l *Library) RenameGroup(ctx context.Context, id store.GroupID, name string) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.RenameGroup(ctx, id, name); err != nil {
		w.Close()
		return err
	}
	return w.Commit()
}

// SetGroupPosition moves a group to an explicit slot in display order,
// for the "place-group" command.
func (l *Library) SetGroupPosition(ctx context.Context, id store.GroupID, position int) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.SetGroupPosition(ctx, id, position); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	return nil
}

// SetGroup assigns feed to group, or clears its group when group is nil.
func (l *Library) SetGroup(ctx context.Context, feedID store.FeedID, group *store.GroupID) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.SetGroup(ctx, feedID, group); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	return nil
}

// SetFeedEnabled toggles whether a feed participates in refresh sweeps.
func (l *Library) SetFeedEnabled(ctx context.Context, id store.FeedID, enabled bool) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.SetFeedEnabled(ctx, id, enabled); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	return nil
}

// ReverseFeedOrder flips the display order of every feed sharing id's
// group (or every ungrouped feed, if id itself is ungrouped).
func (l *Library) ReverseFeedOrder(ctx context.Context, id store.FeedID) error {
	f, err := l.store.Feed(ctx, id)
	if err != nil {
		return err
	}
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.ReverseFeedOrder(ctx, f.Group); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll()
	return nil
}

// SetStatus marks a single episode's playback status and reports the
// owning feed's updated unseen-episode count.
func (l *Library) SetStatus(ctx context.Context, id store.EpisodeID, status store.EpisodeStatus) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	feedID, err := w.SetStatus(ctx, id, status)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateFeed(feedID)
	meta, _ := l.cache.EpisodesListMetadata(ctx, store.EpisodesQuery{FeedID: &feedID})
	l.notify(NewCountUpdated{Counts: map[store.FeedID]int{feedID: meta.NewCount}})
	return nil
}

// SetStatusForFeed marks every episode of feed (all feeds, if nil) to
// newStatus, optionally restricted to episodes currently at ifStatus —
// the bulk form behind "mark --all [--if <status>]".
func (l *Library) SetStatusForFeed(ctx context.Context, feedID *store.FeedID, newStatus store.EpisodeStatus, ifStatus *store.StatusTag) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.SetStatusByFeed(ctx, feedID, newStatus, ifStatus); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}

	counts := make(map[store.FeedID]int)
	if feedID != nil {
		l.cache.InvalidateFeed(*feedID)
		meta, _ := l.cache.EpisodesListMetadata(ctx, store.EpisodesQuery{FeedID: feedID})
		counts[*feedID] = meta.NewCount
	} else {
		l.cache.InvalidateAll()
		feeds, _ := l.store.FeedSummaries(ctx)
		for _, f := range feeds {
			fid := f.ID
			meta, _ := l.cache.EpisodesListMetadata(ctx, store.EpisodesQuery{FeedID: &fid})
			counts[fid] = meta.NewCount
		}
	}
	l.notify(NewCountUpdated{Counts: counts})
	return nil
}

// SetHidden marks an episode hidden or visible.
func (l *Library) SetHidden(ctx context.Context, id store.EpisodeID, hidden bool) error {
	w, err := l.store.Writer(ctx)
	if err != nil {
		return err
	}
	if err := w.SetHidden(ctx, id, hidden); err != nil {
		w.Close()
		return err
	}
	if err := w.Commit(); err != nil {
		return err
	}
	l.cache.InvalidateAll() // hidden affects every IncludeHidden=false query, not just one feed
	return nil
}

// scheduleUpdate dedups sources against feeds already mid-refresh, marks
// the rest as in flight, and spawns one goroutine per feed bounded by the
// shared semaphore and rate limiter.
func (l *Library) scheduleUpdate(sources []updateSource) {
	l.mu.Lock()
	var fresh []updateSource
	for _, s := range sources {
		if _, busy := l.updatingFeeds[s.id]; busy {
			continue
		}
		l.updatingFeeds[s.id] = struct{}{}
		fresh = append(fresh, s)
	}
	l.mu.Unlock()
	if len(fresh) == 0 {
		return
	}

	ids := make([]store.FeedID, len(fresh))
	for i, s := range fresh {
		ids[i] = s.id
	}
	statuslog.RefreshesInFlight().Add(float64(len(fresh)))
	l.notify(UpdateStarted{FeedIDs: ids})

	for _, s := range fresh {
		go l.runRefresh(s)
	}
}

// runRefresh fetches and applies one feed's refresh. It runs detached
// from any request context: once scheduled, a refresh completes (or
// times out on its own FetchTimeout) regardless of what triggered it.
func (l *Library) runRefresh(s updateSource) {
	defer func() {
		l.mu.Lock()
		delete(l.updatingFeeds, s.id)
		l.mu.Unlock()
		statuslog.RefreshesInFlight().Add(-1)
	}()

	if err := l.limiter.Wait(context.Background()); err != nil {
		return
	}
	l.sem <- struct{}{}
	defer func() { <-l.sem }()

	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.FetchTimeout)
	defer cancel()

	parsed, err := l.fetcher.Fetch(ctx, s.source)
	if err != nil {
		l.recordFailure(s.id, err)
		return
	}
	l.recordSuccess(s.id, parsed)
}

func (l *Library) recordFailure(id store.FeedID, fetchErr error) {
	log.Printf("library: refresh feed %d: %v", id, fetchErr)
	status := translateFetchError(fetchErr)

	ctx := context.Background()
	w, err := l.store.Writer(ctx)
	if err != nil {
		log.Printf("library: open writer: %v", err)
		return
	}
	if err := w.SetFeedStatus(ctx, id, status); err != nil {
		log.Printf("library: set feed status: %v", err)
		w.Close()
		return
	}
	if err := w.Commit(); err != nil {
		log.Printf("library: commit feed status: %v", err)
		return
	}
	l.cache.InvalidateFeed(id)
	l.status.Report(statuslog.TargetFeedUpdate, statuslog.Error, "feed update failed: %v", fetchErr)

	if f, ok := l.Feed(ctx, id); ok {
		l.notify(UpdateFinished{FeedID: id, Kind: FeedStatusChanged, Feed: f})
	}
}

// translateFetchError maps a Fetcher failure onto the store's FeedError
// union: a non-2xx response carries its status code, a transport failure
// becomes NetworkingError, and a parse failure becomes MalformedFeed.
// An error that is not a *feed.FetchError falls back to Unknown.
func translateFetchError(err error) store.FeedRefreshStatus {
	var fetchErr *feed.FetchError
	if !errors.As(err, &fetchErr) {
		return store.FeedRefreshStatus{Tag: store.FeedError, Error: store.FeedErrorUnknown}
	}
	switch fetchErr.Kind {
	case feed.FetchErrorStatus:
		return store.FeedRefreshStatus{Tag: store.FeedError, Error: store.FeedErrorHTTP, HTTPStatus: fetchErr.StatusCode}
	case feed.FetchErrorNetworking:
		return store.FeedRefreshStatus{Tag: store.FeedError, Error: store.FeedErrorNetworking}
	case feed.FetchErrorMalformed:
		return store.FeedRefreshStatus{Tag: store.FeedError, Error: store.FeedErrorMalformedFeed}
	default:
		return store.FeedRefreshStatus{Tag: store.FeedError, Error: store.FeedErrorUnknown}
	}
}

func (l *Library) recordSuccess(id store.FeedID, parsed feed.Parsed) {
	ctx := context.Background()
	w, err := l.store.Writer(ctx)
	if err != nil {
		log.Printf("library: open writer: %v", err)
		return
	}
	if err := w.SetFeedMetadata(ctx, id, parsed.Title, parsed.Description, parsed.Link); err != nil {
		log.Printf("library: set feed metadata: %v", err)
		w.Close()
		return
	}
	for _, ep := range parsed.Episodes {
		if ep.Blocked {
			if err := w.DeleteEpisodeByGUID(ctx, id, ep.GUID); err != nil {
				log.Printf("library: delete blocked episode %s: %v", ep.GUID, err)
				w.Close()
				return
			}
			continue
		}
		storeEp := store.Episode{
			FeedID:       id,
			GUID:         ep.GUID,
			Title:        ep.Title,
			Description:  ep.Description,
			EnclosureURL: ep.EnclosureURL,
			PubDate:      ep.PubDate,
			Duration:     ep.Duration,
			EpisodeNum:   ep.EpisodeNum,
			SeasonNum:    ep.SeasonNum,
		}
		if _, err := w.UpsertEpisode(ctx, storeEp); err != nil {
			log.Printf("library: upsert episode %s: %v", ep.GUID, err)
			w.Close()
			return
		}
	}
	if err := w.SetFeedStatus(ctx, id, store.FeedRefreshStatus{Tag: store.FeedLoaded}); err != nil {
		log.Printf("library: set feed status: %v", err)
		w.Close()
		return
	}
	if err := w.Commit(); err != nil {
		log.Printf("library: commit refresh: %v", err)
		return
	}
	l.cache.InvalidateFeed(id)
	l.status.Clear(statuslog.TargetFeedUpdate)

	if f, ok := l.Feed(ctx, id); ok {
		l.notify(UpdateFinished{FeedID: id, Kind: FeedRefreshed, Feed: f})
	}
}
