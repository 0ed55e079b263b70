package library

import "github.com/hedgepod-dev/hedgepod/internal/store"

// Notification is pushed to a subscriber as the library's state changes in
// the background (a feed refresh finishing, a new subscription landing),
// events the UI wouldn't otherwise see since it only calls into the
// library synchronously.
type Notification interface{ isNotification() }

// UpdateStarted names the feeds a refresh sweep has just begun fetching.
type UpdateStarted struct{ FeedIDs []store.FeedID }

func (UpdateStarted) isNotification() {}

// UpdateResultKind distinguishes why an UpdateFinished notification fired.
type UpdateResultKind int

const (
	// FeedRefreshed means the fetch succeeded and feed_summary reflects
	// the new episode/title state.
	FeedRefreshed UpdateResultKind = iota
	// FeedStatusChanged means the fetch failed; only the feed's
	// FeedRefreshStatus changed.
	FeedStatusChanged
)

// UpdateFinished reports the outcome of one feed's refresh.
type UpdateFinished struct {
	FeedID store.FeedID
	Kind   UpdateResultKind
	Feed   store.Feed // populated for both kinds; Status always current
}

func (UpdateFinished) isNotification() {}

// FeedAdded fires as soon as a new subscription is created, before its
// first refresh completes, so the feed list can show it immediately.
type FeedAdded struct{ Feed store.Feed }

func (FeedAdded) isNotification() {}

// FeedDeleted fires after a feed and its episodes are removed.
type FeedDeleted struct{ FeedID store.FeedID }

func (FeedDeleted) isNotification() {}

// GroupAdded fires after a new group is created.
type GroupAdded struct{ Group store.Group }

func (GroupAdded) isNotification() {}

// NewCountUpdated reports feeds whose unseen-episode count changed,
// keyed by feed id, after a status mutation (e.g. "mark --all").
type NewCountUpdated struct{ Counts map[store.FeedID]int }

func (NewCountUpdated) isNotification() {}
