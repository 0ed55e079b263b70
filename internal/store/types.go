// Package store is hedgepod's persistence layer: feeds, groups, and
// episodes backed by a local SQLite database (modernc.org/sqlite, no
// cgo), plus an in-memory caching decorator in front of it.
package store

import (
	"fmt"
	"time"
)

// FeedID identifies a subscribed feed.
type FeedID uint64

// EpisodeID identifies one episode within a feed.
type EpisodeID uint64

// GroupID identifies a feed group (a folder-like grouping used for
// display and bulk operations).
type GroupID uint64

// StatusTag classifies playback progress without carrying the position
// value itself; used by commands like "mark" that only need to name a
// state.
type StatusTag int

const (
	StatusNotStarted StatusTag = iota
	StatusStarted
	StatusFinished
	StatusError
)

func (t StatusTag) String() string {
	switch t {
	case StatusNotStarted:
		return "not-started"
	case StatusStarted:
		return "started"
	case StatusFinished:
		return "finished"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// EpisodeStatus is the full playback status of an episode: a tag plus,
// for Started and Error, the position the player stopped at.
type EpisodeStatus struct {
	Tag      StatusTag
	Position time.Duration // meaningful for StatusStarted and StatusError
}

func NotStarted() EpisodeStatus { return EpisodeStatus{Tag: StatusNotStarted} }
func Finished() EpisodeStatus   { return EpisodeStatus{Tag: StatusFinished} }
func Started(pos time.Duration) EpisodeStatus {
	return EpisodeStatus{Tag: StatusStarted, Position: pos}
}
func StatusErr(pos time.Duration) EpisodeStatus {
	return EpisodeStatus{Tag: StatusError, Position: pos}
}

// FeedStatusTag tracks where a feed is in its refresh lifecycle, mirroring
// the status a freshly subscribed feed starts in before its first fetch
// completes.
type FeedStatusTag int

const (
	FeedPending FeedStatusTag = iota
	FeedLoaded
	FeedError
)

func (t FeedStatusTag) String() string {
	switch t {
	case FeedPending:
		return "pending"
	case FeedLoaded:
		return "loaded"
	case FeedError:
		return "error"
	default:
		return "unknown"
	}
}

// FeedErrorCode classifies why a feed refresh failed, for display and for
// deciding whether a retry is worth scheduling.
type FeedErrorCode int

const (
	FeedErrorUnknown FeedErrorCode = iota
	FeedErrorInvalidFeed
	// FeedErrorNotFound is unused by the refresh path: a 404 response is
	// recorded as FeedErrorHTTP like any other non-2xx status, carrying
	// its code. Kept for parity with the full FeedError union.
	FeedErrorNotFound
	// FeedErrorHTTP is any non-2xx HTTP response; HTTPStatus on the
	// enclosing FeedRefreshStatus carries the status code.
	FeedErrorHTTP
	// FeedErrorNetworking is a transport-level failure: no HTTP response
	// was ever received (DNS, TLS, connection refused, timeout).
	FeedErrorNetworking
	// FeedErrorMalformedFeed is a successful HTTP response whose body
	// didn't parse as RSS.
	FeedErrorMalformedFeed
)

func (c FeedErrorCode) String() string {
	switch c {
	case FeedErrorInvalidFeed:
		return "invalid-feed"
	case FeedErrorNotFound:
		return "not-found"
	case FeedErrorHTTP:
		return "http-error"
	case FeedErrorNetworking:
		return "networking-error"
	case FeedErrorMalformedFeed:
		return "malformed-feed"
	default:
		return "unknown"
	}
}

// FeedRefreshStatus is a feed's current place in the Pending/Loaded/Error
// lifecycle, set by the library actor as refreshes complete.
type FeedRefreshStatus struct {
	Tag        FeedStatusTag
	Error      FeedErrorCode // meaningful when Tag == FeedError
	HTTPStatus int           // meaningful when Error == FeedErrorHTTP
}

func (s FeedRefreshStatus) String() string {
	if s.Tag != FeedError {
		return s.Tag.String()
	}
	if s.Error == FeedErrorHTTP {
		return fmt.Sprintf("error(http-error(%d))", s.HTTPStatus)
	}
	return fmt.Sprintf("error(%s)", s.Error)
}

// Feed is one subscribed podcast.
type Feed struct {
	ID          FeedID
	Title       string
	Description string
	Link        string
	URL         string
	Group       *GroupID
	Enabled     bool
	// TitleOverridden is set once the user explicitly renames a feed, so a
	// later refresh's RSS-sourced title never clobbers it again.
	TitleOverridden bool
	Status          FeedRefreshStatus
	// Position controls display order; lower sorts first.
	Position int
}

// Group is a named collection of feeds, itself positioned among its
// siblings (spec supplement: explicit ordering, not insertion order).
type Group struct {
	ID       GroupID
	Name     string
	Position int
}

// Episode is one item within a feed, merged from RSS metadata and local
// playback bookkeeping.
type Episode struct {
	ID           EpisodeID
	FeedID       FeedID
	Title        string
	Description  string
	EnclosureURL string
	GUID         string
	PubDate      time.Time
	Duration     time.Duration
	EpisodeNum   *int
	SeasonNum    *int
	Status       EpisodeStatus
	// IsNew is true until the episode's status is explicitly set for the
	// first time; it does not track playback status, so marking an
	// episode back to not-started never re-inflates a feed's new count.
	IsNew  bool
	Hidden bool
}

// EpisodeSummaryStatus is the status filter EpisodesQuery accepts: New
// singles out unseen episodes independent of playback state, the rest
// mirror StatusTag.
type EpisodeSummaryStatus int

const (
	EpisodeStatusAny EpisodeSummaryStatus = iota
	EpisodeStatusNew
	EpisodeStatusStarted
	EpisodeStatusFinished
)

// EpisodesQuery selects which episodes EpisodeSummaries/EpisodesPage
// operate over. Its only pointers are the optional FeedID/ID filters; the
// cache keys it by queryKey, a pointer-free projection (see cache.go).
type EpisodesQuery struct {
	FeedID           *FeedID    // nil means "all feeds"
	ID               *EpisodeID // nil means "no single-episode filter"
	Status           EpisodeSummaryStatus
	IncludeHidden    bool
	IncludeFeedTitle bool
}

// EpisodesListMetadata describes the shape of a query's result set
// without materializing items, so the paging engine can size its
// viewport before loading any page.
type EpisodesListMetadata struct {
	TotalCount int
	NewCount   int // episodes in the query's result set with IsNew set
}
