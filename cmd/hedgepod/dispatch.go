package main

import (
	"context"
	"fmt"

	"github.com/hedgepod-dev/hedgepod/internal/cmdparser"
	"github.com/hedgepod-dev/hedgepod/internal/feed"
	"github.com/hedgepod-dev/hedgepod/internal/history"
	"github.com/hedgepod-dev/hedgepod/internal/library"
	"github.com/hedgepod-dev/hedgepod/internal/statuslog"
	"github.com/hedgepod-dev/hedgepod/internal/store"
)

// session carries the state a dispatched command needs beyond the
// library itself: the most recent search results, since search-add
// names one of them by index rather than by value.
type session struct {
	lib        *library.Library
	hist       *history.History
	status     *statuslog.Log
	lastSearch []feed.SearchResult
	quit       bool
}

// dispatch applies one parsed command. Commands that act on viewport,
// keymap, or player state (scroll, playback, volume, map/unmap, theme,
// focus, and the others caught by default below) need the full terminal
// UI's selection and focus tracking, which this entry point doesn't
// build — it wires the library and leaves rendering to a future UI
// layer. Everything library-backed is handled here.
func (sess *session) dispatch(ctx context.Context, cmd cmdparser.Command) {
	switch c := cmd.(type) {
	case cmdparser.QuitCommand:
		sess.quit = true

	case cmdparser.AddCommand:
		if err := sess.lib.AddFeed(ctx, c.Source, nil); err != nil {
			sess.status.Report(statuslog.TargetFeedUpdate, statuslog.Error, "add %s: %v", c.Source, err)
		}

	case cmdparser.AddGroupCommand:
		if err := sess.lib.AddGroup(ctx, c.Name); err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "add-group %s: %v", c.Name, err)
		}

	case cmdparser.SetGroupCommand:
		gid, ok := sess.resolveGroup(ctx, c.Group)
		if !ok {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "unknown group %q", c.Group)
			return
		}
		if err := sess.lib.SetGroup(ctx, store.FeedID(c.Feed), &gid); err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "set-group: %v", err)
		}

	case cmdparser.UnsetGroupCommand:
		if err := sess.lib.SetGroup(ctx, store.FeedID(c.Feed), nil); err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "unset-group: %v", err)
		}

	case cmdparser.PlaceGroupCommand:
		gid, ok := sess.resolveGroup(ctx, c.Group)
		if !ok {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "unknown group %q", c.Group)
			return
		}
		if err := sess.lib.SetGroupPosition(ctx, gid, c.Position); err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "place-group: %v", err)
		}

	case cmdparser.RenameCommand:
		// Needs the currently focused feed or group, which only exists
		// once a list viewport is wired up.

	case cmdparser.DeleteCommand:
		// Same: needs the currently selected feed or group.

	case cmdparser.ReverseCommand:
		// Same: needs the currently selected feed or group.

	case cmdparser.UpdateCommand:
		if c.This {
			return // needs the currently selected feed
		}
		sess.lib.Update(ctx, library.UpdateQuery{Kind: library.UpdateAll})

	case cmdparser.RefreshCommand:
		sess.lib.Update(ctx, library.UpdateQuery{Kind: library.UpdatePending})

	case cmdparser.AddArchiveCommand:
		// Needs the currently selected feed to know which feed the
		// archive's episodes merge into.

	case cmdparser.MarkCommand:
		status := markStatus(c.Status)
		var cond *store.StatusTag
		if c.Condition != nil {
			tag := markStatusTag(*c.Condition)
			cond = &tag
		}
		if !c.UpdateAll {
			return // without --all this marks only the selected episode
		}
		if err := sess.lib.SetStatusForFeed(ctx, nil, status, cond); err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "mark --all: %v", err)
		}

	case cmdparser.HideCommand:
		// Needs the currently selected episode.
	case cmdparser.UnhideCommand:
		// Needs the currently selected episode.

	case cmdparser.SetFeedEnabledCommand:
		if c.FeedID == nil {
			return // needs the currently selected feed
		}
		if err := sess.lib.SetFeedEnabled(ctx, store.FeedID(*c.FeedID), c.Enabled); err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "set-feed-enabled: %v", err)
		}

	case cmdparser.SearchCommand:
		results, err := sess.lib.Search(ctx, feed.SearchQuery{Term: c.Terms})
		if err != nil {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "search: %v", err)
			return
		}
		sess.lastSearch = results
		for i, r := range results {
			fmt.Printf("%3d  %-40s  %s\n", i, r.Name, r.FeedURL)
		}

	case cmdparser.SearchAddCommand:
		if int(c.Index) >= len(sess.lastSearch) {
			sess.status.Report(statuslog.TargetGeneral, statuslog.Error, "search-add %d: out of range", c.Index)
			return
		}
		r := sess.lastSearch[c.Index]
		if err := sess.lib.AddFeed(ctx, r.FeedURL, nil); err != nil {
			sess.status.Report(statuslog.TargetFeedUpdate, statuslog.Error, "search-add: %v", err)
		}

	case cmdparser.MsgCommand:
		fmt.Println(c.Text)

	case cmdparser.ChainCommand:
		for _, inner := range c.Commands {
			sess.dispatch(ctx, inner)
			if sess.quit {
				return
			}
		}

	case cmdparser.IfCommand:
		// Needs the currently selected episode's status to evaluate the
		// condition.

	default:
		// scroll, map, unmap, theme, focus, playback, volume,
		// play-current, confirm, exec, log, set, open-link,
		// repeat-command, finish: viewport/keymap/player state that
		// only exists once the terminal UI is wired up.
	}
}

func (sess *session) resolveGroup(ctx context.Context, name string) (store.GroupID, bool) {
	for _, g := range sess.lib.FeedSummaries(ctx).Groups {
		if g.Name == name {
			return g.ID, true
		}
	}
	return 0, false
}

func markStatus(s cmdparser.MarkStatus) store.EpisodeStatus {
	switch s {
	case cmdparser.MarkFinished:
		return store.Finished()
	case cmdparser.MarkStarted:
		return store.Started(0)
	case cmdparser.MarkError:
		return store.StatusErr(0)
	default:
		return store.NotStarted()
	}
}

func markStatusTag(s cmdparser.MarkStatus) store.StatusTag {
	switch s {
	case cmdparser.MarkStarted:
		return store.StatusStarted
	case cmdparser.MarkFinished:
		return store.StatusFinished
	case cmdparser.MarkError:
		return store.StatusError
	default:
		return store.StatusNotStarted
	}
}
