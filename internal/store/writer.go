package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriterSession wraps one transaction against the store. Mutations made
// through it are invisible to readers until Commit; calling Close without
// a prior Commit rolls the transaction back, mirroring a scope-exit
// rollback in languages with destructors.
type WriterSession struct {
	tx        *sql.Tx
	committed bool
}

// Writer begins a new WriterSession. The caller must call Commit or
// Close (or both — Close after Commit is a harmless no-op).
func (s *Store) Writer(ctx context.Context) (*WriterSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &WriterSession{tx: tx}, nil
}

func (w *WriterSession) Commit() error {
	if w.committed {
		return nil
	}
	w.committed = true
	return w.tx.Commit()
}

func (w *WriterSession) Close() error {
	if w.committed {
		return nil
	}
	return w.tx.Rollback()
}

// AddGroup inserts a new group at the end of the display order.
func (w *WriterSession) AddGroup(ctx context.Context, name string) (GroupID, error) {
	var maxPos sql.NullInt64
	if err := w.tx.QueryRowContext(ctx, `SELECT MAX(position) FROM groups`).Scan(&maxPos); err != nil {
		return 0, err
	}
	res, err := w.tx.ExecContext(ctx, `INSERT INTO groups (name, position) VALUES (?, ?)`, name, maxPos.Int64+1)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return GroupID(id), err
}

// DeleteGroup removes a group; feeds in it become ungrouped (ON DELETE
// SET NULL on feeds.group_id).
func (w *WriterSession) DeleteGroup(ctx context.Context, id GroupID) error {
	_, err := w.tx.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	return err
}

// RenameGroup changes a group's display name.
func (w *WriterSession) RenameGroup(ctx context.Context, id GroupID, name string) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE groups SET name = ? WHERE id = ?`, name, id)
	return err
}

// SetGroupPosition moves a group to an explicit slot in the display
// order (spec supplement: group ordering is an explicit field, not
// insertion order).
func (w *WriterSession) SetGroupPosition(ctx context.Context, id GroupID, position int) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE groups SET position = ? WHERE id = ?`, position, id)
	return err
}

// AddFeed inserts a new feed subscription at the end of its group's
// display order (or the ungrouped order, when group is nil).
func (w *WriterSession) AddFeed(ctx context.Context, title, url string, group *GroupID) (FeedID, error) {
	var maxPos sql.NullInt64
	if group != nil {
		err := w.tx.QueryRowContext(ctx, `SELECT MAX(position) FROM feeds WHERE group_id = ?`, *group).Scan(&maxPos)
		if err != nil {
			return 0, err
		}
	} else {
		err := w.tx.QueryRowContext(ctx, `SELECT MAX(position) FROM feeds WHERE group_id IS NULL`).Scan(&maxPos)
		if err != nil {
			return 0, err
		}
	}
	res, err := w.tx.ExecContext(ctx, `INSERT INTO feeds (title, url, group_id, enabled, position) VALUES (?, ?, ?, 1, ?)`,
		title, url, nullableGroupID(group), maxPos.Int64+1)
	// title_overridden, refresh_status, and refresh_error all keep their
	// table defaults (0): a newly added feed is pending its first refresh
	// and its title is free to be replaced by whatever the feed itself
	// advertises.
	if err != nil {
		return 0, fmt.Errorf("add feed: %w", err)
	}
	id, err := res.LastInsertId()
	return FeedID(id), err
}

// DeleteFeed removes a feed and, via ON DELETE CASCADE, its episodes.
func (w *WriterSession) DeleteFeed(ctx context.Context, id FeedID) error {
	_, err := w.tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
	return err
}

// RenameFeed overrides a feed's display title (distinct from whatever
// title its RSS channel advertises), and marks it overridden so a later
// refresh never replaces it.
func (w *WriterSession) RenameFeed(ctx context.Context, id FeedID, title string) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE feeds SET title = ?, title_overridden = 1 WHERE id = ?`, title, id)
	return err
}

// SetFeedMetadata applies a refresh's channel-level fields. The title is
// only applied when the feed hasn't been explicitly renamed, matching
// RenameFeed's override flag.
func (w *WriterSession) SetFeedMetadata(ctx context.Context, id FeedID, title, description, link string) error {
	_, err := w.tx.ExecContext(ctx, `
		UPDATE feeds SET
			title = CASE WHEN title_overridden = 0 THEN ? ELSE title END,
			description = ?,
			link = ?
		WHERE id = ?`, title, description, link, id)
	return err
}

// SetFeedStatus records a feed's place in the Pending/Loaded/Error
// lifecycle, called by the library actor after each refresh attempt.
func (w *WriterSession) SetFeedStatus(ctx context.Context, id FeedID, status FeedRefreshStatus) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE feeds SET refresh_status = ?, refresh_error = ?, refresh_http_status = ? WHERE id = ?`,
		int(status.Tag), int(status.Error), status.HTTPStatus, id)
	return err
}

// SetGroup assigns feed to group (or clears it, when group is nil).
func (w *WriterSession) SetGroup(ctx context.Context, feed FeedID, group *GroupID) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE feeds SET group_id = ? WHERE id = ?`, nullableGroupID(group), feed)
	return err
}

// SetFeedEnabled toggles whether a feed participates in refresh.
func (w *WriterSession) SetFeedEnabled(ctx context.Context, id FeedID, enabled bool) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE feeds SET enabled = ? WHERE id = ?`, enabled, id)
	return err
}

// ReverseFeedOrder flips the display order of every feed in the given
// group (nil for the ungrouped feeds).
func (w *WriterSession) ReverseFeedOrder(ctx context.Context, group *GroupID) error {
	rows, err := w.tx.QueryContext(ctx, feedOrderQuery(group), feedOrderArgs(group)...)
	if err != nil {
		return err
	}
	var ids []FeedID
	for rows.Next() {
		var id FeedID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for i, id := range ids {
		pos := len(ids) - 1 - i
		if _, err := w.tx.ExecContext(ctx, `UPDATE feeds SET position = ? WHERE id = ?`, pos, id); err != nil {
			return err
		}
	}
	return nil
}

func feedOrderQuery(group *GroupID) string {
	if group != nil {
		return `SELECT id FROM feeds WHERE group_id = ? ORDER BY position`
	}
	return `SELECT id FROM feeds WHERE group_id IS NULL ORDER BY position`
}

func feedOrderArgs(group *GroupID) []any {
	if group != nil {
		return []any{*group}
	}
	return nil
}

// UpsertEpisode inserts a new episode or, when one with the same GUID
// already exists in the feed, leaves its local status/hidden state
// untouched and updates only the RSS-sourced fields. Returns whether a
// new row was inserted.
func (w *WriterSession) UpsertEpisode(ctx context.Context, ep Episode) (inserted bool, err error) {
	var existed int
	if err := w.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes WHERE feed_id = ? AND guid = ?`, ep.FeedID, ep.GUID).Scan(&existed); err != nil {
		return false, err
	}
	_, err = w.tx.ExecContext(ctx, `
		INSERT INTO episodes (feed_id, guid, title, description, enclosure_url, pub_date, duration_ms, episode_num, season_num)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feed_id, guid) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			enclosure_url = excluded.enclosure_url,
			pub_date = excluded.pub_date,
			duration_ms = excluded.duration_ms,
			episode_num = excluded.episode_num,
			season_num = excluded.season_num`,
		ep.FeedID, ep.GUID, ep.Title, ep.Description, ep.EnclosureURL,
		ep.PubDate.Unix(), ep.Duration.Milliseconds(), ep.EpisodeNum, ep.SeasonNum)
	if err != nil {
		return false, err
	}
	return existed == 0, nil
}

// SetStatus marks one episode's playback status, returning the id of the
// feed it belongs to (so the caller can invalidate that feed's cache
// entries). Explicitly setting a status clears is_new unconditionally —
// including when the new status is NotStarted — so re-marking an
// episode back to not-started never re-inflates its feed's new count.
func (w *WriterSession) SetStatus(ctx context.Context, id EpisodeID, status EpisodeStatus) (FeedID, error) {
	var feedID FeedID
	if err := w.tx.QueryRowContext(ctx, `SELECT feed_id FROM episodes WHERE id = ?`, id).Scan(&feedID); err != nil {
		return 0, err
	}
	_, err := w.tx.ExecContext(ctx, `UPDATE episodes SET status_tag = ?, status_position_ms = ?, is_new = 0 WHERE id = ?`,
		int(status.Tag), status.Position.Milliseconds(), id)
	return feedID, err
}

// SetStatusByFeed marks every episode in feed (every episode of every
// feed when feed is nil), optionally restricted to episodes currently
// at ifStatus, to newStatus, implementing the
// "mark --all [--if <status>]" command. Like SetStatus, it clears
// is_new on every row it touches.
func (w *WriterSession) SetStatusByFeed(ctx context.Context, feed *FeedID, newStatus EpisodeStatus, ifStatus *StatusTag) error {
	query := `UPDATE episodes SET status_tag = ?, status_position_ms = ?, is_new = 0 WHERE 1=1`
	args := []any{int(newStatus.Tag), newStatus.Position.Milliseconds()}
	if feed != nil {
		query += ` AND feed_id = ?`
		args = append(args, *feed)
	}
	if ifStatus != nil {
		query += ` AND status_tag = ?`
		args = append(args, int(*ifStatus))
	}
	_, err := w.tx.ExecContext(ctx, query, args...)
	return err
}

// SetHidden marks an episode hidden or visible.
func (w *WriterSession) SetHidden(ctx context.Context, id EpisodeID, hidden bool) error {
	_, err := w.tx.ExecContext(ctx, `UPDATE episodes SET hidden = ? WHERE id = ?`, hidden, id)
	return err
}

// DeleteEpisodeByGUID removes one episode within feed by its GUID. A
// refresh calls this when the feed marks an item itunes:block="yes" —
// the item should disappear, not linger with stale metadata.
func (w *WriterSession) DeleteEpisodeByGUID(ctx context.Context, feed FeedID, guid string) error {
	_, err := w.tx.ExecContext(ctx, `DELETE FROM episodes WHERE feed_id = ? AND guid = ?`, feed, guid)
	return err
}

func nullableGroupID(g *GroupID) any {
	if g == nil {
		return nil
	}
	return *g
}
