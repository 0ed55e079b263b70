package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FeedSummaries returns every feed, ordered by (group position, feed
// position), the order the feed list column displays them in.
func (s *Store) FeedSummaries(ctx context.Context) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.title, f.description, f.link, f.url, f.group_id, f.enabled,
		       f.title_overridden, f.refresh_status, f.refresh_error, f.refresh_http_status, f.position
		FROM feeds f
		LEFT JOIN groups g ON g.id = f.group_id
		ORDER BY COALESCE(g.position, -1), f.position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Feed returns a single feed by id.
func (s *Store) Feed(ctx context.Context, id FeedID) (Feed, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, link, url, group_id, enabled,
		       title_overridden, refresh_status, refresh_error, refresh_http_status, position
		FROM feeds WHERE id = ?`, id)
	return scanFeed(row)
}

func scanFeed(row scanner) (Feed, error) {
	var f Feed
	var groupID sql.NullInt64
	var refreshStatus, refreshError, refreshHTTPStatus int
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Link, &f.URL, &groupID, &f.Enabled,
		&f.TitleOverridden, &refreshStatus, &refreshError, &refreshHTTPStatus, &f.Position); err != nil {
		return Feed{}, err
	}
	if groupID.Valid {
		gid := GroupID(groupID.Int64)
		f.Group = &gid
	}
	f.Status = FeedRefreshStatus{
		Tag:        FeedStatusTag(refreshStatus),
		Error:      FeedErrorCode(refreshError),
		HTTPStatus: refreshHTTPStatus,
	}
	return f, nil
}

// FeedIDByURL looks up a feed by its subscribed URL, used to reject a
// duplicate "add" of a feed that's already subscribed.
func (s *Store) FeedIDByURL(ctx context.Context, url string) (FeedID, bool, error) {
	var id FeedID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM feeds WHERE url = ?`, url).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Groups returns every group ordered by Position.
func (s *Store) Groups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, position FROM groups ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Position); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// EpisodesListMetadata reports the count and new-count for q without
// loading any episode rows, so the paging engine can size a viewport.
func (s *Store) EpisodesListMetadata(ctx context.Context, q EpisodesQuery) (EpisodesListMetadata, error) {
	where, args := episodesWhere(q)
	var meta EpisodesListMetadata
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes e `+where, args...)
	if err := row.Scan(&meta.TotalCount); err != nil {
		return EpisodesListMetadata{}, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes e `+where+andClause(where)+` e.is_new = 1`, args...)
	if err := row.Scan(&meta.NewCount); err != nil {
		return EpisodesListMetadata{}, err
	}
	return meta, nil
}

// EpisodesPage loads the [offset, offset+limit) window of q's result set,
// ordered by publish date descending (newest first), matching the order
// the episode list column displays.
func (s *Store) EpisodesPage(ctx context.Context, q EpisodesQuery, offset, limit int) ([]Episode, error) {
	where, args := episodesWhere(q)
	query := fmt.Sprintf(`
		SELECT e.id, e.feed_id, e.title, e.description, e.enclosure_url, e.guid,
		       e.pub_date, e.duration_ms, e.episode_num, e.season_num,
		       e.status_tag, e.status_position_ms, e.is_new, e.hidden
		FROM episodes e %s
		ORDER BY e.pub_date DESC, e.id DESC
		LIMIT ? OFFSET ?`, where)
	args = append(append([]any{}, args...), limit, offset)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

// Episode returns a single episode by id.
func (s *Store) Episode(ctx context.Context, id EpisodeID) (Episode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, feed_id, title, description, enclosure_url, guid,
		       pub_date, duration_ms, episode_num, season_num,
		       status_tag, status_position_ms, is_new, hidden
		FROM episodes WHERE id = ?`, id)
	return scanEpisode(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (Episode, error) {
	var ep Episode
	var pubDateUnix, durationMs, posMs int64
	var episodeNum, seasonNum sql.NullInt64
	var statusTag int
	if err := row.Scan(&ep.ID, &ep.FeedID, &ep.Title, &ep.Description, &ep.EnclosureURL, &ep.GUID,
		&pubDateUnix, &durationMs, &episodeNum, &seasonNum,
		&statusTag, &posMs, &ep.IsNew, &ep.Hidden); err != nil {
		return Episode{}, err
	}
	ep.PubDate = time.Unix(pubDateUnix, 0).UTC()
	ep.Duration = time.Duration(durationMs) * time.Millisecond
	if episodeNum.Valid {
		n := int(episodeNum.Int64)
		ep.EpisodeNum = &n
	}
	if seasonNum.Valid {
		n := int(seasonNum.Int64)
		ep.SeasonNum = &n
	}
	ep.Status = EpisodeStatus{Tag: StatusTag(statusTag), Position: time.Duration(posMs) * time.Millisecond}
	return ep, nil
}

func episodesWhere(q EpisodesQuery) (string, []any) {
	var conds []string
	var args []any
	if q.FeedID != nil {
		conds = append(conds, "e.feed_id = ?")
		args = append(args, *q.FeedID)
	}
	if q.ID != nil {
		conds = append(conds, "e.id = ?")
		args = append(args, *q.ID)
	}
	switch q.Status {
	case EpisodeStatusNew:
		conds = append(conds, "e.is_new = 1")
	case EpisodeStatusStarted:
		conds = append(conds, "e.status_tag = ?")
		args = append(args, int(StatusStarted))
	case EpisodeStatusFinished:
		conds = append(conds, "e.status_tag = ?")
		args = append(args, int(StatusFinished))
	}
	if !q.IncludeHidden {
		conds = append(conds, "e.hidden = 0")
	}
	if len(conds) == 0 {
		return "", args
	}
	clause := "WHERE "
	for i, c := range conds {
		if i > 0 {
			clause += " AND "
		}
		clause += c
	}
	return clause, args
}

func andClause(where string) string {
	if where == "" {
		return "WHERE "
	}
	return " AND "
}
