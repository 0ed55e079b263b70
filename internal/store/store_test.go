package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddFeedAndEpisodeRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	w, err := s.Writer(ctx)
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	feedID, err := w.AddFeed(ctx, "Test Feed", "https://example.com/feed.xml", nil)
	if err != nil {
		t.Fatalf("AddFeed: %v", err)
	}
	inserted, err := w.UpsertEpisode(ctx, Episode{
		FeedID:       feedID,
		GUID:         "ep-1",
		Title:        "Episode One",
		EnclosureURL: "https://example.com/ep1.mp3",
		PubDate:      time.Unix(1700000000, 0).UTC(),
		Duration:     30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("UpsertEpisode: %v", err)
	}
	if !inserted {
		t.Fatal("expected a fresh insert")
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	meta, err := s.EpisodesListMetadata(ctx, EpisodesQuery{})
	if err != nil {
		t.Fatalf("EpisodesListMetadata: %v", err)
	}
	if meta.TotalCount != 1 || meta.NewCount != 1 {
		t.Fatalf("got %+v", meta)
	}

	page, err := s.EpisodesPage(ctx, EpisodesQuery{}, 0, 10)
	if err != nil {
		t.Fatalf("EpisodesPage: %v", err)
	}
	if len(page) != 1 || page[0].Title != "Episode One" {
		t.Fatalf("got %+v", page)
	}
}

func TestUpsertEpisodePreservesLocalStatus(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	w, _ := s.Writer(ctx)
	feedID, _ := w.AddFeed(ctx, "Feed", "https://example.com/a.xml", nil)
	w.UpsertEpisode(ctx, Episode{FeedID: feedID, GUID: "g1", Title: "v1", EnclosureURL: "u", PubDate: time.Unix(1, 0)})
	w.Commit()

	page, _ := s.EpisodesPage(ctx, EpisodesQuery{}, 0, 10)
	w2, _ := s.Writer(ctx)
	if _, err := w2.SetStatus(ctx, page[0].ID, Finished()); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	w2.Commit()

	w3, _ := s.Writer(ctx)
	inserted, err := w3.UpsertEpisode(ctx, Episode{FeedID: feedID, GUID: "g1", Title: "v2 (retitled)", EnclosureURL: "u", PubDate: time.Unix(1, 0)})
	if err != nil {
		t.Fatalf("UpsertEpisode: %v", err)
	}
	if inserted {
		t.Fatal("expected an update, not an insert")
	}
	w3.Commit()

	ep, err := s.Episode(ctx, page[0].ID)
	if err != nil {
		t.Fatalf("Episode: %v", err)
	}
	if ep.Title != "v2 (retitled)" {
		t.Fatalf("title = %q, want updated title", ep.Title)
	}
	if ep.Status.Tag != StatusFinished {
		t.Fatalf("status = %v, want Finished to survive the refresh", ep.Status.Tag)
	}
}

func TestReverseFeedOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	w, _ := s.Writer(ctx)
	a, _ := w.AddFeed(ctx, "A", "https://a", nil)
	b, _ := w.AddFeed(ctx, "B", "https://b", nil)
	if err := w.ReverseFeedOrder(ctx, nil); err != nil {
		t.Fatalf("ReverseFeedOrder: %v", err)
	}
	w.Commit()

	feeds, err := s.FeedSummaries(ctx)
	if err != nil {
		t.Fatalf("FeedSummaries: %v", err)
	}
	if len(feeds) != 2 || feeds[0].ID != b || feeds[1].ID != a {
		t.Fatalf("got %+v", feeds)
	}
}
