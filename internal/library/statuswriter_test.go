package library

import (
	"context"
	"testing"
	"time"

	"github.com/hedgepod-dev/hedgepod/internal/store"
)

func TestStatusWriterFlushAppliesLatestOnly(t *testing.T) {
	lib, srv := newTestLibrary(t)
	ctx := context.Background()
	if err := lib.AddFeed(ctx, srv.URL, nil); err != nil {
		t.Fatalf("AddFeed: %v", err)
	}
	for i := 0; i < 50; i++ {
		if lib.EpisodesListMetadata(ctx, store.EpisodesQuery{}).TotalCount == 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	page := lib.EpisodeSummaries(ctx, store.EpisodesQuery{}, 0, 10)
	if len(page) != 1 {
		t.Fatalf("got %d episodes", len(page))
	}

	w := NewStatusWriter(lib, page[0].ID)
	w.SetPosition(10 * time.Second)
	w.SetPosition(20 * time.Second)
	w.SetFinished()
	w.Flush()

	ep, ok := lib.Episode(ctx, page[0].ID)
	if !ok {
		t.Fatal("episode not found")
	}
	if ep.Status.Tag != store.StatusFinished {
		t.Fatalf("got status %v, want the last-set value to win", ep.Status.Tag)
	}
}
