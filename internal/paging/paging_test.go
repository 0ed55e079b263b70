package paging

import "testing"

type item struct {
	id    int
	label string
}

func (i item) ItemID() int { return i.id }

func makeItems(start, n int) []item {
	out := make([]item, n)
	for i := 0; i < n; i++ {
		out[i] = item{id: start + i, label: "x"}
	}
	return out
}

func TestInitRequestsSize(t *testing.T) {
	var requests []Request
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 2}, func(r Request) { requests = append(requests, r) })
	if len(requests) != 1 || requests[0].Kind != RequestSize {
		t.Fatalf("got %+v", requests)
	}
	if _, ok := p.Size(); ok {
		t.Fatal("expected no size until a Size message arrives")
	}
}

func TestUpdateRequestsNeededPages(t *testing.T) {
	var requests []Request
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 2}, func(r Request) { requests = append(requests, r) })
	p.Handle(SizeMessage[item](p.Version(), 35))

	requests = nil
	p.Update(12, 18, func(r Request) { requests = append(requests, r) })
	// range [12,18) with margin 2 => [10,20) => pages 1,1 (page 1 covers 10..20) => just page 1
	if len(requests) != 1 || requests[0].Page.Index != 1 {
		t.Fatalf("got %+v", requests)
	}
}

func TestItemAtBeforePageArrives(t *testing.T) {
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 0}, func(Request) {})
	p.Handle(SizeMessage[item](p.Version(), 20))
	p.Update(0, 10, func(Request) {})
	if _, ok := p.ItemAt(0); ok {
		t.Fatal("expected no item before the page reply arrives")
	}
}

func TestItemAtAfterPageArrives(t *testing.T) {
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 0}, func(Request) {})
	p.Handle(SizeMessage[item](p.Version(), 20))
	p.Update(0, 10, func(Request) {})
	p.Handle(PageMessage(p.Version(), 0, makeItems(0, 10)))

	got, ok := p.ItemAt(3)
	if !ok || got.id != 3 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if !p.HasData() {
		t.Fatal("expected HasData once the only tracked page has arrived")
	}
}

func TestStalePageReplyIgnored(t *testing.T) {
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 0}, func(Request) {})
	p.Handle(SizeMessage[item](p.Version(), 50))
	p.Update(0, 10, func(Request) {})
	p.Update(40, 50, func(Request) {}) // scrolls far away, evicting page 0

	changed := p.Handle(PageMessage(p.Version(), 0, makeItems(0, 10)))
	if changed {
		t.Fatal("expected a reply for an evicted page to be ignored")
	}
}

func TestIndexOfFindsLoadedItem(t *testing.T) {
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 0}, func(Request) {})
	p.Handle(SizeMessage[item](p.Version(), 20))
	p.Update(0, 10, func(Request) {})
	p.Handle(PageMessage(p.Version(), 0, makeItems(100, 10)))

	idx, ok := p.IndexOf(105)
	if !ok || idx != 5 {
		t.Fatalf("got idx=%d ok=%v", idx, ok)
	}
}

func TestReplaceBumpsVersionAndDropsStaleMessages(t *testing.T) {
	p := Init[item, int](Options{PageSize: 10, LoadMargins: 0}, func(Request) {})
	oldVersion := p.Version()
	p.Handle(SizeMessage[item](oldVersion, 20))
	p.Update(0, 10, func(Request) {})

	var requests []Request
	p.Replace(func(r Request) { requests = append(requests, r) })
	if p.Version() == oldVersion {
		t.Fatal("expected Replace to advance the version")
	}
	if len(requests) != 1 || requests[0].Kind != RequestSize || requests[0].Version != p.Version() {
		t.Fatalf("expected a fresh size request stamped with the new version, got %+v", requests)
	}
	if _, ok := p.Size(); ok {
		t.Fatal("expected Replace to clear the known size")
	}

	// A page reply addressed to the old provider generation must be dropped,
	// even though it would otherwise look like a perfectly valid page 0 reply.
	if changed := p.Handle(PageMessage(oldVersion, 0, makeItems(0, 10))); changed {
		t.Fatal("expected a stale-version page reply to be dropped")
	}
	// A reply stamped with the current version is still honored once the view
	// has re-requested its size and pages.
	p.Handle(SizeMessage[item](p.Version(), 20))
	p.Update(0, 10, func(Request) {})
	if changed := p.Handle(PageMessage(p.Version(), 0, makeItems(0, 10))); !changed {
		t.Fatal("expected a current-version page reply to apply")
	}
}
