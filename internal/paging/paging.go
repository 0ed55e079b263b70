// Package paging implements the lazily-loaded, page-backed item list the
// UI's scrollable views are built on: it tracks which page-sized windows
// of a (possibly huge) remote collection are currently needed, requests
// only those, and serves item lookups out of whatever has arrived so far.
package paging

// Page identifies one page-sized slice of a collection: items
// [Index*Size, (Index+1)*Size).
type Page struct {
	Index int
	Size  int
}

// Version stamps every outbound request against the provider generation
// that issued it. A Paginated[T] bumps its version whenever its
// underlying provider is replaced (e.g. the query backing it changes);
// any reply still in flight from before the replacement carries the old
// version and is dropped on arrival rather than corrupting the fresh
// view. The zero value is the first generation's version; it wraps
// rather than overflows, since only equality against the current
// version is ever tested.
type Version uint64

func (v Version) next() Version { return v + 1 }

// RequestKind distinguishes the two requests a Paginated[T] can emit.
type RequestKind int

const (
	RequestSize RequestKind = iota
	RequestPage
)

// Request is one outbound request a Paginated[T] wants issued against
// the backing collection. Callers drive requests through a callback
// rather than a channel, since Update can synchronously decide several
// requests are needed at once.
type Request struct {
	Kind    RequestKind
	Page    Page
	Version Version
}

// MessageKind distinguishes the two replies a Paginated[T] accepts.
type MessageKind int

const (
	MessageSize MessageKind = iota
	MessagePage
)

// Message is one inbound reply to a prior Request. Version must echo the
// Version of the Request it answers; Handle discards a Message whose
// Version doesn't match the Paginated[T]'s current one.
type Message[T any] struct {
	Kind      MessageKind
	Size      int
	PageIndex int
	Values    []T
	Version   Version
}

func SizeMessage[T any](version Version, size int) Message[T] {
	return Message[T]{Kind: MessageSize, Size: size, Version: version}
}
func PageMessage[T any](version Version, index int, values []T) Message[T] {
	return Message[T]{Kind: MessagePage, PageIndex: index, Values: values, Version: version}
}

// Identifiable is implemented by item types whose identity survives a
// refresh, letting selection find its way back to "the same" item after
// the backing pages are replaced (see package selection).
type Identifiable[ID comparable] interface {
	ItemID() ID
}

// Options configures a Paginated[T]'s page size and how many extra
// items beyond the visible range are pre-fetched on each side.
type Options struct {
	PageSize    int
	LoadMargins int
}

// Paginated is a page-backed view over an externally stored collection
// of T. It never holds more pages than the current viewport range (plus
// margins) requires: Update evicts pages that have scrolled out of range
// and requests ones newly needed.
type Paginated[T Identifiable[ID], ID comparable] struct {
	pageSize       int
	loadMargins    int
	version        Version
	size           *int
	firstPageIndex int
	pages          [][]T // nil entry means "requested but not yet arrived"
	havePage       []bool
}

// Init constructs an empty Paginated[T] and requests the collection's
// total size, the first step before any page can be sized.
func Init[T Identifiable[ID], ID comparable](opts Options, requestData func(Request)) *Paginated[T, ID] {
	p := &Paginated[T, ID]{pageSize: opts.PageSize, loadMargins: opts.LoadMargins}
	requestData(Request{Kind: RequestSize, Version: p.version})
	return p
}

// Version reports the generation of provider requests are currently
// stamped with.
func (p *Paginated[T, ID]) Version() Version { return p.version }

// Replace points the view at a new backing provider (the query behind
// it changed), discarding every held page and bumping the version so
// any reply still in flight from the old provider is dropped by Handle
// instead of corrupting the fresh view. It re-requests the new
// provider's size, mirroring Init.
func (p *Paginated[T, ID]) Replace(requestData func(Request)) {
	p.version = p.version.next()
	p.size = nil
	p.firstPageIndex = 0
	p.pages = nil
	p.havePage = nil
	requestData(Request{Kind: RequestSize, Version: p.version})
}

func (p *Paginated[T, ID]) Size() (int, bool) {
	if p.size == nil {
		return 0, false
	}
	return *p.size, true
}

func (p *Paginated[T, ID]) pageIndex(index int) int     { return index / p.pageSize }
func (p *Paginated[T, ID]) pageItemIndex(index int) int { return index % p.pageSize }

// Update informs the view that the given item-index range is now (or
// still) the visible range, requesting any pages newly needed to cover
// it (plus load margins) and evicting ones that are no longer in range.
func (p *Paginated[T, ID]) Update(rangeStart, rangeEnd int, requestData func(Request)) {
	if p.size == nil {
		return
	}
	size := *p.size
	firstRequired := p.pageIndex(satSub(rangeStart, p.loadMargins))
	lastIdx := min(satSub(rangeEnd+p.loadMargins, 1), size)
	lastRequired := p.pageIndex(lastIdx)
	count := lastRequired - firstRequired + 1
	if count < 0 {
		count = 0
	}

	if len(p.pages) > 0 {
		for p.firstPageIndex < firstRequired {
			if len(p.pages) == 0 {
				p.firstPageIndex = firstRequired
				break
			}
			p.pages = p.pages[1:]
			p.havePage = p.havePage[1:]
			p.firstPageIndex++
		}
		for p.firstPageIndex > firstRequired {
			p.pages = append([][]T{nil}, p.pages...)
			p.havePage = append([]bool{false}, p.havePage...)
			p.firstPageIndex--
			requestData(Request{Kind: RequestPage, Page: Page{Index: p.firstPageIndex, Size: p.pageSize}, Version: p.version})
		}
		if len(p.pages) > count {
			p.pages = p.pages[:count]
			p.havePage = p.havePage[:count]
		}
	} else {
		p.firstPageIndex = firstRequired
	}
	for len(p.pages) < count {
		requestData(Request{Kind: RequestPage, Page: Page{Index: p.firstPageIndex + len(p.pages), Size: p.pageSize}, Version: p.version})
		p.pages = append(p.pages, nil)
		p.havePage = append(p.havePage, false)
	}
}

// Handle applies an inbound Message, reporting whether it changed
// anything visible. A message whose Version predates the current
// provider generation is a stale in-flight reply from before a Replace
// and is discarded outright, before it can even be checked against
// page eviction; a page reply that names a now-evicted page index
// within the current generation is likewise silently ignored.
func (p *Paginated[T, ID]) Handle(msg Message[T]) bool {
	if msg.Version != p.version {
		return false
	}
	switch msg.Kind {
	case MessageSize:
		p.size = &msg.Size
		return true
	case MessagePage:
		if msg.PageIndex < p.firstPageIndex {
			return false
		}
		slot := msg.PageIndex - p.firstPageIndex
		if slot >= len(p.pages) {
			return false
		}
		p.pages[slot] = msg.Values
		p.havePage[slot] = true
		return true
	default:
		return false
	}
}

// ItemAt returns the item at a global index, or false when its page
// hasn't arrived yet (or is out of range).
func (p *Paginated[T, ID]) ItemAt(index int) (T, bool) {
	var zero T
	pageIdx := p.pageIndex(index)
	if pageIdx < p.firstPageIndex {
		return zero, false
	}
	slot := pageIdx - p.firstPageIndex
	if slot >= len(p.pages) || !p.havePage[slot] {
		return zero, false
	}
	itemIdx := p.pageItemIndex(index)
	page := p.pages[slot]
	if itemIdx >= len(page) {
		return zero, false
	}
	return page[itemIdx], true
}

// HasData reports whether every page currently tracked has arrived.
func (p *Paginated[T, ID]) HasData() bool {
	if len(p.pages) == 0 {
		return false
	}
	for _, have := range p.havePage {
		if !have {
			return false
		}
	}
	return true
}

// IndexOf finds the global index of the item with the given id among
// currently loaded pages, used by identity-preserving selection after a
// refresh.
func (p *Paginated[T, ID]) IndexOf(id ID) (int, bool) {
	for slot, page := range p.pages {
		if !p.havePage[slot] {
			continue
		}
		for itemIdx, item := range page {
			if item.ItemID() == id {
				return itemIdx + (p.firstPageIndex+slot)*p.pageSize, true
			}
		}
	}
	return 0, false
}

// UpdateItem finds the item with id among loaded pages and applies fn to
// it in place.
func (p *Paginated[T, ID]) UpdateItem(id ID, fn func(*T)) {
	for slot, page := range p.pages {
		if !p.havePage[slot] {
			continue
		}
		for i := range page {
			if page[i].ItemID() == id {
				fn(&page[i])
				return
			}
		}
	}
}

// UpdateAll applies fn to every loaded item.
func (p *Paginated[T, ID]) UpdateAll(fn func(*T)) {
	for slot, page := range p.pages {
		if !p.havePage[slot] {
			continue
		}
		for i := range page {
			fn(&page[i])
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func satSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
