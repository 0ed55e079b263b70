// Package viewport implements the scroll-offset arithmetic shared by
// every scrollable list in the UI: given a window size, an item count,
// and a selected index, it computes which contiguous range of items
// should be visible, keeping the selection onscreen and honoring an
// optional scroll margin.
package viewport

// Range is a half-open [Start, End) span of item indices.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Viewport tracks one scrollable list's offset and selection.
type Viewport struct {
	windowSize   int
	itemsCount   int
	selectedItem int
	offset       int
	scrollMargin int
}

// New creates a Viewport with no scroll margin and the selection at 0.
func New(windowSize, itemsCount int) *Viewport {
	return &Viewport{windowSize: windowSize, itemsCount: itemsCount}
}

// WithScrollMargin sets the minimum number of items kept visible above
// and below the selection, subject to the effective-margin reduction in
// effectiveScrollMargin.
func (v *Viewport) WithScrollMargin(margin int) *Viewport {
	v.scrollMargin = margin
	return v
}

// SetWindowSize changes the visible window size, shifting the offset
// if needed to keep the selection visible.
func (v *Viewport) SetWindowSize(windowSize int) {
	v.windowSize = windowSize
	v.ensureVisible()
}

// Update replaces the selection and item count in one step (used after a
// data refresh changes both at once) and re-clamps the offset.
func (v *Viewport) Update(selection, itemsCount int) {
	v.selectedItem = selection
	v.itemsCount = itemsCount
	v.ensureVisible()
}

func (v *Viewport) SelectedIndex() int { return v.selectedItem }
func (v *Viewport) ItemsCount() int    { return v.itemsCount }

// Range returns the currently visible item range.
func (v *Viewport) Range() Range {
	end := v.offset + v.windowSize
	if end > v.itemsCount {
		end = v.itemsCount
	}
	return Range{Start: v.offset, End: end}
}

// effectiveScrollMargin shrinks the configured margin when the window is
// too small to fit two margins and a selected row, per the original
// scrolling semantics this package ports: a margin that would eat the
// entire window is pointless.
func (v *Viewport) effectiveScrollMargin() int {
	return min(v.scrollMargin, satSub(v.windowSize, 1)/2)
}

func (v *Viewport) scrollRange() Range {
	margin := v.effectiveScrollMargin()
	start := v.offset + margin
	end := satSub(v.offset+v.windowSize, margin)
	if end > v.itemsCount {
		end = v.itemsCount
	}
	return Range{Start: start, End: end}
}

func (v *Viewport) ensureVisible() {
	r := v.scrollRange()
	margin := v.effectiveScrollMargin()
	if r.Len()+margin*2 < v.windowSize && r.Start > 0 {
		v.offset = satSub(v.itemsCount, v.windowSize)
		r = v.scrollRange()
	}

	if v.selectedItem < r.Start {
		v.offset = satSub(v.offset, r.Start-v.selectedItem)
	} else if v.selectedItem >= r.End {
		diff := (v.selectedItem - r.End) + 1
		v.offset = min(v.offset+diff, satSub(v.itemsCount, v.windowSize))
	}
}

// OffsetSelectionBy moves the selection by a relative amount, clamping to
// the valid item range, then re-clamps the offset.
func (v *Viewport) OffsetSelectionBy(offset int) {
	if offset > 0 {
		v.selectedItem = min(v.selectedItem+offset, satSub(v.itemsCount, 1))
	} else {
		v.selectedItem = satSub(v.selectedItem, -offset)
	}
	v.ensureVisible()
}

// Select moves the selection to an absolute index.
func (v *Viewport) Select(selectedItem int) {
	v.selectedItem = selectedItem
	v.ensureVisible()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// satSub is subtraction saturating at zero, matching the unsigned
// arithmetic this package's item counts and offsets conceptually use.
func satSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
