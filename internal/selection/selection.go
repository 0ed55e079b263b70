// Package selection implements the strategies that decide where a list's
// selection should land after its backing data changes: keep the same
// index, reset to the top, follow an item's identity across the change,
// or leave it untouched entirely.
package selection

// Viewport is the subset of viewport.Viewport a Strategy needs: enough
// to read the current selection and to re-seat it against a new item
// count. Defined locally (rather than importing package viewport) so
// this package has no dependency on the concrete viewport type.
type Viewport interface {
	SelectedIndex() int
	Update(selection, itemsCount int)
}

// Data is the subset of a data view a Strategy needs to look up items by
// index or by identity.
type Data[T any, ID comparable] interface {
	Size() int
	ItemAt(index int) (T, bool)
	IndexOf(id ID) (int, bool)
}

// Strategy decides the new selected index once Size and lookups reflect
// the post-update data. Implementations snapshot whatever they need from
// the old state in Before, since by the time Apply runs the viewport may
// already be pointed at new data.
type Strategy[T any, ID comparable] interface {
	Before(v Viewport, d Data[T, ID]) any
	Apply(v Viewport, d Data[T, ID], snapshot any)
}

// Keep re-clamps the current selected index against the new item count,
// leaving it unchanged unless the list shrank past it.
type Keep[T any, ID comparable] struct{}

func (Keep[T, ID]) Before(v Viewport, d Data[T, ID]) any { return nil }
func (Keep[T, ID]) Apply(v Viewport, d Data[T, ID], _ any) {
	count := d.Size()
	v.Update(min(v.SelectedIndex(), satSub(count, 1)), count)
}

// Reset moves the selection to the first item.
type Reset[T any, ID comparable] struct{}

func (Reset[T, ID]) Before(v Viewport, d Data[T, ID]) any { return nil }
func (Reset[T, ID]) Apply(v Viewport, d Data[T, ID], _ any) {
	v.Update(0, d.Size())
}

// DoNotUpdate leaves the viewport untouched; used when the caller knows
// the update doesn't affect what's currently visible.
type DoNotUpdate[T any, ID comparable] struct{}

func (DoNotUpdate[T, ID]) Before(v Viewport, d Data[T, ID]) any   { return nil }
func (DoNotUpdate[T, ID]) Apply(v Viewport, d Data[T, ID], _ any) {}

// identifiable is the identity interface FindPrevious needs from T; it
// mirrors paging.Identifiable but is declared here to avoid this package
// depending on package paging.
type identifiable[ID comparable] interface {
	ItemID() ID
}

// FindPrevious snapshots the currently selected item's id before the
// update and, if an item with that id exists afterward, selects it;
// otherwise it falls back to the Fallback strategy (type F), matching the
// paginated list's identity-preserving refresh.
type FindPrevious[T identifiable[ID], ID comparable, F Strategy[T, ID]] struct {
	Fallback F
}

func (s FindPrevious[T, ID, F]) Before(v Viewport, d Data[T, ID]) any {
	var id *ID
	if item, ok := d.ItemAt(v.SelectedIndex()); ok {
		x := item.ItemID()
		id = &x
	}
	fallback := s.Fallback.Before(v, d)
	return [2]any{id, fallback}
}

func (s FindPrevious[T, ID, F]) Apply(v Viewport, d Data[T, ID], snapshot any) {
	pair := snapshot.([2]any)
	id, _ := pair[0].(*ID)
	if id != nil {
		if idx, ok := d.IndexOf(*id); ok {
			v.Update(idx, d.Size())
			return
		}
	}
	s.Fallback.Apply(v, d, pair[1])
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
