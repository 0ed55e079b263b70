package selection

import "testing"

type fakeViewport struct {
	selected int
	count    int
}

func (v *fakeViewport) SelectedIndex() int { return v.selected }
func (v *fakeViewport) Update(selection, itemsCount int) {
	v.selected = selection
	v.count = itemsCount
}

type row struct {
	id int
}

func (r row) ItemID() int { return r.id }

type fakeData struct {
	items []row
}

func (d *fakeData) Size() int { return len(d.items) }
func (d *fakeData) ItemAt(i int) (row, bool) {
	if i < 0 || i >= len(d.items) {
		return row{}, false
	}
	return d.items[i], true
}
func (d *fakeData) IndexOf(id int) (int, bool) {
	for i, it := range d.items {
		if it.id == id {
			return i, true
		}
	}
	return 0, false
}

func TestKeepClampsToNewSize(t *testing.T) {
	v := &fakeViewport{selected: 5, count: 10}
	d := &fakeData{items: []row{{1}, {2}, {3}}}
	var s Keep[row, int]
	s.Apply(v, d, s.Before(v, d))
	if v.selected != 2 || v.count != 3 {
		t.Fatalf("got selected=%d count=%d", v.selected, v.count)
	}
}

func TestResetGoesToZero(t *testing.T) {
	v := &fakeViewport{selected: 5, count: 10}
	d := &fakeData{items: []row{{1}, {2}, {3}}}
	var s Reset[row, int]
	s.Apply(v, d, s.Before(v, d))
	if v.selected != 0 {
		t.Fatalf("got selected=%d", v.selected)
	}
}

func TestFindPreviousFollowsIdentity(t *testing.T) {
	v := &fakeViewport{selected: 1, count: 3}
	before := &fakeData{items: []row{{1}, {2}, {3}}}
	s := FindPrevious[row, int, Reset[row, int]]{}
	snap := s.Before(v, before)

	after := &fakeData{items: []row{{5}, {6}, {2}, {7}}}
	s.Apply(v, after, snap)
	if v.selected != 2 {
		t.Fatalf("expected selection to follow id 2 to index 2, got %d", v.selected)
	}
}

func TestFindPreviousFallsBackWhenItemGone(t *testing.T) {
	v := &fakeViewport{selected: 1, count: 3}
	before := &fakeData{items: []row{{1}, {2}, {3}}}
	s := FindPrevious[row, int, Reset[row, int]]{}
	snap := s.Before(v, before)

	after := &fakeData{items: []row{{5}, {6}, {7}}}
	s.Apply(v, after, snap)
	if v.selected != 0 {
		t.Fatalf("expected fallback to Reset (index 0), got %d", v.selected)
	}
}
