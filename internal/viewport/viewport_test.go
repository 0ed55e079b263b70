package viewport

import "testing"

type scrollStep struct {
	offset    int
	wantRange Range
	wantSel   int
}

func assertScrolling(t *testing.T, v *Viewport, steps []scrollStep) {
	t.Helper()
	for i, step := range steps {
		v.OffsetSelectionBy(step.offset)
		if got := v.SelectedIndex(); got != step.wantSel {
			t.Fatalf("step %d: selected = %d, want %d", i, got, step.wantSel)
		}
		if got := v.Range(); got != step.wantRange {
			t.Fatalf("step %d: range = %+v, want %+v", i, got, step.wantRange)
		}
	}
}

func TestAllItemsVisible(t *testing.T) {
	v := New(10, 5)
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 5}, 0},
		{1, Range{0, 5}, 1},
		{1, Range{0, 5}, 2},
		{1, Range{0, 5}, 3},
		{1, Range{0, 5}, 4},
		{1, Range{0, 5}, 4},
		{-1, Range{0, 5}, 3},
		{-1, Range{0, 5}, 2},
		{-1, Range{0, 5}, 1},
		{-1, Range{0, 5}, 0},
		{-1, Range{0, 5}, 0},
	})
}

func TestScrolling(t *testing.T) {
	v := New(4, 6)
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 4}, 0},
		{1, Range{0, 4}, 1},
		{1, Range{0, 4}, 2},
		{1, Range{0, 4}, 3},
		{1, Range{1, 5}, 4},
		{1, Range{2, 6}, 5},
		{1, Range{2, 6}, 5},
		{-1, Range{2, 6}, 4},
		{-1, Range{2, 6}, 3},
		{-1, Range{2, 6}, 2},
		{-1, Range{1, 5}, 1},
		{-1, Range{0, 4}, 0},
		{-1, Range{0, 4}, 0},
	})
}

func TestScrollingWithMargins(t *testing.T) {
	v := New(4, 6).WithScrollMargin(1)
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 4}, 0},
		{1, Range{0, 4}, 1},
		{1, Range{0, 4}, 2},
		{1, Range{1, 5}, 3},
		{1, Range{2, 6}, 4},
		{1, Range{2, 6}, 5},
		{1, Range{2, 6}, 5},
		{-1, Range{2, 6}, 4},
		{-1, Range{2, 6}, 3},
		{-1, Range{1, 5}, 2},
		{-1, Range{0, 4}, 1},
		{-1, Range{0, 4}, 0},
		{-1, Range{0, 4}, 0},
	})
}

func TestScrollingMarginsHeight1(t *testing.T) {
	v := New(1, 4).WithScrollMargin(2)
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 1}, 0},
		{1, Range{1, 2}, 1},
		{1, Range{2, 3}, 2},
		{1, Range{3, 4}, 3},
		{1, Range{3, 4}, 3},
		{-1, Range{2, 3}, 2},
		{-1, Range{1, 2}, 1},
		{-1, Range{0, 1}, 0},
		{-1, Range{0, 1}, 0},
	})
}

func TestScrollingMarginsHeight2(t *testing.T) {
	v := New(2, 5).WithScrollMargin(2)
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 2}, 0},
		{1, Range{0, 2}, 1},
		{1, Range{1, 3}, 2},
		{1, Range{2, 4}, 3},
		{1, Range{3, 5}, 4},
		{1, Range{3, 5}, 4},
		{-1, Range{3, 5}, 3},
		{-1, Range{2, 4}, 2},
		{-1, Range{1, 3}, 1},
		{-1, Range{0, 2}, 0},
		{-1, Range{0, 2}, 0},
	})
}

func TestScrollingMarginsHeight3(t *testing.T) {
	v := New(3, 6).WithScrollMargin(2)
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 3}, 0},
		{1, Range{0, 3}, 1},
		{1, Range{1, 4}, 2},
		{1, Range{2, 5}, 3},
		{1, Range{3, 6}, 4},
		{1, Range{3, 6}, 5},
		{1, Range{3, 6}, 5},
		{-1, Range{3, 6}, 4},
		{-1, Range{2, 5}, 3},
		{-1, Range{1, 4}, 2},
		{-1, Range{0, 3}, 1},
		{-1, Range{0, 3}, 0},
	})
}

func TestSizeChange(t *testing.T) {
	v := New(4, 10)
	if v.SelectedIndex() != 0 || v.Range() != (Range{0, 4}) {
		t.Fatalf("initial state wrong: sel=%d range=%+v", v.SelectedIndex(), v.Range())
	}

	v.Select(8)
	if v.SelectedIndex() != 8 || v.Range() != (Range{5, 9}) {
		t.Fatalf("after select(8): sel=%d range=%+v", v.SelectedIndex(), v.Range())
	}

	v.SetWindowSize(3)
	if v.SelectedIndex() != 8 || v.Range() != (Range{6, 9}) {
		t.Fatalf("after resize to 3: sel=%d range=%+v", v.SelectedIndex(), v.Range())
	}

	cases := []struct {
		size int
		want Range
	}{
		{4, Range{6, 10}},
		{5, Range{5, 10}},
		{6, Range{4, 10}},
		{7, Range{3, 10}},
		{8, Range{2, 10}},
		{9, Range{1, 10}},
		{10, Range{0, 10}},
		{11, Range{0, 10}},
	}
	for _, c := range cases {
		v.SetWindowSize(c.size)
		if v.SelectedIndex() != 8 || v.Range() != c.want {
			t.Fatalf("size %d: sel=%d range=%+v, want range=%+v", c.size, v.SelectedIndex(), v.Range(), c.want)
		}
	}
}

func TestEmptyViewport(t *testing.T) {
	v := New(10, 0)
	if v.SelectedIndex() != 0 || v.ItemsCount() != 0 {
		t.Fatalf("initial state wrong: sel=%d count=%d", v.SelectedIndex(), v.ItemsCount())
	}
	assertScrolling(t, v, []scrollStep{
		{0, Range{0, 0}, 0},
		{1, Range{0, 0}, 0},
		{-1, Range{0, 0}, 0},
	})
}
