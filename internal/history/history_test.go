package history

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestPushingLines(t *testing.T) {
	h := New()
	if _, ok := h.Get(0); ok {
		t.Fatal("expected empty history")
	}

	h.push("first")
	if v, _ := h.Get(0); v != "first" {
		t.Fatalf("got %q", v)
	}
	if _, ok := h.Get(1); ok {
		t.Fatal("expected only one entry")
	}

	h.push("second")
	if v, _ := h.Get(0); v != "second" {
		t.Fatalf("got %q", v)
	}
	if v, _ := h.Get(1); v != "first" {
		t.Fatalf("got %q", v)
	}

	h.push("first")
	if v, _ := h.Get(0); v != "first" {
		t.Fatalf("got %q", v)
	}
	if v, _ := h.Get(1); v != "second" {
		t.Fatalf("got %q", v)
	}
}

func initForFind() *History {
	h := New()
	h.push("aa")
	h.push("abcd")
	h.push("acd")
	h.push("abc")
	h.push("ac")
	return h
}

func TestFindingBefore(t *testing.T) {
	h := initForFind()
	if idx, ok := h.FindBefore(1, "ac"); !ok || idx != 2 {
		t.Fatalf("got idx=%d ok=%v", idx, ok)
	}
	if idx, ok := h.FindBefore(1, "aa"); !ok || idx != 4 {
		t.Fatalf("got idx=%d ok=%v", idx, ok)
	}
	if _, ok := h.FindBefore(1, "ae"); ok {
		t.Fatal("expected no match")
	}
}

func TestFindingAfter(t *testing.T) {
	h := initForFind()
	if idx, ok := h.FindAfter(3, "ac"); !ok || idx != 2 {
		t.Fatalf("got idx=%d ok=%v", idx, ok)
	}
	if idx, ok := h.FindAfter(1, "ac"); !ok || idx != 0 {
		t.Fatalf("got idx=%d ok=%v", idx, ok)
	}
	if _, ok := h.FindAfter(2, "aa"); ok {
		t.Fatal("expected no match")
	}
}

func TestRemovesOldEntries(t *testing.T) {
	h := WithCapacity(3)
	h.push("a")
	h.push("b")
	h.push("c")
	assertItems(t, h, []string{"c", "b", "a"})

	h.push("b")
	assertItems(t, h, []string{"b", "c", "a"})

	h.push("d")
	assertItems(t, h, []string{"d", "b", "c"})
}

func assertItems(t *testing.T, h *History, want []string) {
	t.Helper()
	if len(h.items) != len(want) {
		t.Fatalf("got %v, want %v", h.items, want)
	}
	for i, w := range want {
		if h.items[i] != w {
			t.Fatalf("got %v, want %v", h.items, want)
		}
	}
}

func TestReadingHistoryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands")

	h := New()
	if err := h.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if h.Len() != 0 {
		t.Fatal("expected an empty history for a missing file")
	}
	h.Push("a")
	h.Push("b")
	h.Push("c")

	h2 := New()
	if err := h2.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assertItems(t, h2, []string{"c", "b", "a"})
	h2.Push("b")
	h2.Push("d")
	h2.Push("a")

	h3 := New()
	if err := h3.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assertItems(t, h3, []string{"a", "d", "b", "c"})
}

func TestCompactsFileOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands")

	h := New()
	if err := h.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	for i := 0; i < 1000; i++ {
		h.Push(strconv.Itoa(i))
	}
	if n := countLines(t, path); n != 1000 {
		t.Fatalf("got %d lines before compaction, want 1000", n)
	}

	h2 := New()
	if err := h2.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	// +1 for the compaction header comment line.
	if n := countLines(t, path); n != DefaultCapacity+1 {
		t.Fatalf("got %d lines after compaction, want %d", n, DefaultCapacity+1)
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n
}
