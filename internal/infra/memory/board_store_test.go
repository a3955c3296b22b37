package memory

import "testing"

func TestBoardStoreLifecycle(t *testing.T) {
	store := NewBoardStore()

	board := store.GetOrCreate("cohort-1")
	if board == nil {
		t.Fatalf("expected board")
	}
	if _, ok := store.Get("cohort-1"); !ok {
		t.Fatalf("expected board present")
	}

	store.DeleteIfEmpty("cohort-1")
	if _, ok := store.Get("cohort-1"); ok {
		t.Fatalf("expected board removed when empty")
	}
}
