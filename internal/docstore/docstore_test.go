package docstore

import (
	"errors"
	"testing"
	"time"
)

func TestStorePutLastWriteWins(t *testing.T) {
	store := NewStore()

	store.Put(&DocumentEntry{ID: "doc", Filename: "first.pdf", PageCount: 3})
	store.Put(&DocumentEntry{ID: "doc", Filename: "second.pdf", PageCount: 7, UploadedAt: time.Now()})

	entry, err := store.Require("doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Filename != "second.pdf" || entry.PageCount != 7 {
		t.Fatalf("got %q with %d pages, want the later write", entry.Filename, entry.PageCount)
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d entries, want 1", store.Len())
	}
}

func TestStoreRequireUnknown(t *testing.T) {
	store := NewStore()

	_, err := store.Require("missing")
	if err == nil {
		t.Fatal("expected error for unknown document")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error %v does not wrap ErrNotFound", err)
	}
}

func TestStoreListAndGet(t *testing.T) {
	store := NewStore()
	store.Put(&DocumentEntry{ID: "a"})
	store.Put(&DocumentEntry{ID: "b"})

	if _, ok := store.Get("a"); !ok {
		t.Error("expected document a to exist")
	}
	if _, ok := store.Get("c"); ok {
		t.Error("unexpected document c")
	}
	if got := len(store.List()); got != 2 {
		t.Fatalf("List returned %d entries, want 2", got)
	}
}
