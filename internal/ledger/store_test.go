package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store failed: %v", err)
	}
	defer store.Close()

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot before first save")
	}

	out := &Snapshot{}
	out.Append(9, 1500)
	out.Append(3, 850)
	if err := store.Save(context.Background(), out); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	back, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	entries := back.Entries()
	if len(entries) != 2 || entries[0].ID != 9 || entries[1].ID != 3 {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].Balance != 1500 || entries[1].Balance != 850 {
		t.Fatalf("unexpected balances %+v", entries)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store failed: %v", err)
	}
	defer store.Close()

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}

	// The ledger recovers by starting empty over the same store.
	l, err := New(store, Options{})
	if err != nil {
		t.Fatalf("new ledger over corrupt store failed: %v", err)
	}
	defer l.Close()
	if got := l.Balance(1); got != DefaultBalance {
		t.Fatalf("expected default balance, got %d", got)
	}
}

func TestFileStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "balances.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store failed: %v", err)
	}
	defer store.Close()
	if err := store.Save(context.Background(), &Snapshot{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("new sqlite store failed: %v", err)
	}
	defer store.Close()

	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot before first save")
	}

	out := &Snapshot{}
	out.Append(7, 2000)
	if err := store.Save(context.Background(), out); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// second save overwrites the single row
	out.entries[0].Balance = 2100
	if err := store.Save(context.Background(), out); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	back, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	entries := back.Entries()
	if len(entries) != 1 || entries[0].ID != 7 || entries[0].Balance != 2100 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestNewStoreModes(t *testing.T) {
	dir := t.TempDir()

	st, mode, err := NewStore("memory", "", "")
	if err != nil || mode != "memory" {
		t.Fatalf("memory mode failed: %v %s", err, mode)
	}
	st.Close()

	st, mode, err = NewStore("file", filepath.Join(dir, "l.json"), "")
	if err != nil || mode != "file" {
		t.Fatalf("file mode failed: %v %s", err, mode)
	}
	st.Close()

	st, mode, err = NewStore("sqlite", filepath.Join(dir, "l.db"), "")
	if err != nil || mode != "sqlite" {
		t.Fatalf("sqlite mode failed: %v %s", err, mode)
	}
	st.Close()

	if _, _, err := NewStore("oracle", "", ""); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}
