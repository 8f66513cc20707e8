package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrCorruptSnapshot marks a snapshot that exists but cannot be decoded.
// The ledger treats it as absent and starts empty rather than failing boot.
var ErrCorruptSnapshot = errors.New("corrupt ledger snapshot")

const defaultSnapshotPath = "data/balances.json"

// Store persists the ledger snapshot. Every Save rewrites the whole
// snapshot, last writer wins. Load returns (nil, nil) when no snapshot
// has ever been written.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// NewStore builds a Store from the configured mode. It returns the
// normalized mode name for startup logging.
func NewStore(mode, path, dsn string) (Store, string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "file":
		if path == "" {
			path = defaultSnapshotPath
		}
		st, err := NewFileStore(path)
		return st, "file", err
	case "memory":
		return NewMemoryStore(), "memory", nil
	case "sqlite", "local":
		if path == "" {
			path = "data/ledger.db"
		}
		st, err := NewSQLiteStore(path)
		return st, "sqlite", err
	case "postgres":
		st, err := NewPostgresStore(dsn)
		return st, "postgres", err
	default:
		return nil, "", fmt.Errorf("unknown ledger store mode: %q", mode)
	}
}

// MemoryStore keeps the last saved snapshot in memory. Balances do not
// survive a restart; it exists for tests and throwaway deployments.
type MemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	cp := &Snapshot{entries: append([]Entry(nil), m.snap.entries...)}
	return cp, nil
}

func (m *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &Snapshot{entries: append([]Entry(nil), snap.entries...)}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// FileStore writes the snapshot to a single JSON file on local disk,
// via a temp file and rename so a crash mid-write never truncates the
// previous snapshot.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	log.Printf("[Ledger] file store at %s", path)
	return &FileStore{path: path}, nil
}

func (f *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := snap.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}

func (f *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := snap.MarshalJSON()
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Close() error { return nil }
