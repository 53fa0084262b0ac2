package store

import (
	"path/filepath"
	"sync"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

const snapshotFilename = "ledger.json"

// LedgerFileStore persists ledger snapshots to a directory.
type LedgerFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewLedgerFileStore returns a LedgerFileStore rooted at dir.
func NewLedgerFileStore(dir string) *LedgerFileStore {
	return &LedgerFileStore{dir: dir}
}

// SaveSnapshot replaces the stored snapshot.
func (s *LedgerFileStore) SaveSnapshot(snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, snapshotFilename), snapshot, 0o600)
}

// LoadSnapshot returns the stored snapshot and whether one was present.
func (s *LedgerFileStore) LoadSnapshot() (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap domain.Snapshot
	ok, err := readJSON(filepath.Join(s.dir, snapshotFilename), &snap)
	if err != nil || !ok {
		return domain.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Compile-time assertion that LedgerFileStore implements domain.LedgerStore.
var _ domain.LedgerStore = (*LedgerFileStore)(nil)
