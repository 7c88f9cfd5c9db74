// Package file stores composition snapshots as JSON documents on the local
// filesystem. Writes go through a temporary file and a rename so a failed
// save never leaves a partial document behind.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/storage"
)

const ext = ".json"

// SaveSnapshot writes snap to path as indented JSON, creating the parent
// directory when missing.
//
// Postcondition: path holds the complete snapshot, or is unchanged and a
// non-nil error is returned.
func SaveSnapshot(path string, snap composition.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("saving snapshot to %q: %w", path, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return writeAtomic(path, data)
}

// LoadSnapshot reads and validates a snapshot written by SaveSnapshot.
//
// Postcondition: returns a valid Snapshot, or an error wrapping
// storage.ErrNotFound when path does not exist.
func LoadSnapshot(path string) (composition.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return composition.Snapshot{}, fmt.Errorf("loading snapshot %q: %w", path, storage.ErrNotFound)
		}
		return composition.Snapshot{}, fmt.Errorf("reading snapshot %q: %w", path, err)
	}
	var snap composition.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return composition.Snapshot{}, fmt.Errorf("decoding snapshot %q: %w", path, err)
	}
	if err := snap.Validate(); err != nil {
		return composition.Snapshot{}, fmt.Errorf("loading snapshot %q: %w", path, err)
	}
	return snap, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(fmt.Errorf("writing %q: %w", tmpName, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing %q: %w", tmpName, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming %q to %q: %w", tmpName, path, err)
	}
	return nil
}

// document is the on-disk shape of one named snapshot in a Store.
type document struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Checksum  uint64               `json:"checksum"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Snapshot  composition.Snapshot `json:"snapshot"`
}

func (d document) record() storage.Record {
	return storage.Record{ID: d.ID, Name: d.Name, Checksum: d.Checksum, UpdatedAt: d.UpdatedAt}
}

// Store keeps one JSON document per snapshot name in a directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	logger *zap.Logger
}

// Open returns a Store rooted at dir, creating the directory when missing.
//
// Precondition: dir must be non-empty.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory %q: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: filepath.Clean(dir), logger: logger}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

func (s *Store) read(name string) (document, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{}, fmt.Errorf("loading %q: %w", name, storage.ErrNotFound)
		}
		return document{}, fmt.Errorf("reading %q: %w", name, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decoding %q: %w", name, err)
	}
	return doc, nil
}

// Save writes snap under name, keeping the existing ID when name is taken.
// A snapshot whose checksum matches the stored one is not rewritten.
func (s *Store) Save(ctx context.Context, name string, snap composition.Snapshot) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.Record{}, err
	}
	if err := snap.Validate(); err != nil {
		return storage.Record{}, fmt.Errorf("saving %q: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document{
		ID:        uuid.New(),
		Name:      name,
		Checksum:  snap.Checksum(),
		UpdatedAt: time.Now().UTC(),
		Snapshot:  snap,
	}
	if prev, err := s.read(name); err == nil {
		if prev.Checksum == doc.Checksum {
			s.logger.Debug("snapshot unchanged", zap.String("name", name))
			return prev.record(), nil
		}
		doc.ID = prev.ID
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("replacing unreadable snapshot", zap.String("name", name), zap.Error(err))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return storage.Record{}, fmt.Errorf("encoding %q: %w", name, err)
	}
	if err := writeAtomic(s.path(name), data); err != nil {
		return storage.Record{}, err
	}
	s.logger.Debug("snapshot saved", zap.String("name", name), zap.Stringer("id", doc.ID))
	return doc.record(), nil
}

// Load returns the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (composition.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return composition.Snapshot{}, err
	}
	if err := storage.ValidateName(name); err != nil {
		return composition.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read(name)
	if err != nil {
		return composition.Snapshot{}, err
	}
	if err := doc.Snapshot.Validate(); err != nil {
		return composition.Snapshot{}, fmt.Errorf("loading %q: %w", name, err)
	}
	return doc.Snapshot, nil
}

// List returns every stored snapshot's record ordered by name.
func (s *Store) List(ctx context.Context) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", s.dir, err)
	}
	var out []storage.Record
	for _, ent := range entries {
		name, ok := strings.CutSuffix(ent.Name(), ext)
		if ent.IsDir() || !ok || storage.ValidateName(name) != nil {
			continue
		}
		doc, err := s.read(name)
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", zap.String("name", name), zap.Error(err))
			continue
		}
		out = append(out, doc.record())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("deleting %q: %w", name, storage.ErrNotFound)
		}
		return fmt.Errorf("deleting %q: %w", name, err)
	}
	return nil
}

// Close releases nothing; it satisfies storage.Store.
func (s *Store) Close() error {
	return nil
}
