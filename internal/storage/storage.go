// Package storage defines the contract shared by the composition snapshot
// stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/paperdoll/internal/game/composition"
)

var (
	// ErrNotFound indicates a requested snapshot is missing.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidName indicates a snapshot name outside the allowed alphabet.
	ErrInvalidName = errors.New("invalid snapshot name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidateName checks that name is usable as a snapshot key in every store.
//
// Postcondition: returns nil or an error wrapping ErrInvalidName.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Record describes one stored snapshot.
type Record struct {
	ID        uuid.UUID
	Name      string
	Checksum  uint64
	UpdatedAt time.Time
}

// Store persists composition snapshots by name. Saving an existing name
// replaces its snapshot and keeps its ID.
type Store interface {
	Save(ctx context.Context, name string, snap composition.Snapshot) (Record, error)
	Load(ctx context.Context, name string) (composition.Snapshot, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, name string) error
	Close() error
}
