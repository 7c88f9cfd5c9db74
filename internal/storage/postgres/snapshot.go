package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/storage"
)

// ErrSnapshotNotFound is returned when no snapshot is stored under a name.
// It matches storage.ErrNotFound via errors.Is.
var ErrSnapshotNotFound = fmt.Errorf("composition %w", storage.ErrNotFound)

// SnapshotRepository persists composition snapshots in the compositions
// table.
type SnapshotRepository struct {
	db     *pgxpool.Pool
	owned  *Pool
	logger *zap.Logger
}

// NewSnapshotRepository creates a SnapshotRepository backed by db.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{db: db, logger: logger}
}

// OwnPool makes Close release p. Used when the repository is the pool's
// only client.
func (r *SnapshotRepository) OwnPool(p *Pool) *SnapshotRepository {
	r.owned = p
	return r
}

// Save upserts snap under name.
//
// Precondition: name must pass storage.ValidateName; snap must be valid.
// Postcondition: Returns the stored Record; an existing name keeps its ID.
// A row whose checksum matches snap is returned without being rewritten.
func (r *SnapshotRepository) Save(ctx context.Context, name string, snap composition.Snapshot) (storage.Record, error) {
	if err := storage.ValidateName(name); err != nil {
		return storage.Record{}, err
	}
	if err := snap.Validate(); err != nil {
		return storage.Record{}, fmt.Errorf("validating snapshot %q: %w", name, err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return storage.Record{}, fmt.Errorf("encoding snapshot %q: %w", name, err)
	}

	sum := snap.Checksum()
	prev, err := r.record(ctx, name)
	switch {
	case err == nil && prev.Checksum == sum:
		r.logger.Debug("snapshot unchanged", zap.String("name", name))
		return prev, nil
	case err != nil && !errors.Is(err, ErrSnapshotNotFound):
		return storage.Record{}, err
	}

	rec := storage.Record{Name: name, Checksum: sum}
	var idText string
	err = r.db.QueryRow(ctx,
		`INSERT INTO compositions (id, name, body_type, checksum, snapshot)
		 VALUES ($1::uuid, $2, $3, $4, $5::jsonb)
		 ON CONFLICT (name) DO UPDATE SET
		   body_type  = EXCLUDED.body_type,
		   checksum   = EXCLUDED.checksum,
		   snapshot   = EXCLUDED.snapshot,
		   updated_at = NOW()
		 RETURNING id::text, updated_at`,
		uuid.NewString(), name, int16(snap.BodyType), int64(sum), string(data),
	).Scan(&idText, &rec.UpdatedAt)
	if err != nil {
		return storage.Record{}, fmt.Errorf("upserting snapshot %q: %w", name, err)
	}
	if rec.ID, err = uuid.Parse(idText); err != nil {
		return storage.Record{}, fmt.Errorf("parsing snapshot id %q: %w", idText, err)
	}
	r.logger.Debug("snapshot saved", zap.String("name", name), zap.Stringer("id", rec.ID))
	return rec, nil
}

func (r *SnapshotRepository) record(ctx context.Context, name string) (storage.Record, error) {
	rec := storage.Record{Name: name}
	var (
		idText string
		sum    int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT id::text, checksum, updated_at FROM compositions WHERE name = $1`, name,
	).Scan(&idText, &sum, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, ErrSnapshotNotFound
		}
		return storage.Record{}, fmt.Errorf("querying snapshot record %q: %w", name, err)
	}
	if rec.ID, err = uuid.Parse(idText); err != nil {
		return storage.Record{}, fmt.Errorf("parsing snapshot id %q: %w", idText, err)
	}
	rec.Checksum = uint64(sum)
	return rec, nil
}

// Load retrieves the snapshot stored under name.
//
// Postcondition: Returns a valid Snapshot or ErrSnapshotNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, name string) (composition.Snapshot, error) {
	if err := storage.ValidateName(name); err != nil {
		return composition.Snapshot{}, err
	}
	var data string
	err := r.db.QueryRow(ctx,
		`SELECT snapshot::text FROM compositions WHERE name = $1`, name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return composition.Snapshot{}, ErrSnapshotNotFound
		}
		return composition.Snapshot{}, fmt.Errorf("querying snapshot %q: %w", name, err)
	}
	var snap composition.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return composition.Snapshot{}, fmt.Errorf("decoding snapshot %q: %w", name, err)
	}
	if err := snap.Validate(); err != nil {
		return composition.Snapshot{}, fmt.Errorf("validating snapshot %q: %w", name, err)
	}
	return snap, nil
}

// List returns every stored snapshot's record ordered by name.
func (r *SnapshotRepository) List(ctx context.Context) ([]storage.Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, name, checksum, updated_at FROM compositions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var (
			rec    storage.Record
			idText string
			sum    int64
		)
		if err := rows.Scan(&idText, &rec.Name, &sum, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if rec.ID, err = uuid.Parse(idText); err != nil {
			return nil, fmt.Errorf("parsing snapshot id %q: %w", idText, err)
		}
		rec.Checksum = uint64(sum)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot stored under name.
//
// Postcondition: Returns nil or ErrSnapshotNotFound.
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM compositions WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// Close releases the pool when the repository owns it.
func (r *SnapshotRepository) Close() error {
	r.owned.Close()
	return nil
}
