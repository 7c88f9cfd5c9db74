// Package sqlite provides a SQLite-backed composition snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists composition snapshots in SQLite.
type Store struct {
	sqlDB  *sql.DB
	logger *zap.Logger
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite database at path and applies the schema.
//
// Precondition: path must be non-empty; ":memory:" opens a private
// in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, logger: logger}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts snap under name. An existing row keeps its ID; a row whose
// checksum matches snap is returned without being rewritten.
func (s *Store) Save(ctx context.Context, name string, snap composition.Snapshot) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if err := storage.ValidateName(name); err != nil {
		return storage.Record{}, err
	}
	if err := snap.Validate(); err != nil {
		return storage.Record{}, fmt.Errorf("save %q: %w", name, err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return storage.Record{}, fmt.Errorf("encode %q: %w", name, err)
	}
	now := time.Now().UTC()
	sum := snap.Checksum()

	prev, found, err := s.record(ctx, name)
	if err != nil {
		return storage.Record{}, err
	}
	if found && prev.Checksum == sum {
		s.logger.Debug("snapshot unchanged", zap.String("name", name))
		return prev, nil
	}

	var (
		idText    string
		updatedAt int64
	)
	err = s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO compositions (id, name, body_type, checksum, snapshot, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   body_type = excluded.body_type,
		   checksum = excluded.checksum,
		   snapshot = excluded.snapshot,
		   updated_at = excluded.updated_at
		 RETURNING id, updated_at`,
		uuid.NewString(), name, int(snap.BodyType), strconv.FormatUint(sum, 16), string(data),
		toMillis(now), toMillis(now),
	).Scan(&idText, &updatedAt)
	if err != nil {
		return storage.Record{}, fmt.Errorf("save %q: %w", name, err)
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return storage.Record{}, fmt.Errorf("save %q: stored id %q: %w", name, idText, err)
	}
	s.logger.Debug("snapshot saved", zap.String("name", name), zap.Stringer("id", id))
	return storage.Record{ID: id, Name: name, Checksum: sum, UpdatedAt: fromMillis(updatedAt)}, nil
}

// record returns the stored Record for name; found is false when no row
// exists.
func (s *Store) record(ctx context.Context, name string) (rec storage.Record, found bool, err error) {
	var (
		idText, sumText string
		updatedAt       int64
	)
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT id, checksum, updated_at FROM compositions WHERE name = ?`, name,
	).Scan(&idText, &sumText, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, false, nil
		}
		return storage.Record{}, false, fmt.Errorf("lookup %q: %w", name, err)
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		return storage.Record{}, false, fmt.Errorf("composition %q id: %w", name, err)
	}
	sum, err := strconv.ParseUint(sumText, 16, 64)
	if err != nil {
		return storage.Record{}, false, fmt.Errorf("composition %q checksum: %w", name, err)
	}
	return storage.Record{ID: id, Name: name, Checksum: sum, UpdatedAt: fromMillis(updatedAt)}, true, nil
}

// Load returns the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (composition.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return composition.Snapshot{}, err
	}
	if err := storage.ValidateName(name); err != nil {
		return composition.Snapshot{}, err
	}
	var data string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT snapshot FROM compositions WHERE name = ?`, name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return composition.Snapshot{}, fmt.Errorf("load %q: %w", name, storage.ErrNotFound)
		}
		return composition.Snapshot{}, fmt.Errorf("load %q: %w", name, err)
	}
	var snap composition.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return composition.Snapshot{}, fmt.Errorf("decode %q: %w", name, err)
	}
	if err := snap.Validate(); err != nil {
		return composition.Snapshot{}, fmt.Errorf("load %q: %w", name, err)
	}
	return snap, nil
}

// List returns every stored snapshot's record ordered by name.
func (s *Store) List(ctx context.Context) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, checksum, updated_at FROM compositions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list compositions: %w", err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var (
			idText, name, sumText string
			updatedAt             int64
		)
		if err := rows.Scan(&idText, &name, &sumText, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		id, err := uuid.Parse(idText)
		if err != nil {
			return nil, fmt.Errorf("composition %q id: %w", name, err)
		}
		sum, err := strconv.ParseUint(sumText, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("composition %q checksum: %w", name, err)
		}
		out = append(out, storage.Record{ID: id, Name: name, Checksum: sum, UpdatedAt: fromMillis(updatedAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list compositions: %w", err)
	}
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
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM compositions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %q: %w", name, storage.ErrNotFound)
	}
	return nil
}
