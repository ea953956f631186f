// Package snapshot persists model snapshots between migration runs. The
// engine itself holds no descriptor state across runs; this store is the
// host-side record of "what a column used to be" that the differ reads.
package snapshot

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spaolacci/murmur3"

	"github.com/hashcol/hashcol/internal/errors"
	"github.com/hashcol/hashcol/internal/model"
)

// Store is a SQLite-backed snapshot store. Payloads are canonical model
// JSON, snappy-compressed; a murmur3 fingerprint of the canonical bytes
// makes "did the model change" a single integer comparison.
type Store struct {
	db *sql.DB
}

// Record is one stored snapshot.
type Record struct {
	Version     int
	Fingerprint uint64
	Model       *model.Model
	CreatedAt   time.Time
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS model_snapshots (
	version     INTEGER PRIMARY KEY,
	fingerprint INTEGER NOT NULL,
	payload     BLOB NOT NULL,
	created_at  INTEGER NOT NULL
);
`

// Open opens (creating if needed) a snapshot store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to open snapshot database", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to initialize snapshot schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint computes the murmur3 fingerprint of a model's canonical form.
func Fingerprint(m *model.Model) (uint64, error) {
	data, err := m.CanonicalJSON()
	if err != nil {
		return 0, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to encode model", err)
	}
	return murmur3.Sum64(data), nil
}

// Save stores the model as a new snapshot version. If the model's
// fingerprint matches the current snapshot, no new version is created and
// the current version is returned.
func (s *Store) Save(ctx context.Context, m *model.Model) (int, error) {
	data, err := m.CanonicalJSON()
	if err != nil {
		return 0, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to encode model", err)
	}
	fingerprint := murmur3.Sum64(data)

	current, err := s.Current(ctx)
	if err != nil && errors.GetCode(err) != errors.CodeSnapshotNotFound {
		return 0, err
	}
	if current != nil && current.Fingerprint == fingerprint {
		return current.Version, nil
	}

	version := 1
	if current != nil {
		version = current.Version + 1
	}

	compressed := snappy.Encode(nil, data)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO model_snapshots (version, fingerprint, payload, created_at) VALUES (?, ?, ?, ?)",
		version, int64(fingerprint), compressed, time.Now().Unix(),
	)
	if err != nil {
		return 0, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to insert snapshot", err)
	}

	log.Printf("snapshot: saved model version %d (fingerprint %016x, %d -> %d bytes)",
		version, fingerprint, len(data), len(compressed))
	return version, nil
}

// Current returns the latest snapshot, or a SNAPSHOT_NOT_FOUND error when
// the store is empty.
func (s *Store) Current(ctx context.Context) (*Record, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		"SELECT version, fingerprint, payload, created_at FROM model_snapshots ORDER BY version DESC LIMIT 1"))
}

// Get returns a specific snapshot version.
func (s *Store) Get(ctx context.Context, version int) (*Record, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		"SELECT version, fingerprint, payload, created_at FROM model_snapshots WHERE version = ?", version))
}

// List returns all snapshot versions in ascending order, without payloads.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT version, fingerprint, created_at FROM model_snapshots ORDER BY version ASC")
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to list snapshots", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var fingerprint int64
		var createdAt int64
		if err := rows.Scan(&rec.Version, &fingerprint, &createdAt); err != nil {
			return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to scan snapshot row", err)
		}
		rec.Fingerprint = uint64(fingerprint)
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "error iterating snapshots", err)
	}
	return records, nil
}

func (s *Store) scanOne(row *sql.Row) (*Record, error) {
	var rec Record
	var fingerprint int64
	var payload []byte
	var createdAt int64

	err := row.Scan(&rec.Version, &fingerprint, &payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotNotFound, "no snapshot found", nil)
	}
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to read snapshot", err)
	}

	data, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to decompress snapshot payload", err)
	}
	m, err := model.FromJSON(data)
	if err != nil {
		return nil, errors.NewSnapshotError(errors.CodeSnapshotIO, "failed to decode snapshot payload", err)
	}

	rec.Fingerprint = uint64(fingerprint)
	rec.Model = m
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}
