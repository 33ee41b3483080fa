// Package store implements the SQLite persistence boundary of §6: the
// read-only hashes store the clusterizer loads from, and the cluster
// output store an exporter writes clusters to. Both are thin wrappers over
// database/sql, grounded in the teacher's internal/index/sqlite.go.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/imagedupe/phashcluster/internal/cluster"
	"github.com/imagedupe/phashcluster/pkg/errs"
	"github.com/imagedupe/phashcluster/pkg/phash"
)

// HashStore wraps the hashes table (id INTEGER PRIMARY KEY AUTOINCREMENT,
// hash TEXT, path TEXT). The clusterizer only reads it; the hash and
// import-text commands append rows through InsertHash.
type HashStore struct {
	db *sql.DB
}

// OpenHashStore opens (and, for a fresh database, creates) the hashes table
// at dbPath. Persistence failures at open time are fatal per §7.
func OpenHashStore(dbPath string) (*HashStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreOpenFailed, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS hashes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash TEXT NOT NULL,
		path TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreOpenFailed, err)
	}

	return &HashStore{db: db}, nil
}

// LoadAll loads every row as a working-set image record, in id order. A
// malformed hash column is a fatal parse error: the store is expected to
// be internally consistent. Every fingerprint must have the same word
// length; a mismatch returns errs.ErrLengthMismatch.
func (s *HashStore) LoadAll() ([]*cluster.ImageRecord, error) {
	rows, err := s.db.Query(`SELECT id, hash, path FROM hashes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreReadFailed, err)
	}
	defer rows.Close()

	var records []*cluster.ImageRecord
	wantLen := -1

	for rows.Next() {
		var id int64
		var hashText string
		var path sql.NullString
		if err := rows.Scan(&id, &hashText, &path); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreReadFailed, err)
		}

		fp, err := phash.Decode(hashText)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", id, err)
		}
		if wantLen == -1 {
			wantLen = len(fp)
		} else if len(fp) != wantLen {
			return nil, fmt.Errorf("row %d: %w", id, errs.ErrLengthMismatch)
		}

		records = append(records, &cluster.ImageRecord{
			ImageID:     uint32(id),
			Fingerprint: fp,
			SourcePath:  path.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreReadFailed, err)
	}

	return records, nil
}

// PathExists reports whether path already has a row in the hashes table.
// Used by the hash subcommand to make a resumed run idempotent: the
// staging cache is keyed by scan-order index, not by the hashes table's
// AUTOINCREMENT id, so without this check a resumed run would re-insert a
// duplicate row for every already-persisted image.
func (s *HashStore) PathExists(path string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM hashes WHERE path = ?)`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.ErrStoreReadFailed, err)
	}
	return exists, nil
}

// InsertHash appends a fingerprint/path pair, used by the hash and
// import-text commands.
func (s *HashStore) InsertHash(fp phash.PHash, path string) error {
	_, err := s.db.Exec(`INSERT INTO hashes (hash, path) VALUES (?, ?)`, fp.Encode(), path)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreWriteFailed, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *HashStore) Close() error {
	return s.db.Close()
}
