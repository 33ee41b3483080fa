package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/imagedupe/phashcluster/internal/cluster"
	"github.com/imagedupe/phashcluster/pkg/errs"
)

// ClusterStore writes emitted clusters into a user-chosen SQLite table with
// schema (cluster_id INTEGER UNIQUE, count INTEGER, images TEXT), where
// images is a comma-separated list of hashes.id values. It implements
// cluster.Emitter so a Driver can write directly to SQLite instead of
// streaming to stdout.
type ClusterStore struct {
	db    *sql.DB
	table string
}

// OpenClusterStore opens (creating if needed) the named table at dbPath.
func OpenClusterStore(dbPath, table string) (*ClusterStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreOpenFailed, err)
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		cluster_id INTEGER UNIQUE,
		count INTEGER,
		images TEXT
	)`, table)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreOpenFailed, err)
	}

	return &ClusterStore{db: db, table: table}, nil
}

// Emit writes one row for the cluster.
func (s *ClusterStore) Emit(c cluster.Cluster) error {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = strconv.FormatUint(uint64(e.ImageID), 10)
	}
	images := strings.Join(ids, ",")

	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (cluster_id, count, images) VALUES (?, ?, ?)`, s.table)
	if _, err := s.db.Exec(query, c.ClusterID, len(c.Entries), images); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreWriteFailed, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *ClusterStore) Close() error {
	return s.db.Close()
}
