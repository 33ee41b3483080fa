// Package stage implements an optional, resumable checkpoint for
// in-progress hashing runs: a BoltDB-backed store keyed by a caller-chosen
// uint32 (the hash subcommand uses the image's 1-based scan-order index)
// holding snappy-compressed packed fingerprint words. The clusterizer never reads
// this store; it only reads the §6 SQLite hashes table. This lets a
// crashed "hash" run skip images it already fingerprinted instead of
// re-decoding the whole corpus.
package stage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/golang/snappy"

	"github.com/imagedupe/phashcluster/pkg/errs"
	"github.com/imagedupe/phashcluster/pkg/phash"
)

var bucketName = []byte("staged_hashes")

// Store is a resumability checkpoint for a single hashing run.
type Store struct {
	db *bolt.DB
}

// Open opens (and initializes) the staging database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreOpenFailed, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreOpenFailed, err)
	}

	return &Store{db: db}, nil
}

// Put checkpoints the fingerprint computed for imageID.
func (s *Store) Put(imageID uint32, fp phash.PHash) error {
	raw := encodeWords(fp)
	compressed := snappy.Encode(nil, raw)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put(encodeKey(imageID), compressed)
	})
}

// Get returns the checkpointed fingerprint for imageID, if any.
func (s *Store) Get(imageID uint32) (phash.PHash, bool, error) {
	var fp phash.PHash
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get(encodeKey(imageID))
		if v == nil {
			return nil
		}

		raw, err := snappy.Decode(nil, v)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrStoreReadFailed, err)
		}

		fp = decodeWords(raw)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return fp, found, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeKey(imageID uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, imageID)
	return key
}

func encodeWords(fp phash.PHash) []byte {
	buf := new(bytes.Buffer)
	for _, w := range fp {
		_ = binary.Write(buf, binary.LittleEndian, w)
	}
	return buf.Bytes()
}

func decodeWords(raw []byte) phash.PHash {
	fp := make(phash.PHash, len(raw)/8)
	for i := range fp {
		fp[i] = binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
	}
	return fp
}
