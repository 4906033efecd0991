package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/storecore/domain"
)

const defaultRetain = 3

// Store keeps the most recent catalog snapshots on disk so a restarted
// process can serve a stale catalog while the upstream provider is down.
type Store struct {
	db     *bolt.DB
	bucket []byte
	retain int
}

// Open initializes the BoltDB file and ensures the bucket exists. retain is
// the number of snapshots kept; older ones are pruned on Save.
func Open(path string, bucket string, retain int) (*Store, error) {
	if bucket == "" {
		bucket = "snapshots"
	}
	if retain <= 0 {
		retain = defaultRetain
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
		retain: retain,
	}, nil
}

// Save writes the snapshot under a key ordered by fetch time and prunes the
// oldest entries beyond the retention count.
func (s *Store) Save(snap *domain.Snapshot) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if snap == nil {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if err := b.Put(buildKey(snap.FetchedAt), payload); err != nil {
			return err
		}
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		return deleteKeys(b, keys[:max(len(keys)-s.retain, 0)])
	})
}

// Latest returns the newest persisted snapshot, or nil when none exists.
func (s *Store) Latest() (*domain.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var snap *domain.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(s.bucket).Cursor().Last()
		if v == nil {
			return nil
		}
		var decoded domain.Snapshot
		if err := json.Unmarshal(v, &decoded); err != nil {
			return fmt.Errorf("decode persisted snapshot: %w", err)
		}
		snap = &decoded
		return nil
	})
	if err != nil || snap == nil {
		return nil, err
	}
	snap.Reindex()
	return snap, nil
}

// Size returns the number of persisted snapshots.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes snapshots fetched before the provided timestamp.
func (s *Store) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	limit := buildKey(olderThan)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, limit) < 0; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		return deleteKeys(b, keys)
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// deleteKeys runs outside cursor iteration; deleting under a live cursor
// skips entries.
func deleteKeys(b *bolt.Bucket, keys [][]byte) error {
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func buildKey(fetchedAt time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", fetchedAt.UnixNano()))
}
