package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"ayurbot/internal/domain"
)

// Snapshot format: a bbolt file with a "meta" bucket (schema version,
// dimension, entry count) and an "entries" bucket keyed by zero-padded
// sequence number. The format is owned entirely by this package.

const schemaVersion = 1

var (
	bucketMeta    = []byte("meta")
	bucketEntries = []byte("entries")
	bucketSources = []byte("sources")
	keySchema     = []byte("schema_version")
	keyDimension  = []byte("dimension")
	keyCount      = []byte("count")
)

type storedEntry struct {
	Chunk  domain.Chunk `json:"chunk"`
	Vector []float32    `json:"vector"`
}

// Persist writes an atomic snapshot of the index to path. The snapshot
// is written to a temporary sibling file and renamed into place, so a
// concurrent reader observes either the previous complete snapshot or
// the new one, never a partial write.
func (ix *Index) Persist(path string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	// A stale tmp file from a crashed run must not poison this write.
	_ = os.Remove(tmp)

	db, err := bbolt.Open(tmp, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		entries, err := tx.CreateBucketIfNotExists(bucketEntries)
		if err != nil {
			return err
		}
		sources, err := tx.CreateBucketIfNotExists(bucketSources)
		if err != nil {
			return err
		}

		if err := meta.Put(keySchema, itob(schemaVersion)); err != nil {
			return err
		}
		if err := meta.Put(keyDimension, itob(ix.dimension)); err != nil {
			return err
		}
		if err := meta.Put(keyCount, itob(len(ix.chunks))); err != nil {
			return err
		}

		for i := range ix.chunks {
			data, err := json.Marshal(storedEntry{
				Chunk:  ix.chunks[i],
				Vector: ix.vectors[i],
			})
			if err != nil {
				return err
			}
			if err := entries.Put(seqKey(i), data); err != nil {
				return err
			}
		}

		for id := range ix.completed {
			if err := sources.Put([]byte(id), []byte{1}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := db.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to swap snapshot into place: %w", err)
	}

	return nil
}

// Load reads a persisted snapshot. Returns domain.ErrIndexNotFound when
// no snapshot exists at path and domain.ErrCorruptIndex when the stored
// structure is unreadable; the caller decides whether to rebuild.
func Load(path string) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, path)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptIndex, err)
	}
	defer db.Close()

	var ix *Index
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		entries := tx.Bucket(bucketEntries)
		if meta == nil || entries == nil {
			return fmt.Errorf("%w: missing buckets", domain.ErrCorruptIndex)
		}

		version, ok := btoi(meta.Get(keySchema))
		if !ok || version != schemaVersion {
			return fmt.Errorf("%w: unsupported schema version", domain.ErrCorruptIndex)
		}
		dimension, ok := btoi(meta.Get(keyDimension))
		if !ok || dimension <= 0 {
			return fmt.Errorf("%w: invalid dimension", domain.ErrCorruptIndex)
		}
		count, ok := btoi(meta.Get(keyCount))
		if !ok || count < 0 {
			return fmt.Errorf("%w: invalid entry count", domain.ErrCorruptIndex)
		}

		ix = New(dimension)
		err := entries.ForEach(func(k, v []byte) error {
			var entry storedEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("%w: unreadable entry %q", domain.ErrCorruptIndex, k)
			}
			if len(entry.Vector) != dimension {
				return fmt.Errorf("%w: entry %q has wrong dimension", domain.ErrCorruptIndex, k)
			}
			ix.chunks = append(ix.chunks, entry.Chunk)
			ix.vectors = append(ix.vectors, entry.Vector)
			return nil
		})
		if err != nil {
			return err
		}

		if len(ix.chunks) != count {
			return fmt.Errorf("%w: expected %d entries, found %d", domain.ErrCorruptIndex, count, len(ix.chunks))
		}

		if sources := tx.Bucket(bucketSources); sources != nil {
			return sources.ForEach(func(k, _ []byte) error {
				ix.completed[string(k)] = struct{}{}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ix, nil
}

func seqKey(i int) []byte {
	return []byte(fmt.Sprintf("%012d", i))
}

func itob(v int) []byte {
	return []byte(fmt.Sprintf("%d", v))
}

func btoi(b []byte) (int, bool) {
	if b == nil {
		return 0, false
	}
	var v int
	if _, err := fmt.Sscanf(string(b), "%d", &v); err != nil {
		return 0, false
	}
	return v, true
}
