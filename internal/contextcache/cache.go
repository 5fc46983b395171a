package contextcache

import (
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Cache is a small TTL-keyed key/value store backed by Badger, used to
// memoize the repo map and pre-search results across turns within a
// session without re-walking the workspace on every prompt assembly.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if absent) a Badger database at dir. Badger's own
// logger is silenced: its default logging is far chattier than this
// module's ambient logging conventions call for.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("contextcache: open badger db: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// InvalidateAll drops every cached repo map and pre-search entry. Used by
// a long-running host (internal/rpcserver's file watcher) when the
// workspace changes underneath a session that never re-runs Open.
func (c *Cache) InvalidateAll() error {
	if err := c.db.DropPrefix([]byte("repomap:")); err != nil {
		return fmt.Errorf("contextcache: invalidate repo map entries: %w", err)
	}
	if err := c.db.DropPrefix([]byte("presearch:")); err != nil {
		return fmt.Errorf("contextcache: invalidate pre-search entries: %w", err)
	}
	return nil
}

// SetRepoMap stores a rendered repo map under key for RepoMapTTLSeconds.
func (c *Cache) SetRepoMap(key, value string) error {
	return c.set(repoMapKey(key), value, RepoMapTTLSeconds*time.Second)
}

// GetRepoMap returns the cached repo map for key, and whether it was
// present (and not expired).
func (c *Cache) GetRepoMap(key string) (string, bool, error) {
	return c.get(repoMapKey(key))
}

// SetPreSearch stores rendered pre-search results under key for
// PreSearchTTLSeconds.
func (c *Cache) SetPreSearch(key, value string) error {
	return c.set(preSearchKey(key), value, PreSearchTTLSeconds*time.Second)
}

// GetPreSearch returns the cached pre-search result for key, and whether
// it was present (and not expired).
func (c *Cache) GetPreSearch(key string) (string, bool, error) {
	return c.get(preSearchKey(key))
}

func repoMapKey(key string) string   { return "repomap:" + key }
func preSearchKey(key string) string { return "presearch:" + key }

func (c *Cache) set(key, value string, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("contextcache: set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) get(key string) (string, bool, error) {
	var value string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("contextcache: get %s: %w", key, err)
	}
	return value, value != "", nil
}
