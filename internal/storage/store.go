package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/sift/internal/search"
)

var (
	historyBucket   = []byte("history")
	bookmarksBucket = []byte("bookmarks")
	metaBucket      = []byte("metadata")

	schemaVersionKey = []byte("schema_version")
)

const schemaVersion = "1"

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{historyBucket, bookmarksBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		meta := tx.Bucket(metaBucket)
		if meta.Get(schemaVersionKey) == nil {
			return meta.Put(schemaVersionKey, []byte(schemaVersion))
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SchemaVersion() (string, error) {
	var v string
	err := s.db.View(func(tx *bolt.Tx) error {
		v = string(tx.Bucket(metaBucket).Get(schemaVersionKey))
		return nil
	})
	return v, err
}

// historyKey folds case and whitespace so "PyTorch  reshape" and
// "pytorch reshape" share one entry.
func historyKey(query string) []byte {
	return []byte(strings.ToLower(strings.Join(strings.Fields(query), " ")))
}

// RecordQuery upserts the history entry for query after a committed search.
func (s *Store) RecordQuery(query string, resultCount int) error {
	key := historyKey(query)
	if len(key) == 0 {
		return nil
	}
	now := s.now()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)

		entry := HistoryEntry{FirstSearchedAt: now}
		if data := b.Get(key); data != nil {
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}
		}
		entry.Query = strings.TrimSpace(query)
		entry.Count++
		entry.LastResultCount = resultCount
		entry.SearchedAt = now

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// GetHistory returns entries newest first. limit <= 0 returns everything.
func (s *Store) GetHistory(limit int) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(historyBucket).ForEach(func(_ []byte, v []byte) error {
			var entry HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return nil
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SearchedAt.After(entries[j].SearchedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, err
}

// DeleteHistoryEntry removes the entry for query.
func (s *Store) DeleteHistoryEntry(query string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)
		key := historyKey(query)
		if b.Get(key) == nil {
			return ErrNotFound
		}
		return b.Delete(key)
	})
}

func (s *Store) ClearHistory() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(historyBucket)
		return err
	})
}

// PruneHistory keeps the keep most recent entries and reports how many
// were removed.
func (s *Store) PruneHistory(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	type keyed struct {
		key []byte
		at  time.Time
	}

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)

		var all []keyed
		err := b.ForEach(func(k, v []byte) error {
			var entry HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return nil
			}
			all = append(all, keyed{key: append([]byte(nil), k...), at: entry.SearchedAt})
			return nil
		})
		if err != nil || len(all) <= keep {
			return err
		}

		sort.SliceStable(all, func(i, j int) bool { return all[i].at.After(all[j].at) })
		for _, k := range all[keep:] {
			if err := b.Delete(k.key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// BookmarkID derives the stable key for a result URL.
func BookmarkID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// SaveBookmark stores r. Saving the same URL again refreshes it in place.
func (s *Store) SaveBookmark(r search.Result, query string) (*Bookmark, error) {
	if r.URL == "" {
		return nil, fmt.Errorf("bookmark needs a URL")
	}

	bm := &Bookmark{
		ID:      BookmarkID(r.URL),
		Title:   r.Title,
		URL:     r.URL,
		Score:   r.Score,
		Text:    r.Text,
		Query:   query,
		SavedAt: s.now(),
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(bm)
		if err != nil {
			return err
		}
		return tx.Bucket(bookmarksBucket).Put([]byte(bm.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return bm, nil
}

func (s *Store) GetBookmark(id string) (*Bookmark, error) {
	var bm Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bookmarksBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &bm)
	})
	if err != nil {
		return nil, err
	}
	return &bm, nil
}

// GetBookmarks returns bookmarks newest first.
func (s *Store) GetBookmarks() ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bookmarksBucket).ForEach(func(_ []byte, v []byte) error {
			var bm Bookmark
			if err := json.Unmarshal(v, &bm); err != nil {
				return err
			}
			bookmarks = append(bookmarks, &bm)
			return nil
		})
	})
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt.After(bookmarks[j].SavedAt)
	})
	return bookmarks, err
}

func (s *Store) IsBookmarked(url string) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bookmarksBucket).Get([]byte(BookmarkID(url))) != nil
		return nil
	})
	return found
}

func (s *Store) DeleteBookmark(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
