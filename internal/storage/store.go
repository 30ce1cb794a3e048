package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	storiesBucket = []byte("stories")
	metaBucket    = []byte("metadata")
)

var lastRefreshKey = []byte("last_refresh")

// DefaultRetention bounds how long unopened history is kept.
const DefaultRetention = 90 * 24 * time.Hour

type Store struct {
	db *bolt.DB
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
		for _, bucket := range [][]byte{storiesBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSeen upserts the given records. Existing entries keep their
// FirstSeen and opened state; everything else is refreshed.
func (s *Store) RecordSeen(records []*StoryRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		for _, record := range records {
			if existing := b.Get(storyKey(record.ID)); existing != nil {
				var prev StoryRecord
				if err := json.Unmarshal(existing, &prev); err == nil {
					record.FirstSeen = prev.FirstSeen
					record.Opened = prev.Opened
					record.OpenedAt = prev.OpenedAt
				}
			}

			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if err := b.Put(storyKey(record.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetRecord(id int) (*StoryRecord, error) {
	var record StoryRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		data := b.Get(storyKey(id))
		if data == nil {
			return fmt.Errorf("story record not found")
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkOpened flags a story as opened. The first open wins: repeated calls
// keep the original OpenedAt. Unknown stories get a minimal record so an
// open is never lost.
func (s *Store) MarkOpened(id int, at time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)

		record := StoryRecord{ID: id, FirstSeen: at, LastSeen: at}
		if data := b.Get(storyKey(id)); data != nil {
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
		}

		if !record.Opened {
			record.Opened = true
			record.OpenedAt = at
		}

		data, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		return b.Put(storyKey(id), data)
	})
}

// OpenedIDs returns the set of story IDs the user has opened.
func (s *Store) OpenedIDs() (map[int]bool, error) {
	opened := make(map[int]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		return b.ForEach(func(_ []byte, v []byte) error {
			var record StoryRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return nil
			}
			if record.Opened {
				opened[record.ID] = true
			}
			return nil
		})
	})
	return opened, err
}

func (s *Store) History(limit int) ([]*StoryRecord, error) {
	var records []*StoryRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		return b.ForEach(func(_ []byte, v []byte) error {
			var record StoryRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return nil
			}
			records = append(records, &record)
			return nil
		})
	})
	// Sort by LastSeen, newest first
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastSeen.After(records[j].LastSeen)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, err
}

// Prune removes unopened records last seen before the cutoff and returns
// how many were deleted. Opened stories are kept as a permanent trail.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	pruned := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var record StoryRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			if !record.Opened && record.LastSeen.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	return pruned, err
}

func (s *Store) SetLastRefresh(t time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(metaBucket)
		data, err := t.MarshalText()
		if err != nil {
			return err
		}
		return b.Put(lastRefreshKey, data)
	})
}

func (s *Store) LastRefresh() (time.Time, error) {
	var t time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(metaBucket)
		data := b.Get(lastRefreshKey)
		if data == nil {
			return nil
		}
		return t.UnmarshalText(data)
	})
	return t, err
}

func storyKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}
