package store

import (
	"encoding/json"
	"log"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a single persisted key/value row. The whole durable state of the
// app lives in this one table: each key holds a JSON document (usually a whole
// collection), mirroring how browser local storage holds serialized arrays
// under stable keys.
type Entry struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (Entry) TableName() string { return "kv_entries" }

// Well-known keys.
const (
	KeyUsers             = "users"
	KeyCourses           = "courses"
	KeyMessages          = "messages"
	KeyCurrentUserID     = "currentUserId"
	KeyNotificationCheck = "lastNotificationCheck"
)

// Store is the durable key/value layer. All access serializes on a mutex so a
// read-modify-write pair is atomic for concurrent request handlers, the same
// guarantee the original single-threaded host gave for free.
type Store struct {
	mu sync.Mutex
	db *gorm.DB
}

// New migrates the kv table and returns a ready store.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Read decodes the value under key into T. Absent keys report (zero, false).
// A value that no longer decodes is treated as corruption: the key is deleted
// so later reads start clean, a warning is logged, and the key reports absent.
// Read never surfaces an error to the caller.
func Read[T any](s *Store, key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[T](s, key)
}

func readLocked[T any](s *Store, key string) (T, bool) {
	var zero T
	var e Entry
	if err := s.db.First(&e, "key = ?", key).Error; err != nil {
		return zero, false
	}
	var v T
	if err := json.Unmarshal([]byte(e.Value), &v); err != nil {
		log.Printf("store: discarding corrupted value under %q: %v", key, err)
		s.db.Delete(&Entry{}, "key = ?", key)
		return zero, false
	}
	return v, true
}

// Write serializes value and upserts it under key.
func Write[T any](s *Store, key string, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeLocked(s, key, value)
}

func writeLocked[T any](s *Store, key string, value T) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Entry{Key: key, Value: string(body)}).Error
}

// Update runs fn on the current value under key (zero value when absent or
// corrupted) and persists the result only when fn returns nil. The whole
// read-modify-write executes under the store lock, so callers never need
// manual rollback of in-memory state.
func Update[T any](s *Store, key string, fn func(T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, _ := readLocked[T](s, key)
	next, err := fn(cur)
	if err != nil {
		return err
	}
	return writeLocked(s, key, next)
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Delete(&Entry{}, "key = ?", key).Error
}

// Reset clears every key. Test support; the long-lived process never calls it.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Where("1 = 1").Delete(&Entry{}).Error
}

// CorruptForTest overwrites the raw value under key, bypassing serialization.
// Exists so tests can exercise the self-healing read path.
func (s *Store) CorruptForTest(key, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Entry{Key: key, Value: raw}).Error
}
