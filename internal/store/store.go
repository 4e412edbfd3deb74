package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/stellaron-app/stellaron/internal/domain"
)

var bucketRecords = []byte("records")

// Store implements domain.KV over BoltDB with a read-through memory cache.
// With no directory configured it runs memory-only, which is the store the
// tests substitute in.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // protects memory cache and usage accounting

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	// capacity bounds total stored bytes in memory-only mode; 0 = unbounded.
	capacity int
	used     int
}

// New opens (or creates) the persistent store under dir. An empty dir
// selects memory-only mode.
func New(dir string) (*Store, error) {
	if dir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "stellaron.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

// NewMemory returns a memory-only store.
func NewMemory() *Store {
	return &Store{cache: make(map[string][]byte)}
}

// NewMemoryWithCapacity returns a memory-only store that rejects writes
// once total stored bytes would exceed capacity. Used to exercise the
// quota-exceeded path.
func NewMemoryWithCapacity(capacity int) *Store {
	return &Store{cache: make(map[string][]byte), capacity: capacity}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(key string) ([]byte, bool) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return data, true
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	if s.capacity > 0 {
		next := s.used - len(s.cache[key]) + len(value)
		if next > s.capacity {
			s.mu.Unlock()
			return fmt.Errorf("set %q: %w", key, domain.ErrQuotaExceeded)
		}
		s.used = next
	}
	s.cache[key] = value
	s.mu.Unlock()

	if s.db == nil {
		return nil // memory-only mode
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).Put([]byte(key), value)
	})
	if err != nil {
		// A failed put usually means disk pressure; report it as a capacity
		// problem so best-effort writers can skip.
		return fmt.Errorf("set %q: %v: %w", key, err, domain.ErrQuotaExceeded)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	if s.capacity > 0 {
		s.used -= len(s.cache[key])
	}
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}
