// Package progress persists per-book reading position and rating records
// plus the singleton last-read pointer, and announces every successful
// mutation on the change bus so independently mounted views re-read
// instead of polling.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stellaron-app/stellaron/internal/domain"
	"github.com/stellaron-app/stellaron/internal/store"
)

// publisher is the slice of the change bus the store needs.
type publisher interface {
	Publish(event string)
}

// Store manages progress:{id}, rating:{id}, and the last_read pointer.
type Store struct {
	kv     domain.KV
	bus    publisher
	logger *slog.Logger
}

func NewStore(kv domain.KV, bus publisher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, bus: bus, logger: logger}
}

// Progress returns the stored percentage for a book, 0 when absent or
// unparseable.
func (s *Store) Progress(id domain.BookID) float64 {
	raw, ok := s.kv.Get(store.ProgressKey(id))
	if !ok {
		return 0
	}
	pct, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		s.logger.Debug("progress record corrupt, defaulting to 0", "bookID", id)
		return 0
	}
	return clampPercent(pct)
}

// Rating returns the stored rating for a book, 0 (unrated) when absent.
func (s *Store) Rating(id domain.BookID) int {
	raw, ok := s.kv.Get(store.RatingKey(id))
	if !ok {
		return 0
	}
	rating, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return clampRating(rating)
}

// SetRating writes the per-book rating record and, when the last-read
// pointer refers to the same book, updates the pointer's rating via
// read-modify-write so no reader observes the two out of step. The
// per-book record is authoritative; the pointer always follows.
func (s *Store) SetRating(id domain.BookID, rating int) error {
	rating = clampRating(rating)
	if err := s.kv.Set(store.RatingKey(id), []byte(strconv.Itoa(rating))); err != nil {
		return fmt.Errorf("write rating: %w", err)
	}

	s.propagateToPointer(id, func(ptr *domain.LastRead) {
		ptr.Rating = rating
	})

	s.publish()
	return nil
}

// CommitProgress clamps the percentage to [0,100] and persists it. Called
// once per reading session, at close. The last-read pointer's progress is
// kept consistent the same way as ratings.
func (s *Store) CommitProgress(id domain.BookID, pct float64) error {
	pct = clampPercent(pct)
	value := strconv.FormatFloat(pct, 'f', -1, 64)
	if err := s.kv.Set(store.ProgressKey(id), []byte(value)); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}

	s.propagateToPointer(id, func(ptr *domain.LastRead) {
		ptr.Progress = pct
	})

	s.logger.Debug("progress committed", "bookID", id, "percent", pct)
	s.publish()
	return nil
}

// RecordSessionStart overwrites the last-read pointer wholesale. Snapshot
// semantics, not a merge: stale fields from the previous book never leak.
func (s *Store) RecordSessionStart(ptr domain.LastRead) error {
	ptr.Progress = clampPercent(ptr.Progress)
	ptr.Rating = clampRating(ptr.Rating)

	data, err := json.Marshal(ptr)
	if err != nil {
		return fmt.Errorf("encode last read: %w", err)
	}
	if err := s.kv.Set(store.KeyLastRead, data); err != nil {
		return fmt.Errorf("write last read: %w", err)
	}

	s.publish()
	return nil
}

// LastRead returns the continue-reading pointer. A corrupt record is
// reported as absent, not as an error.
func (s *Store) LastRead() (domain.LastRead, bool) {
	raw, ok := s.kv.Get(store.KeyLastRead)
	if !ok {
		return domain.LastRead{}, false
	}
	var ptr domain.LastRead
	if err := json.Unmarshal(raw, &ptr); err != nil {
		s.logger.Debug("last read pointer corrupt, treating as absent")
		return domain.LastRead{}, false
	}
	return ptr, true
}

// Purge removes the progress and rating records for a book. Part of the
// removal flow; runs only after the backend confirmed deletion.
func (s *Store) Purge(id domain.BookID) error {
	if err := s.kv.Delete(store.ProgressKey(id)); err != nil {
		return err
	}
	if err := s.kv.Delete(store.RatingKey(id)); err != nil {
		return err
	}
	s.publish()
	return nil
}

// propagateToPointer applies mutate to the last-read pointer when it
// refers to id. A missing or undecodable pointer skips propagation.
func (s *Store) propagateToPointer(id domain.BookID, mutate func(*domain.LastRead)) {
	ptr, ok := s.LastRead()
	if !ok || ptr.BookID != id {
		return
	}
	mutate(&ptr)
	data, err := json.Marshal(ptr)
	if err != nil {
		return
	}
	if err := s.kv.Set(store.KeyLastRead, data); err != nil {
		s.logger.Warn("last read pointer update failed", "error", err, "bookID", id)
	}
}

func (s *Store) publish() {
	if s.bus != nil {
		s.bus.Publish(domain.EventProgressChanged)
	}
}

func clampPercent(pct float64) float64 {
	switch {
	case pct < 0 || pct != pct: // NaN guards to 0
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

func clampRating(rating int) int {
	switch {
	case rating < 0:
		return 0
	case rating > 5:
		return 5
	default:
		return rating
	}
}
