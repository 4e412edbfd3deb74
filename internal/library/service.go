// Package library orchestrates the catalog: snapshot-cached listings,
// refreshes, searches, import, and all-or-nothing removal.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stellaron-app/stellaron/internal/covers"
	"github.com/stellaron-app/stellaron/internal/domain"
	"github.com/stellaron-app/stellaron/internal/progress"
	"github.com/stellaron-app/stellaron/internal/store"
)

// publisher is the slice of the change bus the service needs.
type publisher interface {
	Publish(event string)
}

// Service combines the library-service client with the local snapshot
// cache and the per-book local state that removal must purge.
type Service struct {
	catalog  domain.CatalogRepository
	notes    domain.NotesRepository
	kv       domain.KV
	covers   *covers.Cache
	progress *progress.Store
	bus      publisher
	logger   *slog.Logger

	now func() time.Time
}

func NewService(
	catalog domain.CatalogRepository,
	notes domain.NotesRepository,
	kv domain.KV,
	coverCache *covers.Cache,
	progressStore *progress.Store,
	bus publisher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:  catalog,
		notes:    notes,
		kv:       kv,
		covers:   coverCache,
		progress: progressStore,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// CachedCatalog returns the last persisted listing for instant render. A
// corrupt snapshot is a miss, never an error.
func (s *Service) CachedCatalog() (domain.CatalogSnapshot, bool) {
	raw, ok := s.kv.Get(store.KeyCatalog)
	if !ok {
		return domain.CatalogSnapshot{}, false
	}
	var snap domain.CatalogSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Debug("catalog snapshot corrupt, treating as miss")
		return domain.CatalogSnapshot{}, false
	}
	return snap, true
}

// RefreshCatalog fetches a fresh listing, persists it best-effort, and
// broadcasts catalog-updated so every open view re-reads.
func (s *Service) RefreshCatalog(ctx context.Context) (domain.CatalogSnapshot, error) {
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		s.logger.Error("catalog refresh failed", "error", err)
		return domain.CatalogSnapshot{}, err
	}

	snap := domain.CatalogSnapshot{Books: books, FetchedAt: s.now().Unix()}
	s.saveSnapshot(snap)
	s.publish()

	s.logger.Debug("catalog refreshed", "count", len(books))
	return snap, nil
}

// Metadata returns the full record for one book.
func (s *Service) Metadata(ctx context.Context, id domain.BookID) (domain.Book, error) {
	return s.catalog.FetchMetadata(ctx, id)
}

// Import asks the service to ingest a document, then refreshes the
// catalog (which broadcasts catalog-updated).
func (s *Service) Import(ctx context.Context, path string) error {
	if err := s.catalog.ImportBook(ctx, path); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	_, err := s.RefreshCatalog(ctx)
	return err
}

// Remove deletes a book everywhere, all-or-nothing: local cache entries
// (cover, progress, rating) are cleared only after the backend confirms
// deletion. A failed removal leaves all local state untouched.
func (s *Service) Remove(ctx context.Context, id domain.BookID) error {
	removed, err := s.catalog.RemoveBook(ctx, id)
	if err != nil {
		return fmt.Errorf("remove book %s: %w", id, err)
	}
	if !removed {
		return fmt.Errorf("remove book %s: service did not confirm deletion", id)
	}

	s.covers.Invalidate(id)
	if err := s.progress.Purge(id); err != nil {
		s.logger.Warn("progress purge failed", "error", err, "bookID", id)
	}

	// Drop the book from the cached snapshot so stale entries never
	// resurface before the next refresh.
	if snap, ok := s.CachedCatalog(); ok {
		kept := snap.Books[:0]
		for _, b := range snap.Books {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		snap.Books = kept
		s.saveSnapshot(snap)
	}

	s.publish()
	s.logger.Info("book removed", "bookID", id)
	return nil
}

func (s *Service) saveSnapshot(snap domain.CatalogSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.kv.Set(store.KeyCatalog, data); err != nil {
		// Snapshot persistence is best-effort; views still get the event.
		s.logger.Warn("catalog snapshot write skipped", "error", err)
	}
}

func (s *Service) publish() {
	if s.bus != nil {
		s.bus.Publish(domain.EventCatalogUpdated)
	}
}

// === Notes passthrough ===

func (s *Service) AddBookmark(ctx context.Context, bm domain.Bookmark) error {
	return s.notes.AddBookmark(ctx, bm)
}

func (s *Service) Bookmarks(ctx context.Context, id domain.BookID) ([]domain.Bookmark, error) {
	return s.notes.Bookmarks(ctx, id)
}

func (s *Service) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	return s.notes.DeleteBookmark(ctx, bookmarkID)
}

func (s *Service) AddAnnotation(ctx context.Context, an domain.Annotation) error {
	return s.notes.AddAnnotation(ctx, an)
}

func (s *Service) UpdateAnnotation(ctx context.Context, an domain.Annotation) error {
	return s.notes.UpdateAnnotation(ctx, an)
}

func (s *Service) Annotations(ctx context.Context, id domain.BookID) ([]domain.Annotation, error) {
	return s.notes.Annotations(ctx, id)
}

func (s *Service) DeleteAnnotation(ctx context.Context, annotationID string) error {
	return s.notes.DeleteAnnotation(ctx, annotationID)
}
