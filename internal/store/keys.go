package store

import "github.com/stellaron-app/stellaron/internal/domain"

// Store key space. Names are part of the persisted format and must stay
// stable across restarts.
const (
	// KeyLastRead holds the serialized continue-reading pointer.
	KeyLastRead = "last_read"

	// KeyCatalog holds the serialized last full catalog listing.
	KeyCatalog = "catalog_cache"

	prefixCover    = "cover:"
	prefixProgress = "progress:"
	prefixRating   = "rating:"
)

// CoverKey returns the record key for a book's encoded cover bytes.
func CoverKey(id domain.BookID) string { return prefixCover + string(id) }

// ProgressKey returns the record key for a book's progress percentage.
func ProgressKey(id domain.BookID) string { return prefixProgress + string(id) }

// RatingKey returns the record key for a book's rating.
func RatingKey(id domain.BookID) string { return prefixRating + string(id) }
