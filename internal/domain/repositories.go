package domain

import "context"

// CatalogRepository is the library service surface for catalog metadata,
// covers, and import/removal.
type CatalogRepository interface {
	// ListBooks returns the full normalized catalog listing.
	ListBooks(ctx context.Context) ([]Book, error)

	// FetchMetadata returns the full record for a single book.
	FetchMetadata(ctx context.Context, id BookID) (Book, error)

	// FetchCoverBytes returns the raw cover image payload. A book without
	// a cover yields an empty slice, not an error.
	FetchCoverBytes(ctx context.Context, id BookID) ([]byte, error)

	// ImportBook asks the service to ingest a document from a path visible
	// to it.
	ImportBook(ctx context.Context, path string) error

	// RemoveBook deletes the book server-side. The boolean reports whether
	// the service actually confirmed the deletion.
	RemoveBook(ctx context.Context, id BookID) (bool, error)
}

// DocumentRepository supplies rendered document content for reading
// sessions. Conversion to markup happens service-side.
type DocumentRepository interface {
	ReadDocument(ctx context.Context, filePath string) (string, error)
}

// NotesRepository covers server-side bookmarks and annotations.
type NotesRepository interface {
	AddBookmark(ctx context.Context, bm Bookmark) error
	Bookmarks(ctx context.Context, id BookID) ([]Bookmark, error)
	DeleteBookmark(ctx context.Context, bookmarkID string) error

	AddAnnotation(ctx context.Context, an Annotation) error
	UpdateAnnotation(ctx context.Context, an Annotation) error
	Annotations(ctx context.Context, id BookID) ([]Annotation, error)
	DeleteAnnotation(ctx context.Context, annotationID string) error
}
