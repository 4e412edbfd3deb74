package domain

import "fmt"

// BookID is the opaque catalog identifier assigned by the library service.
// It is stable across sessions and used as the suffix of every per-book
// store key.
type BookID string

// Book is the canonical catalog entity. Instances are produced only by the
// backend normalization boundary; every field is already defaulted, so UI
// layers never deal with missing values.
type Book struct {
	ID            BookID        `json:"id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	CoverPath     string        `json:"cover_path"` // server-side path, not the cached cover
	FileType      string        `json:"file_type"`  // "EPUB", "PDF", ...
	FilePath      string        `json:"file_path"`  // document reference passed to ReadDocument
	TotalPages    int           `json:"total_pages"`
	AddedAt       int64         `json:"added_at"` // unix timestamp when imported
	PublishedDate string        `json:"published_date"`
	Description   string        `json:"description"`
	Language      string        `json:"language"`
	ISBN          string        `json:"isbn"`
	Related       []RelatedBook `json:"related,omitempty"`
}

// RelatedBook is the slim record shown on the detail page's related shelf.
type RelatedBook struct {
	ID       BookID `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	FileType string `json:"file_type"`
	FilePath string `json:"file_path"`
}

// DisplayTitle returns the title with the author appended, as rendered on
// cover placeholder tiles.
func (b Book) DisplayTitle() string {
	if b.Author == "" {
		return b.Title
	}
	return fmt.Sprintf("%s - %s", b.Title, b.Author)
}

// HasDocument reports whether the book can be opened in a reading session.
func (b Book) HasDocument() bool {
	return b.FilePath != ""
}

// CatalogSnapshot is the last full listing received from the library
// service, persisted under the catalog_cache key so views render instantly
// while a background refresh runs.
type CatalogSnapshot struct {
	Books     []Book `json:"books"`
	FetchedAt int64  `json:"fetched_at"` // unix timestamp of the listing
}

// Find returns the snapshot entry for id.
func (s CatalogSnapshot) Find(id BookID) (Book, bool) {
	for _, b := range s.Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// LastRead is the singleton "continue reading" pointer. It is overwritten
// wholesale each time a session starts; Progress and Rating are kept in
// step with the per-book records by ProgressStore.
type LastRead struct {
	BookID   BookID  `json:"book_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	CoverRef string  `json:"cover_ref"`
	FilePath string  `json:"file_path"`
	Progress float64 `json:"progress"` // percentage in [0,100]
	Rating   int     `json:"rating"`   // 0-5, 0 = unrated
}

// Bookmark is a saved position inside a document, stored by the library
// service.
type Bookmark struct {
	ID           string `json:"id"`
	BookID       BookID `json:"book_id"`
	Position     string `json:"position"`
	ChapterTitle string `json:"chapter_title"`
	PageNumber   int    `json:"page_number"`
}

// Annotation is a highlighted range with an optional note, stored by the
// library service.
type Annotation struct {
	ID              string `json:"id"`
	BookID          BookID `json:"book_id"`
	StartPosition   string `json:"start_position"`
	EndPosition     string `json:"end_position"`
	ChapterTitle    string `json:"chapter_title"`
	HighlightedText string `json:"highlighted_text"`
	Note            string `json:"note"`
	Color           string `json:"color"`
}
