package backend

import "github.com/stellaron-app/stellaron/internal/domain"

// Fallbacks applied at the normalization boundary, mirroring what the
// catalog views expect to render.
const (
	fallbackTitle  = "Untitled Book"
	fallbackAuthor = "Unknown Author"
	fallbackType   = "BOOK"
)

// mapBooks converts raw listing records to canonical entities, dropping
// records without an identifier.
func mapBooks(records []bookRecord) []domain.Book {
	books := make([]domain.Book, 0, len(records))
	for _, r := range records {
		if r.BookID == "" {
			continue
		}
		books = append(books, mapBook(r))
	}
	return books
}

// mapBook normalizes a single record. Optionality stops here: every field
// the UI reads is defaulted explicitly.
func mapBook(r bookRecord) domain.Book {
	b := domain.Book{
		ID:            domain.BookID(r.BookID),
		Title:         r.Title,
		Author:        r.Author,
		CoverPath:     r.CoverImagePath,
		FileType:      r.FileType,
		FilePath:      r.FilePath,
		TotalPages:    r.TotalPages,
		AddedAt:       r.AddedAt,
		PublishedDate: r.PublishedDate,
		Description:   r.Description,
		Language:      r.Language,
		ISBN:          r.ISBN,
	}

	if b.Title == "" {
		b.Title = fallbackTitle
	}
	if b.Author == "" {
		b.Author = fallbackAuthor
	}
	if b.FileType == "" {
		b.FileType = fallbackType
	}
	if b.TotalPages < 0 {
		b.TotalPages = 0
	}

	for _, rel := range r.RelatedBooks {
		if rel.BookID == "" {
			continue
		}
		related := domain.RelatedBook{
			ID:       domain.BookID(rel.BookID),
			Title:    rel.Title,
			Author:   rel.Author,
			FileType: rel.FileType,
			FilePath: rel.FilePath,
		}
		if related.Title == "" {
			related.Title = fallbackTitle
		}
		if related.Author == "" {
			related.Author = fallbackAuthor
		}
		b.Related = append(b.Related, related)
	}

	return b
}

func mapBookmarks(records []bookmarkRecord) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Bookmark{
			ID:           r.ID,
			BookID:       domain.BookID(r.BookID),
			Position:     r.Position,
			ChapterTitle: r.ChapterTitle,
			PageNumber:   r.PageNumber,
		})
	}
	return out
}

func mapAnnotations(records []annotationRecord) []domain.Annotation {
	out := make([]domain.Annotation, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Annotation{
			ID:              r.ID,
			BookID:          domain.BookID(r.BookID),
			StartPosition:   r.StartPosition,
			EndPosition:     r.EndPosition,
			ChapterTitle:    r.ChapterTitle,
			HighlightedText: r.HighlightedText,
			Note:            r.Note,
			Color:           r.Color,
		})
	}
	return out
}
