package backend

// bookRecord is the raw library-service listing entry. Every field is
// optional on the wire; the mapper is the only place that deals with that.
type bookRecord struct {
	BookID         string          `json:"book_id"`
	Title          string          `json:"title,omitempty"`
	Author         string          `json:"author,omitempty"`
	CoverImagePath string          `json:"cover_image_path,omitempty"`
	FileType       string          `json:"file_type,omitempty"`
	FilePath       string          `json:"file_path,omitempty"`
	TotalPages     int             `json:"total_pages,omitempty"`
	AddedAt        int64           `json:"added_at,omitempty"`
	PublishedDate  string          `json:"published_date,omitempty"`
	Description    string          `json:"description,omitempty"`
	Language       string          `json:"language,omitempty"`
	ISBN           string          `json:"isbn,omitempty"`
	RelatedBooks   []relatedRecord `json:"related_books,omitempty"`
}

type relatedRecord struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	FileType string `json:"file_type,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// documentRecord wraps rendered document content.
type documentRecord struct {
	Content string `json:"content"`
}

// removeRecord reports whether a deletion was actually carried out.
type removeRecord struct {
	Removed bool `json:"removed"`
}

type bookmarkRecord struct {
	ID           string `json:"id"`
	BookID       string `json:"book_id"`
	Position     string `json:"position,omitempty"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	PageNumber   int    `json:"page_number,omitempty"`
}

type annotationRecord struct {
	ID              string `json:"id"`
	BookID          string `json:"book_id"`
	StartPosition   string `json:"start_position,omitempty"`
	EndPosition     string `json:"end_position,omitempty"`
	ChapterTitle    string `json:"chapter_title,omitempty"`
	HighlightedText string `json:"highlighted_text,omitempty"`
	Note            string `json:"note,omitempty"`
	Color           string `json:"color,omitempty"`
}
