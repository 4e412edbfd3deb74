// Package backend implements the library-service client: catalog listing,
// metadata, cover bytes, document content, import/removal, and notes. Raw
// wire records are normalized into canonical domain entities at this
// boundary; nothing optional leaks past it.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stellaron-app/stellaron/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client implements domain.CatalogRepository, domain.DocumentRepository,
// and domain.NotesRepository over the library service's HTTP API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: cli, logger: logger}
}

func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	var records []bookRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&records).
		Get("/books")
	if err != nil {
		c.logger.Error("list books request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	c.logger.Debug("listed books", "count", len(records))
	return mapBooks(records), nil
}

func (c *Client) FetchMetadata(ctx context.Context, id domain.BookID) (domain.Book, error) {
	var record bookRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&record).
		Get("/books/" + string(id))
	if err != nil {
		return domain.Book{}, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return domain.Book{}, err
	}
	if record.BookID == "" {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return mapBook(record), nil
}

// FetchCoverBytes returns the raw cover payload. Books without a cover
// yield an empty slice; the cover cache turns that into a placeholder.
func (c *Client) FetchCoverBytes(ctx context.Context, id domain.BookID) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/books/" + string(id) + "/cover")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("cover fetch: unexpected status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func (c *Client) ReadDocument(ctx context.Context, filePath string) (string, error) {
	var record documentRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("path", filePath).
		SetResult(&record).
		Get("/documents")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return "", err
	}
	return record.Content, nil
}

func (c *Client) ImportBook(ctx context.Context, path string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"path": path}).
		Post("/books/import")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	return c.checkStatus(resp)
}

func (c *Client) RemoveBook(ctx context.Context, id domain.BookID) (bool, error) {
	var record removeRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&record).
		Delete("/books/" + string(id))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return false, err
	}
	return record.Removed, nil
}

func (c *Client) AddBookmark(ctx context.Context, bm domain.Bookmark) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(bookmarkRecord{
			BookID:       string(bm.BookID),
			Position:     bm.Position,
			ChapterTitle: bm.ChapterTitle,
			PageNumber:   bm.PageNumber,
		}).
		Post("/books/" + string(bm.BookID) + "/bookmarks")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	return c.checkStatus(resp)
}

func (c *Client) Bookmarks(ctx context.Context, id domain.BookID) ([]domain.Bookmark, error) {
	var records []bookmarkRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&records).
		Get("/books/" + string(id) + "/bookmarks")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return mapBookmarks(records), nil
}

func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/bookmarks/" + bookmarkID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	return c.checkStatus(resp)
}

func (c *Client) AddAnnotation(ctx context.Context, an domain.Annotation) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(annotationRecord{
			BookID:          string(an.BookID),
			StartPosition:   an.StartPosition,
			EndPosition:     an.EndPosition,
			ChapterTitle:    an.ChapterTitle,
			HighlightedText: an.HighlightedText,
			Note:            an.Note,
			Color:           an.Color,
		}).
		Post("/books/" + string(an.BookID) + "/annotations")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	return c.checkStatus(resp)
}

// UpdateAnnotation rewrites an existing annotation in place; the note and
// color are the fields that actually change after creation.
func (c *Client) UpdateAnnotation(ctx context.Context, an domain.Annotation) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(annotationRecord{
			ID:              an.ID,
			BookID:          string(an.BookID),
			StartPosition:   an.StartPosition,
			EndPosition:     an.EndPosition,
			ChapterTitle:    an.ChapterTitle,
			HighlightedText: an.HighlightedText,
			Note:            an.Note,
			Color:           an.Color,
		}).
		Put("/annotations/" + an.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	return c.checkStatus(resp)
}

func (c *Client) Annotations(ctx context.Context, id domain.BookID) ([]domain.Annotation, error) {
	var records []annotationRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&records).
		Get("/books/" + string(id) + "/annotations")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return mapAnnotations(records), nil
}

func (c *Client) DeleteAnnotation(ctx context.Context, annotationID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/annotations/" + annotationID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	return c.checkStatus(resp)
}

// checkStatus maps response codes to sentinel errors.
func (c *Client) checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return domain.ErrBookNotFound
	case resp.IsError():
		c.logger.Error("library service error", "status", resp.StatusCode(), "url", resp.Request.URL)
		return fmt.Errorf("library service: unexpected status %d", resp.StatusCode())
	default:
		return nil
	}
}
