// Package covers converts backend cover payloads into cheaply
// re-displayable handles, backed by a best-effort persistent record per
// book. The read path never fails: a missing, corrupt, or unfetchable
// cover is an empty handle and the view falls back to a title tile.
package covers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"

	"github.com/nfnt/resize"

	"github.com/stellaron-app/stellaron/internal/domain"
	"github.com/stellaron-app/stellaron/internal/store"
)

// Display bounds for decoded handles; matches the catalog grid tile.
const (
	defaultMaxWidth  uint = 200
	defaultMaxHeight uint = 300
)

// Handle is a transient displayable cover. It lives only while a view
// references it and is never persisted itself.
type Handle struct {
	Image image.Image
	Size  int // length of the source byte payload
}

// Empty reports whether the handle carries no displayable image.
func (h Handle) Empty() bool { return h.Image == nil }

// fetcher is the slice of the library service the cache needs.
type fetcher interface {
	FetchCoverBytes(ctx context.Context, id domain.BookID) ([]byte, error)
}

// Cache is the cover cache layer. It does not track handle lifetime;
// ownership sits with whichever view displays the handle.
type Cache struct {
	kv     domain.KV
	client fetcher
	logger *slog.Logger

	maxWidth  uint
	maxHeight uint
}

func NewCache(kv domain.KV, client fetcher, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		kv:        kv,
		client:    client,
		logger:    logger,
		maxWidth:  defaultMaxWidth,
		maxHeight: defaultMaxHeight,
	}
}

// GetSync returns a handle derived from the persisted cover record, if a
// valid one exists. It performs no I/O beyond the store read and never
// fails: a record that does not decode is a miss.
func (c *Cache) GetSync(id domain.BookID) (Handle, bool) {
	encoded, ok := c.kv.Get(store.CoverKey(id))
	if !ok {
		return Handle{}, false
	}

	raw, err := decodeRecord(encoded)
	if err != nil {
		c.logger.Debug("cover record corrupt, treating as miss", "bookID", id)
		return Handle{}, false
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		c.logger.Debug("cached cover bytes undecodable, treating as miss", "bookID", id)
		return Handle{}, false
	}

	return Handle{Image: c.displaySized(img), Size: len(raw)}, true
}

// FetchAndCache returns a displayable handle for the book's cover,
// consulting the cache before the backend. Empty or failed responses yield
// an empty handle; the caller shows a placeholder. A successful fetch is
// persisted best-effort and capacity failures are swallowed without
// affecting the returned handle.
//
// Concurrent calls for the same book may both hit the backend; the second
// write just overwrites the first.
func (c *Cache) FetchAndCache(ctx context.Context, id domain.BookID) Handle {
	if h, ok := c.GetSync(id); ok {
		return h
	}

	raw, err := c.client.FetchCoverBytes(ctx, id)
	if err != nil {
		c.logger.Warn("cover fetch failed", "error", err, "bookID", id)
		return Handle{}
	}
	if len(raw) == 0 {
		return Handle{}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		c.logger.Warn("cover bytes undecodable", "error", err, "bookID", id)
		return Handle{}
	}
	handle := Handle{Image: c.displaySized(img), Size: len(raw)}

	if err := c.kv.Set(store.CoverKey(id), encodeRecord(raw)); err != nil {
		// Strictly best-effort: a full store must never block display.
		c.logger.Warn("cover cache write skipped", "error", err, "bookID", id)
	}

	return handle
}

// Invalidate drops the persisted record for a book. Outstanding handles
// stay valid; they are owned by their views.
func (c *Cache) Invalidate(id domain.BookID) {
	if err := c.kv.Delete(store.CoverKey(id)); err != nil {
		c.logger.Warn("cover invalidate failed", "error", err, "bookID", id)
	}
}

// displaySized downscales to the display bounds, keeping aspect ratio.
// Portrait covers pin width, landscape pins height.
func (c *Cache) displaySized(img image.Image) image.Image {
	bounds := img.Bounds()
	if uint(bounds.Dx()) <= c.maxWidth && uint(bounds.Dy()) <= c.maxHeight {
		return img
	}
	if bounds.Dy() > bounds.Dx() {
		return resize.Resize(c.maxWidth, 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, c.maxHeight, img, resize.Lanczos3)
}

// encodeRecord converts raw cover bytes into the text-safe persisted form.
func encodeRecord(raw []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out
}

// decodeRecord is the inverse of encodeRecord.
func decodeRecord(encoded []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(out, encoded)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
