package covers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaron-app/stellaron/internal/adapter"
	"github.com/stellaron-app/stellaron/internal/domain"
	"github.com/stellaron-app/stellaron/internal/store"
)

type stubFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *stubFetcher) FetchCoverBytes(context.Context, domain.BookID) ([]byte, error) {
	f.calls++
	return f.payload, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestCache(kv domain.KV, fetcher *stubFetcher) *Cache {
	return NewCache(kv, fetcher, adapter.NullLogger())
}

func TestFetchAndCachePopulatesStore(t *testing.T) {
	// No cached cover yet; the backend supplies the bytes.
	kv := store.NewMemory()
	fetcher := &stubFetcher{payload: pngBytes(t, 4, 6)}
	cache := newTestCache(kv, fetcher)

	_, ok := cache.GetSync("42")
	require.False(t, ok)

	handle := cache.FetchAndCache(context.Background(), "42")
	require.False(t, handle.Empty())
	assert.Equal(t, len(fetcher.payload), handle.Size)
	assert.Equal(t, 1, fetcher.calls)

	// A subsequent sync lookup derives a handle from the persisted form.
	fromStore, ok := cache.GetSync("42")
	require.True(t, ok)
	assert.False(t, fromStore.Empty())
	assert.Equal(t, handle.Size, fromStore.Size)
}

func TestFetchAndCacheHitSkipsBackend(t *testing.T) {
	kv := store.NewMemory()
	fetcher := &stubFetcher{payload: pngBytes(t, 4, 6)}
	cache := newTestCache(kv, fetcher)

	cache.FetchAndCache(context.Background(), "42")
	require.Equal(t, 1, fetcher.calls)

	handle := cache.FetchAndCache(context.Background(), "42")
	assert.False(t, handle.Empty())
	assert.Equal(t, 1, fetcher.calls, "cache hit must short-circuit the network path")
}

func TestFetchAndCacheEmptyResponse(t *testing.T) {
	cache := newTestCache(store.NewMemory(), &stubFetcher{payload: nil})

	handle := cache.FetchAndCache(context.Background(), "42")
	assert.True(t, handle.Empty())
}

func TestFetchAndCacheFetchFailure(t *testing.T) {
	cache := newTestCache(store.NewMemory(), &stubFetcher{err: errors.New("backend down")})

	handle := cache.FetchAndCache(context.Background(), "42")
	assert.True(t, handle.Empty())
}

func TestFetchAndCacheUndecodableBytes(t *testing.T) {
	kv := store.NewMemory()
	cache := newTestCache(kv, &stubFetcher{payload: []byte("not an image")})

	handle := cache.FetchAndCache(context.Background(), "42")
	assert.True(t, handle.Empty())

	_, ok := kv.Get(store.CoverKey("42"))
	assert.False(t, ok, "undecodable bytes must not be persisted")
}

func TestQuotaFailureStillReturnsHandle(t *testing.T) {
	// The store is too small for the encoded record; the write is
	// swallowed and the in-memory handle returned anyway.
	kv := store.NewMemoryWithCapacity(8)
	cache := newTestCache(kv, &stubFetcher{payload: pngBytes(t, 4, 6)})

	handle := cache.FetchAndCache(context.Background(), "42")
	require.False(t, handle.Empty())

	_, ok := kv.Get(store.CoverKey("42"))
	assert.False(t, ok)
}

func TestGetSyncCorruptRecordIsMiss(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(store.CoverKey("42"), []byte("!!! not base64 !!!")))

	cache := newTestCache(kv, &stubFetcher{})
	_, ok := cache.GetSync("42")
	assert.False(t, ok)
}

func TestGetSyncValidBase64InvalidImageIsMiss(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(store.CoverKey("42"), encodeRecord([]byte("plain text"))))

	cache := newTestCache(kv, &stubFetcher{})
	_, ok := cache.GetSync("42")
	assert.False(t, ok)
}

func TestInvalidateDropsRecord(t *testing.T) {
	kv := store.NewMemory()
	fetcher := &stubFetcher{payload: pngBytes(t, 4, 6)}
	cache := newTestCache(kv, fetcher)

	cache.FetchAndCache(context.Background(), "42")
	cache.Invalidate("42")

	_, ok := cache.GetSync("42")
	assert.False(t, ok)
}

func TestRecordEncodingRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0xff, 0x00, 0x7f, 0x80},
		[]byte("arbitrary bytes \x01\x02\x03"),
		pngBytes(t, 2, 2),
	}
	for _, raw := range payloads {
		decoded, err := decodeRecord(encodeRecord(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	}
}

func TestDisplaySizedKeepsSmallImages(t *testing.T) {
	cache := newTestCache(store.NewMemory(), &stubFetcher{})

	small := image.NewRGBA(image.Rect(0, 0, 50, 80))
	assert.Equal(t, small.Bounds(), cache.displaySized(small).Bounds())
}

func TestDisplaySizedDownscalesPortrait(t *testing.T) {
	cache := newTestCache(store.NewMemory(), &stubFetcher{})

	tall := image.NewRGBA(image.Rect(0, 0, 400, 800))
	got := cache.displaySized(tall)
	assert.Equal(t, 200, got.Bounds().Dx())
}

func TestDisplaySizedDownscalesLandscape(t *testing.T) {
	cache := newTestCache(store.NewMemory(), &stubFetcher{})

	wide := image.NewRGBA(image.Rect(0, 0, 900, 450))
	got := cache.displaySized(wide)
	assert.Equal(t, 300, got.Bounds().Dy())
}
