package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaron-app/stellaron/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	_, ok := s.Get("progress:1")
	assert.False(t, ok)

	require.NoError(t, s.Set("progress:1", []byte("42.5")))

	got, ok := s.Get("progress:1")
	require.True(t, ok)
	assert.Equal(t, []byte("42.5"), got)

	require.NoError(t, s.Delete("progress:1"))
	_, ok = s.Get("progress:1")
	assert.False(t, ok)
}

func TestPersistentStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("rating:7", []byte("4")))
	require.NoError(t, s.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("rating:7")
	require.True(t, ok)
	assert.Equal(t, []byte("4"), got)
}

func TestDeleteMissingKeyIsHarmless(t *testing.T) {
	s := NewMemory()
	assert.NoError(t, s.Delete("cover:nope"))
}

func TestCapacityExceededReportsQuota(t *testing.T) {
	s := NewMemoryWithCapacity(10)

	require.NoError(t, s.Set("a", []byte("12345")))

	err := s.Set("b", []byte("678901234567"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	// The rejected write left nothing behind.
	_, ok := s.Get("b")
	assert.False(t, ok)

	// Overwriting an existing key reuses its budget.
	require.NoError(t, s.Set("a", []byte("1234567890")))
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "cover:42", CoverKey("42"))
	assert.Equal(t, "progress:42", ProgressKey("42"))
	assert.Equal(t, "rating:42", RatingKey("42"))
	assert.Equal(t, "last_read", KeyLastRead)
	assert.Equal(t, "catalog_cache", KeyCatalog)
}
