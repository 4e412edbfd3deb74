package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellaron-app/stellaron/internal/adapter"
	"github.com/stellaron-app/stellaron/internal/bus"
	"github.com/stellaron-app/stellaron/internal/domain"
	"github.com/stellaron-app/stellaron/internal/store"
)

func newTestStore() (*Store, *store.Store, *bus.Bus) {
	kv := store.NewMemory()
	b := bus.New()
	return NewStore(kv, b, adapter.NullLogger()), kv, b
}

func TestProgressDefaultsToZero(t *testing.T) {
	s, _, _ := newTestStore()
	assert.Zero(t, s.Progress("7"))
	assert.Zero(t, s.Rating("7"))
}

func TestCommitProgressClampsHigh(t *testing.T) {
	s, kv, _ := newTestStore()

	require.NoError(t, s.CommitProgress("7", 150))
	assert.Equal(t, 100.0, s.Progress("7"))

	raw, ok := kv.Get(store.ProgressKey("7"))
	require.True(t, ok)
	assert.Equal(t, "100", string(raw))
}

func TestCommitProgressClampsLow(t *testing.T) {
	s, kv, _ := newTestStore()

	require.NoError(t, s.CommitProgress("7", -10))
	assert.Zero(t, s.Progress("7"))

	raw, ok := kv.Get(store.ProgressKey("7"))
	require.True(t, ok)
	assert.Equal(t, "0", string(raw))
}

func TestCorruptProgressRecordDefaultsToZero(t *testing.T) {
	s, kv, _ := newTestStore()
	require.NoError(t, kv.Set(store.ProgressKey("7"), []byte("forty-two")))
	assert.Zero(t, s.Progress("7"))
}

func TestSetRatingClamps(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.SetRating("7", 9))
	assert.Equal(t, 5, s.Rating("7"))

	require.NoError(t, s.SetRating("7", -3))
	assert.Zero(t, s.Rating("7"))
}

func TestSetRatingPropagatesToMatchingPointer(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.RecordSessionStart(domain.LastRead{BookID: "7", Title: "The Lost World"}))
	require.NoError(t, s.SetRating("7", 5))

	ptr, ok := s.LastRead()
	require.True(t, ok)
	assert.Equal(t, 5, ptr.Rating)
	assert.Equal(t, "The Lost World", ptr.Title)
}

func TestSetRatingLeavesOtherPointerAlone(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.RecordSessionStart(domain.LastRead{BookID: "7", Rating: 2}))
	require.NoError(t, s.SetRating("8", 5))

	ptr, ok := s.LastRead()
	require.True(t, ok)
	assert.Equal(t, 2, ptr.Rating)
	assert.Equal(t, 5, s.Rating("8"))
}

func TestCommitProgressPropagatesToMatchingPointer(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.RecordSessionStart(domain.LastRead{BookID: "7", Progress: 10}))
	require.NoError(t, s.CommitProgress("7", 90))

	ptr, ok := s.LastRead()
	require.True(t, ok)
	assert.Equal(t, 90.0, ptr.Progress)
}

func TestCorruptPointerSkipsPropagation(t *testing.T) {
	s, kv, _ := newTestStore()

	require.NoError(t, kv.Set(store.KeyLastRead, []byte("{broken json")))
	require.NoError(t, s.SetRating("7", 4))

	// The rating write itself still landed.
	assert.Equal(t, 4, s.Rating("7"))
	_, ok := s.LastRead()
	assert.False(t, ok)
}

func TestRecordSessionStartOverwritesWholesale(t *testing.T) {
	s, _, _ := newTestStore()

	require.NoError(t, s.RecordSessionStart(domain.LastRead{
		BookID: "7", Title: "The Lost World", Author: "Arthur Conan Doyle",
		CoverRef: "covers/7.png", Progress: 40, Rating: 4,
	}))
	require.NoError(t, s.RecordSessionStart(domain.LastRead{BookID: "8", Title: "The Time Machine"}))

	ptr, ok := s.LastRead()
	require.True(t, ok)
	assert.Equal(t, domain.BookID("8"), ptr.BookID)
	assert.Empty(t, ptr.Author, "snapshot semantics: no fields merged from the previous pointer")
	assert.Zero(t, ptr.Rating)
}

func TestMutationsPublishProgressChanged(t *testing.T) {
	s, _, b := newTestStore()

	events := 0
	b.Subscribe(domain.EventProgressChanged, func(string) { events++ })

	require.NoError(t, s.CommitProgress("7", 50))
	require.NoError(t, s.SetRating("7", 3))
	require.NoError(t, s.RecordSessionStart(domain.LastRead{BookID: "7"}))

	assert.Equal(t, 3, events)
}

func TestPurgeRemovesRecords(t *testing.T) {
	s, kv, _ := newTestStore()

	require.NoError(t, s.CommitProgress("7", 50))
	require.NoError(t, s.SetRating("7", 3))
	require.NoError(t, s.Purge("7"))

	_, ok := kv.Get(store.ProgressKey("7"))
	assert.False(t, ok)
	_, ok = kv.Get(store.RatingKey("7"))
	assert.False(t, ok)
}

func TestNilBusIsAllowed(t *testing.T) {
	s := NewStore(store.NewMemory(), nil, adapter.NullLogger())
	assert.NoError(t, s.CommitProgress("7", 50))
}
