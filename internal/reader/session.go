// Package reader governs one open reading session: content load, initial
// scroll-position resolution, throttled progress sampling, and a single
// commit into the progress store at close.
package reader

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stellaron-app/stellaron/internal/domain"
)

// State is the session lifecycle position.
type State int

const (
	StateInitializing State = iota
	StateReady
	StateReading
	StateError
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateReading:
		return "reading"
	case StateError:
		return "error"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const defaultSampleInterval = 100 * time.Millisecond

// Viewport is the rendered content surface the session drives. Offsets and
// extents are in layout units; the session never interprets them beyond
// the offset/extent ratio.
type Viewport interface {
	SetContent(markup string)
	Extent() int
	Offset() int
	ScrollTo(offset int)
	AnchorOffset(id string) (int, bool)
}

// documents is the slice of the library service the session needs.
type documents interface {
	ReadDocument(ctx context.Context, filePath string) (string, error)
}

// committer is the slice of the progress store the session needs.
type committer interface {
	CommitProgress(id domain.BookID, pct float64) error
}

// Config describes the session being opened.
type Config struct {
	BookID   domain.BookID
	FilePath string

	// Anchor, when set, is an element id to open at; it overrides the
	// stored percentage.
	Anchor string

	// InitialProgress is the previously stored percentage, used when no
	// anchor was requested.
	InitialProgress float64

	// SampleInterval throttles scroll sampling; zero selects the default.
	SampleInterval time.Duration
}

// Session is the state machine for one open document.
// Initializing → Ready → (Reading | Error) → Closing → Closed.
type Session struct {
	cfg      Config
	docs     documents
	progress committer
	view     Viewport
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	state      State
	err        error
	pct        float64 // volatile progress; persisted only at close
	lastSample time.Time
	committed  bool
}

func NewSession(cfg Config, docs documents, progress committer, view Viewport, logger *slog.Logger) *Session {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = defaultSampleInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:      cfg,
		docs:     docs,
		progress: progress,
		view:     view,
		logger:   logger,
		now:      time.Now,
		state:    StateInitializing,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the load failure, if the session is in the error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Percent returns the volatile progress percentage.
func (s *Session) Percent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pct
}

// Open fetches the document and resolves the initial scroll position. On
// fetch failure the session enters the error state but stays closable. A
// result arriving after Close is discarded without touching session state.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInitializing {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	markup, err := s.docs.ReadDocument(ctx, s.cfg.FilePath)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Liveness check: the session may have been torn down while the fetch
	// was in flight.
	if s.state != StateInitializing {
		s.logger.Debug("discarding late document load", "bookID", s.cfg.BookID, "state", s.state.String())
		return nil
	}

	if err != nil {
		s.state = StateError
		s.err = err
		s.logger.Warn("document load failed", "error", err, "bookID", s.cfg.BookID)
		return err
	}

	s.view.SetContent(markup)
	offset := s.initialOffset()
	s.view.ScrollTo(offset)
	s.pct = percentAt(offset, s.view.Extent())
	s.state = StateReady

	s.logger.Debug("session ready", "bookID", s.cfg.BookID, "offset", offset, "percent", s.pct)
	return nil
}

// initialOffset resolves the opening scroll target: explicit anchor first,
// then the stored percentage against the measured extent, then 0.
func (s *Session) initialOffset() int {
	if s.cfg.Anchor != "" {
		if off, ok := s.view.AnchorOffset(s.cfg.Anchor); ok {
			return off
		}
		s.logger.Debug("anchor not found, falling back to stored progress", "anchor", s.cfg.Anchor)
	}

	extent := s.view.Extent()
	if extent <= 0 {
		return 0
	}
	pct := clamp01(s.cfg.InitialProgress / 100)
	return int(pct * float64(extent))
}

// SampleScroll records the current scroll offset, at most once per sample
// interval. The derived percentage is held in volatile state only; nothing
// is persisted until Close.
func (s *Session) SampleScroll(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady && s.state != StateReading {
		return
	}

	now := s.now()
	if !s.lastSample.IsZero() && now.Sub(s.lastSample) < s.cfg.SampleInterval {
		return
	}
	s.lastSample = now
	s.state = StateReading
	s.pct = percentAt(offset, s.view.Extent())
}

// FollowLink handles a click on an in-document link. The fragment is
// resolved to an element id within the loaded content and the view scrolls
// straight to it; no reload, no state transition. Links without a fragment
// are not in-document and are left to the caller.
func (s *Session) FollowLink(href string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady && s.state != StateReading {
		return false
	}

	idx := strings.IndexByte(href, '#')
	if idx < 0 {
		return false
	}
	target := href[idx+1:]
	if target == "" {
		return false
	}

	off, ok := s.view.AnchorOffset(target)
	if !ok {
		s.logger.Debug("link target not found", "href", href)
		return false
	}
	s.view.ScrollTo(off)
	return true
}

// Close commits the volatile percentage exactly once and finishes the
// session. A session that never loaded content commits nothing, so a
// failed open cannot clobber the stored progress. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed || s.state == StateClosing {
		return nil
	}
	loaded := s.state == StateReady || s.state == StateReading
	s.state = StateClosing

	var err error
	if loaded && !s.committed {
		s.committed = true
		err = s.progress.CommitProgress(s.cfg.BookID, s.pct)
	}

	s.state = StateClosed
	return err
}

// percentAt converts a scroll offset into a clamped percentage. A
// non-positive extent always yields 0, never NaN or a negative value.
func percentAt(offset, extent int) float64 {
	if extent <= 0 {
		return 0
	}
	pct := float64(offset) / float64(extent) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
