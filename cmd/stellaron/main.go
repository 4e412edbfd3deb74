package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/stellaron-app/stellaron/internal/adapter"
	"github.com/stellaron-app/stellaron/internal/backend"
	"github.com/stellaron-app/stellaron/internal/bus"
	"github.com/stellaron-app/stellaron/internal/covers"
	"github.com/stellaron-app/stellaron/internal/domain"
	"github.com/stellaron-app/stellaron/internal/library"
	"github.com/stellaron-app/stellaron/internal/progress"
	"github.com/stellaron-app/stellaron/internal/reader"
	"github.com/stellaron-app/stellaron/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `usage: stellaron <command> [args]

commands:
  list                 show the catalog (cached first, then refreshed)
  search <query>       fuzzy-search the cached catalog
  show <id>            show metadata, progress, and rating for a book
  read <id> [anchor]   open a reading session and commit progress on close
  rate <id> <0-5>      rate a book
  import <path>        import a document into the library
  rm <id>              remove a book and purge its local records
`

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("stellaron %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	store    *store.Store
	bus      *bus.Bus
	client   *backend.Client
	covers   *covers.Cache
	progress *progress.Store
	library  *library.Service
	logger   *slog.Logger
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting stellaron", "version", Version)

	kv, err := store.New(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer kv.Close()

	changeBus := bus.New()
	changeBus.Subscribe(domain.EventCatalogUpdated, func(event string) {
		logger.Debug("event", "name", event)
	})
	changeBus.Subscribe(domain.EventProgressChanged, func(event string) {
		logger.Debug("event", "name", event)
	})

	client := backend.NewClient(cfg.Backend.URL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, logger)
	coverCache := covers.NewCache(kv, client, logger)
	progressStore := progress.NewStore(kv, changeBus, logger)
	librarySvc := library.NewService(client, client, kv, coverCache, progressStore, changeBus, logger)

	a := &app{
		store:    kv,
		bus:      changeBus,
		client:   client,
		covers:   coverCache,
		progress: progressStore,
		library:  librarySvc,
		logger:   logger,
	}

	ctx := context.Background()

	switch cmd := args[0]; cmd {
	case "list":
		return a.list(ctx)
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("search needs a query")
		}
		return a.search(args[1])
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("show needs a book id")
		}
		return a.show(ctx, domain.BookID(args[1]))
	case "read":
		if len(args) < 2 {
			return fmt.Errorf("read needs a book id")
		}
		anchor := ""
		if len(args) > 2 {
			anchor = args[2]
		}
		return a.read(ctx, domain.BookID(args[1]), anchor, cfg)
	case "rate":
		if len(args) < 3 {
			return fmt.Errorf("rate needs a book id and a rating")
		}
		rating, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("rating must be an integer 0-5")
		}
		return a.progress.SetRating(domain.BookID(args[1]), rating)
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("import needs a path")
		}
		return a.library.Import(ctx, args[1])
	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("rm needs a book id")
		}
		return a.library.Remove(ctx, domain.BookID(args[1]))
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) list(ctx context.Context) error {
	// Cached snapshot renders instantly; the refresh follows.
	if snap, ok := a.library.CachedCatalog(); ok {
		printBooks(snap.Books, "cached")
	}

	snap, err := a.library.RefreshCatalog(ctx)
	if err != nil {
		return err
	}
	printBooks(snap.Books, "fresh")
	return nil
}

func (a *app) search(query string) error {
	results := a.library.Search(query)
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	printBooks(results, "matches")
	return nil
}

func (a *app) show(ctx context.Context, id domain.BookID) error {
	book, err := a.library.Metadata(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s by %s\n", book.Title, book.Author)
	fmt.Printf("  type: %s  pages: %d  published: %s\n", book.FileType, book.TotalPages, book.PublishedDate)
	fmt.Printf("  progress: %.1f%%  rating: %d/5\n", a.progress.Progress(id), a.progress.Rating(id))
	if h, ok := a.covers.GetSync(id); ok {
		fmt.Printf("  cover: %dx%d (cached, %d bytes)\n", h.Image.Bounds().Dx(), h.Image.Bounds().Dy(), h.Size)
	}
	if book.Description != "" {
		fmt.Printf("\n%s\n", book.Description)
	}
	return nil
}

func (a *app) read(ctx context.Context, id domain.BookID, anchor string, cfg *adapter.Config) error {
	book, err := a.library.Metadata(ctx, id)
	if err != nil {
		return err
	}
	if !book.HasDocument() {
		return fmt.Errorf("book %s has no document", id)
	}

	// Warm the cover cache so the continue-reading card has something to show.
	a.covers.FetchAndCache(ctx, id)

	stored := a.progress.Progress(id)
	if err := a.progress.RecordSessionStart(domain.LastRead{
		BookID:   id,
		Title:    book.Title,
		Author:   book.Author,
		CoverRef: book.CoverPath,
		FilePath: book.FilePath,
		Progress: stored,
		Rating:   a.progress.Rating(id),
	}); err != nil {
		a.logger.Warn("failed to record session start", "error", err)
	}

	session := reader.NewSession(reader.Config{
		BookID:          id,
		FilePath:        book.FilePath,
		Anchor:          anchor,
		InitialProgress: stored,
		SampleInterval:  time.Duration(cfg.Reader.SampleIntervalMS) * time.Millisecond,
	}, a.client, a.progress, reader.NewLayout(), a.logger)

	if err := session.Open(ctx); err != nil {
		fmt.Printf("could not load %s: %v\n", book.Title, err)
		return session.Close()
	}

	fmt.Printf("reading %s at %.1f%%\n", book.Title, session.Percent())
	return session.Close()
}

func printBooks(books []domain.Book, label string) {
	fmt.Printf("%s (%d):\n", label, len(books))
	for _, b := range books {
		fmt.Printf("  %-12s %s - %s [%s]\n", b.ID, b.Title, b.Author, b.FileType)
	}
}
