// Package ingest writes catalog candidates into PostgreSQL through
// conflict-aware writers and slug registries.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
	"github.com/heartmarshall/cinemadb-backend/internal/slug"
)

// maxSlugAttempts bounds the re-mints after the slug constraint rejected an
// insert that lost a race with another writer.
const maxSlugAttempts = 3

type state uint8

const (
	uninitialized state = iota
	initialized
	tornDown
)

func (s state) String() string {
	switch s {
	case uninitialized:
		return "uninitialized"
	case initialized:
		return "initialized"
	case tornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// Slugger tells an Ingestor how to slug its records.
type Slugger[T any] struct {
	Registry slug.Registry
	// Seed is the text a slug is minted from.
	Seed func(T) string
	// Extra lists disambiguators for records that share a seed. Optional.
	Extra func(T) []string
	// Field points at the record's slug.
	Field func(*T) *string
}

func (s *Slugger[T]) mint(ctx context.Context, rec T) (string, error) {
	var extra []string
	if s.Extra != nil {
		extra = s.Extra(rec)
	}
	return s.Registry.Mint(ctx, s.Seed(rec), extra...)
}

// Options configures an Ingestor.
type Options[T any] struct {
	Name        string
	Slugger     *Slugger[T]
	Concurrency int
	OnInit      func(ctx context.Context) error
	OnClose     func()
}

// Ingestor is the generic write path for one table. Operations are only
// available between Initialize and Close.
type Ingestor[T any] struct {
	name        string
	writer      *record.Writer[T]
	slugger     *Slugger[T]
	concurrency int
	onInit      func(ctx context.Context) error
	onClose     func()
	log         *slog.Logger

	mu    sync.RWMutex
	state state
}

func New[T any](w *record.Writer[T], log *slog.Logger, opts Options[T]) *Ingestor[T] {
	if opts.Name == "" {
		opts.Name = w.Table().Name
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Ingestor[T]{
		name:        opts.Name,
		writer:      w,
		slugger:     opts.Slugger,
		concurrency: opts.Concurrency,
		onInit:      opts.OnInit,
		onClose:     opts.OnClose,
		log:         log.With("ingestor", opts.Name),
	}
}

func (i *Ingestor[T]) Name() string { return i.name }

// Initialize prepares the slug registry and runs the init hook. It is a
// no-op when already initialized and fails after Close.
func (i *Ingestor[T]) Initialize(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch i.state {
	case initialized:
		return nil
	case tornDown:
		return fmt.Errorf("%s: initialize after close: %w", i.name, domain.ErrNotInitialized)
	}

	if i.slugger != nil {
		if err := i.slugger.Registry.Setup(ctx); err != nil {
			return fmt.Errorf("%s: setup slugs: %w", i.name, err)
		}
	}
	if i.onInit != nil {
		if err := i.onInit(ctx); err != nil {
			return fmt.Errorf("%s: init: %w", i.name, err)
		}
	}

	i.state = initialized
	i.log.DebugContext(ctx, "initialized")
	return nil
}

// Close drops reference data and slugs. The ingestor cannot be reused.
func (i *Ingestor[T]) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state == tornDown {
		return
	}
	if i.state == initialized {
		if i.onClose != nil {
			i.onClose()
		}
		if i.slugger != nil {
			i.slugger.Registry.Clear()
		}
	}
	i.state = tornDown
	i.log.Debug("closed")
}

func (i *Ingestor[T]) ready() error {
	i.mu.RLock()
	st := i.state
	i.mu.RUnlock()

	if st != initialized {
		return fmt.Errorf("%s: %s: %w", i.name, st, domain.ErrNotInitialized)
	}
	return nil
}

// Add inserts rec without reading back a conflicting row.
func (i *Ingestor[T]) Add(ctx context.Context, rec T) domain.Outcome[T] {
	if err := i.ready(); err != nil {
		return domain.Failed[T](err)
	}
	return i.slugged(ctx, rec, i.writer.Add)
}

// GetOrCreate inserts rec or returns the row that already holds its
// natural key.
func (i *Ingestor[T]) GetOrCreate(ctx context.Context, rec T) domain.Outcome[T] {
	if err := i.ready(); err != nil {
		return domain.Failed[T](err)
	}
	return i.slugged(ctx, rec, i.writer.Create)
}

// Upsert inserts rec or refreshes updateColumns of the existing row.
func (i *Ingestor[T]) Upsert(ctx context.Context, rec T, updateColumns ...string) domain.Outcome[T] {
	if err := i.ready(); err != nil {
		return domain.Failed[T](err)
	}
	return i.slugged(ctx, rec, func(ctx context.Context, rec T) domain.Outcome[T] {
		return i.writer.Upsert(ctx, rec, updateColumns...)
	})
}

// AddMany adds every record independently and returns one outcome per
// record, in input order.
func (i *Ingestor[T]) AddMany(ctx context.Context, recs []T) []domain.Outcome[T] {
	out := make([]domain.Outcome[T], len(recs))
	if err := i.ready(); err != nil {
		for k := range out {
			out[k] = domain.Failed[T](err)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(i.concurrency)
	for k, rec := range recs {
		g.Go(func() error {
			out[k] = i.slugged(ctx, rec, i.writer.Add)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// AddBatch writes recs with chunked multi-row inserts and returns the
// number of new rows. Empty slugs are minted in place. Records whose slug
// collides in the table are skipped like duplicates; the skipped count is
// logged at debug.
func (i *Ingestor[T]) AddBatch(ctx context.Context, recs []T) (int64, error) {
	if err := i.ready(); err != nil {
		return 0, err
	}
	if err := i.mintMissing(ctx, recs); err != nil {
		return 0, err
	}
	n, err := i.writer.AddBatch(ctx, recs, 0)
	if err != nil {
		return n, fmt.Errorf("%s: add batch: %w", i.name, err)
	}
	i.log.DebugContext(ctx, "batch written",
		slog.Int("records", len(recs)),
		slog.Int64("inserted", n),
		slog.Int64("skipped", int64(len(recs))-n))
	return n, nil
}

// GetOrCreateBatch runs AddBatch and reads back the rows selected by
// filter, or returns nil without one.
func (i *Ingestor[T]) GetOrCreateBatch(ctx context.Context, recs []T, filter *record.Filter) ([]T, error) {
	if err := i.ready(); err != nil {
		return nil, err
	}
	if err := i.mintMissing(ctx, recs); err != nil {
		return nil, err
	}
	rows, err := i.writer.CreateBatch(ctx, recs, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: get or create batch: %w", i.name, err)
	}
	return rows, nil
}

// Exists reports whether a row matches all filters.
func (i *Ingestor[T]) Exists(ctx context.Context, filters map[string]any) (bool, error) {
	if err := i.ready(); err != nil {
		return false, err
	}
	return i.writer.Exists(ctx, filters)
}

// slugged runs write, minting the record's slug first when it is empty and
// again when the slug constraint rejects the insert.
func (i *Ingestor[T]) slugged(ctx context.Context, rec T, write func(context.Context, T) domain.Outcome[T]) domain.Outcome[T] {
	if i.slugger == nil {
		return write(ctx, rec)
	}

	field := i.slugger.Field(&rec)
	mint := *field == ""

	for attempt := 1; ; attempt++ {
		minted := ""
		if mint {
			s, err := i.slugger.mint(ctx, rec)
			if err != nil {
				return domain.Failed[T](fmt.Errorf("%s: mint slug: %w", i.name, err))
			}
			*field = s
			minted = s
		}

		out := write(ctx, rec)
		if out.IsInserted() {
			return out
		}
		if !errors.Is(out.Err, domain.ErrSlugTaken) {
			if minted != "" {
				i.slugger.Registry.Forget(minted)
			}
			return out
		}

		// The slug stays reserved: the table already holds it.
		if attempt >= maxSlugAttempts {
			return domain.Failed[T](fmt.Errorf("%s: slug %q after %d attempts: %w", i.name, *field, attempt, domain.ErrSlugTaken))
		}
		i.log.DebugContext(ctx, "slug taken, minting again", slog.String("slug", *field), slog.Int("attempt", attempt))
		mint = true
	}
}

func (i *Ingestor[T]) mintMissing(ctx context.Context, recs []T) error {
	if i.slugger == nil {
		return nil
	}
	for k := range recs {
		field := i.slugger.Field(&recs[k])
		if *field != "" {
			continue
		}
		s, err := i.slugger.mint(ctx, recs[k])
		if err != nil {
			return fmt.Errorf("%s: mint slug: %w", i.name, err)
		}
		*field = s
	}
	return nil
}
