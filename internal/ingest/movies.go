package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
	"github.com/heartmarshall/cinemadb-backend/internal/slug"
)

// TxRunner runs fn in one transaction. *postgres.TxManager satisfies it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// withLinks writes a row and, only when it was inserted, its join rows in
// the same transaction. A failed link rolls the row back.
func withLinks[T any](ctx context.Context, tx TxRunner, write func(context.Context) domain.Outcome[T], link func(context.Context, *T) error) domain.Outcome[T] {
	var out domain.Outcome[T]
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		out = write(ctx)
		if !out.IsInserted() {
			return out.Err
		}
		return link(ctx, out.Row)
	})
	if err != nil && !out.IsFailed() {
		out = domain.Failed[T](err)
	}
	return out
}

// disambiguators separates namesakes: the year when known, then the IMDb id.
func disambiguators(year *int32, imdbID string) []string {
	if year == nil {
		return []string{imdbID}
	}
	return []string{strconv.Itoa(int(*year)), imdbID}
}

// Movies ingests IMDb titles with their genres.
type Movies struct {
	records *Ingestor[domain.Movie]
	links   *record.Writer[domain.MovieGenre]
	types   *Reference[domain.MovieType]
	genres  *Reference[domain.Genre]
	tx      TxRunner
	log     *slog.Logger
}

// NewMovies wires the movie ingestor. tx may be nil, in which case a movie
// and its genre links are written without a transaction.
func NewMovies(
	w *record.Writer[domain.Movie],
	links *record.Writer[domain.MovieGenre],
	types *Reference[domain.MovieType],
	genres *Reference[domain.Genre],
	slugs slug.Registry,
	tx TxRunner,
	log *slog.Logger,
	concurrency int,
) *Movies {
	if tx == nil {
		tx = noTx{}
	}
	m := &Movies{links: links, types: types, genres: genres, tx: tx, log: log.With("ingestor", "movies")}
	m.records = New(w, log, Options[domain.Movie]{
		Name:        "movies",
		Concurrency: concurrency,
		Slugger: &Slugger[domain.Movie]{
			Registry: slugs,
			Seed:     func(mv domain.Movie) string { return mv.NameEn },
			Extra:    func(mv domain.Movie) []string { return disambiguators(mv.StartYear, mv.IMDbID) },
			Field:    func(mv *domain.Movie) *string { return &mv.Slug },
		},
		OnInit: func(ctx context.Context) error {
			if err := types.Initialize(ctx); err != nil {
				return err
			}
			return genres.Initialize(ctx)
		},
	})
	return m
}

func (m *Movies) Initialize(ctx context.Context) error { return m.records.Initialize(ctx) }

func (m *Movies) Close() { m.records.Close() }

// Add safe-adds a movie. Genre links are written only for a new movie.
func (m *Movies) Add(ctx context.Context, c domain.MovieCandidate) domain.Outcome[domain.Movie] {
	return m.write(ctx, c, m.records.Add)
}

// GetOrCreate is Add that also returns an existing movie.
func (m *Movies) GetOrCreate(ctx context.Context, c domain.MovieCandidate) domain.Outcome[domain.Movie] {
	return m.write(ctx, c, m.records.GetOrCreate)
}

// Exists reports whether a movie with the IMDb id is stored.
func (m *Movies) Exists(ctx context.Context, imdbID string) (bool, error) {
	return m.records.Exists(ctx, map[string]any{"imdb_mvid": imdbID})
}

func (m *Movies) write(ctx context.Context, c domain.MovieCandidate, op func(context.Context, domain.Movie) domain.Outcome[domain.Movie]) domain.Outcome[domain.Movie] {
	if err := m.records.ready(); err != nil {
		return domain.Failed[domain.Movie](err)
	}

	movie := c.Movie
	if c.TypeName != "" {
		if id, ok := m.types.ID(c.TypeName); ok {
			movie.TypeID = &id
		} else {
			m.log.DebugContext(ctx, "unknown movie type", slog.String("imdb_id", movie.IMDbID), slog.String("type", c.TypeName))
		}
	}

	return withLinks(ctx, m.tx,
		func(ctx context.Context) domain.Outcome[domain.Movie] { return op(ctx, movie) },
		func(ctx context.Context, row *domain.Movie) error { return m.linkGenres(ctx, row, c.Genres) },
	)
}

func (m *Movies) linkGenres(ctx context.Context, movie *domain.Movie, names []string) error {
	rows := make([]domain.MovieGenre, 0, len(names))
	for _, name := range names {
		id, ok := m.genres.ID(name)
		if !ok {
			m.log.DebugContext(ctx, "unknown genre", slog.String("imdb_id", movie.IMDbID), slog.String("genre", name))
			continue
		}
		rows = append(rows, domain.MovieGenre{MovieID: movie.ID, GenreID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := m.links.AddMany(ctx, rows); err != nil {
		return fmt.Errorf("movies: link genres of %s: %w", movie.IMDbID, err)
	}
	return nil
}
