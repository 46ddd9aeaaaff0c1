package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// TMDbMovies stores TMDb details of IMDb movies. Details are refreshed on
// every call, so the ingestor only exposes Upsert.
type TMDbMovies struct {
	records      *Ingestor[domain.TMDbMovie]
	movies       *record.Writer[domain.Movie]
	genreLinks   *record.Writer[domain.MovieGenre]
	countryLinks *record.Writer[domain.MovieCountry]
	genres       *Reference[domain.Genre]
	countries    *Reference[domain.Country]
	productions  *Productions
	collections  *Ingestor[domain.Collection]
	tx           TxRunner
	log          *slog.Logger

	movieIDs idMap
}

func NewTMDbMovies(
	w *record.Writer[domain.TMDbMovie],
	movies *record.Writer[domain.Movie],
	genreLinks *record.Writer[domain.MovieGenre],
	countryLinks *record.Writer[domain.MovieCountry],
	collections *record.Writer[domain.Collection],
	genres *Reference[domain.Genre],
	countries *Reference[domain.Country],
	productions *Productions,
	tx TxRunner,
	log *slog.Logger,
	concurrency int,
) *TMDbMovies {
	if tx == nil {
		tx = noTx{}
	}
	t := &TMDbMovies{
		movies:       movies,
		genreLinks:   genreLinks,
		countryLinks: countryLinks,
		genres:       genres,
		countries:    countries,
		productions:  productions,
		collections:  New(collections, log, Options[domain.Collection]{Name: "collections"}),
		tx:           tx,
		log:          log.With("ingestor", "tmdb"),
	}
	t.records = New(w, log, Options[domain.TMDbMovie]{
		Name:        "tmdb",
		Concurrency: concurrency,
		OnInit: func(ctx context.Context) error {
			for _, l := range []Lifecycle{countries, genres, productions, t.collections} {
				if err := l.Initialize(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		OnClose: func() {
			t.movieIDs.clear()
			t.collections.Close()
		},
	})
	return t
}

func (t *TMDbMovies) Initialize(ctx context.Context) error { return t.records.Initialize(ctx) }

func (t *TMDbMovies) Close() { t.records.Close() }

// Upsert writes the details of c, attaches its collection, links its genres,
// countries and companies and sets the movie's tmdb_added flag. Links are
// added on refresh too; existing ones are left alone.
func (t *TMDbMovies) Upsert(ctx context.Context, c domain.TMDbCandidate) domain.Outcome[domain.TMDbMovie] {
	if err := t.records.ready(); err != nil {
		return domain.Failed[domain.TMDbMovie](err)
	}

	movieID, err := resolveID(ctx, &t.movieIDs, t.movies, "imdb_mvid", c.IMDbID,
		func(m domain.Movie) int64 { return m.ID })
	if err != nil {
		return domain.Failed[domain.TMDbMovie](fmt.Errorf("tmdb: movie: %w", err))
	}
	details := c.Details
	details.MovieID = movieID

	var out domain.Outcome[domain.TMDbMovie]
	err = t.tx.RunInTx(ctx, func(ctx context.Context) error {
		if c.Collection != nil {
			row, err := t.collections.GetOrCreate(ctx, *c.Collection).Result()
			if err != nil {
				return fmt.Errorf("tmdb: collection %d: %w", c.Collection.TMDbID, err)
			}
			if row != nil {
				details.CollectionID = &row.ID
			}
		}
		out = t.records.Upsert(ctx, details)
		if out.IsFailed() {
			return out.Err
		}
		if err := t.linkGenres(ctx, movieID, c.Genres); err != nil {
			return err
		}
		if err := t.linkCountries(ctx, movieID, c.Countries); err != nil {
			return err
		}
		if err := t.linkCompanies(ctx, movieID, c.Companies); err != nil {
			return err
		}
		if _, err := t.movies.Update(ctx, map[string]any{"tmdb_added": true}, map[string]any{"id": movieID}); err != nil {
			return fmt.Errorf("tmdb: flag movie %d: %w", movieID, err)
		}
		return nil
	})
	if err != nil && !out.IsFailed() {
		out = domain.Failed[domain.TMDbMovie](err)
	}
	return out
}

// linkGenres matches TMDb genre names against genre.tmdb_name.
func (t *TMDbMovies) linkGenres(ctx context.Context, movieID int64, names []string) error {
	rows := make([]domain.MovieGenre, 0, len(names))
	for _, name := range names {
		id, ok := t.genres.AliasID(name)
		if !ok {
			t.log.DebugContext(ctx, "unknown genre", slog.Int64("movie_id", movieID), slog.String("tmdb_name", name))
			continue
		}
		rows = append(rows, domain.MovieGenre{MovieID: movieID, GenreID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := t.genreLinks.AddMany(ctx, rows); err != nil {
		return fmt.Errorf("tmdb: link genres of movie %d: %w", movieID, err)
	}
	return nil
}

func (t *TMDbMovies) linkCountries(ctx context.Context, movieID int64, isos []string) error {
	rows := make([]domain.MovieCountry, 0, len(isos))
	for _, iso := range isos {
		id, ok := t.countries.ID(iso)
		if !ok {
			t.log.DebugContext(ctx, "unknown country", slog.Int64("movie_id", movieID), slog.String("iso", iso))
			continue
		}
		rows = append(rows, domain.MovieCountry{MovieID: movieID, CountryID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := t.countryLinks.AddMany(ctx, rows); err != nil {
		return fmt.Errorf("tmdb: link countries of movie %d: %w", movieID, err)
	}
	return nil
}

func (t *TMDbMovies) linkCompanies(ctx context.Context, movieID int64, companies []domain.CompanyCandidate) error {
	ids := make([]int64, 0, len(companies))
	for _, c := range companies {
		row, err := t.productions.GetOrCreate(ctx, c).Result()
		if err != nil {
			return fmt.Errorf("tmdb: company %d: %w", c.Company.TMDbID, err)
		}
		if row == nil {
			continue
		}
		ids = append(ids, row.ID)
	}
	_, err := t.productions.Link(ctx, movieID, ids)
	return err
}
