package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// maxCachedIDs caps each IMDb id cache; a full cache is dropped wholesale.
const maxCachedIDs = 100_000

// resolveID maps a natural key to a row id through cache, reading the
// table on a miss.
func resolveID[T any](ctx context.Context, cache *idMap, w *record.Writer[T], column, key string, id func(T) int64) (int64, error) {
	if v, ok := cache.get(key); ok {
		return v, nil
	}

	rows, err := w.Find(ctx, map[string]any{column: key})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s %s: %w", w.Table().Name, key, domain.ErrNotFound)
	}

	if cache.len() >= maxCachedIDs {
		cache.clear()
	}
	v := id(rows[0])
	cache.put(key, v)
	return v, nil
}

// Principals ingests title.principals rows for movies and persons that
// are already stored.
type Principals struct {
	records     *Ingestor[domain.Principal]
	movies      *record.Writer[domain.Movie]
	persons     *record.Writer[domain.Person]
	professions *Reference[domain.Profession]
	log         *slog.Logger

	movieIDs  idMap
	personIDs idMap
}

func NewPrincipals(
	w *record.Writer[domain.Principal],
	movies *record.Writer[domain.Movie],
	persons *record.Writer[domain.Person],
	professions *Reference[domain.Profession],
	log *slog.Logger,
	concurrency int,
) *Principals {
	p := &Principals{movies: movies, persons: persons, professions: professions, log: log.With("ingestor", "principals")}
	p.records = New(w, log, Options[domain.Principal]{
		Name:        "principals",
		Concurrency: concurrency,
		OnInit:      professions.Initialize,
		OnClose: func() {
			p.movieIDs.clear()
			p.personIDs.clear()
		},
	})
	return p
}

func (p *Principals) Initialize(ctx context.Context) error { return p.records.Initialize(ctx) }

func (p *Principals) Close() { p.records.Close() }

// Add safe-adds one principal. A movie or person that is not stored
// yields Failed wrapping domain.ErrNotFound.
func (p *Principals) Add(ctx context.Context, c domain.PrincipalCandidate) domain.Outcome[domain.Principal] {
	if err := p.records.ready(); err != nil {
		return domain.Failed[domain.Principal](err)
	}
	row, err := p.resolve(ctx, c)
	if err != nil {
		return domain.Failed[domain.Principal](err)
	}
	return p.records.Add(ctx, row)
}

// AddBatch resolves every candidate and writes the resolvable ones with
// chunked inserts. It returns the rows inserted and the candidates that
// could not be resolved; those are logged and skipped.
func (p *Principals) AddBatch(ctx context.Context, cs []domain.PrincipalCandidate) (inserted, failed int64, err error) {
	if err := p.records.ready(); err != nil {
		return 0, 0, err
	}

	rows := make([]domain.Principal, 0, len(cs))
	for _, c := range cs {
		row, err := p.resolve(ctx, c)
		if err != nil {
			if domain.IsFatal(err) || ctx.Err() != nil {
				return 0, failed, err
			}
			failed++
			p.log.WarnContext(ctx, "principal skipped",
				slog.String("movie", c.MovieIMDbID),
				slog.String("person", c.PersonIMDbID),
				slog.String("error", err.Error()))
			continue
		}
		rows = append(rows, row)
	}
	inserted, err = p.records.AddBatch(ctx, rows)
	return inserted, failed, err
}

func (p *Principals) resolve(ctx context.Context, c domain.PrincipalCandidate) (domain.Principal, error) {
	movieID, err := resolveID(ctx, &p.movieIDs, p.movies, "imdb_mvid", c.MovieIMDbID,
		func(m domain.Movie) int64 { return m.ID })
	if err != nil {
		return domain.Principal{}, fmt.Errorf("principals: movie: %w", err)
	}
	personID, err := resolveID(ctx, &p.personIDs, p.persons, "imdb_nmid", c.PersonIMDbID,
		func(ps domain.Person) int64 { return ps.ID })
	if err != nil {
		return domain.Principal{}, fmt.Errorf("principals: person: %w", err)
	}

	row := domain.Principal{
		MovieID:    movieID,
		PersonID:   personID,
		Ordering:   c.Ordering,
		Job:        c.Job,
		Characters: c.Characters,
	}
	if id, ok := p.professions.ID(c.Category); ok {
		row.CategoryID = &id
	}
	return row, nil
}
