package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/schema"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/provider/tmdb"
	"github.com/heartmarshall/cinemadb-backend/internal/config"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
	"github.com/heartmarshall/cinemadb-backend/internal/ingest"
	"github.com/heartmarshall/cinemadb-backend/internal/slug"
	"github.com/heartmarshall/cinemadb-backend/internal/source"
	"github.com/heartmarshall/cinemadb-backend/internal/source/imdb"
)

// App holds the wired ingestion pipeline for one process.
type App struct {
	cfg  *config.Config
	log  *slog.Logger
	pool *pgxpool.Pool

	Tx     *postgres.TxManager
	Runner *ingest.Runner

	MovieTypes  *ingest.Reference[domain.MovieType]
	Genres      *ingest.Reference[domain.Genre]
	Countries   *ingest.Reference[domain.Country]
	Professions *ingest.Reference[domain.Profession]

	Movies      *ingest.Movies
	Persons     *ingest.Persons
	Principals  *ingest.Principals
	Productions *ingest.Productions
	TMDb        *ingest.TMDbMovies
	Users       *ingest.Users

	static       source.Static
	dataset      *imdb.Dataset
	movieRecords *record.Writer[domain.Movie]
}

// Bootstrap connects to the database and wires every ingestor. With dryRun
// all writes go through one goroutine so a job can run inside a single
// transaction and be rolled back.
func Bootstrap(ctx context.Context, cfg *config.Config, log *slog.Logger, dryRun bool) (*App, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	a := build(cfg, log, postgres.NewPoolSource(pool), postgres.NewTxManager(pool), dryRun)
	a.pool = pool
	return a, nil
}

func build(cfg *config.Config, log *slog.Logger, sessions postgres.SessionSource, tx *postgres.TxManager, dryRun bool) *App {
	ic := cfg.Ingest
	if dryRun {
		ic.Concurrency = 1
		ic.BatchConcurrency = 1
	}

	scope := postgres.NewScope(sessions, ic.WriteTimeout)
	cls := postgres.NewClassifier(log)
	opts := record.Options{
		ChunkSize:        ic.ChunkSize,
		MaxBatchSize:     ic.MaxBatchSize,
		BatchConcurrency: ic.BatchConcurrency,
	}

	movieTypes := record.NewWriter(schema.MovieTypes, scope, cls, opts)
	genres := record.NewWriter(schema.Genres, scope, cls, opts)
	countries := record.NewWriter(schema.Countries, scope, cls, opts)
	professions := record.NewWriter(schema.Professions, scope, cls, opts)
	movies := record.NewWriter(schema.Movies, scope, cls, opts)
	movieGenres := record.NewWriter(schema.MovieGenres, scope, cls, opts)
	persons := record.NewWriter(schema.Persons, scope, cls, opts)
	personProfessions := record.NewWriter(schema.PersonProfessions, scope, cls, opts)
	principals := record.NewWriter(schema.Principals, scope, cls, opts)
	companies := record.NewWriter(schema.ProductionCompanies, scope, cls, opts)
	movieProductions := record.NewWriter(schema.MovieProductions, scope, cls, opts)
	movieCountries := record.NewWriter(schema.MovieCountries, scope, cls, opts)
	collections := record.NewWriter(schema.Collections, scope, cls, opts)
	tmdbMovies := record.NewWriter(schema.TMDbMovies, scope, cls, opts)
	users := record.NewWriter(schema.Users, scope, cls, opts)

	a := &App{
		cfg:          cfg,
		log:          log,
		Tx:           tx,
		Runner:       ingest.NewRunner(log, ic.Concurrency),
		dataset:      imdb.NewDataset(cfg.Sources.IMDbDir, log),
		movieRecords: movies,
	}

	a.MovieTypes = ingest.NewMovieTypes(movieTypes, log)
	a.Genres = ingest.NewGenres(genres, registry(ic, genres), log)
	a.Countries = ingest.NewCountries(countries, log)
	a.Professions = ingest.NewProfessions(professions, log)

	a.Movies = ingest.NewMovies(movies, movieGenres, a.MovieTypes, a.Genres, registry(ic, movies), tx, log, ic.Concurrency)
	a.Persons = ingest.NewPersons(persons, personProfessions, a.Professions, registry(ic, persons), tx, log, ic.Concurrency, ic.SkipKnownPersons)
	a.Principals = ingest.NewPrincipals(principals, movies, persons, a.Professions, log, ic.Concurrency)
	a.Productions = ingest.NewProductions(companies, movieProductions, a.Countries, registry(ic, companies), log, ic.Concurrency)
	a.TMDb = ingest.NewTMDbMovies(tmdbMovies, movies, movieGenres, movieCountries, collections,
		a.Genres, a.Countries, a.Productions, tx, log, ic.Concurrency)
	a.Users = ingest.NewUsers(users, log, ic.BcryptCost, ic.Concurrency)
	return a
}

type slugSource interface {
	slug.Loader
	slug.Checker
}

func registry(cfg config.IngestConfig, w slugSource) slug.Registry {
	if cfg.HydrateSlugs {
		return slug.NewMemory(w)
	}
	return slug.NewStore(w)
}

// Close tears down every ingestor and closes the pool.
func (a *App) Close() {
	for _, l := range a.lifecycles() {
		l.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *App) lifecycles() []ingest.Lifecycle {
	return []ingest.Lifecycle{
		a.Users, a.TMDb, a.Productions, a.Principals, a.Persons, a.Movies,
		a.Professions, a.Countries, a.Genres, a.MovieTypes,
	}
}

// SyncReference loads the static lookup tables: movie types, genres,
// countries and professions.
func (a *App) SyncReference(ctx context.Context) ([]ingest.Report, error) {
	countries, err := a.static.Countries()
	if err != nil {
		return nil, err
	}

	steps := []struct {
		kind string
		sync func(context.Context) (int64, int, error)
	}{
		{"movie_types", syncer(a.MovieTypes, a.static.MovieTypes())},
		{"genres", syncer(a.Genres, a.static.Genres())},
		{"countries", syncer(a.Countries, countries)},
		{"professions", syncer(a.Professions, a.static.Professions())},
	}

	reports := make([]ingest.Report, 0, len(steps))
	for _, s := range steps {
		start := time.Now()
		added, total, err := s.sync(ctx)
		if err != nil {
			return reports, fmt.Errorf("%s: %w", s.kind, err)
		}
		rep := ingest.Report{
			RunID:    uuid.NewString(),
			Kind:     s.kind,
			Inserted: added,
			Existing: int64(total) - added,
			Duration: time.Since(start),
		}
		a.log.InfoContext(ctx, "reference table ready", rep.LogAttrs()...)
		reports = append(reports, rep)
	}
	return reports, nil
}

func syncer[T any](ref *ingest.Reference[T], recs []T) func(context.Context) (int64, int, error) {
	return func(ctx context.Context) (int64, int, error) {
		if err := ref.Initialize(ctx); err != nil {
			return 0, 0, err
		}
		added, err := ref.Sync(ctx, recs)
		return added, ref.Len(), err
	}
}

// IngestMovies streams title.basics into the catalog.
func (a *App) IngestMovies(ctx context.Context) (ingest.Report, error) {
	r, err := a.dataset.Movies()
	if err != nil {
		return ingest.Report{Kind: "movies"}, err
	}
	return runJob[domain.MovieCandidate, domain.Movie](ctx, a, "movies", a.Movies, r, a.Movies.GetOrCreate)
}

// IngestPersons streams name.basics into the catalog.
func (a *App) IngestPersons(ctx context.Context) (ingest.Report, error) {
	r, err := a.dataset.Persons()
	if err != nil {
		return ingest.Report{Kind: "persons"}, err
	}
	return runJob[domain.PersonCandidate, domain.Person](ctx, a, "persons", a.Persons, r, a.Persons.Add)
}

// IngestPrincipals streams title.principals in batches of chunk size times
// batch concurrency. Movies and persons must be ingested first.
func (a *App) IngestPrincipals(ctx context.Context) (ingest.Report, error) {
	r, err := a.dataset.Principals()
	if err != nil {
		return ingest.Report{Kind: "principals"}, err
	}
	size := max(a.cfg.Ingest.ChunkSize, 1) * max(a.cfg.Ingest.BatchConcurrency, 1)
	return runBatchJob[domain.PrincipalCandidate](ctx, a, "principals", a.Principals, r, size, a.Principals.AddBatch)
}

// IngestTMDb upserts TMDb movie details. Sources.TMDbFile is read when set;
// otherwise movies without TMDb data are looked up through the TMDb API.
func (a *App) IngestTMDb(ctx context.Context) (ingest.Report, error) {
	if a.cfg.Sources.TMDbFile == "" && a.cfg.TMDb.Token != "" {
		return a.fetchTMDb(ctx)
	}

	f, err := openFile(a.cfg.Sources.TMDbFile, "tmdb_file")
	if err != nil {
		return ingest.Report{Kind: "tmdb"}, err
	}
	return runJob[domain.TMDbCandidate, domain.TMDbMovie](ctx, a, "tmdb", a.TMDb, source.TMDbDetails(f), a.TMDb.Upsert)
}

func (a *App) fetchTMDb(ctx context.Context) (ingest.Report, error) {
	pending, err := a.movieRecords.Find(ctx, map[string]any{"tmdb_added": false})
	if err != nil {
		return ingest.Report{Kind: "tmdb"}, fmt.Errorf("tmdb: list pending movies: %w", err)
	}
	ids := make([]string, len(pending))
	for i, m := range pending {
		ids[i] = m.IMDbID
	}
	a.log.InfoContext(ctx, "tmdb: movies pending", slog.Int("count", len(ids)))

	client := tmdb.NewClient(a.cfg.TMDb.BaseURL, a.cfg.TMDb.Token, a.cfg.TMDb.Timeout, a.log)
	src := source.Fetch(source.FromSlice(ids), client.FetchMovie)
	return runJob[domain.TMDbCandidate, domain.TMDbMovie](ctx, a, "tmdb", a.TMDb, nopCloser[domain.TMDbCandidate]{src}, a.TMDb.Upsert)
}

// IngestUsers registers the accounts listed in Sources.UsersFile.
func (a *App) IngestUsers(ctx context.Context) (ingest.Report, error) {
	f, err := openFile(a.cfg.Sources.UsersFile, "users_file")
	if err != nil {
		return ingest.Report{Kind: "users"}, err
	}
	return runJob[domain.Registration, domain.User](ctx, a, "users", a.Users, source.Registrations(f), a.Users.Add)
}

type closingSource[C any] interface {
	source.Source[C]
	io.Closer
}

type nopCloser[C any] struct {
	source.Source[C]
}

func (nopCloser[C]) Close() error { return nil }

func runJob[C, T any](ctx context.Context, a *App, kind string, l ingest.Lifecycle, src closingSource[C], write ingest.WriteFunc[C, T]) (rep ingest.Report, err error) {
	defer closeSource(kind, src, &err)

	if err := l.Initialize(ctx); err != nil {
		return ingest.Report{Kind: kind}, fmt.Errorf("%s: initialize: %w", kind, err)
	}
	return ingest.Run[C, T](ctx, a.Runner, kind, pace[C](a, src), write)
}

func runBatchJob[C any](ctx context.Context, a *App, kind string, l ingest.Lifecycle, src closingSource[C], size int, write ingest.BatchWriteFunc[C]) (rep ingest.Report, err error) {
	defer closeSource(kind, src, &err)

	if err := l.Initialize(ctx); err != nil {
		return ingest.Report{Kind: kind}, fmt.Errorf("%s: initialize: %w", kind, err)
	}
	return ingest.RunBatches[C](ctx, a.Runner, kind, pace[C](a, src), size, write)
}

// pace applies the configured record limit and rate limit.
func pace[C any](a *App, src source.Source[C]) source.Source[C] {
	return source.Throttle(source.Limit[C](src, a.cfg.Sources.MaxRecords), a.cfg.Sources.RateLimit, a.cfg.Sources.Burst)
}

func closeSource(kind string, src io.Closer, err *error) {
	if cerr := src.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("%s: close source: %w", kind, cerr))
	}
}

func openFile(path, key string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("sources.%s is not set", key)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}
