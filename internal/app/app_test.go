package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/cinemadb-backend/internal/config"
)

func newTestApp(t *testing.T, sources config.SourcesConfig) *App {
	t.Helper()

	a, _ := newMockApp(t, sources, config.TMDbConfig{})
	return a
}

func newMockApp(t *testing.T, sources config.SourcesConfig, tmdb config.TMDbConfig) (*App, pgxmock.PgxPoolIface) {
	t.Helper()

	src, mock := testhelper.NewMockSource(t)
	cfg := &config.Config{
		Ingest: config.IngestConfig{
			ChunkSize:        10,
			MaxBatchSize:     100,
			Concurrency:      2,
			BatchConcurrency: 2,
			BcryptCost:       bcrypt.MinCost,
		},
		Sources: sources,
		TMDb:    tmdb,
	}
	a := build(cfg, slog.New(slog.DiscardHandler), src, postgres.NewTxManager(mock), false)
	t.Cleanup(func() {
		a.Close()
		testhelper.ExpectationsWereMet(t, mock)
	})
	return a, mock
}

func TestIngestUsers_InvalidRecordsNeverReachDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "users.jsonl")
	lines := strings.Join([]string{
		`{"username":"x","email":"x@example.com","password":"longenough"}`,
		`{"username":"morpheus","email":"not-an-email","password":"longenough"}`,
		`{broken`,
	}, "\n")
	if err := os.WriteFile(path, []byte(lines), 0o600); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, config.SourcesConfig{UsersFile: path, Burst: 1})

	rep, err := a.IngestUsers(context.Background())
	if err != nil {
		t.Fatalf("IngestUsers() error = %v", err)
	}
	if rep.Failed != 3 || rep.Inserted != 0 || rep.Existing != 0 {
		t.Errorf("report = %+v, want 3 failed", rep)
	}
}

func TestIngestUsers_RequiresFile(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, config.SourcesConfig{})

	_, err := a.IngestUsers(context.Background())
	if err == nil || !strings.Contains(err.Error(), "users_file") {
		t.Fatalf("IngestUsers() error = %v, want users_file not set", err)
	}
}

func TestIngestTMDb_MissingFile(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, config.SourcesConfig{TMDbFile: filepath.Join(t.TempDir(), "absent.jsonl")})

	_, err := a.IngestTMDb(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("IngestTMDb() error = %v, want fs.ErrNotExist", err)
	}
}

func TestIngestMovies_MissingDataset(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, config.SourcesConfig{IMDbDir: t.TempDir()})

	rep, err := a.IngestMovies(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("IngestMovies() error = %v, want fs.ErrNotExist", err)
	}
	if rep.Kind != "movies" {
		t.Errorf("Kind = %q, want movies", rep.Kind)
	}
}

func TestIngestTMDb_FetchesPendingMovies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"movie_results":[]}`))
	}))
	defer srv.Close()

	a, mock := newMockApp(t, config.SourcesConfig{}, config.TMDbConfig{Token: "secret", BaseURL: srv.URL})

	mock.ExpectQuery(`SELECT .* FROM imdb_movie WHERE tmdb_added = \$1 ORDER BY id`).
		WithArgs(false).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "imdb_mvid", "name_en", "name_ru", "slug", "movie_type_id", "is_adult", "start_year",
			"end_year", "runtime", "rate", "votes", "image_url", "tmdb_added", "principals_added",
		}).AddRow(int64(1), "tt9999999", "Lost Film", nil, "lost-film", nil, false, nil, nil, nil, nil, nil, nil, false, false))
	mock.ExpectQuery(`SELECT .* FROM country ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "iso", "name_en", "name_ru", "image_url"}))
	mock.ExpectQuery(`SELECT .* FROM genre ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name_en", "name_ru", "slug", "tmdb_name", "image_url"}))

	rep, err := a.IngestTMDb(context.Background())
	if err != nil {
		t.Fatalf("IngestTMDb() error = %v", err)
	}
	if rep.Total() != 0 {
		t.Errorf("report = %+v, want nothing written", rep)
	}
}
