package ingest

import (
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/schema"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/testhelper"
)

var (
	genreCols      = []string{"id", "name_en", "name_ru", "slug", "tmdb_name", "image_url"}
	countryCols    = []string{"id", "iso", "name_en", "name_ru", "image_url"}
	movieTypeCols  = []string{"id", "imdb_name", "name_en", "name_ru"}
	professionCols = []string{"id", "imdb_name", "name_en", "name_ru"}
	movieCols      = []string{
		"id", "imdb_mvid", "name_en", "name_ru", "slug", "movie_type_id", "is_adult",
		"start_year", "end_year", "runtime", "rate", "votes", "image_url",
		"tmdb_added", "principals_added",
	}
	personCols = []string{"id", "imdb_nmid", "name_en", "name_ru", "slug", "birth_y", "death_y", "image_url"}
	userCols   = []string{"id", "username", "email", "hashed_password", "is_active", "created_at"}
)

func quietLog() *slog.Logger { return slog.New(slog.DiscardHandler) }

// env bundles writers that share one pgxmock pool.
type env struct {
	mock  pgxmock.PgxPoolIface
	scope *postgres.Scope
	cls   *postgres.Classifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	scope, mock := testhelper.NewMockScope(t)
	return &env{mock: mock, scope: scope, cls: testhelper.QuietClassifier()}
}

func writer[T any](e *env, table schema.Table[T]) *record.Writer[T] {
	return record.NewWriter(table, e.scope, e.cls, record.Options{BatchConcurrency: 1})
}

func movieRow(id int64, imdbID, name, slug string) []any {
	return []any{id, imdbID, name, nil, slug, nil, false, nil, nil, nil, nil, nil, nil, false, false}
}

func personRow(id int64, imdbID, name, slug string) []any {
	return []any{id, imdbID, name, nil, slug, nil, nil, nil}
}
