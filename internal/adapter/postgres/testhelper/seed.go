package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// UniqueSuffix returns a short unique string for non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// IMDbID returns a fresh IMDb-style id with the given prefix ("tt", "nm").
func IMDbID(prefix string) string {
	return prefix + UniqueSuffix()
}

// SeedMovieType inserts a movie type with a unique imdb_name.
func SeedMovieType(t *testing.T, pool *pgxpool.Pool) domain.MovieType {
	t.Helper()

	mt := domain.MovieType{
		IMDbName: "type-" + UniqueSuffix(),
		NameEn:   "Test Type",
		NameRu:   "Тестовый тип",
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO movie_type (imdb_name, name_en, name_ru) VALUES ($1, $2, $3) RETURNING id`,
		mt.IMDbName, mt.NameEn, mt.NameRu,
	).Scan(&mt.ID)
	if err != nil {
		t.Fatalf("testhelper: seed movie type: %v", err)
	}
	return mt
}

// SeedGenre inserts a genre whose name and slug are unique.
func SeedGenre(t *testing.T, pool *pgxpool.Pool) domain.Genre {
	t.Helper()

	suffix := UniqueSuffix()
	g := domain.Genre{
		NameEn: "Genre " + suffix,
		NameRu: "Жанр " + suffix,
		Slug:   "genre-" + suffix,
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO genre (name_en, name_ru, slug) VALUES ($1, $2, $3) RETURNING id`,
		g.NameEn, g.NameRu, g.Slug,
	).Scan(&g.ID)
	if err != nil {
		t.Fatalf("testhelper: seed genre: %v", err)
	}
	return g
}

// SeedMovie inserts a movie with a unique IMDb id and slug.
func SeedMovie(t *testing.T, pool *pgxpool.Pool) domain.Movie {
	t.Helper()

	m := domain.Movie{
		IMDbID: IMDbID("tt"),
		NameEn: "Seeded Movie",
	}
	m.Slug = "seeded-movie-" + m.IMDbID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO imdb_movie (imdb_mvid, name_en, slug) VALUES ($1, $2, $3) RETURNING id`,
		m.IMDbID, m.NameEn, m.Slug,
	).Scan(&m.ID)
	if err != nil {
		t.Fatalf("testhelper: seed movie: %v", err)
	}
	return m
}

// CountRows returns the number of rows in table matching where (a full SQL
// predicate) with args.
func CountRows(t *testing.T, pool *pgxpool.Pool, table, where string, args ...any) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table+` WHERE `+where, args...).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: count %s: %v", table, err)
	}
	return n
}
