package schema

import (
	"testing"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

type checker interface{ Check() error }

func TestTables_AreConsistent(t *testing.T) {
	t.Parallel()

	tables := map[string]checker{
		"movie_type":         MovieTypes,
		"genre":              Genres,
		"country":            Countries,
		"profession":         Professions,
		"imdb_movie":         Movies,
		"movie_genre":        MovieGenres,
		"imdb_person":        Persons,
		"person_profession":  PersonProfessions,
		"movie_principal":    Principals,
		"production_company": ProductionCompanies,
		"movie_production":   MovieProductions,
		"movie_country":      MovieCountries,
		"collection":         Collections,
		"tmdb_movie":         TMDbMovies,
		"usermodel":          Users,
	}

	for name, tbl := range tables {
		if err := tbl.Check(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestTables_ValuesMatchInsertColumns(t *testing.T) {
	t.Parallel()

	check := func(name string, got, want int) {
		if got != want {
			t.Errorf("%s: Values returned %d values for %d insert columns", name, got, want)
		}
	}

	check("movie_type", len(MovieTypes.Values(domain.MovieType{})), len(MovieTypes.InsertColumns))
	check("genre", len(Genres.Values(domain.Genre{})), len(Genres.InsertColumns))
	check("country", len(Countries.Values(domain.Country{})), len(Countries.InsertColumns))
	check("profession", len(Professions.Values(domain.Profession{})), len(Professions.InsertColumns))
	check("imdb_movie", len(Movies.Values(domain.Movie{})), len(Movies.InsertColumns))
	check("movie_genre", len(MovieGenres.Values(domain.MovieGenre{})), len(MovieGenres.InsertColumns))
	check("imdb_person", len(Persons.Values(domain.Person{})), len(Persons.InsertColumns))
	check("person_profession", len(PersonProfessions.Values(domain.PersonProfession{})), len(PersonProfessions.InsertColumns))
	check("movie_principal", len(Principals.Values(domain.Principal{})), len(Principals.InsertColumns))
	check("production_company", len(ProductionCompanies.Values(domain.ProductionCompany{})), len(ProductionCompanies.InsertColumns))
	check("movie_production", len(MovieProductions.Values(domain.MovieProduction{})), len(MovieProductions.InsertColumns))
	check("movie_country", len(MovieCountries.Values(domain.MovieCountry{})), len(MovieCountries.InsertColumns))
	check("collection", len(Collections.Values(domain.Collection{})), len(Collections.InsertColumns))
	check("tmdb_movie", len(TMDbMovies.Values(domain.TMDbMovie{})), len(TMDbMovies.InsertColumns))
	check("usermodel", len(Users.Values(domain.User{})), len(Users.InsertColumns))
}

func TestTable_KeyValues(t *testing.T) {
	t.Parallel()

	got := MovieGenres.KeyValues(domain.MovieGenre{MovieID: 3, GenreID: 9})
	if len(got) != 2 || got[0] != int64(3) || got[1] != int64(9) {
		t.Errorf("KeyValues = %v, want [3 9]", got)
	}

	got = Movies.KeyValues(domain.Movie{IMDbID: "tt1160419", NameEn: "Dune"})
	if len(got) != 1 || got[0] != "tt1160419" {
		t.Errorf("KeyValues = %v, want [tt1160419]", got)
	}
}

func TestTable_CheckRejectsBadKey(t *testing.T) {
	t.Parallel()

	bad := Genres
	bad.NaturalKey = []string{"id"}
	if err := bad.Check(); err == nil {
		t.Error("expected error for non-insertable natural key")
	}

	bad = Genres
	bad.SlugColumn = "handle"
	if err := bad.Check(); err == nil {
		t.Error("expected error for unknown slug column")
	}
}
