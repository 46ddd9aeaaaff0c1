package schema

import "github.com/heartmarshall/cinemadb-backend/internal/domain"

var MovieTypes = Table[domain.MovieType]{
	Name:          "movie_type",
	Columns:       []string{"id", "imdb_name", "name_en", "name_ru"},
	InsertColumns: []string{"imdb_name", "name_en", "name_ru"},
	NaturalKey:    []string{"imdb_name"},
	Values: func(m domain.MovieType) []any {
		return []any{m.IMDbName, m.NameEn, m.NameRu}
	},
}

var Genres = Table[domain.Genre]{
	Name:          "genre",
	Columns:       []string{"id", "name_en", "name_ru", "slug", "tmdb_name", "image_url"},
	InsertColumns: []string{"name_en", "name_ru", "slug", "tmdb_name", "image_url"},
	NaturalKey:    []string{"name_en"},
	SlugColumn:    "slug",
	Values: func(g domain.Genre) []any {
		return []any{g.NameEn, g.NameRu, g.Slug, g.TMDbName, g.ImageURL}
	},
}

var Countries = Table[domain.Country]{
	Name:          "country",
	Columns:       []string{"id", "iso", "name_en", "name_ru", "image_url"},
	InsertColumns: []string{"iso", "name_en", "name_ru", "image_url"},
	NaturalKey:    []string{"iso"},
	Values: func(c domain.Country) []any {
		return []any{c.ISO, c.NameEn, c.NameRu, c.ImageURL}
	},
}

var Professions = Table[domain.Profession]{
	Name:          "profession",
	Columns:       []string{"id", "imdb_name", "name_en", "name_ru"},
	InsertColumns: []string{"imdb_name", "name_en", "name_ru"},
	NaturalKey:    []string{"imdb_name"},
	Values: func(p domain.Profession) []any {
		return []any{p.IMDbName, p.NameEn, p.NameRu}
	},
}

var Movies = Table[domain.Movie]{
	Name: "imdb_movie",
	Columns: []string{
		"id", "imdb_mvid", "name_en", "name_ru", "slug", "movie_type_id", "is_adult",
		"start_year", "end_year", "runtime", "rate", "votes", "image_url",
		"tmdb_added", "principals_added",
	},
	InsertColumns: []string{
		"imdb_mvid", "name_en", "name_ru", "slug", "movie_type_id", "is_adult",
		"start_year", "end_year", "runtime", "rate", "votes", "image_url",
		"tmdb_added", "principals_added",
	},
	NaturalKey: []string{"imdb_mvid"},
	SlugColumn: "slug",
	Values: func(m domain.Movie) []any {
		return []any{
			m.IMDbID, m.NameEn, m.NameRu, m.Slug, m.TypeID, m.IsAdult,
			m.StartYear, m.EndYear, m.Runtime, m.Rate, m.Votes, m.ImageURL,
			m.TMDbAdded, m.PrincipalsAdded,
		}
	},
}

var MovieGenres = Table[domain.MovieGenre]{
	Name:          "movie_genre",
	Columns:       []string{"id", "imdb_movie_id", "genre_id"},
	InsertColumns: []string{"imdb_movie_id", "genre_id"},
	NaturalKey:    []string{"imdb_movie_id", "genre_id"},
	Values: func(mg domain.MovieGenre) []any {
		return []any{mg.MovieID, mg.GenreID}
	},
}

var Persons = Table[domain.Person]{
	Name:          "imdb_person",
	Columns:       []string{"id", "imdb_nmid", "name_en", "name_ru", "slug", "birth_y", "death_y", "image_url"},
	InsertColumns: []string{"imdb_nmid", "name_en", "name_ru", "slug", "birth_y", "death_y", "image_url"},
	NaturalKey:    []string{"imdb_nmid"},
	SlugColumn:    "slug",
	Values: func(p domain.Person) []any {
		return []any{p.IMDbID, p.NameEn, p.NameRu, p.Slug, p.BirthYear, p.DeathYear, p.ImageURL}
	},
}

var PersonProfessions = Table[domain.PersonProfession]{
	Name:          "person_profession",
	Columns:       []string{"id", "imdb_person_id", "profession_id"},
	InsertColumns: []string{"imdb_person_id", "profession_id"},
	NaturalKey:    []string{"imdb_person_id", "profession_id"},
	Values: func(pp domain.PersonProfession) []any {
		return []any{pp.PersonID, pp.ProfessionID}
	},
}

var Principals = Table[domain.Principal]{
	Name:          "movie_principal",
	Columns:       []string{"id", "imdb_movie_id", "imdb_person_id", "category_id", "ordering", "job", "characters"},
	InsertColumns: []string{"imdb_movie_id", "imdb_person_id", "category_id", "ordering", "job", "characters"},
	NaturalKey:    []string{"imdb_movie_id", "ordering"},
	Values: func(p domain.Principal) []any {
		return []any{p.MovieID, p.PersonID, p.CategoryID, p.Ordering, p.Job, p.Characters}
	},
}

var ProductionCompanies = Table[domain.ProductionCompany]{
	Name:          "production_company",
	Columns:       []string{"id", "tmdb_id", "name_en", "slug", "country_id", "image_url"},
	InsertColumns: []string{"tmdb_id", "name_en", "slug", "country_id", "image_url"},
	NaturalKey:    []string{"tmdb_id"},
	SlugColumn:    "slug",
	Values: func(c domain.ProductionCompany) []any {
		return []any{c.TMDbID, c.NameEn, c.Slug, c.CountryID, c.ImageURL}
	},
}

var MovieProductions = Table[domain.MovieProduction]{
	Name:          "movie_production",
	Columns:       []string{"id", "imdb_movie_id", "production_company_id"},
	InsertColumns: []string{"imdb_movie_id", "production_company_id"},
	NaturalKey:    []string{"imdb_movie_id", "production_company_id"},
	Values: func(mp domain.MovieProduction) []any {
		return []any{mp.MovieID, mp.CompanyID}
	},
}

var MovieCountries = Table[domain.MovieCountry]{
	Name:          "movie_country",
	Columns:       []string{"id", "imdb_movie_id", "country_id"},
	InsertColumns: []string{"imdb_movie_id", "country_id"},
	NaturalKey:    []string{"imdb_movie_id", "country_id"},
	Values: func(mc domain.MovieCountry) []any {
		return []any{mc.MovieID, mc.CountryID}
	},
}

var Collections = Table[domain.Collection]{
	Name:          "collection",
	Columns:       []string{"id", "tmdb_id", "name_en", "name_ru", "image_url"},
	InsertColumns: []string{"tmdb_id", "name_en", "name_ru", "image_url"},
	NaturalKey:    []string{"tmdb_id"},
	Values: func(c domain.Collection) []any {
		return []any{c.TMDbID, c.NameEn, c.NameRu, c.ImageURL}
	},
}

var TMDbMovies = Table[domain.TMDbMovie]{
	Name: "tmdb_movie",
	Columns: []string{
		"id", "tmdb_mvid", "imdb_movie_id", "release_date", "budget", "revenue",
		"tagline_en", "overview_en", "rate", "votes", "popularity", "image_url", "collection_id",
	},
	InsertColumns: []string{
		"tmdb_mvid", "imdb_movie_id", "release_date", "budget", "revenue",
		"tagline_en", "overview_en", "rate", "votes", "popularity", "image_url", "collection_id",
	},
	NaturalKey: []string{"imdb_movie_id"},
	Values: func(m domain.TMDbMovie) []any {
		return []any{
			m.TMDbID, m.MovieID, m.ReleaseDate, m.Budget, m.Revenue,
			m.TaglineEn, m.OverviewEn, m.Rate, m.Votes, m.Popularity, m.ImageURL, m.CollectionID,
		}
	},
}

// Users has a second unique constraint on email; a conflict on it with a
// fresh username surfaces as a zero-row insert with no natural-key match.
var Users = Table[domain.User]{
	Name:          "usermodel",
	Columns:       []string{"id", "username", "email", "hashed_password", "is_active", "created_at"},
	InsertColumns: []string{"username", "email", "hashed_password", "is_active"},
	NaturalKey:    []string{"username"},
	Values: func(u domain.User) []any {
		return []any{u.Username, u.Email, u.HashedPassword, u.IsActive}
	},
}
