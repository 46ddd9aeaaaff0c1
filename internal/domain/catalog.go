package domain

import "time"

// MovieType is an IMDb title type such as "movie" or "tvSeries".
type MovieType struct {
	ID       int64  `db:"id"`
	IMDbName string `db:"imdb_name"`
	NameEn   string `db:"name_en"`
	NameRu   string `db:"name_ru"`
}

// Genre is a movie genre. Slug is unique per table.
type Genre struct {
	ID       int64   `db:"id"`
	NameEn   string  `db:"name_en"`
	NameRu   string  `db:"name_ru"`
	Slug     string  `db:"slug"`
	TMDbName *string `db:"tmdb_name"`
	ImageURL *string `db:"image_url"`
}

// Country is keyed by its ISO 3166-1 alpha-2 code.
type Country struct {
	ID       int64   `db:"id"`
	ISO      string  `db:"iso"`
	NameEn   string  `db:"name_en"`
	NameRu   *string `db:"name_ru"`
	ImageURL *string `db:"image_url"`
}

// Profession is an IMDb primary profession or principal category.
type Profession struct {
	ID       int64  `db:"id"`
	IMDbName string `db:"imdb_name"`
	NameEn   string `db:"name_en"`
	NameRu   string `db:"name_ru"`
}

// Movie is an IMDb title.
type Movie struct {
	ID              int64    `db:"id"`
	IMDbID          string   `db:"imdb_mvid"`
	NameEn          string   `db:"name_en"`
	NameRu          *string  `db:"name_ru"`
	Slug            string   `db:"slug"`
	TypeID          *int64   `db:"movie_type_id"`
	IsAdult         bool     `db:"is_adult"`
	StartYear       *int32   `db:"start_year"`
	EndYear         *int32   `db:"end_year"`
	Runtime         *int32   `db:"runtime"`
	Rate            *float64 `db:"rate"`
	Votes           *int32   `db:"votes"`
	ImageURL        *string  `db:"image_url"`
	TMDbAdded       bool     `db:"tmdb_added"`
	PrincipalsAdded bool     `db:"principals_added"`
}

// MovieGenre links a movie to a genre.
type MovieGenre struct {
	ID      int64 `db:"id"`
	MovieID int64 `db:"imdb_movie_id"`
	GenreID int64 `db:"genre_id"`
}

// Person is an IMDb name.
type Person struct {
	ID        int64   `db:"id"`
	IMDbID    string  `db:"imdb_nmid"`
	NameEn    string  `db:"name_en"`
	NameRu    *string `db:"name_ru"`
	Slug      string  `db:"slug"`
	BirthYear *int32  `db:"birth_y"`
	DeathYear *int32  `db:"death_y"`
	ImageURL  *string `db:"image_url"`
}

// PersonProfession links a person to one of their primary professions.
type PersonProfession struct {
	ID           int64 `db:"id"`
	PersonID     int64 `db:"imdb_person_id"`
	ProfessionID int64 `db:"profession_id"`
}

// Principal is a credited person on a movie.
type Principal struct {
	ID         int64    `db:"id"`
	MovieID    int64    `db:"imdb_movie_id"`
	PersonID   int64    `db:"imdb_person_id"`
	CategoryID *int64   `db:"category_id"`
	Ordering   int32    `db:"ordering"`
	Job        *string  `db:"job"`
	Characters []string `db:"characters"`
}

// ProductionCompany is a TMDb company.
type ProductionCompany struct {
	ID        int64   `db:"id"`
	TMDbID    int64   `db:"tmdb_id"`
	NameEn    string  `db:"name_en"`
	Slug      string  `db:"slug"`
	CountryID *int64  `db:"country_id"`
	ImageURL  *string `db:"image_url"`
}

// MovieProduction links a movie to a production company.
type MovieProduction struct {
	ID        int64 `db:"id"`
	MovieID   int64 `db:"imdb_movie_id"`
	CompanyID int64 `db:"production_company_id"`
}

// MovieCountry links a movie to a production country.
type MovieCountry struct {
	ID        int64 `db:"id"`
	MovieID   int64 `db:"imdb_movie_id"`
	CountryID int64 `db:"country_id"`
}

// Collection is a TMDb movie collection such as a franchise.
type Collection struct {
	ID       int64   `db:"id"`
	TMDbID   int64   `db:"tmdb_id"`
	NameEn   string  `db:"name_en"`
	NameRu   *string `db:"name_ru"`
	ImageURL *string `db:"image_url"`
}

// TMDbMovie holds TMDb details for an IMDb movie. One row per movie.
type TMDbMovie struct {
	ID           int64      `db:"id"`
	TMDbID       int64      `db:"tmdb_mvid"`
	MovieID      int64      `db:"imdb_movie_id"`
	ReleaseDate  *time.Time `db:"release_date"`
	Budget       *int64     `db:"budget"`
	Revenue      *int64     `db:"revenue"`
	TaglineEn    *string    `db:"tagline_en"`
	OverviewEn   *string    `db:"overview_en"`
	Rate         *float64   `db:"rate"`
	Votes        *int32     `db:"votes"`
	Popularity   *float64   `db:"popularity"`
	ImageURL     *string    `db:"image_url"`
	CollectionID *int64     `db:"collection_id"`
}
