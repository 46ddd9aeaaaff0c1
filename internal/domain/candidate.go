package domain

// Candidate records arrive from sources already shape-checked. Ingestors
// resolve their symbolic references (type names, genre names, IMDb ids)
// into foreign keys.

// MovieCandidate is a movie plus the names it references.
type MovieCandidate struct {
	Movie    Movie
	TypeName string
	Genres   []string
}

// PersonCandidate is a person plus their IMDb primary professions.
type PersonCandidate struct {
	Person      Person
	Professions []string
	KnownFor    []string
}

// PrincipalCandidate is one row of title.principals.
type PrincipalCandidate struct {
	MovieIMDbID  string
	PersonIMDbID string
	Category     string
	Ordering     int32
	Job          *string
	Characters   []string
}

// CompanyCandidate is a production company with its origin country code.
type CompanyCandidate struct {
	Company    ProductionCompany
	CountryISO string
}

// TMDbCandidate is the TMDb payload for one IMDb movie. Genres holds TMDb
// genre names, matched against genre.tmdb_name.
type TMDbCandidate struct {
	IMDbID     string
	Details    TMDbMovie
	Genres     []string
	Countries  []string
	Companies  []CompanyCandidate
	Collection *Collection
}
