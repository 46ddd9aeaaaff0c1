package tmdb

import (
	"time"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

type findResponse struct {
	MovieResults []struct {
		ID int64 `json:"id"`
	} `json:"movie_results"`
}

// Company is an entry of production_companies.
type Company struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	OriginCountry string  `json:"origin_country"`
	LogoPath      *string `json:"logo_path"`
}

// Collection is the belongs_to_collection object.
type Collection struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	PosterPath *string `json:"poster_path"`
}

// Genre is an entry of genres.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is the /movie/{id} payload, trimmed to the stored fields.
type Movie struct {
	IMDbID              string      `json:"imdb_id"`
	ID                  int64       `json:"id"`
	ReleaseDate         string      `json:"release_date"`
	Budget              *int64      `json:"budget"`
	Revenue             *int64      `json:"revenue"`
	Tagline             *string     `json:"tagline"`
	Overview            *string     `json:"overview"`
	VoteAverage         *float64    `json:"vote_average"`
	VoteCount           *int32      `json:"vote_count"`
	Popularity          *float64    `json:"popularity"`
	PosterPath          *string     `json:"poster_path"`
	Genres              []Genre     `json:"genres"`
	BelongsToCollection *Collection `json:"belongs_to_collection"`
	ProductionCountries []struct {
		ISO string `json:"iso_3166_1"`
	} `json:"production_countries"`
	ProductionCompanies []Company `json:"production_companies"`
}

// Candidate converts m into an ingestion candidate.
func (m Movie) Candidate() (domain.TMDbCandidate, error) {
	if m.IMDbID == "" {
		return domain.TMDbCandidate{}, domain.NewValidationError("imdb_id", "required")
	}
	if m.ID <= 0 {
		return domain.TMDbCandidate{}, domain.NewValidationError("id", "required")
	}

	c := domain.TMDbCandidate{
		IMDbID: m.IMDbID,
		Details: domain.TMDbMovie{
			TMDbID:     m.ID,
			Budget:     m.Budget,
			Revenue:    m.Revenue,
			TaglineEn:  m.Tagline,
			OverviewEn: m.Overview,
			Rate:       m.VoteAverage,
			Votes:      m.VoteCount,
			Popularity: m.Popularity,
			ImageURL:   m.PosterPath,
		},
	}
	if m.ReleaseDate != "" {
		d, err := time.Parse(time.DateOnly, m.ReleaseDate)
		if err != nil {
			return domain.TMDbCandidate{}, domain.NewValidationError("release_date", "want YYYY-MM-DD")
		}
		c.Details.ReleaseDate = &d
	}
	for _, g := range m.Genres {
		c.Genres = append(c.Genres, g.Name)
	}
	if bc := m.BelongsToCollection; bc != nil && bc.ID > 0 {
		c.Collection = &domain.Collection{TMDbID: bc.ID, NameEn: bc.Name, ImageURL: bc.PosterPath}
	}
	for _, pc := range m.ProductionCountries {
		c.Countries = append(c.Countries, pc.ISO)
	}
	for _, co := range m.ProductionCompanies {
		c.Companies = append(c.Companies, domain.CompanyCandidate{
			Company:    domain.ProductionCompany{TMDbID: co.ID, NameEn: co.Name, ImageURL: co.LogoPath},
			CountryISO: co.OriginCountry,
		})
	}
	return c, nil
}
