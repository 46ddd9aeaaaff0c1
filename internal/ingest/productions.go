package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
	"github.com/heartmarshall/cinemadb-backend/internal/slug"
)

// Productions ingests TMDb production companies and links them to movies.
type Productions struct {
	records   *Ingestor[domain.ProductionCompany]
	links     *record.Writer[domain.MovieProduction]
	countries *Reference[domain.Country]
	log       *slog.Logger
}

func NewProductions(
	w *record.Writer[domain.ProductionCompany],
	links *record.Writer[domain.MovieProduction],
	countries *Reference[domain.Country],
	slugs slug.Registry,
	log *slog.Logger,
	concurrency int,
) *Productions {
	return &Productions{
		records: New(w, log, Options[domain.ProductionCompany]{
			Name:        "productions",
			Concurrency: concurrency,
			Slugger: &Slugger[domain.ProductionCompany]{
				Registry: slugs,
				Seed:     func(c domain.ProductionCompany) string { return c.NameEn },
				Field:    func(c *domain.ProductionCompany) *string { return &c.Slug },
			},
			OnInit: countries.Initialize,
		}),
		links:     links,
		countries: countries,
		log:       log.With("ingestor", "productions"),
	}
}

func (p *Productions) Initialize(ctx context.Context) error { return p.records.Initialize(ctx) }

func (p *Productions) Close() { p.records.Close() }

// GetOrCreate returns the stored company, inserting it first when new.
func (p *Productions) GetOrCreate(ctx context.Context, c domain.CompanyCandidate) domain.Outcome[domain.ProductionCompany] {
	company := c.Company
	if c.CountryISO != "" {
		if id, ok := p.countries.ID(c.CountryISO); ok {
			company.CountryID = &id
		} else {
			p.log.DebugContext(ctx, "unknown country", slog.Int64("tmdb_id", company.TMDbID), slog.String("iso", c.CountryISO))
		}
	}
	return p.records.GetOrCreate(ctx, company)
}

// Link attaches companies to a movie and returns the number of new links.
func (p *Productions) Link(ctx context.Context, movieID int64, companyIDs []int64) (int64, error) {
	if err := p.records.ready(); err != nil {
		return 0, err
	}
	if len(companyIDs) == 0 {
		return 0, nil
	}

	rows := make([]domain.MovieProduction, len(companyIDs))
	for k, id := range companyIDs {
		rows[k] = domain.MovieProduction{MovieID: movieID, CompanyID: id}
	}
	n, err := p.links.AddMany(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("productions: link movie %d: %w", movieID, err)
	}
	return n, nil
}
