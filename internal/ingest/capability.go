package ingest

import (
	"context"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// Lifecycle is implemented by every ingestor.
type Lifecycle interface {
	Initialize(ctx context.Context) error
	Close()
}

// Adder safe-adds candidates of type C as rows of type T.
type Adder[C, T any] interface {
	Add(ctx context.Context, c C) domain.Outcome[T]
}

// GetOrCreator returns the persisted row for every candidate.
type GetOrCreator[C, T any] interface {
	GetOrCreate(ctx context.Context, c C) domain.Outcome[T]
}

// BatchWriter writes records in chunked multi-row inserts.
type BatchWriter[T any] interface {
	AddBatch(ctx context.Context, recs []T) (int64, error)
	GetOrCreateBatch(ctx context.Context, recs []T, filter *record.Filter) ([]T, error)
}

// Upserter refreshes rows that already exist.
type Upserter[C, T any] interface {
	Upsert(ctx context.Context, c C) domain.Outcome[T]
}

// WriteFunc adapts any single-record operation for Run.
type WriteFunc[C, T any] func(ctx context.Context, c C) domain.Outcome[T]

var (
	_ Lifecycle                                                       = (*Ingestor[domain.Genre])(nil)
	_ BatchWriter[domain.Genre]                                       = (*Ingestor[domain.Genre])(nil)
	_ BatchWriter[domain.Country]                                     = (*Reference[domain.Country])(nil)
	_ Adder[domain.MovieCandidate, domain.Movie]                      = (*Movies)(nil)
	_ GetOrCreator[domain.MovieCandidate, domain.Movie]               = (*Movies)(nil)
	_ Adder[domain.PersonCandidate, domain.Person]                    = (*Persons)(nil)
	_ Adder[domain.PrincipalCandidate, domain.Principal]              = (*Principals)(nil)
	_ GetOrCreator[domain.CompanyCandidate, domain.ProductionCompany] = (*Productions)(nil)
	_ Upserter[domain.TMDbCandidate, domain.TMDbMovie]                = (*TMDbMovies)(nil)
	_ Adder[domain.Registration, domain.User]                         = (*Users)(nil)
)
