package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
	"github.com/heartmarshall/cinemadb-backend/internal/slug"
)

// idMap indexes row ids by natural key.
type idMap struct {
	mu  sync.RWMutex
	ids map[string]int64
}

func (m *idMap) get(key string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[key]
	return id, ok
}

func (m *idMap) put(key string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids == nil {
		m.ids = make(map[string]int64)
	}
	m.ids[key] = id
}

func (m *idMap) replace(ids map[string]int64) {
	m.mu.Lock()
	m.ids = ids
	m.mu.Unlock()
}

func (m *idMap) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

func (m *idMap) clear() { m.replace(nil) }

// Reference ingests a small lookup table and keeps its ids in memory.
type Reference[T any] struct {
	*Ingestor[T]
	column string
	key    func(T) string
	id     func(T) int64
	ids    idMap

	// alias is a second lookup key, such as a provider's name for the row.
	alias   func(T) (string, bool)
	aliases idMap
}

func newReference[T any](w *record.Writer[T], log *slog.Logger, column string, key func(T) string, id func(T) int64, slugger *Slugger[T]) *Reference[T] {
	r := &Reference[T]{column: column, key: key, id: id}
	r.Ingestor = New(w, log, Options[T]{
		Slugger: slugger,
		OnInit:  r.load,
		OnClose: func() {
			r.ids.clear()
			r.aliases.clear()
		},
	})
	return r
}

func NewMovieTypes(w *record.Writer[domain.MovieType], log *slog.Logger) *Reference[domain.MovieType] {
	return newReference(w, log, "imdb_name",
		func(t domain.MovieType) string { return t.IMDbName },
		func(t domain.MovieType) int64 { return t.ID },
		nil)
}

// NewGenres indexes genres by IMDb name and, for TMDb, by tmdb_name.
func NewGenres(w *record.Writer[domain.Genre], slugs slug.Registry, log *slog.Logger) *Reference[domain.Genre] {
	r := newReference(w, log, "name_en",
		func(g domain.Genre) string { return g.NameEn },
		func(g domain.Genre) int64 { return g.ID },
		&Slugger[domain.Genre]{
			Registry: slugs,
			Seed:     func(g domain.Genre) string { return g.NameEn },
			Field:    func(g *domain.Genre) *string { return &g.Slug },
		})
	r.alias = func(g domain.Genre) (string, bool) {
		if g.TMDbName == nil || *g.TMDbName == "" {
			return "", false
		}
		return *g.TMDbName, true
	}
	return r
}

func NewCountries(w *record.Writer[domain.Country], log *slog.Logger) *Reference[domain.Country] {
	return newReference(w, log, "iso",
		func(c domain.Country) string { return c.ISO },
		func(c domain.Country) int64 { return c.ID },
		nil)
}

func NewProfessions(w *record.Writer[domain.Profession], log *slog.Logger) *Reference[domain.Profession] {
	return newReference(w, log, "imdb_name",
		func(p domain.Profession) string { return p.IMDbName },
		func(p domain.Profession) int64 { return p.ID },
		nil)
}

func (r *Reference[T]) load(ctx context.Context) error {
	rows, err := r.writer.Find(ctx, nil)
	if err != nil {
		return err
	}

	ids := make(map[string]int64, len(rows))
	aliases := make(map[string]int64)
	for _, row := range rows {
		ids[r.key(row)] = r.id(row)
		if a, ok := r.aliasOf(row); ok {
			aliases[a] = r.id(row)
		}
	}
	r.ids.replace(ids)
	r.aliases.replace(aliases)
	r.log.DebugContext(ctx, "reference loaded", slog.Int("rows", len(ids)))
	return nil
}

// Sync makes sure every record exists and indexes the persisted rows. It
// returns how many rows were not indexed before.
func (r *Reference[T]) Sync(ctx context.Context, recs []T) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		k := r.key(rec)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	before := r.ids.len()
	rows, err := r.GetOrCreateBatch(ctx, recs, record.In(r.column, keys))
	if err != nil {
		return 0, err
	}
	if len(rows) != len(keys) {
		return 0, fmt.Errorf("%s: sync: read back %d of %d rows", r.name, len(rows), len(keys))
	}

	var added int64
	for _, row := range rows {
		if _, known := r.ids.get(r.key(row)); !known {
			added++
		}
		r.ids.put(r.key(row), r.id(row))
		if a, ok := r.aliasOf(row); ok {
			r.aliases.put(a, r.id(row))
		}
	}
	r.log.InfoContext(ctx, "reference synced",
		slog.Int("records", len(recs)),
		slog.Int("known_before", before),
		slog.Int64("new", added))
	return added, nil
}

// ID returns the id of the row with the given natural key.
func (r *Reference[T]) ID(key string) (int64, bool) { return r.ids.get(key) }

// AliasID returns the id of the row with the given alias. References
// without aliases never match.
func (r *Reference[T]) AliasID(alias string) (int64, bool) { return r.aliases.get(alias) }

func (r *Reference[T]) aliasOf(row T) (string, bool) {
	if r.alias == nil {
		return "", false
	}
	return r.alias(row)
}

// Len is the number of indexed rows.
func (r *Reference[T]) Len() int { return r.ids.len() }
