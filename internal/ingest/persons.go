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

// Persons ingests IMDb names with their primary professions.
type Persons struct {
	records     *Ingestor[domain.Person]
	writer      *record.Writer[domain.Person]
	links       *record.Writer[domain.PersonProfession]
	professions *Reference[domain.Profession]
	tx          TxRunner
	log         *slog.Logger

	skipKnown bool
	mu        sync.RWMutex
	known     map[string]struct{}
}

// NewPersons wires the person ingestor. With skipKnown the IMDb ids already
// stored are loaded on Initialize and such candidates never reach the
// database.
func NewPersons(
	w *record.Writer[domain.Person],
	links *record.Writer[domain.PersonProfession],
	professions *Reference[domain.Profession],
	slugs slug.Registry,
	tx TxRunner,
	log *slog.Logger,
	concurrency int,
	skipKnown bool,
) *Persons {
	if tx == nil {
		tx = noTx{}
	}
	p := &Persons{
		writer:      w,
		links:       links,
		professions: professions,
		tx:          tx,
		log:         log.With("ingestor", "persons"),
		skipKnown:   skipKnown,
	}
	p.records = New(w, log, Options[domain.Person]{
		Name:        "persons",
		Concurrency: concurrency,
		Slugger: &Slugger[domain.Person]{
			Registry: slugs,
			Seed:     func(ps domain.Person) string { return ps.NameEn },
			Extra:    func(ps domain.Person) []string { return disambiguators(ps.BirthYear, ps.IMDbID) },
			Field:    func(ps *domain.Person) *string { return &ps.Slug },
		},
		OnInit:  p.init,
		OnClose: p.reset,
	})
	return p
}

func (p *Persons) Initialize(ctx context.Context) error { return p.records.Initialize(ctx) }

func (p *Persons) Close() { p.records.Close() }

func (p *Persons) init(ctx context.Context) error {
	if err := p.professions.Initialize(ctx); err != nil {
		return err
	}
	if !p.skipKnown {
		return nil
	}

	ids, err := record.Pluck[string](ctx, p.writer, "imdb_nmid")
	if err != nil {
		return fmt.Errorf("load known persons: %w", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	p.mu.Lock()
	p.known = known
	p.mu.Unlock()
	p.log.InfoContext(ctx, "known persons loaded", slog.Int("count", len(known)))
	return nil
}

func (p *Persons) reset() {
	p.mu.Lock()
	p.known = nil
	p.mu.Unlock()
}

func (p *Persons) isKnown(imdbID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.known[imdbID]
	return ok
}

func (p *Persons) remember(imdbID string) {
	if !p.skipKnown {
		return
	}
	p.mu.Lock()
	if p.known == nil {
		p.known = make(map[string]struct{})
	}
	p.known[imdbID] = struct{}{}
	p.mu.Unlock()
}

// Add safe-adds a person. Profession links are written only for a new
// person.
func (p *Persons) Add(ctx context.Context, c domain.PersonCandidate) domain.Outcome[domain.Person] {
	if err := p.records.ready(); err != nil {
		return domain.Failed[domain.Person](err)
	}
	if p.skipKnown && p.isKnown(c.Person.IMDbID) {
		return domain.AlreadyExisted[domain.Person](nil)
	}

	out := withLinks(ctx, p.tx,
		func(ctx context.Context) domain.Outcome[domain.Person] { return p.records.Add(ctx, c.Person) },
		func(ctx context.Context, row *domain.Person) error { return p.linkProfessions(ctx, row, c.Professions) },
	)
	if !out.IsFailed() {
		p.remember(c.Person.IMDbID)
	}
	return out
}

// Exists reports whether a person with the IMDb id is stored.
func (p *Persons) Exists(ctx context.Context, imdbID string) (bool, error) {
	if p.skipKnown && p.isKnown(imdbID) {
		return true, nil
	}
	return p.records.Exists(ctx, map[string]any{"imdb_nmid": imdbID})
}

func (p *Persons) linkProfessions(ctx context.Context, person *domain.Person, names []string) error {
	rows := make([]domain.PersonProfession, 0, len(names))
	for _, name := range names {
		id, ok := p.professions.ID(name)
		if !ok {
			p.log.DebugContext(ctx, "unknown profession", slog.String("imdb_id", person.IMDbID), slog.String("profession", name))
			continue
		}
		rows = append(rows, domain.PersonProfession{PersonID: person.ID, ProfessionID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := p.links.AddMany(ctx, rows); err != nil {
		return fmt.Errorf("persons: link professions of %s: %w", person.IMDbID, err)
	}
	return nil
}
