// Package slug mints unique human-readable identifiers for one ingestion
// run. The table's unique constraint stays the source of truth; a registry
// only avoids known collisions.
package slug

import (
	"context"
	"fmt"
	"sync"
)

// Registry mints slugs that it has never returned before. extra holds
// disambiguators (a year, an external id) tried before numeric suffixes.
type Registry interface {
	Setup(ctx context.Context) error
	Mint(ctx context.Context, seed string, extra ...string) (string, error)
	Forget(slug string)
	Clear()
}

// Loader lists slugs already persisted in a table.
type Loader interface {
	Slugs(ctx context.Context) ([]string, error)
}

// Checker tells whether a slug is already persisted.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// set is a mutex-guarded string set.
type set struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// reserve adds s and reports whether it was absent.
func (t *set) reserve(s string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.taken == nil {
		t.taken = make(map[string]struct{})
	}
	if _, ok := t.taken[s]; ok {
		return false
	}
	t.taken[s] = struct{}{}
	return true
}

func (t *set) remove(s string) {
	t.mu.Lock()
	delete(t.taken, s)
	t.mu.Unlock()
}

func (t *set) reset(items []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.taken = make(map[string]struct{}, len(items))
	for _, s := range items {
		t.taken[s] = struct{}{}
	}
}

func (t *set) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.taken)
}

// Memory keeps the whole slug universe in process. With a Loader, Setup
// seeds it from the table.
type Memory struct {
	set
	loader Loader
}

// NewMemory creates an in-memory registry. loader may be nil.
func NewMemory(loader Loader) *Memory {
	return &Memory{loader: loader}
}

// Setup resets the registry to the persisted slugs (or to empty).
func (m *Memory) Setup(ctx context.Context) error {
	var existing []string
	if m.loader != nil {
		var err error
		existing, err = m.loader.Slugs(ctx)
		if err != nil {
			return fmt.Errorf("slug: load existing: %w", err)
		}
	}
	m.reset(existing)
	return nil
}

func (m *Memory) Mint(_ context.Context, seed string, extra ...string) (string, error) {
	st := newMintState(seed, extra...)
	for {
		cand, ok := st.next()
		if !ok {
			return "", st.err()
		}
		if m.reserve(cand) {
			return cand, nil
		}
	}
}

// Forget releases a minted slug that was not persisted.
func (m *Memory) Forget(slug string) { m.remove(slug) }

func (m *Memory) Clear() { m.reset(nil) }

func (m *Memory) Len() int { return m.len() }

// Store checks every candidate against the table as well as against the
// slugs it handed out itself. Two processes can still race on a candidate;
// the insert then fails with domain.ErrSlugTaken and the caller mints again.
type Store struct {
	set
	checker Checker
}

func NewStore(checker Checker) *Store {
	return &Store{checker: checker}
}

func (s *Store) Setup(context.Context) error {
	s.reset(nil)
	return nil
}

func (s *Store) Mint(ctx context.Context, seed string, extra ...string) (string, error) {
	st := newMintState(seed, extra...)
	for {
		cand, ok := st.next()
		if !ok {
			return "", st.err()
		}
		if !s.reserve(cand) {
			continue
		}

		exists, err := s.checker.SlugExists(ctx, cand)
		if err != nil {
			s.remove(cand)
			return "", fmt.Errorf("slug: check %q: %w", cand, err)
		}
		if !exists {
			return cand, nil
		}
		// Persisted elsewhere: keep it reserved so later mints skip the query.
	}
}

func (s *Store) Forget(slug string) { s.remove(slug) }

func (s *Store) Clear() { s.reset(nil) }

func (s *Store) Len() int { return s.len() }
