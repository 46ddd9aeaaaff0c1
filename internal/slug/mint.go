package slug

import (
	"fmt"
	"strconv"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// maxSuffix is the last numeric suffix tried before the hash fallback.
const maxSuffix = 9

type phase uint8

const (
	phaseNormalizing phase = iota
	phaseDisambiguating
	phaseSuffixCounting
	phaseHashFallback
	phaseExhausted
)

// mintState yields the candidates for one seed in order: the base, then
// base-<extra> for each disambiguator, then base-1 through base-9, then
// base-<hash>. After that it is exhausted.
type mintState struct {
	seed     string
	extra    []string
	base     string
	phase    phase
	n        int
	attempts int
}

// newMintState normalizes extra up front; empty and repeated
// disambiguators are dropped.
func newMintState(seed string, extra ...string) *mintState {
	s := &mintState{seed: seed}
	seen := make(map[string]struct{}, len(extra))
	for _, e := range extra {
		e = Normalize(e)
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		s.extra = append(s.extra, e)
	}
	return s
}

// next returns the following candidate, or false once exhausted.
func (s *mintState) next() (string, bool) {
	var cand string
	switch s.phase {
	case phaseNormalizing:
		s.base = Base(s.seed)
		s.phase = phaseSuffixCounting
		if len(s.extra) > 0 {
			s.phase = phaseDisambiguating
		}
		s.n = 1
		cand = s.base
	case phaseDisambiguating:
		cand = s.base + "-" + s.extra[0]
		s.extra = s.extra[1:]
		if len(s.extra) == 0 {
			s.phase = phaseSuffixCounting
		}
	case phaseSuffixCounting:
		cand = s.base + "-" + strconv.Itoa(s.n)
		s.n++
		if s.n > maxSuffix {
			s.phase = phaseHashFallback
		}
	case phaseHashFallback:
		cand = s.base + "-" + shortHash(s.base)
		s.phase = phaseExhausted
	default:
		return "", false
	}
	s.attempts++
	return cand, true
}

func (s *mintState) err() error {
	return &CreationError{Seed: s.seed, Base: s.base, Attempts: s.attempts}
}

// CreationError is returned when every candidate for a seed is taken.
type CreationError struct {
	Seed     string
	Base     string
	Attempts int
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("slug: no free candidate for %q (base %q) after %d attempts", e.Seed, e.Base, e.Attempts)
}

func (e *CreationError) Unwrap() error { return domain.ErrSlugCreation }
