// Package source feeds candidate records to ingestion runs.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/time/rate"
)

// ErrUnavailable marks a candidate that could not be fetched. A run counts
// it as failed and goes on.
var ErrUnavailable = errors.New("candidate unavailable")

// Source yields candidates one at a time and returns io.EOF when drained.
// Implementations must be safe for a single consumer goroutine.
type Source[C any] interface {
	Next(ctx context.Context) (C, error)
}

// Slice serves candidates from memory.
type Slice[C any] struct {
	mu    sync.Mutex
	items []C
	pos   int
}

func FromSlice[C any](items []C) *Slice[C] {
	return &Slice[C]{items: items}
}

func (s *Slice[C]) Next(ctx context.Context) (C, error) {
	var zero C
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.items) {
		return zero, io.EOF
	}
	c := s.items[s.pos]
	s.pos++
	return c, nil
}

type throttled[C any] struct {
	src Source[C]
	lim *rate.Limiter
}

// Throttle paces src to rps candidates per second with the given burst.
// rps <= 0 returns src unchanged.
func Throttle[C any](src Source[C], rps float64, burst int) Source[C] {
	if rps <= 0 {
		return src
	}
	return &throttled[C]{src: src, lim: rate.NewLimiter(rate.Limit(rps), max(burst, 1))}
}

func (t *throttled[C]) Next(ctx context.Context) (C, error) {
	if err := t.lim.Wait(ctx); err != nil {
		var zero C
		return zero, err
	}
	return t.src.Next(ctx)
}

type limited[C any] struct {
	src  Source[C]
	left int
}

// Limit stops src after n candidates. n <= 0 returns src unchanged.
func Limit[C any](src Source[C], n int) Source[C] {
	if n <= 0 {
		return src
	}
	return &limited[C]{src: src, left: n}
}

func (l *limited[C]) Next(ctx context.Context) (C, error) {
	if l.left <= 0 {
		var zero C
		return zero, io.EOF
	}
	l.left--
	return l.src.Next(ctx)
}

type fetched[K, C any] struct {
	keys  Source[K]
	fetch func(context.Context, K) (*C, error)
}

// Fetch turns a source of keys into a source of candidates by calling fetch
// for each key. Keys fetch reports as absent with a nil candidate are
// skipped. Fetch failures wrap ErrUnavailable.
func Fetch[K, C any](keys Source[K], fetch func(context.Context, K) (*C, error)) Source[C] {
	return &fetched[K, C]{keys: keys, fetch: fetch}
}

func (f *fetched[K, C]) Next(ctx context.Context) (C, error) {
	var zero C
	for {
		k, err := f.keys.Next(ctx)
		if err != nil {
			return zero, err
		}

		c, err := f.fetch(ctx, k)
		switch {
		case err != nil && ctx.Err() != nil:
			return zero, ctx.Err()
		case err != nil:
			return zero, fmt.Errorf("fetch %v: %w: %w", k, ErrUnavailable, err)
		case c != nil:
			return *c, nil
		}
	}
}
