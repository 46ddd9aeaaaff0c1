package batch

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		n       int
		size    int
		wantLen []int
	}{
		{"2500 by 1000", 2500, 1000, []int{1000, 1000, 500}},
		{"exact multiple", 1000, 500, []int{500, 500}},
		{"smaller than size", 3, 1000, []int{3}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"default size", 1200, 0, []int{500, 500, 200}},
		{"negative size", 10, -5, []int{10}},
		{"empty", 0, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := seq(tt.n)
			chunks := Chunk(items, tt.size)

			var lens []int
			var flat []int
			for _, c := range chunks {
				lens = append(lens, len(c))
				flat = append(flat, c...)
			}

			if !slices.Equal(lens, tt.wantLen) {
				t.Errorf("chunk lengths = %v, want %v", lens, tt.wantLen)
			}
			if !slices.Equal(flat, items) && tt.n > 0 {
				t.Error("concatenated chunks differ from input")
			}
		})
	}
}

func TestChunk_AppendDoesNotClobberNeighbour(t *testing.T) {
	t.Parallel()

	chunks := Chunk(seq(4), 2)
	_ = append(chunks[0], 99)

	if chunks[1][0] != 2 {
		t.Fatalf("append to first chunk overwrote second chunk: %v", chunks[1])
	}
}

func TestDispatch_RunsEveryChunk(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []int
	)
	err := Dispatch(context.Background(), seq(2500), 1000, 0, func(_ context.Context, chunk []int) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, chunk...)
		return nil
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	slices.Sort(seen)
	if !slices.Equal(seen, seq(2500)) {
		t.Errorf("saw %d items, want 2500 distinct in order", len(seen))
	}
}

func TestDispatch_FailureDoesNotStopSiblings(t *testing.T) {
	t.Parallel()

	boom := errors.New("chunk failed")
	var done atomic.Int32

	err := Dispatch(context.Background(), seq(50), 10, 0, func(_ context.Context, chunk []int) error {
		if chunk[0] == 0 {
			return boom
		}
		time.Sleep(5 * time.Millisecond)
		done.Add(1)
		return nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch() error = %v, want %v", err, boom)
	}
	if got := done.Load(); got != 4 {
		t.Errorf("completed siblings = %d, want 4", got)
	}
}

func TestDispatch_RespectsLimit(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	err := Dispatch(context.Background(), seq(100), 10, 2, func(context.Context, []int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestDispatch_Empty(t *testing.T) {
	t.Parallel()

	called := false
	err := Dispatch(context.Background(), []int(nil), 10, 0, func(context.Context, []int) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Fatalf("Dispatch(empty) err=%v called=%v", err, called)
	}
}
