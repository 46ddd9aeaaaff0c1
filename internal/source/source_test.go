package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func drain[C any](t *testing.T, src Source[C]) []C {
	t.Helper()
	var out []C
	for {
		c, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		out = append(out, c)
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	got := drain[string](t, FromSlice([]string{"a", "b", "c"}))
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("drain = %v", got)
	}
}

func TestSlice_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := FromSlice([]int{1}).Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Next() error = %v, want context.Canceled", err)
	}
}

func TestLimit(t *testing.T) {
	t.Parallel()

	got := drain[int](t, Limit[int](FromSlice([]int{1, 2, 3, 4}), 2))
	if len(got) != 2 {
		t.Fatalf("Limit(2) yielded %v", got)
	}

	all := drain[int](t, Limit[int](FromSlice([]int{1, 2, 3}), 0))
	if len(all) != 3 {
		t.Fatalf("Limit(0) should not limit, got %v", all)
	}
}

func TestThrottle_Paces(t *testing.T) {
	t.Parallel()

	src := Throttle[int](FromSlice([]int{1, 2, 3, 4, 5}), 50, 1)

	start := time.Now()
	got := drain[int](t, src)
	elapsed := time.Since(start)

	if len(got) != 5 {
		t.Fatalf("yielded %d items, want 5", len(got))
	}
	// Five tokens at 50/s with burst 1 need at least four refill intervals.
	if elapsed < 70*time.Millisecond {
		t.Errorf("elapsed = %v, expected pacing", elapsed)
	}
}

func TestThrottle_Disabled(t *testing.T) {
	t.Parallel()

	src := FromSlice([]int{1})
	if Throttle[int](src, 0, 1) != Source[int](src) {
		t.Error("rps <= 0 should return the source unchanged")
	}
}

func TestThrottle_ContextCanceled(t *testing.T) {
	t.Parallel()

	src := Throttle[int](FromSlice([]int{1, 2}), 0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	if _, err := src.Next(ctx); err != nil {
		t.Fatalf("first Next() uses the burst token: %v", err)
	}
	cancel()
	if _, err := src.Next(ctx); err == nil {
		t.Fatal("expected error from canceled wait")
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := Fetch(FromSlice([]string{"a", "skip", "fail", "b"}), func(_ context.Context, k string) (*string, error) {
		switch k {
		case "skip":
			return nil, nil
		case "fail":
			return nil, boom
		}
		v := strings.ToUpper(k)
		return &v, nil
	})
	ctx := context.Background()

	if got, err := src.Next(ctx); err != nil || got != "A" {
		t.Fatalf("Next() = %q, %v, want A", got, err)
	}
	_, err := src.Next(ctx)
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("Next() error = %v, want ErrUnavailable wrapping boom", err)
	}
	if got, err := src.Next(ctx); err != nil || got != "B" {
		t.Fatalf("Next() = %q, %v, want B", got, err)
	}
	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() error = %v, want io.EOF", err)
	}
}
