package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithRunID_And_RunIDFromCtx(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := WithRunID(context.Background(), id)

	got, ok := RunIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for valid UUID")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestRunIDFromCtx_Missing(t *testing.T) {
	t.Parallel()

	tests := map[string]context.Context{
		"empty":      context.Background(),
		"nil uuid":   WithRunID(context.Background(), uuid.Nil),
		"wrong type": context.WithValue(context.Background(), ctxKey("run_id"), "not-a-uuid"),
	}
	for name, ctx := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := RunIDFromCtx(ctx)
			if ok || got != uuid.Nil {
				t.Fatalf("got %s, %v; want uuid.Nil, false", got, ok)
			}
		})
	}
}

func TestWithJob_And_JobFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithJob(context.Background(), "movies")

	if got := JobFromCtx(ctx); got != "movies" {
		t.Fatalf("expected movies, got %s", got)
	}
}

func TestJobFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), ctxKey("job"), 12345)

	if got := JobFromCtx(ctx); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}
