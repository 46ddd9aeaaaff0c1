package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	runIDKey ctxKey = "run_id"
	jobKey   ctxKey = "job"
)

// WithRunID stores the ingestion run ID in the context.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromCtx extracts the run ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func RunIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithJob stores the CLI job name in the context.
func WithJob(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, jobKey, name)
}

// JobFromCtx extracts the job name from the context.
// Returns an empty string if absent.
func JobFromCtx(ctx context.Context) string {
	name, _ := ctx.Value(jobKey).(string)
	return name
}
