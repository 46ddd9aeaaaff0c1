package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "movie", "tt0000001"); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(fmt.Errorf("scan row: %w", pgx.ErrNoRows), "movie", "tt0000001")

	if !errors.Is(got, domain.ErrNotFound) {
		t.Fatalf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "movie tt0000001: not found"; got.Error() != want {
		t.Errorf("Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrAlreadyExists},
		{"23503", domain.ErrNotFound},
		{"23514", domain.ErrValidation},
		{"23502", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got := MapError(&pgconn.PgError{Code: tt.code}, "user", "neo")
			if !errors.Is(got, tt.want) {
				t.Errorf("MapError(%s) = %v, want wrap of %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMapError_ContextPassesThrough(t *testing.T) {
	t.Parallel()

	got := MapError(context.DeadlineExceeded, "person", "nm0000001")
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("MapError should keep context.DeadlineExceeded, got %v", got)
	}
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("context errors must not be mapped to domain errors")
	}
}

func TestMapError_UnknownCodeWrapped(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "40001", Message: "serialization failure"}
	got := MapError(pgErr, "genre", 7)

	var target *pgconn.PgError
	if !errors.As(got, &target) || target.Code != "40001" {
		t.Errorf("MapError should wrap unknown PgError, got %v", got)
	}
}
