package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/schema"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

func newUsers(t *testing.T, e *env) *Users {
	t.Helper()
	u := NewUsers(writer(e, schema.Users), quietLog(), bcrypt.MinCost, 1)
	if err := u.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestUsers_Register(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	u := newUsers(t, e)

	e.mock.ExpectQuery(`INSERT INTO usermodel \(username,email,hashed_password,is_active\)`).
		WithArgs("neo", "neo@matrix.io", pgxmock.AnyArg(), true).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "neo", "neo@matrix.io", []byte("x"), true, time.Now()))

	out := u.Add(context.Background(), domain.Registration{Username: " neo ", Email: "Neo@Matrix.io", Password: "followthewhiterabbit"})
	if !out.IsInserted() {
		t.Fatalf("Add() = %+v", out)
	}
	testhelper.ExpectationsWereMet(t, e.mock)
}

func TestUsers_Taken(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	u := newUsers(t, e)

	e.mock.ExpectQuery(`INSERT INTO usermodel`).
		WillReturnRows(pgxmock.NewRows(userCols))

	out := u.Add(context.Background(), domain.Registration{Username: "neo", Email: "neo@matrix.io", Password: "followthewhiterabbit"})
	if !out.IsFailed() || !errors.Is(out.Err, domain.ErrAlreadyExists) {
		t.Fatalf("Add() = %+v, want Failed(ErrAlreadyExists)", out)
	}
	testhelper.ExpectationsWereMet(t, e.mock)
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     domain.Registration
		wantField string
	}{
		{"empty email", domain.Registration{Username: "user", Password: "password123"}, "email"},
		{"invalid email", domain.Registration{Email: "notanemail", Username: "user", Password: "password123"}, "email"},
		{"trailing at", domain.Registration{Email: "user@", Username: "user", Password: "password123"}, "email"},
		{"empty username", domain.Registration{Email: "a@b.com", Password: "password123"}, "username"},
		{"short username", domain.Registration{Email: "a@b.com", Username: "a", Password: "password123"}, "username"},
		{"long username", domain.Registration{Email: "a@b.com", Username: strings.Repeat("u", 51), Password: "password123"}, "username"},
		{"empty password", domain.Registration{Email: "a@b.com", Username: "user"}, "password"},
		{"short password", domain.Registration{Email: "a@b.com", Username: "user", Password: "short"}, "password"},
		{"long password", domain.Registration{Email: "a@b.com", Username: "user", Password: strings.Repeat("p", 73)}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateRegistration(tt.input)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if len(ve.Errors) != 1 || ve.Errors[0].Field != tt.wantField {
				t.Errorf("errors = %+v, want one on %q", ve.Errors, tt.wantField)
			}
		})
	}

	if err := validateRegistration(domain.Registration{Email: "a@b.com", Username: "user", Password: "password123"}); err != nil {
		t.Errorf("valid registration: %v", err)
	}
}
