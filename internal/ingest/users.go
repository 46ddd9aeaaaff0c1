package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/record"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 50
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
)

// Users registers catalog users.
type Users struct {
	records *Ingestor[domain.User]
	cost    int
	log     *slog.Logger
}

func NewUsers(w *record.Writer[domain.User], log *slog.Logger, bcryptCost, concurrency int) *Users {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Users{
		records: New(w, log, Options[domain.User]{Name: "users", Concurrency: concurrency}),
		cost:    bcryptCost,
		log:     log.With("ingestor", "users"),
	}
}

func (u *Users) Initialize(ctx context.Context) error { return u.records.Initialize(ctx) }

func (u *Users) Close() { u.records.Close() }

// Add registers a user. A taken username or email yields Failed wrapping
// domain.ErrAlreadyExists.
func (u *Users) Add(ctx context.Context, r domain.Registration) domain.Outcome[domain.User] {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)

	if err := validateRegistration(r); err != nil {
		return domain.Failed[domain.User](err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), u.cost)
	if err != nil {
		return domain.Failed[domain.User](fmt.Errorf("users: hash password: %w", err))
	}

	out := u.records.Add(ctx, domain.User{
		Username:       r.Username,
		Email:          r.Email,
		HashedPassword: hash,
		IsActive:       true,
	})
	switch {
	case out.IsAlreadyExisted():
		return domain.Failed[domain.User](fmt.Errorf("users: %s: %w", r.Username, domain.ErrAlreadyExists))
	case out.IsInserted():
		u.log.InfoContext(ctx, "user registered", slog.Int64("user_id", out.Row.ID))
	}
	return out
}

func validateRegistration(r domain.Registration) error {
	var errs []domain.FieldError

	switch n := len(r.Username); {
	case n == 0:
		errs = append(errs, domain.FieldError{Field: "username", Message: "required"})
	case n < minUsernameLen:
		errs = append(errs, domain.FieldError{Field: "username", Message: "too short"})
	case n > maxUsernameLen:
		errs = append(errs, domain.FieldError{Field: "username", Message: "too long"})
	}

	if r.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if at := strings.IndexByte(r.Email, '@'); at < 1 || at == len(r.Email)-1 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid format"})
	}

	switch n := len(r.Password); {
	case n == 0:
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	case n < minPasswordLen:
		errs = append(errs, domain.FieldError{Field: "password", Message: "too short"})
	case n > maxPasswordLen:
		errs = append(errs, domain.FieldError{Field: "password", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
