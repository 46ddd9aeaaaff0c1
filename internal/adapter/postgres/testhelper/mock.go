package testhelper

import (
	"context"
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres"
)

type mockSession struct {
	pgxmock.PgxPoolIface
}

func (mockSession) Release() {}

type mockSource struct {
	mock pgxmock.PgxPoolIface
}

func (s mockSource) Acquire(context.Context) (postgres.Session, error) {
	return mockSession{s.mock}, nil
}

// NewMockSource returns a SessionSource handing out one pgxmock pool. The
// mock is closed via t.Cleanup.
func NewMockSource(t *testing.T) (postgres.SessionSource, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("testhelper: create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mockSource{mock: mock}, mock
}

// NewMockScope returns a Scope whose sessions all talk to one pgxmock pool.
func NewMockScope(t *testing.T) (*postgres.Scope, pgxmock.PgxPoolIface) {
	t.Helper()

	src, mock := NewMockSource(t)
	return postgres.NewScope(src, 0), mock
}

// QuietClassifier returns a Classifier with default rules and a discarded log.
func QuietClassifier() *postgres.Classifier {
	return postgres.NewClassifier(slog.New(slog.DiscardHandler))
}

// ExpectationsWereMet fails t if mock has unmet expectations.
func ExpectationsWereMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet pgxmock expectations: %v", err)
	}
}
