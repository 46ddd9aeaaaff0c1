package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
)

type fakeSession struct {
	released int
}

func (s *fakeSession) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *fakeSession) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (s *fakeSession) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (s *fakeSession) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (s *fakeSession) Release() { s.released++ }

type fakeSource struct {
	sess     *fakeSession
	err      error
	acquired int
	deadline bool
}

func (f *fakeSource) Acquire(ctx context.Context) (Session, error) {
	f.acquired++
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.sess, nil
}

func TestScope_ReleasesOnSuccessAndError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{sess: &fakeSession{}}
	scope := NewScope(src, 0)

	if err := scope.Run(context.Background(), func(context.Context, Querier) error { return nil }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	boom := errors.New("boom")
	if err := scope.Run(context.Background(), func(context.Context, Querier) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}

	if src.acquired != 2 || src.sess.released != 2 {
		t.Errorf("acquired=%d released=%d, want 2/2", src.acquired, src.sess.released)
	}
}

func TestScope_ReleasesOnPanic(t *testing.T) {
	t.Parallel()

	src := &fakeSource{sess: &fakeSession{}}
	scope := NewScope(src, 0)

	func() {
		defer func() { _ = recover() }()
		_ = scope.Run(context.Background(), func(context.Context, Querier) error { panic("kaboom") })
	}()

	if src.sess.released != 1 {
		t.Errorf("released = %d, want 1", src.sess.released)
	}
}

func TestScope_AcquireError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: context.DeadlineExceeded}
	scope := NewScope(src, 0)

	called := false
	err := scope.Run(context.Background(), func(context.Context, Querier) error {
		called = true
		return nil
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
	if called {
		t.Error("fn must not run when acquire fails")
	}
}

func TestScope_AppliesTimeout(t *testing.T) {
	t.Parallel()

	src := &fakeSource{sess: &fakeSession{}}

	_ = NewScope(src, time.Second).Run(context.Background(), func(ctx context.Context, _ Querier) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("fn context has no deadline")
		}
		return nil
	})
	if !src.deadline {
		t.Error("acquire context has no deadline")
	}

	src.deadline = false
	_ = NewScope(src, 0).Run(context.Background(), func(context.Context, Querier) error { return nil })
	if src.deadline {
		t.Error("zero timeout should not set a deadline")
	}
}

func TestScope_UsesTransactionFromContext(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{sess: &fakeSession{}}
	scope := NewScope(src, 0)

	var got Querier
	err = scope.Run(withTx(context.Background(), tx), func(_ context.Context, q Querier) error {
		got = q
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got != tx {
		t.Error("Run should pass the context transaction to fn")
	}
	if src.acquired != 0 {
		t.Errorf("acquired = %d, want 0 inside a transaction", src.acquired)
	}
}
