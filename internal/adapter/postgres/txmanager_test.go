package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
)

func TestRunInTx_Commit(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = NewTxManager(mock).RunInTx(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromCtx(ctx); !ok {
			t.Error("callback context should carry the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("dry run")
	err = NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error { return sentinel })

	if !errors.Is(err, sentinel) {
		t.Fatalf("RunInTx() error = %v, want %v", err, sentinel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	}()

	_ = NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error { panic("boom") })
}

func TestRunInTx_BeginError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected begin error")
	}
	if called {
		t.Error("callback must not run when begin fails")
	}
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	txm := NewTxManager(mock)
	inner := errors.New("inner")
	err = txm.RunInTx(context.Background(), func(ctx context.Context) error {
		outer, _ := txFromCtx(ctx)
		return txm.RunInTx(ctx, func(ctx context.Context) error {
			if got, _ := txFromCtx(ctx); got != outer {
				t.Error("nested call should reuse the outer transaction")
			}
			return inner
		})
	})
	if !errors.Is(err, inner) {
		t.Fatalf("RunInTx() error = %v, want inner", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
