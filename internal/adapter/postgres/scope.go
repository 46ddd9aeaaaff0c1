package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Session is one pooled connection held for a single logical operation.
// *pgxpool.Conn satisfies it.
type Session interface {
	Querier
	Release()
}

// SessionSource hands out sessions.
type SessionSource interface {
	Acquire(ctx context.Context) (Session, error)
}

// PoolSource adapts a *pgxpool.Pool to SessionSource.
type PoolSource struct {
	pool *pgxpool.Pool
}

func NewPoolSource(pool *pgxpool.Pool) PoolSource {
	return PoolSource{pool: pool}
}

func (s PoolSource) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Scope runs operations against exactly one session each.
type Scope struct {
	src     SessionSource
	timeout time.Duration
}

// NewScope creates a Scope. A positive timeout becomes the deadline of
// every Run, including the wait for a free connection.
func NewScope(src SessionSource, timeout time.Duration) *Scope {
	return &Scope{src: src, timeout: timeout}
}

// Run acquires a session, calls fn with it and releases it on every exit
// path, panics included. When ctx carries a transaction started by
// TxManager.RunInTx, fn runs on that transaction and no session is acquired.
func (s *Scope) Run(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if tx, ok := txFromCtx(ctx); ok {
		return fn(ctx, tx)
	}

	sess, err := s.src.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer sess.Release()

	return fn(ctx, sess)
}
