package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
	"github.com/heartmarshall/cinemadb-backend/internal/source"
	"github.com/heartmarshall/cinemadb-backend/pkg/ctxutil"
)

const defaultProgressEvery = 10_000

// Report summarizes one ingestion run.
type Report struct {
	RunID    string
	Kind     string
	Inserted int64
	Existing int64
	Failed   int64
	Duration time.Duration
}

// Total is the number of candidates the run consumed.
func (r Report) Total() int64 { return r.Inserted + r.Existing + r.Failed }

func (r Report) LogAttrs() []any {
	return []any{
		slog.String("run_id", r.RunID),
		slog.String("kind", r.Kind),
		slog.Int64("inserted", r.Inserted),
		slog.Int64("existing", r.Existing),
		slog.Int64("failed", r.Failed),
		slog.Duration("duration", r.Duration),
	}
}

// Runner drives candidates from a source into an ingestor.
type Runner struct {
	log           *slog.Logger
	concurrency   int
	progressEvery int64
}

func NewRunner(log *slog.Logger, concurrency int) *Runner {
	return &Runner{
		log:           log.With("component", "runner"),
		concurrency:   max(concurrency, 1),
		progressEvery: defaultProgressEvery,
	}
}

type tally struct {
	inserted, existing, failed atomic.Int64
}

func (t *tally) seen() int64 { return t.inserted.Load() + t.existing.Load() + t.failed.Load() }

// Run feeds every candidate of src to write with bounded concurrency.
// Per-record failures are logged and counted; a fatal error, a source error
// other than a malformed record, or context cancellation stops the run.
// The report is filled in either way.
func Run[C, T any](ctx context.Context, r *Runner, kind string, src source.Source[C], write WriteFunc[C, T]) (Report, error) {
	id := uuid.New()
	rep := Report{RunID: id.String(), Kind: kind}
	log := r.log.With(slog.String("run_id", rep.RunID), slog.String("kind", kind))
	start := time.Now()

	var t tally
	g, gctx := errgroup.WithContext(ctxutil.WithRunID(ctx, id))
	g.SetLimit(r.concurrency)

	log.InfoContext(ctx, "run started", slog.Int("concurrency", r.concurrency))

	var readErr error
	for {
		c, err := src.Next(gctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if skippable(err) {
				t.failed.Add(1)
				log.WarnContext(ctx, "record skipped", slog.String("error", err.Error()))
				continue
			}
			readErr = err
			break
		}

		g.Go(func() error {
			out := write(gctx, c)
			switch {
			case out.IsInserted():
				t.inserted.Add(1)
			case out.IsAlreadyExisted(), errors.Is(out.Err, domain.ErrAlreadyExists):
				t.existing.Add(1)
			default:
				t.failed.Add(1)
				if out.Err != nil && domain.IsFatal(out.Err) {
					return out.Err
				}
				log.WarnContext(ctx, "record failed", slog.String("error", errString(out.Err)))
			}

			if n := t.seen(); n%r.progressEvery == 0 {
				log.InfoContext(ctx, "progress", slog.Int64("processed", n))
			}
			return nil
		})
	}

	err := g.Wait()
	rep.Inserted = t.inserted.Load()
	rep.Existing = t.existing.Load()
	rep.Failed = t.failed.Load()
	return finish(ctx, log, rep, start, err, readErr)
}

// BatchWriteFunc writes a batch of candidates and returns how many rows it
// inserted and how many candidates it rejected; the rest already existed.
// On error inserted still counts the rows written before it.
type BatchWriteFunc[C any] func(ctx context.Context, cs []C) (inserted, failed int64, err error)

// RunBatches reads src into batches of size candidates and writes each
// batch with one call. Batches run one after another; write is expected to
// fan out internally. A failed batch is counted and skipped unless its
// error is fatal.
func RunBatches[C any](ctx context.Context, r *Runner, kind string, src source.Source[C], size int, write BatchWriteFunc[C]) (Report, error) {
	id := uuid.New()
	rep := Report{RunID: id.String(), Kind: kind}
	log := r.log.With(slog.String("run_id", rep.RunID), slog.String("kind", kind))
	start := time.Now()
	size = max(size, 1)
	wctx := ctxutil.WithRunID(ctx, id)

	log.InfoContext(ctx, "run started", slog.Int("batch_size", size))

	next := r.progressEvery
	buf := make([]C, 0, size)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n := int64(len(buf))
		inserted, failed, err := write(wctx, buf)
		buf = buf[:0]
		rep.Inserted += inserted
		if err != nil {
			rep.Failed += n - inserted
			if domain.IsFatal(err) || ctx.Err() != nil {
				return err
			}
			log.WarnContext(ctx, "batch failed", slog.Int64("records", n), slog.String("error", err.Error()))
		} else {
			rep.Failed += failed
			rep.Existing += n - inserted - failed
		}
		if total := rep.Total(); total >= next {
			log.InfoContext(ctx, "progress", slog.Int64("processed", total))
			next = total - total%r.progressEvery + r.progressEvery
		}
		return nil
	}

	var runErr, readErr error
	for {
		c, err := src.Next(wctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if skippable(err) {
				rep.Failed++
				log.WarnContext(ctx, "record skipped", slog.String("error", err.Error()))
				continue
			}
			readErr = err
			break
		}
		buf = append(buf, c)
		if len(buf) == size {
			if runErr = flush(); runErr != nil {
				break
			}
		}
	}
	if runErr == nil && ctx.Err() == nil {
		runErr = flush()
	}
	return finish(ctx, log, rep, start, runErr, readErr)
}

// skippable reports whether a source error only spoils the current record.
func skippable(err error) bool {
	return errors.Is(err, domain.ErrValidation) || errors.Is(err, source.ErrUnavailable)
}

func finish(ctx context.Context, log *slog.Logger, rep Report, start time.Time, err, readErr error) (Report, error) {
	rep.Duration = time.Since(start)

	switch {
	case err != nil:
		err = fmt.Errorf("%s: aborted: %w", rep.Kind, err)
	case readErr != nil && ctx.Err() == nil:
		err = fmt.Errorf("%s: read source: %w", rep.Kind, readErr)
	case ctx.Err() != nil:
		err = fmt.Errorf("%s: %w", rep.Kind, ctx.Err())
	}

	if err != nil {
		log.ErrorContext(ctx, "run stopped", append(rep.LogAttrs(), slog.String("error", err.Error()))...)
		return rep, err
	}
	log.InfoContext(ctx, "run finished", rep.LogAttrs()...)
	return rep, nil
}

func errString(err error) string {
	if err == nil {
		return "unknown outcome"
	}
	return err.Error()
}
