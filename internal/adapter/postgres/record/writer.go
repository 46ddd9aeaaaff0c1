// Package record writes domain records through conflict-aware INSERTs.
package record

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/dbscan"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres"
	"github.com/heartmarshall/cinemadb-backend/internal/adapter/postgres/schema"
	"github.com/heartmarshall/cinemadb-backend/internal/batch"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// DefaultMaxBatchSize caps the rows of a single multi-row INSERT.
const DefaultMaxBatchSize = 1000

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// laxScan tolerates the extra "inserted" column returned by upserts.
var laxScan = mustLaxAPI()

func mustLaxAPI() *pgxscan.API {
	dbAPI, err := pgxscan.NewDBScanAPI(dbscan.WithAllowUnknownColumns(true))
	if err != nil {
		panic(err)
	}
	api, err := pgxscan.NewAPI(dbAPI)
	if err != nil {
		panic(err)
	}
	return api
}

// Options tunes batch behaviour.
type Options struct {
	ChunkSize        int
	MaxBatchSize     int
	BatchConcurrency int
}

// Filter restricts a keyed read to Column IN Keys.
type Filter struct {
	Column string
	Keys   []any
}

// In builds a Filter from typed keys.
func In[K any](column string, keys []K) *Filter {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return &Filter{Column: column, Keys: out}
}

// Writer performs every write on one table inside a Scope session.
type Writer[T any] struct {
	table      schema.Table[T]
	scope      *postgres.Scope
	classifier *postgres.Classifier
	opts       Options
}

func NewWriter[T any](table schema.Table[T], scope *postgres.Scope, classifier *postgres.Classifier, opts Options) *Writer[T] {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.ChunkSize <= 0 || opts.ChunkSize > opts.MaxBatchSize {
		opts.ChunkSize = min(batch.DefaultChunkSize, opts.MaxBatchSize)
	}
	return &Writer[T]{table: table, scope: scope, classifier: classifier, opts: opts}
}

// Table returns the descriptor the writer was built with.
func (w *Writer[T]) Table() schema.Table[T] { return w.table }

// Create inserts rec unless its natural key exists and returns the
// persisted row either way. A conflict that leaves no row under the natural
// key came from the slug constraint and yields Failed(ErrSlugTaken); on
// tables without a slug it yields Failed(ErrAlreadyExists).
func (w *Writer[T]) Create(ctx context.Context, rec T) domain.Outcome[T] {
	var out domain.Outcome[T]
	err := w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		row, err := w.insert(ctx, q, rec)
		if err != nil {
			return err
		}
		if row != nil {
			out = domain.Inserted(row)
			return nil
		}

		existing, err := w.findOne(ctx, q, w.keyEq(rec))
		if err != nil {
			return err
		}
		if existing == nil {
			out = domain.Failed[T](w.secondaryConflict())
			return nil
		}
		out = domain.AlreadyExisted(existing)
		return nil
	})
	if err != nil {
		return w.fail("create", rec, err)
	}
	return out
}

// Add inserts rec unless it exists and does not read back a conflicting row.
// On slugged tables a conflict is checked against the natural key so that a
// slug collision is reported as Failed(ErrSlugTaken).
func (w *Writer[T]) Add(ctx context.Context, rec T) domain.Outcome[T] {
	var out domain.Outcome[T]
	err := w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		row, err := w.insert(ctx, q, rec)
		if err != nil {
			return err
		}
		if row != nil {
			out = domain.Inserted(row)
			return nil
		}

		if !w.table.HasSlug() {
			out = domain.AlreadyExisted[T](nil)
			return nil
		}
		ok, err := w.exists(ctx, q, w.keyEq(rec))
		if err != nil {
			return err
		}
		if !ok {
			out = domain.Failed[T](domain.ErrSlugTaken)
			return nil
		}
		out = domain.AlreadyExisted[T](nil)
		return nil
	})
	if err != nil {
		return w.fail("add", rec, err)
	}
	return out
}

// Upsert inserts rec or overwrites updateColumns of the row with the same
// natural key. With no columns given every non-key insert column is
// updated. The outcome is Inserted for a new row and AlreadyExisted for a
// refreshed one; both carry the row.
func (w *Writer[T]) Upsert(ctx context.Context, rec T, updateColumns ...string) domain.Outcome[T] {
	if len(updateColumns) == 0 {
		updateColumns = w.nonKeyColumns()
	}

	set := make([]string, len(updateColumns))
	for i, c := range updateColumns {
		set[i] = c + " = EXCLUDED." + c
	}

	query := psql.Insert(w.table.Name).
		Columns(w.table.InsertColumns...).
		Values(w.table.Values(rec)...).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s, (xmax = 0) AS inserted",
			strings.Join(w.table.NaturalKey, ", "),
			strings.Join(set, ", "),
			w.returning(),
		))

	var out domain.Outcome[T]
	err := w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}

		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("upsert returned no row")
		}

		row := new(T)
		if err := laxScan.NewRowScanner(rows).Scan(row); err != nil {
			return fmt.Errorf("scan upserted row: %w", err)
		}
		values, err := rows.Values()
		if err != nil {
			return err
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if inserted, _ := values[len(values)-1].(bool); inserted {
			out = domain.Inserted(row)
		} else {
			out = domain.AlreadyExisted(row)
		}
		return nil
	})
	if err != nil {
		return w.fail("upsert", rec, err)
	}
	return out
}

// Exists reports whether a row matches all filters. At least one filter is
// required.
func (w *Writer[T]) Exists(ctx context.Context, filters map[string]any) (bool, error) {
	if len(filters) == 0 {
		return false, fmt.Errorf("%s: exists: %w", w.table.Name, domain.NewValidationError("filters", "at least one filter is required"))
	}

	var ok bool
	err := w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		var err error
		ok, err = w.exists(ctx, q, squirrel.Eq(filters))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%s: exists: %w", w.table.Name, err)
	}
	return ok, nil
}

// Update sets columns on the rows matching all filters and returns how many
// rows changed. Both maps must be non-empty.
func (w *Writer[T]) Update(ctx context.Context, set, filters map[string]any) (int64, error) {
	if len(set) == 0 || len(filters) == 0 {
		return 0, fmt.Errorf("%s: update: %w", w.table.Name, domain.NewValidationError("filters", "set and filters are required"))
	}

	sql, args, err := psql.Update(w.table.Name).SetMap(set).Where(squirrel.Eq(filters)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: update: build: %w", w.table.Name, err)
	}

	var n int64
	err = w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		tag, err := q.Exec(ctx, sql, args...)
		n = tag.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: update: %w", w.table.Name, err)
	}
	return n, nil
}

// Find returns the rows matching all filters, or every row when filters is
// empty.
func (w *Writer[T]) Find(ctx context.Context, filters map[string]any) ([]T, error) {
	query := psql.Select(w.table.Columns...).From(w.table.Name).OrderBy(w.table.Columns[0])
	if len(filters) > 0 {
		query = query.Where(squirrel.Eq(filters))
	}
	return w.selectAll(ctx, "find", query)
}

// FindIn returns the rows whose column value is one of keys.
func (w *Writer[T]) FindIn(ctx context.Context, column string, keys []any) ([]T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := psql.Select(w.table.Columns...).
		From(w.table.Name).
		Where(squirrel.Eq{column: keys}).
		OrderBy(w.table.Columns[0])
	return w.selectAll(ctx, "find in", query)
}

// Pluck reads one column of every row of w's table.
func Pluck[K, T any](ctx context.Context, w *Writer[T], column string) ([]K, error) {
	sql, args, err := psql.Select(column).From(w.table.Name).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: pluck %s: build: %w", w.table.Name, column, err)
	}

	var out []K
	err = w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		return pgxscan.Select(ctx, q, &out, sql, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: pluck %s: %w", w.table.Name, column, err)
	}
	return out, nil
}

// Slugs lists the persisted slugs of a slugged table. It lets a Writer
// hydrate a slug.Memory registry.
func (w *Writer[T]) Slugs(ctx context.Context) ([]string, error) {
	if !w.table.HasSlug() {
		return nil, fmt.Errorf("%s: slugs: table has no slug column", w.table.Name)
	}
	return Pluck[string](ctx, w, w.table.SlugColumn)
}

// SlugExists lets a Writer back a slug.Store registry.
func (w *Writer[T]) SlugExists(ctx context.Context, slug string) (bool, error) {
	if !w.table.HasSlug() {
		return false, fmt.Errorf("%s: slug exists: table has no slug column", w.table.Name)
	}
	return w.Exists(ctx, map[string]any{w.table.SlugColumn: slug})
}

// AddMany inserts recs with one multi-row INSERT ... ON CONFLICT DO NOTHING
// and returns how many rows were written. It does not split its input:
// more than MaxBatchSize records is an error.
func (w *Writer[T]) AddMany(ctx context.Context, recs []T) (int64, error) {
	if len(recs) > w.opts.MaxBatchSize {
		return 0, fmt.Errorf("%s: add many: %d records: %w", w.table.Name, len(recs), domain.ErrMaxBatchSizeExceeded)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	query := psql.Insert(w.table.Name).Columns(w.table.InsertColumns...).Suffix("ON CONFLICT DO NOTHING")
	for _, rec := range recs {
		query = query.Values(w.table.Values(rec)...)
	}

	var n int64
	err := w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		if w.classifier.Classify(err) == nil {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: add many: %w", w.table.Name, err)
	}
	return n, nil
}

// AddBatch splits recs into chunks of chunkSize (the configured size when
// chunkSize <= 0), writes them concurrently with AddMany and returns the
// total number of inserted rows. Which records were duplicates is not
// reported.
func (w *Writer[T]) AddBatch(ctx context.Context, recs []T, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = w.opts.ChunkSize
	}
	chunkSize = min(chunkSize, w.opts.MaxBatchSize)

	var total atomic.Int64
	err := batch.Dispatch(ctx, recs, chunkSize, w.opts.BatchConcurrency, func(ctx context.Context, chunk []T) error {
		n, err := w.AddMany(ctx, chunk)
		total.Add(n)
		return err
	})
	return total.Load(), err
}

// CreateBatch runs AddBatch and, when filter is set, reads back the rows
// whose filter column is in filter.Keys. Without a filter it returns nil.
func (w *Writer[T]) CreateBatch(ctx context.Context, recs []T, filter *Filter) ([]T, error) {
	if _, err := w.AddBatch(ctx, recs, 0); err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, nil
	}
	return w.FindIn(ctx, filter.Column, filter.Keys)
}

// insert runs INSERT ... ON CONFLICT DO NOTHING RETURNING and returns nil
// when nothing was written.
func (w *Writer[T]) insert(ctx context.Context, q postgres.Querier, rec T) (*T, error) {
	sql, args, err := psql.Insert(w.table.Name).
		Columns(w.table.InsertColumns...).
		Values(w.table.Values(rec)...).
		Suffix("ON CONFLICT DO NOTHING RETURNING " + w.returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := new(T)
	if err := pgxscan.Get(ctx, q, row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func (w *Writer[T]) findOne(ctx context.Context, q postgres.Querier, where squirrel.Eq) (*T, error) {
	sql, args, err := psql.Select(w.table.Columns...).From(w.table.Name).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := new(T)
	if err := pgxscan.Get(ctx, q, row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func (w *Writer[T]) exists(ctx context.Context, q postgres.Querier, where squirrel.Eq) (bool, error) {
	sql, args, err := psql.Select("1").
		From(w.table.Name).
		Where(where).
		Prefix("SELECT EXISTS(").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var ok bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (w *Writer[T]) selectAll(ctx context.Context, op string, query squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %s: build: %w", w.table.Name, op, err)
	}

	var out []T
	err = w.scope.Run(ctx, func(ctx context.Context, q postgres.Querier) error {
		return pgxscan.Select(ctx, q, &out, sql, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", w.table.Name, op, err)
	}
	return out, nil
}

func (w *Writer[T]) keyEq(rec T) squirrel.Eq {
	values := w.table.KeyValues(rec)
	eq := make(squirrel.Eq, len(values))
	for i, col := range w.table.NaturalKey {
		eq[col] = values[i]
	}
	return eq
}

func (w *Writer[T]) nonKeyColumns() []string {
	cols := make([]string, 0, len(w.table.InsertColumns))
	for _, c := range w.table.InsertColumns {
		isKey := false
		for _, k := range w.table.NaturalKey {
			if c == k {
				isKey = true
				break
			}
		}
		if !isKey {
			cols = append(cols, c)
		}
	}
	return cols
}

func (w *Writer[T]) returning() string {
	return strings.Join(w.table.Columns, ", ")
}

func (w *Writer[T]) secondaryConflict() error {
	if w.table.HasSlug() {
		return domain.ErrSlugTaken
	}
	return fmt.Errorf("%s: conflict on a secondary unique constraint: %w", w.table.Name, domain.ErrAlreadyExists)
}

// fail routes a driver error through the classifier. A swallowed error
// becomes AlreadyExisted(nil); any other is mapped to a domain error keyed
// by the record's natural key.
func (w *Writer[T]) fail(op string, rec T, err error) domain.Outcome[T] {
	if w.classifier.Classify(err) == nil {
		return domain.AlreadyExisted[T](nil)
	}
	return domain.Failed[T](fmt.Errorf("%s: %w", op, postgres.MapError(err, w.table.Name, w.table.KeyValues(rec))))
}
