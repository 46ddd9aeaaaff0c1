// Package imdb reads the public IMDb TSV dumps as candidate sources.
package imdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// Dump file base names.
const (
	TitleBasics     = "title.basics"
	NameBasics      = "name.basics"
	TitlePrincipals = "title.principals"
)

// Null is the IMDb marker for a missing value.
const Null = `\N`

const maxLineSize = 1 << 20

// Dataset resolves dump files in one directory. Each file may be plain
// (.tsv) or gzipped (.tsv.gz); the gzipped one wins when both exist.
type Dataset struct {
	dir string
	log *slog.Logger
}

func NewDataset(dir string, log *slog.Logger) *Dataset {
	return &Dataset{dir: dir, log: log.With("source", "imdb")}
}

// Movies opens title.basics.
func (d *Dataset) Movies() (*Reader[domain.MovieCandidate], error) {
	return open(d, TitleBasics, titleBasicsHeader, parseTitle)
}

// Persons opens name.basics.
func (d *Dataset) Persons() (*Reader[domain.PersonCandidate], error) {
	return open(d, NameBasics, nameBasicsHeader, parseName)
}

// Principals opens title.principals.
func (d *Dataset) Principals() (*Reader[domain.PrincipalCandidate], error) {
	return open(d, TitlePrincipals, principalsHeader, parsePrincipal)
}

func (d *Dataset) resolve(name string) (string, bool, error) {
	for _, c := range []struct {
		ext string
		gz  bool
	}{{".tsv.gz", true}, {".tsv", false}} {
		path := filepath.Join(d.dir, name+c.ext)
		if _, err := os.Stat(path); err == nil {
			return path, c.gz, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return "", false, fmt.Errorf("imdb dump %s in %s: %w", name, d.dir, fs.ErrNotExist)
}

// Reader streams one dump file. It implements source.Source and must be
// closed by the caller.
type Reader[C any] struct {
	name    string
	closers []io.Closer
	sc      *bufio.Scanner
	width   int
	line    int
	parse   func([]string) (C, error)
}

func open[C any](d *Dataset, name string, header []string, parse func([]string) (C, error)) (*Reader[C], error) {
	path, gz, err := d.resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := &Reader[C]{name: name, closers: []io.Closer{f}, width: len(header), parse: parse}

	var in io.Reader = f
	if gz {
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		r.closers = append([]io.Closer{zr}, r.closers...)
		in = zr
	}

	r.sc = bufio.NewScanner(in)
	r.sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if err := r.checkHeader(header); err != nil {
		_ = r.Close()
		return nil, err
	}

	d.log.Info("dump opened", slog.String("file", path), slog.Bool("gzip", gz))
	return r, nil
}

func (r *Reader[C]) checkHeader(want []string) error {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return fmt.Errorf("read %s header: %w", r.name, err)
		}
		return fmt.Errorf("read %s header: %w", r.name, io.ErrUnexpectedEOF)
	}
	r.line++

	got := strings.Split(r.sc.Text(), "\t")
	if strings.Join(got, "\t") != strings.Join(want, "\t") {
		return fmt.Errorf("%s: unexpected header %q: %w", r.name, got, domain.ErrValidation)
	}
	return nil
}

// Next returns the next parsed row. Malformed rows yield an error wrapping
// domain.ErrValidation; the reader stays usable after them.
func (r *Reader[C]) Next(ctx context.Context) (C, error) {
	var zero C
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return zero, fmt.Errorf("read %s line %d: %w", r.name, r.line+1, err)
		}
		return zero, io.EOF
	}
	r.line++

	fields := strings.Split(r.sc.Text(), "\t")
	if len(fields) != r.width {
		return zero, r.invalid("columns", fmt.Sprintf("want %d, got %d", r.width, len(fields)))
	}

	c, err := r.parse(fields)
	if err != nil {
		return zero, fmt.Errorf("%s line %d: %w", r.name, r.line, err)
	}
	return c, nil
}

func (r *Reader[C]) invalid(field, msg string) error {
	return fmt.Errorf("%s line %d: %w", r.name, r.line, domain.NewValidationError(field, msg))
}

// Close releases the underlying file.
func (r *Reader[C]) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
