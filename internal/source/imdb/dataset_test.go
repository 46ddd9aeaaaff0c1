package imdb

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func writeDump(t *testing.T, dir, name string, gz bool, lines ...string) {
	t.Helper()

	body := strings.Join(lines, "\n") + "\n"
	if !gz {
		if err := os.WriteFile(filepath.Join(dir, name+".tsv"), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		return
	}

	f, err := os.Create(filepath.Join(dir, name+".tsv.gz"))
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func tsv(fields ...string) string { return strings.Join(fields, "\t") }

func TestDataset_Movies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDump(t, dir, TitleBasics, false,
		tsv(titleBasicsHeader...),
		tsv("tt0000001", "short", "Carmencita", "Carmencita", "0", "1894", `\N`, "1", "Documentary,Short"),
		tsv("tt0087182", "movie", "Dune", "Dune", "0", "1984", `\N`, "137", "Action,Adventure,Sci-Fi"),
	)

	r, err := NewDataset(dir, discard()).Movies()
	if err != nil {
		t.Fatalf("Movies() error = %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	first, err := r.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if first.Movie.IMDbID != "tt0000001" || first.TypeName != "short" {
		t.Errorf("first = %+v", first)
	}
	if first.Movie.EndYear != nil {
		t.Errorf("EndYear = %v, want nil", *first.Movie.EndYear)
	}
	if len(first.Genres) != 2 || first.Genres[1] != "Short" {
		t.Errorf("Genres = %v", first.Genres)
	}

	second, err := r.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if second.Movie.Runtime == nil || *second.Movie.Runtime != 137 {
		t.Errorf("Runtime = %v", second.Movie.Runtime)
	}

	if _, err := r.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestDataset_PrefersGzip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDump(t, dir, NameBasics, false, tsv(nameBasicsHeader...))
	writeDump(t, dir, NameBasics, true,
		tsv(nameBasicsHeader...),
		tsv("nm0000001", "Fred Astaire", "1899", "1987", "actor,miscellaneous,producer", "tt0072308,tt0050419"),
	)

	r, err := NewDataset(dir, discard()).Persons()
	if err != nil {
		t.Fatalf("Persons() error = %v", err)
	}
	defer r.Close()

	p, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if p.Person.NameEn != "Fred Astaire" || len(p.Professions) != 3 || len(p.KnownFor) != 2 {
		t.Errorf("person = %+v", p)
	}
	if p.Person.DeathYear == nil || *p.Person.DeathYear != 1987 {
		t.Errorf("DeathYear = %v", p.Person.DeathYear)
	}
}

func TestDataset_Principals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDump(t, dir, TitlePrincipals, false,
		tsv(principalsHeader...),
		tsv("tt0087182", "1", "nm0001492", "actor", `\N`, `["Paul Atreides"]`),
		tsv("tt0087182", "2", "nm0000186", "director", "directed by", `\N`),
	)

	r, err := NewDataset(dir, discard()).Principals()
	if err != nil {
		t.Fatalf("Principals() error = %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	actor, err := r.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if actor.Job != nil || len(actor.Characters) != 1 || actor.Characters[0] != "Paul Atreides" {
		t.Errorf("actor = %+v", actor)
	}

	director, err := r.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if director.Ordering != 2 || director.Job == nil || *director.Job != "directed by" {
		t.Errorf("director = %+v", director)
	}
	if director.Characters != nil {
		t.Errorf("Characters = %v, want nil", director.Characters)
	}
}

func TestReader_MalformedRowsAreSkippable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDump(t, dir, TitleBasics, false,
		tsv(titleBasicsHeader...),
		tsv("tt0000001", "short"),
		tsv("bad", "movie", "X", "X", "0", `\N`, `\N`, `\N`, `\N`),
		tsv("tt0000002", "movie", "Y", "Y", "0", "19x4", `\N`, `\N`, `\N`),
		tsv("tt0000003", "movie", "Z", "Z", "0", `\N`, `\N`, `\N`, `\N`),
	)

	r, err := NewDataset(dir, discard()).Movies()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx := context.Background()
	for i := range 3 {
		if _, err := r.Next(ctx); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("row %d: error = %v, want ErrValidation", i+2, err)
		}
	}

	c, err := r.Next(ctx)
	if err != nil {
		t.Fatalf("valid row after bad ones: %v", err)
	}
	if c.Movie.IMDbID != "tt0000003" || c.Genres != nil {
		t.Errorf("candidate = %+v", c)
	}
}

func TestDataset_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := NewDataset(t.TempDir(), discard()).Movies()
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("wrong header", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeDump(t, dir, TitleBasics, false, tsv(nameBasicsHeader...))
		_, err := NewDataset(dir, discard()).Movies()
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, TitleBasics+".tsv"), nil, 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := NewDataset(dir, discard()).Movies()
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("error = %v, want io.ErrUnexpectedEOF", err)
		}
	})
}

func TestParsePrincipal_BadCharacters(t *testing.T) {
	t.Parallel()

	_, err := parsePrincipal([]string{"tt1", "1", "nm1", "actor", `\N`, `["unterminated`})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}
