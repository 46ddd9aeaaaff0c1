package source

import "testing"

func TestStatic_ReferenceLists(t *testing.T) {
	t.Parallel()

	var s Static

	if got := len(s.MovieTypes()); got != 10 {
		t.Errorf("MovieTypes = %d, want 10", got)
	}
	if got := len(s.Genres()); got != 27 {
		t.Errorf("Genres = %d, want 27", got)
	}
	if got := len(s.Professions()); got != 47 {
		t.Errorf("Professions = %d, want 47", got)
	}

	countries, err := s.Countries()
	if err != nil {
		t.Fatalf("Countries() error = %v", err)
	}
	if len(countries) == 0 {
		t.Fatal("Countries() returned nothing")
	}
}

func TestStatic_NaturalKeysUnique(t *testing.T) {
	t.Parallel()

	var s Static
	seen := map[string]bool{}
	for _, p := range s.Professions() {
		if seen[p.IMDbName] {
			t.Errorf("duplicate profession %q", p.IMDbName)
		}
		seen[p.IMDbName] = true
	}

	slugs := map[string]bool{}
	for _, g := range s.Genres() {
		if slugs[g.Slug] {
			t.Errorf("duplicate genre slug %q", g.Slug)
		}
		slugs[g.Slug] = true
	}

	countries, err := s.Countries()
	if err != nil {
		t.Fatal(err)
	}
	isos := map[string]bool{}
	for _, c := range countries {
		if len(c.ISO) != 2 {
			t.Errorf("country %q: iso %q is not alpha-2", c.NameEn, c.ISO)
		}
		if isos[c.ISO] {
			t.Errorf("duplicate iso %q", c.ISO)
		}
		isos[c.ISO] = true
	}
}

func TestStatic_GenreTMDbNames(t *testing.T) {
	t.Parallel()

	for _, g := range (Static{}).Genres() {
		switch g.NameEn {
		case "Sci-Fi":
			if g.TMDbName == nil || *g.TMDbName != "Science Fiction" {
				t.Errorf("Sci-Fi tmdb name = %v", g.TMDbName)
			}
		case "Talk-Show":
			if g.TMDbName != nil {
				t.Errorf("Talk-Show should have no tmdb name, got %q", *g.TMDbName)
			}
		}
	}
}

func TestStatic_CountryWithoutRussianName(t *testing.T) {
	t.Parallel()

	countries, err := (Static{}).Countries()
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range countries {
		if c.ISO == "XC" && c.NameRu != nil {
			t.Errorf("XC name_ru = %q, want nil", *c.NameRu)
		}
	}
}
