package imdb

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

var (
	titleBasicsHeader = []string{
		"tconst", "titleType", "primaryTitle", "originalTitle", "isAdult",
		"startYear", "endYear", "runtimeMinutes", "genres",
	}
	nameBasicsHeader = []string{
		"nconst", "primaryName", "birthYear", "deathYear", "primaryProfession", "knownForTitles",
	}
	principalsHeader = []string{
		"tconst", "ordering", "nconst", "category", "job", "characters",
	}
)

func parseTitle(f []string) (domain.MovieCandidate, error) {
	var c domain.MovieCandidate
	if err := required("tconst", f[0], "tt"); err != nil {
		return c, err
	}
	if f[2] == Null || f[2] == "" {
		return c, domain.NewValidationError("primaryTitle", "required")
	}

	start, err := optInt32("startYear", f[5])
	if err != nil {
		return c, err
	}
	end, err := optInt32("endYear", f[6])
	if err != nil {
		return c, err
	}
	runtime, err := optInt32("runtimeMinutes", f[7])
	if err != nil {
		return c, err
	}

	c.Movie = domain.Movie{
		IMDbID:    f[0],
		NameEn:    f[2],
		IsAdult:   f[4] == "1",
		StartYear: start,
		EndYear:   end,
		Runtime:   runtime,
	}
	if f[1] != Null {
		c.TypeName = f[1]
	}
	c.Genres = list(f[8])
	return c, nil
}

func parseName(f []string) (domain.PersonCandidate, error) {
	var c domain.PersonCandidate
	if err := required("nconst", f[0], "nm"); err != nil {
		return c, err
	}
	if f[1] == Null || f[1] == "" {
		return c, domain.NewValidationError("primaryName", "required")
	}

	birth, err := optInt32("birthYear", f[2])
	if err != nil {
		return c, err
	}
	death, err := optInt32("deathYear", f[3])
	if err != nil {
		return c, err
	}

	c.Person = domain.Person{
		IMDbID:    f[0],
		NameEn:    f[1],
		BirthYear: birth,
		DeathYear: death,
	}
	c.Professions = list(f[4])
	c.KnownFor = list(f[5])
	return c, nil
}

func parsePrincipal(f []string) (domain.PrincipalCandidate, error) {
	var c domain.PrincipalCandidate
	if err := required("tconst", f[0], "tt"); err != nil {
		return c, err
	}
	if err := required("nconst", f[2], "nm"); err != nil {
		return c, err
	}

	ordering, err := strconv.ParseInt(f[1], 10, 32)
	if err != nil || ordering < 1 {
		return c, domain.NewValidationError("ordering", "must be a positive integer")
	}

	c.MovieIMDbID = f[0]
	c.PersonIMDbID = f[2]
	c.Ordering = int32(ordering)
	if f[3] != Null {
		c.Category = f[3]
	}
	if f[4] != Null && f[4] != "" {
		job := f[4]
		c.Job = &job
	}
	if f[5] != Null && f[5] != "" {
		if err := json.Unmarshal([]byte(f[5]), &c.Characters); err != nil {
			return c, domain.NewValidationError("characters", "malformed list")
		}
	}
	return c, nil
}

func required(field, v, prefix string) error {
	if v == Null || !strings.HasPrefix(v, prefix) || len(v) == len(prefix) {
		return domain.NewValidationError(field, "malformed id "+strconv.Quote(v))
	}
	return nil
}

func optInt32(field, v string) (*int32, error) {
	if v == Null || v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return nil, domain.NewValidationError(field, "not an integer")
	}
	i := int32(n)
	return &i, nil
}

func list(v string) []string {
	if v == Null || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}
