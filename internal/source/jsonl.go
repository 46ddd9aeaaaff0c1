package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/heartmarshall/cinemadb-backend/internal/adapter/provider/tmdb"
	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

// JSONLines decodes one JSON object per line into R and converts it to a
// candidate. Blank lines are skipped. Undecodable lines yield an error
// wrapping domain.ErrValidation and reading goes on.
type JSONLines[R, C any] struct {
	name    string
	rc      io.ReadCloser
	sc      *bufio.Scanner
	line    int
	convert func(R) (C, error)
}

func NewJSONLines[R, C any](name string, rc io.ReadCloser, convert func(R) (C, error)) *JSONLines[R, C] {
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &JSONLines[R, C]{name: name, rc: rc, sc: sc, convert: convert}
}

func (j *JSONLines[R, C]) Next(ctx context.Context) (C, error) {
	var zero C
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if !j.sc.Scan() {
			if err := j.sc.Err(); err != nil {
				return zero, fmt.Errorf("%s line %d: %w", j.name, j.line+1, err)
			}
			return zero, io.EOF
		}
		j.line++

		raw := bytes.TrimSpace(j.sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec R
		if err := json.Unmarshal(raw, &rec); err != nil {
			return zero, fmt.Errorf("%s line %d: %w", j.name, j.line, domain.NewValidationError("json", err.Error()))
		}
		c, err := j.convert(rec)
		if err != nil {
			return zero, fmt.Errorf("%s line %d: %w", j.name, j.line, err)
		}
		return c, nil
	}
}

func (j *JSONLines[R, C]) Close() error { return j.rc.Close() }

type registrationLine struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registrations reads {"username","email","password"} lines.
func Registrations(rc io.ReadCloser) *JSONLines[registrationLine, domain.Registration] {
	return NewJSONLines("users", rc, func(l registrationLine) (domain.Registration, error) {
		return domain.Registration{Username: l.Username, Email: l.Email, Password: l.Password}, nil
	})
}

// TMDbDetails reads TMDb movie details payloads, one per line.
func TMDbDetails(rc io.ReadCloser) *JSONLines[tmdb.Movie, domain.TMDbCandidate] {
	return NewJSONLines("tmdb", rc, tmdb.Movie.Candidate)
}
