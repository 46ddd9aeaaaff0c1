package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"

	"github.com/heartmarshall/cinemadb-backend/internal/domain"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"

	attempts   = 3
	retryDelay = 500 * time.Millisecond
)

// statusError is a non-200 reply. 429 and 5xx are retried.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func (e *statusError) temporary() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// Client fetches movie details from the TMDb v3 API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	delay      time.Duration
	log        *slog.Logger
}

// NewClient creates a Client. token is a TMDb API read access token; an
// empty baseURL means DefaultBaseURL.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		delay:      retryDelay,
		log:        logger.With("adapter", "tmdb"),
	}
}

// FetchMovie looks up the TMDb movie for an IMDb id and returns its details.
// Returns nil, nil if TMDb does not know the id.
func (c *Client) FetchMovie(ctx context.Context, imdbID string) (*domain.TMDbCandidate, error) {
	var found findResponse
	q := url.Values{"external_source": {"imdb_id"}}
	ok, err := c.get(ctx, "/find/"+url.PathEscape(imdbID), q, &found)
	if err != nil {
		return nil, fmt.Errorf("tmdb: find %s: %w", imdbID, err)
	}
	if !ok || len(found.MovieResults) == 0 {
		c.log.DebugContext(ctx, "tmdb: no movie", slog.String("imdb_id", imdbID))
		return nil, nil
	}

	id := found.MovieResults[0].ID
	var m Movie
	ok, err = c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &m)
	if err != nil {
		return nil, fmt.Errorf("tmdb: movie %d: %w", id, err)
	}
	if !ok {
		return nil, nil
	}

	// Details may lack imdb_id for titles matched by /find.
	if m.IMDbID == "" {
		m.IMDbID = imdbID
	}
	cand, err := m.Candidate()
	if err != nil {
		return nil, fmt.Errorf("tmdb: movie %d: %w", id, err)
	}
	return &cand, nil
}

// get decodes the JSON reply of path into out. It reports false on 404.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.do(ctx, reqURL)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.temporary()
			}
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.WarnContext(ctx, "tmdb retry", slog.String("path", path), slog.Uint64("attempt", uint64(n+1)), slog.String("reason", err.Error()))
		}),
	)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode json: %w", err)
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
