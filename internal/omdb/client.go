package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/retr0Tech/movie-explorer/internal/domain"
)

// ErrNotFound is returned when upstream cannot find the requested movie.
var ErrNotFound = errors.New("omdb: not found")

// SearchResult is one page of a title search.
type SearchResult struct {
	Results      []domain.MovieSummary
	TotalResults int
}

// Client defines the contract for querying the movie metadata provider.
type Client interface {
	Search(ctx context.Context, title string, page int) (SearchResult, error)
	GetByID(ctx context.Context, imdbID string) (domain.MovieDetail, error)
}

// HTTPClient implements Client over HTTP against the OMDB API.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed OMDB client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Search queries OMDB for titles matching the given text.
func (c *HTTPClient) Search(ctx context.Context, title string, page int) (SearchResult, error) {
	if page < 1 {
		page = 1
	}

	var payload searchResponse
	params := url.Values{}
	params.Set("s", title)
	params.Set("page", strconv.Itoa(page))
	if err := c.get(ctx, params, &payload); err != nil {
		return SearchResult{}, err
	}

	// OMDB reports failure in-band rather than via status codes.
	if !strings.EqualFold(payload.Response, "True") {
		if isNotFound(payload.Error) {
			return SearchResult{}, ErrNotFound
		}
		return SearchResult{}, fmt.Errorf("omdb: search failed: %s", payload.Error)
	}

	total, _ := strconv.Atoi(payload.TotalResults)
	return SearchResult{Results: payload.Search, TotalResults: total}, nil
}

// GetByID fetches the full detail payload for an IMDB id.
func (c *HTTPClient) GetByID(ctx context.Context, imdbID string) (domain.MovieDetail, error) {
	var payload detailResponse
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "full")
	if err := c.get(ctx, params, &payload); err != nil {
		return domain.MovieDetail{}, err
	}

	if !strings.EqualFold(payload.Response, "True") {
		if isNotFound(payload.Error) {
			return domain.MovieDetail{}, ErrNotFound
		}
		return domain.MovieDetail{}, fmt.Errorf("omdb: detail failed: %s", payload.Error)
	}

	return payload.MovieDetail, nil
}

func (c *HTTPClient) get(ctx context.Context, params url.Values, dst interface{}) error {
	params.Set("apikey", c.apiKey)
	endpoint := *c.baseURL
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("omdb: unexpected status %d", resp.StatusCode)
		return fmt.Errorf("omdb: upstream returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	return nil
}

// isNotFound recognizes OMDB's in-band "nothing matched" errors, which should
// surface as 404 rather than an upstream failure.
func isNotFound(message string) bool {
	switch message {
	case "Movie not found!", "Incorrect IMDb ID.", "Error getting data.":
		return true
	}
	return strings.Contains(message, "not found")
}

type searchResponse struct {
	Search       []domain.MovieSummary `json:"Search"`
	TotalResults string                `json:"totalResults"`
	Response     string                `json:"Response"`
	Error        string                `json:"Error"`
}

type detailResponse struct {
	domain.MovieDetail
	Response string `json:"Response"`
	Error    string `json:"Error"`
}
