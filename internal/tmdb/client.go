// Package tmdb wraps the TMDB REST API. Pure request/response translation:
// no caching, and no retries beyond the single auth fallback (bearer token
// preferred, api_key query string as fallback).
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cinematch/internal/config"
	"cinematch/internal/models"
)

// Client talks to the TMDB v3 API.
type Client struct {
	baseURL         string
	imageBaseURL    string
	readAccessToken string
	apiKey          string
	client          *http.Client
}

// NewClient creates a TMDB client from configuration.
func NewClient(cfg config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:         cfg.BaseURL,
		imageBaseURL:    cfg.ImageBaseURL,
		readAccessToken: cfg.ReadAccessToken,
		apiKey:          cfg.APIKey,
		client:          &http.Client{Timeout: timeout},
	}
}

// UpstreamError is returned when TMDB answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("TMDB returned %d: %s", e.StatusCode, e.Body)
}

// Message extracts TMDB's status_message from the error body, or "" when the
// body is not the provider's error shape.
func (e *UpstreamError) Message() string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err != nil {
		return ""
	}
	return payload.StatusMessage
}

// get performs one GET against TMDB. The bearer read-access token is
// preferred; if TMDB rejects it with 401 and an API key is configured, the
// call is retried once with the api_key query parameter.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	body, status, err := c.do(ctx, endpoint, params, true)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized && c.apiKey != "" && c.readAccessToken != "" {
		body, status, err = c.do(ctx, endpoint, params, false)
		if err != nil {
			return nil, err
		}
	}
	if status < 200 || status >= 300 {
		return nil, &UpstreamError{StatusCode: status, Body: string(body)}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values, preferBearer bool) ([]byte, int, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid TMDB endpoint %s: %w", endpoint, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	useBearer := preferBearer && c.readAccessToken != ""
	if !useBearer {
		if c.apiKey == "" {
			return nil, 0, fmt.Errorf("no TMDB credentials configured")
		}
		q.Set("api_key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if useBearer {
		req.Header.Set("Authorization", "Bearer "+c.readAccessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// Search proxies /search/{movie|tv|multi}. The provider's native JSON is
// returned as-is for the API layer to relay.
func (c *Client) Search(ctx context.Context, mediaType models.MediaType, query string, page int) (json.RawMessage, error) {
	endpoint := "/search/multi"
	switch mediaType {
	case models.MovieMedia:
		endpoint = "/search/movie"
	case models.TVMedia:
		endpoint = "/search/tv"
	}

	params := url.Values{}
	params.Set("query", query)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return c.get(ctx, endpoint, params)
}

// Discover proxies /discover/{movie|tv} with the caller's filter params.
func (c *Client) Discover(ctx context.Context, mediaType models.MediaType, params url.Values) (json.RawMessage, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	return c.get(ctx, "/discover/"+string(mediaType), params)
}

// WatchProviders proxies /{movie|tv}/{id}/watch/providers.
func (c *Client) WatchProviders(ctx context.Context, mediaType models.MediaType, tmdbID int) (json.RawMessage, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	return c.get(ctx, fmt.Sprintf("/%s/%d/watch/providers", mediaType, tmdbID), nil)
}

// Credits proxies /{movie|tv}/{id}/credits.
func (c *Client) Credits(ctx context.Context, mediaType models.MediaType, tmdbID int) (json.RawMessage, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	return c.get(ctx, fmt.Sprintf("/%s/%d/credits", mediaType, tmdbID), nil)
}

// DetailsRaw proxies /{movie|tv}/{id} without reshaping.
func (c *Client) DetailsRaw(ctx context.Context, mediaType models.MediaType, tmdbID int) (json.RawMessage, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	return c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, tmdbID), nil)
}

// TitleDetails is the subset of TMDB title details the matching routine
// backfills from. Movies use title/release_date, TV uses name/first_air_date.
type TitleDetails struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
}

// DisplayTitle returns the movie title or TV name, whichever is set.
func (d *TitleDetails) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// Released returns the release date or first air date, whichever is set.
func (d *TitleDetails) Released() string {
	if d.ReleaseDate != "" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}

// Details fetches typed title details, used to backfill match entries whose
// denormalized fields were never populated.
func (c *Client) Details(ctx context.Context, mediaType models.MediaType, tmdbID int) (*TitleDetails, error) {
	raw, err := c.DetailsRaw(ctx, mediaType, tmdbID)
	if err != nil {
		return nil, err
	}
	var d TitleDetails
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode TMDB details for %s/%d: %w", mediaType, tmdbID, err)
	}
	return &d, nil
}

// PosterURL resolves a poster path to a full image URL.
func (c *Client) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/w500" + path
}
