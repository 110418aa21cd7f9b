// Package newsapi is a minimal client for NewsAPI's top-headlines
// sources endpoint. Lookups are a single attempt under a bounded
// timeout; a failed lookup is reported, never retried.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
	"golang.org/x/sync/singleflight"
)

// Source is one news outlet as returned by NewsAPI.
type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}

// sourcesResponse is the NewsAPI envelope for /v2/top-headlines/sources.
type sourcesResponse struct {
	Status  string   `json:"status"`
	Sources []Source `json:"sources"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// Client performs news source lookups.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	group      singleflight.Group
}

// NewClient creates a NewsAPI client.
// baseURL is normally "https://newsapi.org"; tests point it at a local server.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Sources fetches news sources for the given category, language and
// country. Concurrent lookups with identical parameters are collapsed
// into one upstream call.
func (c *Client) Sources(ctx context.Context, category, language, country string) ([]Source, error) {
	key := category + "|" + language + "|" + country

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return c.fetchSources(ctx, category, language, country)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Source), nil
}

func (c *Client) fetchSources(ctx context.Context, category, language, country string) ([]Source, error) {
	endpoint := c.baseURL + "/v2/top-headlines/sources"

	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	if language != "" {
		params.Set("language", language)
	}
	if country != "" {
		params.Set("country", country)
	}
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domerrors.NewLookupError(category, language, country, 0, domerrors.ErrTimeout)
		}
		return nil, domerrors.NewLookupError(category, language, country, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, domerrors.NewLookupError(category, language, country, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domerrors.NewLookupError(category, language, country, resp.StatusCode,
			fmt.Errorf("unexpected status: %s", string(body)))
	}

	var parsed sourcesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domerrors.NewLookupError(category, language, country, resp.StatusCode,
			fmt.Errorf("decode response: %w", err))
	}

	if parsed.Status != "ok" {
		return nil, domerrors.NewLookupError(category, language, country, resp.StatusCode,
			fmt.Errorf("api error %s: %s", parsed.Code, parsed.Message))
	}

	return parsed.Sources, nil
}
