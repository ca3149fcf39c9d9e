package rinsight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
)

const (
	scoresPath          = "/api/stress-scores"
	keywordsPath        = "/api/keywords"
	recommendationsPath = "/api/recommendations"
	reloadPath          = "/api/reload-csv"

	defaultTimeout = 10 * time.Second
)

// HTTPConfig configures the HTTP backend client.
type HTTPConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// Limiter throttles outgoing requests when set.
	Limiter *rate.Limiter
}

// HTTPClient talks to the rInsight scoring backend over REST.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ dashboard.Backend = (*HTTPClient)(nil)

// NewHTTPClient builds a client for a live backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rinsight: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("rinsight: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
		limiter: cfg.Limiter,
	}, nil
}

// FetchScores loads the stress scores of a date range.
func (c *HTTPClient) FetchScores(ctx context.Context, dates dashboard.DateRange) (dashboard.AggregateScores, error) {
	query := url.Values{}
	query.Set("start_date", dates.Start)
	query.Set("end_date", dates.End)
	var scores dashboard.AggregateScores
	if err := c.get(ctx, scoresPath, query, &scores); err != nil {
		return dashboard.AggregateScores{}, err
	}
	return scores, nil
}

// FetchKeywords loads keyword statistics.
func (c *HTTPClient) FetchKeywords(ctx context.Context) ([]dashboard.Keyword, error) {
	var keywords []dashboard.Keyword
	if err := c.get(ctx, keywordsPath, nil, &keywords); err != nil {
		return nil, err
	}
	return keywords, nil
}

// FetchRecommendations loads generated recommendations.
func (c *HTTPClient) FetchRecommendations(ctx context.Context) ([]dashboard.Recommendation, error) {
	var recs []dashboard.Recommendation
	if err := c.get(ctx, recommendationsPath, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// ReloadSource asks the backend to reload its CSV source.
func (c *HTTPClient) ReloadSource(ctx context.Context) (dashboard.ReloadResult, error) {
	var result dashboard.ReloadResult
	if err := c.get(ctx, reloadPath, nil, &result); err != nil {
		return dashboard.ReloadResult{}, err
	}
	return result, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, target any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &dashboard.NetworkError{Endpoint: path, Err: err}
		}
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &dashboard.NetworkError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return &dashboard.NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &dashboard.NetworkError{Endpoint: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &dashboard.ParseError{Endpoint: path, Err: err}
	}
	return nil
}
