// Package hltb looks up "time to beat" estimates from the HowLongToBeat
// search API.
package hltb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dom/game-insights/internal/clients/throttle"
)

const defaultBaseURL = "https://howlongtobeat.com"

// ErrSource marks an unusable upstream answer: an error status, zero search
// results, or a match without a recorded main-story time.
var ErrSource = errors.New("hltb source error")

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *throttle.Limiter
}

type Config struct {
	BaseURL         string
	RequestInterval time.Duration
	HTTPClient      *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    throttle.NewLimiter(cfg.RequestInterval),
	}
}

type searchRequest struct {
	SearchType  string   `json:"searchType"`
	SearchTerms []string `json:"searchTerms"`
}

type searchResponse struct {
	Data []searchResult `json:"data"`
}

type searchResult struct {
	GameName string `json:"game_name"`
	// Similarity is the upstream fuzzy-match score for the search terms.
	Similarity float64 `json:"similarity"`
	// CompMain is the main-story estimate in minutes; zero means none
	// recorded.
	CompMain float64 `json:"comp_main"`
}

// FetchMainStoryHours searches for title (the upstream match is fuzzy and
// case-insensitive) and returns the best match's main-story estimate in
// hours. Ties on similarity keep the first result in upstream order.
func (c *Client) FetchMainStoryHours(ctx context.Context, title string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	body, err := json.Marshal(searchRequest{
		SearchType:  "games",
		SearchTerms: []string{title},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: search failed: %v", ErrSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("%w: search failed with status %d", ErrSource, resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: decoding search response: %v", ErrSource, err)
	}

	if len(result.Data) == 0 {
		return 0, fmt.Errorf("%w: no results for %q", ErrSource, title)
	}

	best := result.Data[0]
	for _, candidate := range result.Data[1:] {
		if candidate.Similarity > best.Similarity {
			best = candidate
		}
	}

	if best.CompMain <= 0 {
		return 0, fmt.Errorf("%w: no main-story time recorded for %q", ErrSource, best.GameName)
	}
	return best.CompMain / 60.0, nil
}
