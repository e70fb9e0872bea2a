// Package steam fetches achievement schemas, global completion percentages
// and community guides from the Steam Web API.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dom/game-insights/internal/clients/throttle"
)

const defaultBaseURL = "https://api.steampowered.com"

// ErrSource marks upstream failures: an error status, an empty schema, or a
// guide search that came back empty on every variant. Callers discriminate
// with errors.Is.
var ErrSource = errors.New("steam source error")

// Achievement is one schema entry joined with its global completion percent.
// CompletionRate is nil when the percentages endpoint had no value (or the
// whole percentages request failed, which is non-fatal).
type Achievement struct {
	Name           string
	Description    *string
	Points         *int
	CompletionRate *float64
}

// GameSchema is the result of FetchAchievements.
type GameSchema struct {
	GameName     string
	Achievements []Achievement
}

// Guide is one community guide from the published-file search.
type Guide struct {
	Title    string
	URL      string
	Author   string
	PostedAt *time.Time
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *throttle.Limiter
}

// Config carries the client settings. BaseURL and HTTPClient default when
// empty; tests point BaseURL at an httptest server.
type Config struct {
	APIKey          string
	BaseURL         string
	RequestInterval time.Duration
	HTTPClient      *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is missing", ErrSource)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    throttle.NewLimiter(cfg.RequestInterval),
	}, nil
}

type schemaResponse struct {
	Game struct {
		GameName           string `json:"gameName"`
		AvailableGameStats struct {
			Achievements []struct {
				Name         string  `json:"name"`
				DisplayName  string  `json:"displayName"`
				Description  *string `json:"description"`
				DefaultValue *int    `json:"defaultvalue"`
			} `json:"achievements"`
		} `json:"availableGameStats"`
	} `json:"game"`
}

type percentagesResponse struct {
	AchievementPercentages struct {
		Achievements []struct {
			Name    string  `json:"name"`
			Percent float64 `json:"percent"`
		} `json:"achievements"`
	} `json:"achievementpercentages"`
}

// FetchAchievements requests the game's achievement schema and joins it with
// the global completion percentages by internal achievement name. A failed
// percentages lookup degrades to absent rates instead of aborting.
func (c *Client) FetchAchievements(ctx context.Context, appID int64) (*GameSchema, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("appid", strconv.FormatInt(appID, 10))

	var schema schemaResponse
	if err := c.get(ctx, "/ISteamUserStats/GetSchemaForGame/v2/", params, &schema); err != nil {
		return nil, fmt.Errorf("achievement schema for app %d: %w", appID, err)
	}

	if schema.Game.GameName == "" && len(schema.Game.AvailableGameStats.Achievements) == 0 {
		return nil, fmt.Errorf("%w: missing game schema for app %d", ErrSource, appID)
	}

	percents, err := c.fetchGlobalPercentages(ctx, appID)
	if err != nil {
		percents = nil
	}

	var achievements []Achievement
	for _, entry := range schema.Game.AvailableGameStats.Achievements {
		name := entry.DisplayName
		if name == "" {
			name = entry.Name
		}
		if name == "" {
			continue
		}
		ach := Achievement{
			Name:        name,
			Description: entry.Description,
			Points:      entry.DefaultValue,
		}
		if rate, ok := percents[entry.Name]; ok {
			ach.CompletionRate = &rate
		}
		achievements = append(achievements, ach)
	}

	if len(achievements) == 0 {
		return nil, fmt.Errorf("%w: no achievements returned for app %d", ErrSource, appID)
	}

	return &GameSchema{GameName: schema.Game.GameName, Achievements: achievements}, nil
}

func (c *Client) fetchGlobalPercentages(ctx context.Context, appID int64) (map[string]float64, error) {
	params := url.Values{}
	params.Set("gameid", strconv.FormatInt(appID, 10))

	var resp percentagesResponse
	if err := c.get(ctx, "/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v0002/", params, &resp); err != nil {
		return nil, err
	}

	percents := make(map[string]float64, len(resp.AchievementPercentages.Achievements))
	for _, item := range resp.AchievementPercentages.Achievements {
		if item.Name != "" {
			percents[item.Name] = item.Percent
		}
	}
	return percents, nil
}

type queryFilesResponse struct {
	Response struct {
		ResultCount          int `json:"resultcount"`
		PublishedFileDetails []struct {
			PublishedFileID string `json:"publishedfileid"`
			Title           string `json:"title"`
			Creator         string `json:"creator"`
			TimeCreated     int64  `json:"time_created"`
		} `json:"publishedfiledetails"`
	} `json:"response"`
}

// guideSearchVariants are tried in order; the first variant yielding at
// least one usable file wins and later variants are never merged in. Steam
// tags guides inconsistently: filetype 10 is "all guides", 11 the broader
// web guide type, and some games omit the Guide tag entirely.
var guideSearchVariants = []struct {
	label    string
	fileType string
	tagged   bool
}{
	{"all_guides_tagged", "10", true},
	{"all_guides_untagged", "10", false},
	{"web_guides_tagged", "11", true},
	{"web_guides_untagged", "11", false},
}

// FetchGuides searches the community published-file service for guides.
// Returns ErrSource only when every search variant comes back empty.
func (c *Client) FetchGuides(ctx context.Context, appID int64) ([]Guide, error) {
	for _, variant := range guideSearchVariants {
		params := url.Values{}
		params.Set("key", c.apiKey)
		params.Set("appid", strconv.FormatInt(appID, 10))
		params.Set("page", "1")
		params.Set("numperpage", "50")
		params.Set("return_short_description", "true")
		params.Set("return_vote_data", "true")
		params.Set("strip_description_bbcode", "true")
		params.Set("filetype", variant.fileType)
		if variant.tagged {
			params.Set("requiredtags[0]", "Guide")
		}

		var resp queryFilesResponse
		if err := c.get(ctx, "/IPublishedFileService/QueryFiles/v1/", params, &resp); err != nil {
			return nil, fmt.Errorf("guide search (%s) for app %d: %w", variant.label, appID, err)
		}

		var guides []Guide
		for _, file := range resp.Response.PublishedFileDetails {
			if file.PublishedFileID == "" || file.Title == "" {
				continue
			}
			guide := Guide{
				Title:  file.Title,
				URL:    "https://steamcommunity.com/sharedfiles/filedetails/?id=" + file.PublishedFileID,
				Author: file.Creator,
			}
			if file.TimeCreated > 0 {
				posted := time.Unix(file.TimeCreated, 0).UTC()
				guide.PostedAt = &posted
			}
			guides = append(guides, guide)
		}

		if len(guides) > 0 {
			return guides, nil
		}
	}

	return nil, fmt.Errorf("%w: no guides returned for app %d", ErrSource, appID)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: request failed with status %d", ErrSource, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrSource, err)
	}
	return nil
}
