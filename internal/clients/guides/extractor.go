// Package guides resolves a guide URL into plain text plus a heading count.
// Steam community guides go through the published-file details API first;
// everything else (and any details miss) falls back to HTML extraction.
package guides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dom/game-insights/internal/clients/throttle"
)

const defaultAPIBaseURL = "https://api.steampowered.com"

// ErrExtraction marks content that could not be fetched or parsed.
var ErrExtraction = errors.New("guide extraction error")

type Extractor struct {
	apiKey     string
	apiBaseURL string
	httpClient *http.Client
	limiter    *throttle.Limiter
}

type Config struct {
	// SteamAPIKey is optional; without it the details lookup is attempted
	// anonymously, which Steam allows for public files.
	SteamAPIKey     string
	APIBaseURL      string
	RequestInterval time.Duration
	HTTPClient      *http.Client
}

func NewExtractor(cfg Config) *Extractor {
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Extractor{
		apiKey:     cfg.SteamAPIKey,
		apiBaseURL: apiBaseURL,
		httpClient: httpClient,
		limiter:    throttle.NewLimiter(cfg.RequestInterval),
	}
}

// FetchAndParse resolves rawURL to extracted text and a section count.
// Steam community URLs try the structured details API first; a non-empty
// description wins outright and skips HTML parsing entirely.
func (e *Extractor) FetchAndParse(ctx context.Context, rawURL string) (string, int, error) {
	if fileID, ok := steamFileID(rawURL); ok {
		if desc, err := e.fetchFileDescription(ctx, fileID); err == nil && strings.TrimSpace(desc) != "" {
			return strings.TrimSpace(desc), 0, nil
		}
	}

	html, err := e.fetchHTML(ctx, rawURL)
	if err != nil {
		return "", 0, err
	}
	return ParseHTML(html)
}

// steamFileID pulls the published file id out of a steamcommunity.com URL,
// checking the id query parameter first and falling back to the last
// numeric path segment.
func steamFileID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != "steamcommunity.com" && !strings.HasSuffix(host, ".steamcommunity.com") {
		return "", false
	}
	if id := u.Query().Get("id"); isDigits(id) {
		return id, true
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if isDigits(segments[i]) {
			return segments[i], true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type fileDetailsResponse struct {
	Response struct {
		PublishedFileDetails []struct {
			FileDescription string `json:"file_description"`
		} `json:"publishedfiledetails"`
	} `json:"response"`
}

func (e *Extractor) fetchFileDescription(ctx context.Context, fileID string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("publishedfileids[0]", fileID)
	params.Set("includetags", "false")
	if e.apiKey != "" {
		params.Set("key", e.apiKey)
	}

	endpoint := e.apiBaseURL + "/IPublishedFileService/GetDetails/v1/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("file details request failed with status %d", resp.StatusCode)
	}

	var details fileDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", err
	}
	if len(details.Response.PublishedFileDetails) == 0 {
		return "", fmt.Errorf("no details for file %s", fileID)
	}
	return details.Response.PublishedFileDetails[0].FileDescription, nil
}

func (e *Extractor) fetchHTML(ctx context.Context, rawURL string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to fetch guide: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: guide request failed with status %d for %s", ErrExtraction, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading guide HTML: %v", ErrExtraction, err)
	}
	return string(body), nil
}

// ParseHTML extracts the main content text and heading count from a guide
// page. The content root is the first of article, #content, body, or the
// whole document; text is the trimmed p and li elements joined by blank
// lines, falling back to the root's flattened text.
func ParseHTML(html string) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	root := doc.Selection
	for _, selector := range []string{"article", "#content", "body"} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			root = sel.First()
			break
		}
	}
	if root.Length() == 0 {
		return "", 0, fmt.Errorf("%w: could not locate content in guide HTML", ErrExtraction)
	}

	var blocks []string
	root.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		if text := normalizeSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	text := strings.Join(blocks, "\n\n")
	if text == "" {
		text = normalizeSpace(root.Text())
	}

	sectionCount := root.Find("h1, h2, h3, h4").Length()
	return text, sectionCount, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
