package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const searchSite = "stackoverflow.com"

// DuckDuckGo queries the instant-answer API, scoped to Stack Overflow.
// It needs no API key, which keeps the enrichment step usable offline of
// any paid search backend.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

func NewDuckDuckGo(baseURL string, timeout time.Duration) *DuckDuckGo {
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &DuckDuckGo{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      NewCache(50, 10*time.Minute),
	}
}

type instantAnswer struct {
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search returns up to maxResults references for query.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if cached, ok := d.cache.Get(query); ok {
		return clamp(cached, maxResults), nil
	}

	q := url.Values{}
	q.Set("q", query+" site:"+searchSite)
	q.Set("format", "json")
	q.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API status %d: %s", resp.StatusCode, string(body))
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(answer.RelatedTopics))
	for _, t := range answer.RelatedTopics {
		if t.FirstURL == "" {
			continue
		}
		results = append(results, Result{Title: t.Text, URL: t.FirstURL})
	}
	d.cache.Set(query, results)
	return clamp(results, maxResults), nil
}

func clamp(results []Result, max int) []Result {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
