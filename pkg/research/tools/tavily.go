package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const tavilyBaseURL = "https://api.tavily.com"

// contentPreviewRunes caps how much of each source's content makes it into
// the formatted report.
const contentPreviewRunes = 300

// SearchError reports a failed search call. Its Error text is what shows up
// in the combined findings for the failed variant.
type SearchError struct {
	Status int // non-zero when the API answered with an error status
	Body   string
	Err    error
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("Tavily API Error: %d - %s", e.Status, e.Body)
	}
	return fmt.Sprintf("Search Error: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Tavily queries the Tavily search API and returns results formatted as a
// markdown report. A single instance holds only fixed configuration and is
// safe for concurrent use.
type Tavily struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

func NewTavily(apiKey string) *Tavily {
	return &Tavily{
		APIKey:  apiKey,
		BaseURL: tavilyBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewTavilyWithClient overrides the endpoint and HTTP client. This is useful
// for tests and Tavily-compatible proxies.
func NewTavilyWithClient(apiKey, baseURL string, client *http.Client) *Tavily {
	if baseURL == "" {
		baseURL = tavilyBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Tavily{APIKey: apiKey, BaseURL: baseURL, client: client}
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs one query and returns the formatted report.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) (string, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	payload := map[string]any{
		"api_key":             t.APIKey,
		"query":               query,
		"search_depth":        "advanced",
		"include_answer":      true,
		"include_raw_content": true,
		"max_results":         maxResults,
		"include_domains":     []string{},
		"exclude_domains":     []string{},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &SearchError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", &SearchError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &SearchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		slog.Error("Tavily returned non-200 status code", "status", resp.StatusCode, "query", query)
		return "", &SearchError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var response tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &SearchError{Err: err}
	}

	slog.Info("Tavily search completed", "query", query, "results", len(response.Results))
	return formatResults(query, response), nil
}

func formatResults(query string, r tavilyResponse) string {
	answer := r.Answer
	if answer == "" {
		answer = "No summary available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n## Search Results for: \"%s\"\n\n### Summary\n%s\n\n### Sources\n", query, answer)

	for i, source := range r.Results {
		title := source.Title
		if title == "" {
			title = "Untitled Source"
		}
		url := source.URL
		if url == "" {
			url = "#"
		}
		content := source.Content
		if content == "" {
			content = "No content available"
		}
		fmt.Fprintf(&b, "\n**%d. %s**\n- **URL:** %s\n- **Content:** %s...\n\n---\n",
			i+1, title, url, truncate(content, contentPreviewRunes))
	}

	return b.String()
}

// truncate cuts s to at most n runes so multi-byte characters never get split.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
