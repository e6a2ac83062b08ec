// Package tavily implements pkg/websearch's Searcher against the Tavily
// search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/counterware/clerk/pkg/websearch"
)

const (
	// DefaultBaseURL is the default Tavily API URL.
	DefaultBaseURL = "https://api.tavily.com"

	// DefaultMaxResults caps how many result pages a search returns.
	DefaultMaxResults = 5
)

// Searcher wraps the Tavily search API.
type Searcher struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// Config holds configuration for the Tavily searcher.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// BaseURL overrides the API URL.
	BaseURL string

	// MaxResults caps returned pages. Defaults to DefaultMaxResults.
	MaxResults int
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	IncludeAnswer bool   `json:"include_answer"`
	IncludeImages bool   `json:"include_images"`
	MaxResults    int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string   `json:"answer"`
	Images  []string `json:"images"`
	Results []struct {
		Content string `json:"content"`
	} `json:"results"`
}

// NewSearcher creates a new searcher using the Tavily search API.
func NewSearcher(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	return &Searcher{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Search runs the query against Tavily and collects the answer, content
// snippets, and image URLs.
func (s *Searcher) Search(ctx context.Context, query string) (*websearch.Result, error) {
	reqBody := searchRequest{
		APIKey:        s.apiKey,
		Query:         query,
		IncludeAnswer: true,
		IncludeImages: true,
		MaxResults:    s.maxResults,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", websearch.ErrSearch, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/search", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", websearch.ErrSearch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", websearch.ErrSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: tavily returned status %d: %s", websearch.ErrSearch, resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", websearch.ErrSearch, err)
	}

	result := &websearch.Result{
		Answer: apiResp.Answer,
		Images: apiResp.Images,
	}
	for _, r := range apiResp.Results {
		if r.Content != "" {
			result.Snippets = append(result.Snippets, r.Content)
		}
	}

	return result, nil
}

var _ websearch.Searcher = (*Searcher)(nil)
