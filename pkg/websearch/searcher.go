// Package websearch provides external web lookup for queries the product
// catalog cannot answer on its own.
package websearch

import (
	"context"
	"errors"
)

// Result is the outcome of a web search.
type Result struct {
	// Answer is a synthesized answer to the query, when the backend
	// provides one.
	Answer string `json:"answer,omitempty"`

	// Snippets are raw content extracts from the result pages.
	Snippets []string `json:"snippets,omitempty"`

	// Images are image URLs related to the query.
	Images []string `json:"images,omitempty"`
}

// Searcher performs a web search for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// ErrSearch is returned when the search backend fails.
var ErrSearch = errors.New("web search failed")
