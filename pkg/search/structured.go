// Package search implements the two catalog search capabilities: structured
// pipeline queries against pkg/catalog and semantic nearest-neighbor lookups
// through pkg/embeddings and pkg/vector.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/counterware/clerk/pkg/catalog"
)

// Structured runs JSON aggregation pipelines against the catalog store.
type Structured struct {
	store  catalog.Driver
	logger *slog.Logger
}

// NewStructured creates a structured searcher over the given store.
func NewStructured(store catalog.Driver, logger *slog.Logger) *Structured {
	return &Structured{
		store:  store,
		logger: logger.With("component", "structured-search"),
	}
}

// Search parses and executes a raw pipeline. A blank pipeline is treated as
// "nothing to search" and yields no results. When the pipeline carries no
// $sort stage the results are ordered by ascending price per unit so equal
// queries always return equal orderings.
func (s *Structured) Search(ctx context.Context, rawPipeline string) ([]catalog.Record, error) {
	if strings.TrimSpace(rawPipeline) == "" {
		return nil, nil
	}

	pipeline, err := catalog.ParsePipeline(rawPipeline)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	if !pipeline.HasSort() {
		catalog.SortByPriceAsc(records)
	}

	s.logger.Debug("structured search complete", "results", len(records))
	return records, nil
}
