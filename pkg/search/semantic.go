package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/embeddings"
	"github.com/counterware/clerk/pkg/vector"
)

// FieldSimilarityScore is attached to records returned by semantic search.
const FieldSimilarityScore = "similarityScore"

// DefaultTopK is how many nearest neighbors a semantic search retrieves.
const DefaultTopK = 5

// Semantic answers free-text queries by embedding them and resolving the
// nearest catalog records through the vector index.
type Semantic struct {
	embedder embeddings.Embedder
	index    vector.Driver
	store    catalog.Driver
	topK     int
	logger   *slog.Logger
}

// NewSemantic creates a semantic searcher. topK <= 0 uses DefaultTopK.
func NewSemantic(embedder embeddings.Embedder, index vector.Driver, store catalog.Driver, topK int, logger *slog.Logger) *Semantic {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Semantic{
		embedder: embedder,
		index:    index,
		store:    store,
		topK:     topK,
		logger:   logger.With("component", "semantic-search"),
	}
}

// Search embeds the query, finds the nearest documents, and resolves each hit
// back to its catalog record. A blank query yields no results without calling
// the embedder. Hits whose sku no longer exists in the catalog are dropped.
func (s *Semantic) Search(ctx context.Context, query string) ([]catalog.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Query(ctx, embedding, s.topK)
	if err != nil {
		return nil, err
	}

	records := make([]catalog.Record, 0, len(hits))
	for _, hit := range hits {
		record, err := s.store.Get(ctx, hit.SKU)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				s.logger.Warn("vector hit not in catalog", "sku", hit.SKU)
				continue
			}
			return nil, err
		}

		record = record.Clone()
		record[FieldSimilarityScore] = float64(hit.Score)
		records = append(records, record)
	}

	s.logger.Debug("semantic search complete", "results", len(records))
	return records, nil
}
