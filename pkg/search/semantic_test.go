package search_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/catalog/inmemory"
	"github.com/counterware/clerk/pkg/logger"
	"github.com/counterware/clerk/pkg/search"
	testutils "github.com/counterware/clerk/pkg/utils/test"
	"github.com/counterware/clerk/pkg/vector"
)

var _ = Describe("Semantic", func() {
	var (
		store    *inmemory.Driver
		embedder *testutils.MockEmbedder
		index    *testutils.MockVectorDriver
		searcher *search.Semantic
	)

	BeforeEach(func(ctx SpecContext) {
		store = inmemory.NewDriver()
		Expect(store.Insert(ctx, []catalog.Record{
			{"sku": "CH-001", "name": "Aged Cheddar", "pricePerUnit": 12.5},
			{"sku": "BR-001", "name": "Double Brie", "pricePerUnit": 9.0},
		})).To(Succeed())

		embedder = testutils.NewMockEmbedder()
		index = testutils.NewMockVectorDriver()
		searcher = search.NewSemantic(embedder, index, store, 0, logger.Nop())
	})

	It("skips the embedder entirely for a blank query", func(ctx SpecContext) {
		records, err := searcher.Search(ctx, "  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
		Expect(embedder.Calls).To(BeEmpty())
	})

	It("resolves vector hits to catalog records with scores", func(ctx SpecContext) {
		index.Results = []vector.QueryResult{
			{Document: vector.Document{ID: "1", SKU: "CH-001"}, Score: 0.9},
			{Document: vector.Document{ID: "2", SKU: "BR-001"}, Score: 0.4},
		}

		records, err := searcher.Search(ctx, "sharp cheese")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].SKU()).To(Equal("CH-001"))
		Expect(records[0][search.FieldSimilarityScore]).To(BeNumerically("~", 0.9, 1e-6))
		Expect(embedder.Calls).To(ConsistOf("sharp cheese"))
	})

	It("drops hits whose sku is gone from the catalog", func(ctx SpecContext) {
		index.Results = []vector.QueryResult{
			{Document: vector.Document{ID: "1", SKU: "GONE"}, Score: 0.9},
			{Document: vector.Document{ID: "2", SKU: "BR-001"}, Score: 0.4},
		}

		records, err := searcher.Search(ctx, "cheese")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].SKU()).To(Equal("BR-001"))
	})

	It("does not mutate the stored record", func(ctx SpecContext) {
		index.Results = []vector.QueryResult{
			{Document: vector.Document{ID: "1", SKU: "CH-001"}, Score: 0.9},
		}

		_, err := searcher.Search(ctx, "cheddar")
		Expect(err).NotTo(HaveOccurred())

		stored, err := store.Get(ctx, "CH-001")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).NotTo(HaveKey(search.FieldSimilarityScore))
	})
})
