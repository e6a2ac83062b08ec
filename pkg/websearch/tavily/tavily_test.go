package tavily_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/websearch"
	"github.com/counterware/clerk/pkg/websearch/tavily"
)

var _ = Describe("Searcher", func() {
	It("requires an API key", func() {
		_, err := tavily.NewSearcher(tavily.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("collects the answer, snippets, and images", func(ctx SpecContext) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			Expect(json.Unmarshal(raw, &gotBody)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"answer": "Gruyere is a Swiss cheese.",
				"images": ["https://example.com/gruyere.jpg"],
				"results": [
					{"content": "Gruyere melts well."},
					{"content": ""}
				]
			}`))
		}))
		defer server.Close()

		searcher, err := tavily.NewSearcher(tavily.Config{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})
		Expect(err).NotTo(HaveOccurred())

		result, err := searcher.Search(ctx, "what is gruyere")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Answer).To(Equal("Gruyere is a Swiss cheese."))
		Expect(result.Snippets).To(ConsistOf("Gruyere melts well."))
		Expect(result.Images).To(ConsistOf("https://example.com/gruyere.jpg"))

		Expect(gotBody["api_key"]).To(Equal("test-key"))
		Expect(gotBody["include_answer"]).To(BeTrue())
		Expect(gotBody["max_results"]).To(BeNumerically("==", tavily.DefaultMaxResults))
	})

	It("wraps backend failures in ErrSearch", func(ctx SpecContext) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		searcher, err := tavily.NewSearcher(tavily.Config{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = searcher.Search(ctx, "anything")
		Expect(err).To(MatchError(websearch.ErrSearch))
	})
})
