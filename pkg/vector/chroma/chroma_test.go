package chroma_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/logger"
	"github.com/counterware/clerk/pkg/vector"
	"github.com/counterware/clerk/pkg/vector/chroma"
)

func collectionServer(extra http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/collections/") {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "products"})
			return
		}
		if extra != nil {
			extra(w, r)
			return
		}
		http.NotFound(w, r)
	}))
}

var _ = Describe("Driver", func() {
	It("returns an error when URL is empty", func() {
		_, err := chroma.NewDriver(chroma.Config{URL: ""}, logger.Nop())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("chroma URL is required"))
	})

	It("retries until the server becomes available", func() {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) <= 2 {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "products"})
		}))
		defer server.Close()

		driver, err := chroma.NewDriver(chroma.Config{
			URL:           server.URL,
			MaxRetries:    5,
			RetryDelay:    5 * time.Millisecond,
			MaxRetryDelay: 20 * time.Millisecond,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).NotTo(BeNil())
	})

	It("returns an error after exhausting retries", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := chroma.NewDriver(chroma.Config{
			URL:           server.URL,
			MaxRetries:    2,
			RetryDelay:    time.Millisecond,
			MaxRetryDelay: time.Millisecond,
		}, logger.Nop())
		Expect(err).To(MatchError(vector.ErrConnection))
	})

	It("adds documents with sku metadata", func() {
		var added chan []byte = make(chan []byte, 1)
		server := collectionServer(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/add") {
				body := make([]byte, r.ContentLength)
				r.Body.Read(body)
				added <- body
				w.WriteHeader(http.StatusCreated)
				return
			}
			http.NotFound(w, r)
		})
		defer server.Close()

		driver, err := chroma.NewDriver(chroma.Config{URL: server.URL}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		err = driver.Add(GinkgoT().Context(), []vector.Document{
			{ID: "100", SKU: "100", Embedding: []float32{0.1, 0.2}},
		})
		Expect(err).NotTo(HaveOccurred())

		var req map[string]any
		Expect(json.Unmarshal(<-added, &req)).To(Succeed())
		Expect(req["ids"]).To(ConsistOf("100"))
	})

	It("converts query distances into similarity scores", func() {
		server := collectionServer(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/query") {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"ids":       [][]string{{"100", "200"}},
					"distances": [][]float32{{0.0, 1.0}},
					"metadatas": []any{[]any{
						map[string]any{"sku": "100"},
						map[string]any{"sku": "200"},
					}},
				})
				return
			}
			http.NotFound(w, r)
		})
		defer server.Close()

		driver, err := chroma.NewDriver(chroma.Config{URL: server.URL}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		results, err := driver.Query(GinkgoT().Context(), []float32{0.1, 0.2}, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].SKU).To(Equal("100"))
		Expect(results[0].Score).To(BeNumerically("==", 1.0))
		Expect(results[1].Score).To(BeNumerically("==", 0.5))
	})
})
