package sqlite_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/catalog/sqlite"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *sqlite.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = driver.Insert(ctx, []catalog.Record{
			{"sku": "100", "name": "Aged Cheddar", "pricePerUnit": 3.5},
			{"sku": "200", "name": "Brie Wheel", "pricePerUnit": 5.25},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	It("round-trips records by sku", func() {
		r, err := driver.Get(ctx, "100")
		Expect(err).NotTo(HaveOccurred())
		Expect(r["name"]).To(Equal("Aged Cheddar"))
		Expect(r["pricePerUnit"]).To(BeNumerically("==", 3.5))
	})

	It("returns ErrNotFound for unknown skus", func() {
		_, err := driver.Get(ctx, "missing")
		Expect(err).To(MatchError(catalog.ErrNotFound))
	})

	It("replaces records on duplicate sku", func() {
		err := driver.Insert(ctx, []catalog.Record{{"sku": "100", "name": "Renamed"}})
		Expect(err).NotTo(HaveOccurred())

		r, err := driver.Get(ctx, "100")
		Expect(err).NotTo(HaveOccurred())
		Expect(r["name"]).To(Equal("Renamed"))

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("aggregates over stored records", func() {
		p, err := catalog.ParsePipeline(`[{"$match": {"pricePerUnit": {"$gt": 4}}}, {"$count": "total"}]`)
		Expect(err).NotTo(HaveOccurred())

		out, err := driver.Aggregate(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(1))
		Expect(out[0]["total"]).To(BeNumerically("==", 1))
	})
})
