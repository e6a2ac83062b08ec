// Package catalog provides the structured product store: the Record document
// type, the aggregation pipeline query language used to query it, and the
// Driver interface implemented by the storage backends.
package catalog

import (
	"strings"
)

// Published schema fields. Generated pipelines are restricted to these names;
// anything else in the store is an internal detail.
const (
	FieldName             = "name"
	FieldBrand            = "brand"
	FieldCategory         = "category"
	FieldWeights          = "weights"
	FieldPrices           = "prices"
	FieldPricePerUnit     = "pricePerUnit"
	FieldSKU              = "sku"
	FieldDiscount         = "discount"
	FieldPopularityRank   = "popularityRank"
	FieldPriceRank        = "priceRank"
	FieldItemCounts       = "itemCounts"
	FieldDimensions       = "dimensions"
	FieldImages           = "images"
	FieldRelatedSkus      = "relatedSkus"
	FieldAvailabilityFlag = "availabilityFlag"
	FieldProductURL       = "productUrl"

	// internalIDField is never exposed in query results.
	internalIDField = "_id"
)

// Record is a single product document. Values follow JSON decoding
// conventions: numbers are float64, nested documents are map[string]any,
// arrays are []any.
type Record map[string]any

// SKU returns the record's sku field, or "" when absent.
func (r Record) SKU() string {
	s, _ := r[FieldSKU].(string)
	return s
}

// Lookup resolves a dotted field path (e.g. "prices.Each") against the
// record. The second return reports whether the full path exists.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if rec, isRec := cur.(Record); isRec {
				m = rec
			} else {
				return nil, false
			}
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Clone returns a shallow copy of the record with the internal identifier
// stripped. Nested documents are shared, which is fine for read-only
// pipeline stages.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if k == internalIDField {
			continue
		}
		out[k] = v
	}
	return out
}
