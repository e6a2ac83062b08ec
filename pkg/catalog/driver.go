package catalog

import "context"

// Driver is the structured store contract. Backends hold product documents;
// pipeline execution itself is backend-independent (see Evaluate), so
// implementations only need durable document storage and retrieval.
type Driver interface {
	// Insert stores records, replacing any existing record with the same sku.
	Insert(ctx context.Context, records []Record) error

	// Get retrieves a single record by sku.
	Get(ctx context.Context, sku string) (Record, error)

	// All returns every record in the store.
	All(ctx context.Context) ([]Record, error)

	// Aggregate runs an aggregation pipeline over the store's records.
	Aggregate(ctx context.Context, p Pipeline) ([]Record, error)

	// Count returns the number of records in the store.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}
