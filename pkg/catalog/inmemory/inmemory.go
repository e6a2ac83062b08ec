// Package inmemory provides an in-memory catalog driver, used in tests and
// for running against a seed file without a database.
package inmemory

import (
	"context"
	"sync"

	"github.com/counterware/clerk/pkg/catalog"
)

// Driver implements catalog.Driver using an in-memory map keyed by sku.
type Driver struct {
	mu      sync.RWMutex
	records map[string]catalog.Record
	order   []string
}

// NewDriver creates an empty in-memory catalog.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]catalog.Record),
	}
}

// Insert stores records, replacing any existing record with the same sku.
func (d *Driver) Insert(_ context.Context, records []catalog.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range records {
		sku := r.SKU()
		if _, exists := d.records[sku]; !exists {
			d.order = append(d.order, sku)
		}
		d.records[sku] = r
	}
	return nil
}

// Get retrieves a single record by sku.
func (d *Driver) Get(_ context.Context, sku string) (catalog.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.records[sku]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return r, nil
}

// All returns every record in insertion order.
func (d *Driver) All(_ context.Context) ([]catalog.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]catalog.Record, 0, len(d.order))
	for _, sku := range d.order {
		out = append(out, d.records[sku])
	}
	return out, nil
}

// Aggregate evaluates the pipeline over all records.
func (d *Driver) Aggregate(ctx context.Context, p catalog.Pipeline) ([]catalog.Record, error) {
	all, err := d.All(ctx)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(all)
}

// Count returns the number of stored records.
func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records), nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ catalog.Driver = (*Driver)(nil)
