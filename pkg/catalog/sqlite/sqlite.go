// Package sqlite provides a SQLite-backed catalog driver. Product documents
// are stored as JSON rows keyed by sku; pipelines are evaluated in-process
// over the loaded documents.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/counterware/clerk/pkg/catalog"
)

// Driver implements catalog.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (and migrates) a SQLite-backed catalog.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", catalog.ErrConnection, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling foreign keys: %v", catalog.ErrConnection, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			sku TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating products table: %v", catalog.ErrConnection, err)
	}

	return &Driver{db: db}, nil
}

// Insert stores records, replacing any existing record with the same sku.
func (d *Driver) Insert(ctx context.Context, records []catalog.Record) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", catalog.ErrConnection, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (sku, doc) VALUES (?, ?)
		ON CONFLICT(sku) DO UPDATE SET doc = excluded.doc
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling record %q: %w", r.SKU(), err)
		}
		if _, err := stmt.ExecContext(ctx, r.SKU(), string(doc)); err != nil {
			return fmt.Errorf("inserting record %q: %w", r.SKU(), err)
		}
	}
	return tx.Commit()
}

// Get retrieves a single record by sku.
func (d *Driver) Get(ctx context.Context, sku string) (catalog.Record, error) {
	var doc string
	err := d.db.QueryRowContext(ctx, `SELECT doc FROM products WHERE sku = ?`, sku).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying record: %v", catalog.ErrConnection, err)
	}
	return decodeRecord(doc)
}

// All returns every record, ordered by sku for determinism.
func (d *Driver) All(ctx context.Context) ([]catalog.Record, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT doc FROM products ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying records: %v", catalog.ErrConnection, err)
	}
	defer rows.Close()

	var out []catalog.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Aggregate evaluates the pipeline over all stored records.
func (d *Driver) Aggregate(ctx context.Context, p catalog.Pipeline) ([]catalog.Record, error) {
	all, err := d.All(ctx)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(all)
}

// Count returns the number of stored records.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting records: %v", catalog.ErrConnection, err)
	}
	return n, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

func decodeRecord(doc string) (catalog.Record, error) {
	var r catalog.Record
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}

var _ catalog.Driver = (*Driver)(nil)
