// Package seedcmder loads a product catalog file into the configured stores.
package seedcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/counterware/clerk/pkg/bootstrap"
	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/config"
	"github.com/counterware/clerk/pkg/logger"
	"github.com/counterware/clerk/pkg/vector"
)

const seedLongDesc string = `Load a product catalog file into the configured stores.

The file is a JSON array of product documents. Every document is inserted
into the structured store; unless --no-embed is set, each product's name,
brand, and category are also embedded and written to the vector index for
semantic search.

Examples:
  clerk seed --file products.json
  clerk seed --file products.json --no-embed`

const seedShortDesc string = "Load a product catalog file into the stores"

type seedCommander struct {
	file    string
	noEmbed bool
	debug   bool
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.file, "file", "f", "", "Path to a JSON array of product documents")
	cmd.Flags().BoolVar(&cmder.noEmbed, "no-embed", false, "Skip writing embeddings to the vector index")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (c *seedCommander) run(ctx context.Context, configDir string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	cfg := config.FromViper(v)

	records, err := loadRecords(c.file)
	if err != nil {
		return err
	}

	stores, err := bootstrap.NewStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("wiring stores: %w", err)
	}
	defer stores.Close()

	if err := stores.Catalog.Insert(ctx, records); err != nil {
		return fmt.Errorf("inserting records: %w", err)
	}
	log.Info("seeded structured store", "records", len(records))

	if c.noEmbed {
		fmt.Printf("Seeded %d products into the catalog\n", len(records))
		return nil
	}

	docs := make([]vector.Document, 0, len(records))
	for _, rec := range records {
		sku := rec.SKU()
		if sku == "" {
			log.Warn("skipping record without sku")
			continue
		}

		embedding, err := stores.Embedder.Embed(ctx, embeddingText(rec))
		if err != nil {
			return fmt.Errorf("embedding sku %s: %w", sku, err)
		}

		docs = append(docs, vector.Document{
			ID:        sku,
			SKU:       sku,
			Embedding: embedding,
		})
	}

	if err := stores.Vector.Add(ctx, docs); err != nil {
		return fmt.Errorf("indexing embeddings: %w", err)
	}
	log.Info("seeded vector index", "documents", len(docs))

	fmt.Printf("Seeded %d products into the catalog (%d embedded)\n", len(records), len(docs))
	return nil
}

func loadRecords(path string) ([]catalog.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var records []catalog.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no records", path)
	}
	return records, nil
}

// embeddingText builds the text embedded for semantic search: the fields a
// shopper would describe a product by.
func embeddingText(rec catalog.Record) string {
	var parts []string
	for _, field := range []string{catalog.FieldName, catalog.FieldBrand, catalog.FieldCategory} {
		if v, ok := rec.Lookup(field); ok {
			if s, isStr := v.(string); isStr && s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}
