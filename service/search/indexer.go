package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"storefront.GO/core/events"
	productRepo "storefront.GO/model/repository/product"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          { "type": "keyword" },
      "sku":         { "type": "keyword" },
      "title":       { "type": "text" },
      "description": { "type": "text" },
      "category":    { "type": "text", "fields": { "raw": { "type": "keyword" } } },
      "brand":       { "type": "text", "fields": { "raw": { "type": "keyword" } } },
      "image":       { "type": "keyword", "index": false },
      "price":       { "type": "double" },
      "salePrice":   { "type": "double" },
      "totalStock":  { "type": "integer" }
    }
  }
}`

// Indexer keeps the search index in sync with the products table. All
// operations are no-ops when no client is configured.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	repo   *productRepo.ProductRepository
	log    *slog.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, repo *productRepo.ProductRepository, log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{client: client, index: index, repo: repo, log: log.With("component", "indexer")}
}

// EnsureIndex creates the index with its mapping when missing.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	if ix.client == nil {
		return nil
	}
	res, err := ix.client.Indices.Exists([]string{ix.index}, ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = ix.client.Indices.Create(ix.index,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", ix.index, res.String())
	}
	ix.log.Info("search index created", "index", ix.index)
	return nil
}

func (ix *Indexer) IndexProduct(ctx context.Context, id string) error {
	if ix.client == nil {
		return nil
	}
	p, err := ix.repo.FindByID(id)
	if errors.Is(err, productRepo.ErrNotFound) {
		return ix.DeleteProduct(ctx, id)
	}
	if err != nil {
		return err
	}
	body, _ := json.Marshal(DocumentFromProduct(*p))
	res, err := ix.client.Index(ix.index, bytes.NewReader(body),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %s: %s", id, res.String())
	}
	return nil
}

// DeleteProduct removes a document; a missing document is not an error.
func (ix *Indexer) DeleteProduct(ctx context.Context, id string) error {
	if ix.client == nil {
		return nil
	}
	res, err := ix.client.Delete(ix.index, id, ix.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product %s: %s", id, res.String())
	}
	return nil
}

// Reindex bulk-indexes every product in batches and returns the number sent.
func (ix *Indexer) Reindex(ctx context.Context, batchSize int) (int, error) {
	if ix.client == nil {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	if err := ix.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	products, err := ix.repo.FindAll()
	if err != nil {
		return 0, err
	}

	sent := 0
	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		var buf bytes.Buffer
		for _, p := range products[start:end] {
			meta, _ := json.Marshal(map[string]interface{}{"index": map[string]string{"_index": ix.index, "_id": p.ID}})
			doc, _ := json.Marshal(DocumentFromProduct(p))
			buf.Write(meta)
			buf.WriteByte('\n')
			buf.Write(doc)
			buf.WriteByte('\n')
		}
		if err := ix.bulk(ctx, &buf); err != nil {
			return sent, err
		}
		sent += end - start
	}
	ix.log.Info("search reindex finished", "index", ix.index, "documents", sent)
	return sent, nil
}

func (ix *Indexer) bulk(ctx context.Context, body io.Reader) error {
	res, err := ix.client.Bulk(body, ix.client.Bulk.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk: %s", res.String())
	}
	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return err
	}
	if out.Errors {
		return errors.New("bulk: some documents failed to index")
	}
	return nil
}

// HandleEvent applies a ProductChanged event to the index.
func (ix *Indexer) HandleEvent(ctx context.Context, ev events.ProductChanged) error {
	switch ev.Action {
	case events.ActionDelete:
		return ix.DeleteProduct(ctx, ev.ProductID)
	default:
		return ix.IndexProduct(ctx, ev.ProductID)
	}
}
