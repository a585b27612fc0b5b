package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mitchellh/mapstructure"

	"storefront.GO/model/entity"
	productRepo "storefront.GO/model/repository/product"
)

// DefaultLimit caps the number of search results.
const DefaultLimit = 50

// Document is the indexed form of a product.
type Document struct {
	ID          string  `json:"id" mapstructure:"id"`
	SKU         string  `json:"sku" mapstructure:"sku"`
	Title       string  `json:"title" mapstructure:"title"`
	Description string  `json:"description" mapstructure:"description"`
	Category    string  `json:"category" mapstructure:"category"`
	Brand       string  `json:"brand" mapstructure:"brand"`
	Image       string  `json:"image" mapstructure:"image"`
	Price       float64 `json:"price" mapstructure:"price"`
	SalePrice   float64 `json:"salePrice" mapstructure:"salePrice"`
	TotalStock  int     `json:"totalStock" mapstructure:"totalStock"`
}

func DocumentFromProduct(p entity.Product) Document {
	return Document{
		ID:          p.ID,
		SKU:         p.SKU,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Image:       p.Image,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		TotalStock:  p.TotalStock,
	}
}

// NewClient returns nil without error when host is empty.
func NewClient(host string) (*elasticsearch.Client, error) {
	if host == "" {
		return nil, nil
	}
	return elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{host}})
}

type Service struct {
	client *elasticsearch.Client
	index  string
	repo   *productRepo.ProductRepository
	limit  int
	log    *slog.Logger
}

// NewService searches Elasticsearch when client is non-nil, otherwise the products table.
func NewService(client *elasticsearch.Client, index string, repo *productRepo.ProductRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, index: index, repo: repo, limit: DefaultLimit, log: log.With("service", "search")}
}

func (s *Service) Enabled() bool {
	return s.client != nil
}

// Search returns products matching keyword. Elasticsearch failures fall back to SQL.
func (s *Service) Search(ctx context.Context, keyword string) ([]entity.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []entity.Product{}, nil
	}
	if s.client != nil {
		products, err := s.searchIndex(ctx, keyword)
		if err == nil {
			return products, nil
		}
		s.log.Warn("elasticsearch search failed, using SQL fallback", "keyword", keyword, "error", err)
	}
	products, err := s.repo.SearchLike(keyword, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// searchRequest is the multi_match query body, weighting title over brand.
func searchRequest(keyword string, size int) ([]byte, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     keyword,
				"fields":    []string{"title^3", "brand^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}
	return b, nil
}

func (s *Service) searchIndex(ctx context.Context, keyword string) ([]entity.Product, error) {
	bodyBytes, err := searchRequest(keyword, s.limit)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		doc, err := decodeDocument(hit.Source)
		if err != nil {
			s.log.Warn("skipping undecodable hit", "error", err)
			continue
		}
		if doc.ID != "" {
			ids = append(ids, doc.ID)
		}
	}

	// Stock and price are read from the database, not the index.
	byID, err := s.repo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	products := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func decodeDocument(src map[string]interface{}) (Document, error) {
	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       numberToStringHook(),
		WeaklyTypedInput: true,
		Result:           &doc,
		TagName:          "mapstructure",
	})
	if err != nil {
		return doc, err
	}
	return doc, dec.Decode(src)
}

func numberToStringHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.String {
			return data, nil
		}
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return fmt.Sprint(data), nil
		}
		return data, nil
	}
}
