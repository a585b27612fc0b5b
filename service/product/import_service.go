package product

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront.GO/core/events"
	"storefront.GO/model/entity"
)

// ImportOptions configures a product import run.
type ImportOptions struct {
	BatchSize int
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows   int
	Created     int
	Updated     int
	Skipped     int
	Warnings    []string
	ProcessTime time.Duration
	DBTime      time.Duration
	TotalTime   time.Duration
}

var importColumns = map[string]bool{
	"sku": true, "title": true, "description": true, "image": true,
	"category": true, "brand": true, "price": true, "sale_price": true, "total_stock": true,
}

// ImportCSV reads CSV data from r and upserts products by SKU.
// Rows with an empty sku or title, or unparsable numbers, are skipped with a warning.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	startTotal := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		colIndex[h] = i
	}
	if _, ok := colIndex["sku"]; !ok {
		return nil, fmt.Errorf("CSV must contain a 'sku' column")
	}

	result := &ImportResult{}
	for h := range colIndex {
		if !importColumns[h] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(rows)

	startProcess := time.Now()
	products := make([]*entity.Product, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		p, warn := parseRow(row, colIndex)
		if warn != "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %s", i+2, warn))
			continue
		}
		// Last row wins for duplicate SKUs.
		if idx, dup := seen[p.SKU]; dup {
			products[idx] = p
			result.Skipped++
			continue
		}
		seen[p.SKU] = len(products)
		products = append(products, p)
	}

	skus := make([]string, 0, len(products))
	for _, p := range products {
		skus = append(skus, p.SKU)
	}
	existing, err := s.repo.FindIDsBySKUs(skus)
	if err != nil {
		return nil, fmt.Errorf("lookup skus: %w", err)
	}
	result.ProcessTime = time.Since(startProcess)

	startDB := time.Now()
	if err := s.repo.UpsertBySKU(products, opts.BatchSize); err != nil {
		return nil, fmt.Errorf("upsert products: %w", err)
	}
	result.DBTime = time.Since(startDB)

	result.Updated = len(existing)
	result.Created = len(products) - result.Updated

	ids, err := s.repo.FindIDsBySKUs(skus)
	if err != nil {
		return nil, fmt.Errorf("lookup imported ids: %w", err)
	}
	changed := make([]string, 0, len(ids))
	for _, id := range ids {
		changed = append(changed, id)
	}
	s.changed(ctx, events.ActionUpsert, changed...)

	result.TotalTime = time.Since(startTotal)
	s.log.Info("product import finished", "rows", result.TotalRows, "created", result.Created,
		"updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func parseRow(row []string, colIndex map[string]int) (*entity.Product, string) {
	get := func(col string) string {
		if i, ok := colIndex[col]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	p := &entity.Product{
		SKU:         get("sku"),
		Title:       get("title"),
		Description: get("description"),
		Image:       get("image"),
		Category:    get("category"),
		Brand:       get("brand"),
	}
	if p.SKU == "" {
		return nil, "empty sku"
	}
	if p.Title == "" {
		return nil, fmt.Sprintf("sku=%s: empty title", p.SKU)
	}

	var err error
	if v := get("price"); v != "" {
		if p.Price, err = strconv.ParseFloat(v, 64); err != nil || p.Price < 0 {
			return nil, fmt.Sprintf("sku=%s: invalid price %q", p.SKU, v)
		}
	}
	if v := get("sale_price"); v != "" {
		if p.SalePrice, err = strconv.ParseFloat(v, 64); err != nil || p.SalePrice < 0 {
			return nil, fmt.Sprintf("sku=%s: invalid sale_price %q", p.SKU, v)
		}
	}
	if v := get("total_stock"); v != "" {
		if p.TotalStock, err = strconv.Atoi(v); err != nil || p.TotalStock < 0 {
			return nil, fmt.Sprintf("sku=%s: invalid total_stock %q", p.SKU, v)
		}
	}
	return p, ""
}
