package product

import (
	"context"
	"fmt"

	"storefront.GO/core/events"
	"storefront.GO/model/repository/inventory"
)

// StockItemInput is the JSON input for the stock import API.
type StockItemInput struct {
	SKU string `json:"sku"`
	Qty *int   `json:"qty"`
}

// StockImportResult holds the result of a stock import run.
type StockImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImportStock overwrites total stock by SKU. Unknown SKUs and rows without qty are skipped.
func (s *Service) ImportStock(ctx context.Context, inv *inventory.InventoryRepository, items []StockItemInput) (*StockImportResult, error) {
	result := &StockImportResult{}
	stock := make(map[string]int, len(items))
	for _, it := range items {
		switch {
		case it.SKU == "":
			result.Skipped++
			result.Warnings = append(result.Warnings, "empty sku, skipping")
			continue
		case it.Qty == nil:
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("sku=%s: qty missing", it.SKU))
			continue
		case *it.Qty < 0:
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("sku=%s: negative qty", it.SKU))
			continue
		}
		stock[it.SKU] = *it.Qty
	}

	missing, err := inv.SetStockBySKU(stock)
	if err != nil {
		return nil, fmt.Errorf("stock update: %w", err)
	}
	for _, sku := range missing {
		result.Skipped++
		result.Warnings = append(result.Warnings, fmt.Sprintf("sku=%s: product not found", sku))
	}
	result.Imported = len(stock) - len(missing)

	skus := make([]string, 0, len(stock))
	for sku := range stock {
		skus = append(skus, sku)
	}
	ids, err := s.repo.FindIDsBySKUs(skus)
	if err != nil {
		return nil, fmt.Errorf("lookup skus: %w", err)
	}
	changed := make([]string, 0, len(ids))
	for _, id := range ids {
		changed = append(changed, id)
	}
	s.changed(ctx, events.ActionUpsert, changed...)
	return result, nil
}
