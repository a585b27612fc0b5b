package stock

import (
	"net/http"
	"testing"

	"storefront.GO/api/apitest"
	"storefront.GO/model/entity"
	"storefront.GO/model/testdb"
	productService "storefront.GO/service/product"
)

func TestStockImport(t *testing.T) {
	deps := apitest.Deps(t)
	tee := &entity.Product{SKU: "TEE-1", Title: "Tee", Price: 20, TotalStock: 1}
	testdb.SeedProducts(t, deps.DB, tee)
	e := apitest.Mount(deps, RegisterStockRoutes)

	rec := apitest.Do(e, http.MethodPost, "/api/stock/import",
		`{"items":[{"sku":"TEE-1","qty":12},{"sku":"GHOST","qty":3}]}`)
	apitest.StatusOK(t, rec)
	if rec.Header().Get("X-Request-Duration-ms") == "" {
		t.Error("missing X-Request-Duration-ms header")
	}
	var res productService.StockImportResult
	apitest.Decode(t, rec, &res)
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v", res)
	}

	var got entity.Product
	if err := deps.DB.First(&got, "id = ?", tee.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.TotalStock != 12 {
		t.Errorf("total_stock = %d, want 12", got.TotalStock)
	}
}

func TestStockImport_Invalid(t *testing.T) {
	deps := apitest.Deps(t)
	e := apitest.Mount(deps, RegisterStockRoutes)

	for _, body := range []string{
		`{"items":[]}`,
		`{"items":[{"sku":"A","qty":-1}]}`,
		`{"items":[{"sku":"A"}]}`,
		`{}`,
	} {
		rec := apitest.Do(e, http.MethodPost, "/api/stock/import", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rec.Code)
		}
	}
}
