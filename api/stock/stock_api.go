package stock

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	"storefront.GO/model/repository/inventory"
	productService "storefront.GO/service/product"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

func RegisterStockRoutes(apiGroup *echo.Group, deps *api.Deps) {
	if deps == nil || deps.Products == nil {
		return
	}
	g := apiGroup.Group("/stock")

	// POST /api/stock/import – bulk stock overwrite by SKU (auth required via /api middleware)
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()

		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return api.Fail(c, http.StatusBadRequest, err.Error())
		}
		if err := productService.ValidatePayload(productService.SchemaStockImport, raw); err != nil {
			return api.Fail(c, http.StatusBadRequest, err.Error())
		}
		var body struct {
			Items []productService.StockItemInput `json:"items"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return api.Fail(c, http.StatusBadRequest, err.Error())
		}

		inv, err := inventory.NewInventoryRepository(deps.DB)
		if err != nil {
			return api.Fail(c, http.StatusInternalServerError, "repository init failed")
		}
		res, err := deps.Products.ImportStock(c.Request().Context(), inv, body.Items)
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			deps.Logger().Error("stock import failed", "error", err, "request_duration_ms", duration)
			return api.Fail(c, http.StatusInternalServerError, err.Error())
		}
		return api.OK(c, res)
	})
}
