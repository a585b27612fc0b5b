package search

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
)

func init() {
	api.RegisterModule(RegisterSearchRoutes)
}

// RegisterSearchRoutes mounts GET /api/shop/search/:keyword.
func RegisterSearchRoutes(apiGroup *echo.Group, deps *api.Deps) {
	if deps == nil || deps.Search == nil {
		return
	}
	svc := deps.Search
	apiGroup.GET("/shop/search/:keyword", func(c echo.Context) error {
		keyword := c.Param("keyword")
		if keyword == "" {
			return api.Fail(c, http.StatusBadRequest, "Keyword is required and must be in string format")
		}
		products, err := svc.Search(c.Request().Context(), keyword)
		if err != nil {
			deps.Logger().Error("search failed", "keyword", keyword, "error", err)
			return api.Fail(c, http.StatusInternalServerError, "Some error occured")
		}
		return api.OK(c, products)
	})
}
