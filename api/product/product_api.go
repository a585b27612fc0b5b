package product

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	"storefront.GO/model/filter"
	productService "storefront.GO/service/product"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

// RegisterProductRoutes mounts the public shop listing and the admin CRUD routes.
func RegisterProductRoutes(apiGroup *echo.Group, deps *api.Deps) {
	if deps == nil || deps.Products == nil {
		return
	}
	h := &handler{svc: deps.Products}

	shop := apiGroup.Group("/shop/products")
	shop.GET("", h.listFiltered)
	shop.GET("/:id", h.details)

	admin := apiGroup.Group("/admin/products")
	admin.GET("", h.list)
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

type handler struct {
	svc *productService.Service
}

// GET /api/shop/products?category=a,b&brand=x&sortBy=price-lowtohigh
func (h *handler) listFiltered(c echo.Context) error {
	sel := filter.FromValues(c.QueryParams(), filter.KnownSections)
	sort := filter.ParseSort(c.QueryParam("sortBy"))
	products, err := h.svc.ListFiltered(c.Request().Context(), sel, sort)
	if err != nil {
		return api.Fail(c, http.StatusInternalServerError, "Some error occured")
	}
	return api.OK(c, products)
}

func (h *handler) details(c echo.Context) error {
	p, err := h.svc.Details(c.Request().Context(), c.Param("id"))
	if errors.Is(err, productService.ErrNotFound) {
		return api.Fail(c, http.StatusNotFound, "Product not found!")
	}
	if err != nil {
		return api.Fail(c, http.StatusInternalServerError, "Some error occured")
	}
	return api.OK(c, p)
}

func (h *handler) list(c echo.Context) error {
	products, err := h.svc.List(c.Request().Context())
	if err != nil {
		return api.Fail(c, http.StatusInternalServerError, "Some error occured")
	}
	return api.OK(c, products)
}

func (h *handler) create(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return api.Created(c, p, "Product created")
}

func (h *handler) update(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return api.Fail(c, http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return api.Message(c, p, "Product updated")
}

func (h *handler) delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return api.Message(c, nil, "Product deleted successfully")
}

// bindInput validates the raw body against the product schema before decoding it.
func bindInput(c echo.Context) (productService.Input, error) {
	var in productService.Input
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return in, err
	}
	if err := productService.ValidatePayload(productService.SchemaProduct, body); err != nil {
		return in, err
	}
	err = json.Unmarshal(body, &in)
	return in, err
}

func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, productService.ErrNotFound):
		return api.Fail(c, http.StatusNotFound, "Product not found!")
	case errors.Is(err, productService.ErrInvalidPayload):
		return api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		return api.Fail(c, http.StatusInternalServerError, "Some error occured")
	}
}
