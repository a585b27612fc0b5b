package cart

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	cartService "storefront.GO/service/cart"
)

func init() {
	api.RegisterModule(RegisterCartRoutes)
}

// LineRequest is the body of add and update-cart.
type LineRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func RegisterCartRoutes(apiGroup *echo.Group, deps *api.Deps) {
	if deps == nil || deps.Carts == nil {
		return
	}
	svc := deps.Carts
	g := apiGroup.Group("/shop/cart")

	g.POST("/add", func(c echo.Context) error {
		var req LineRequest
		if err := c.Bind(&req); err != nil {
			return api.Fail(c, http.StatusBadRequest, "Invalid data provided!")
		}
		cart, err := svc.Add(c.Request().Context(), req.UserID, req.ProductID, req.Quantity)
		if err != nil {
			return writeError(c, err)
		}
		return api.Message(c, cart, "Product is added to cart")
	})

	g.GET("/:userId", func(c echo.Context) error {
		cart, err := svc.Get(c.Request().Context(), c.Param("userId"))
		if err != nil {
			return writeError(c, err)
		}
		return api.OK(c, cart)
	})

	g.PUT("/update-cart", func(c echo.Context) error {
		var req LineRequest
		if err := c.Bind(&req); err != nil {
			return api.Fail(c, http.StatusBadRequest, "Invalid data provided!")
		}
		cart, err := svc.UpdateQuantity(c.Request().Context(), req.UserID, req.ProductID, req.Quantity)
		if err != nil {
			return writeError(c, err)
		}
		return api.Message(c, cart, "Cart item is updated successfully")
	})

	g.DELETE("/:userId/:productId", func(c echo.Context) error {
		cart, err := svc.Remove(c.Request().Context(), c.Param("userId"), c.Param("productId"))
		if err != nil {
			return writeError(c, err)
		}
		return api.Message(c, cart, "Cart item is deleted successfully")
	})
}

func writeError(c echo.Context, err error) error {
	var stock *cartService.StockExceededError
	switch {
	case errors.As(err, &stock):
		return api.Fail(c, http.StatusConflict, fmt.Sprintf("Only %d quantity can be added for this item", stock.Stock))
	case errors.Is(err, cartService.ErrMissingIdentity), errors.Is(err, cartService.ErrInvalidQuantity):
		return api.Fail(c, http.StatusBadRequest, "Invalid data provided!")
	case errors.Is(err, cartService.ErrProductNotFound):
		return api.Fail(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, cartService.ErrItemNotFound):
		return api.Fail(c, http.StatusNotFound, "Cart item not present!")
	default:
		return api.Fail(c, http.StatusInternalServerError, "Some error occured")
	}
}
