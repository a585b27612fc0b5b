package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"storefront.GO/api"
	"storefront.GO/config"
	inventoryRepo "storefront.GO/model/repository/inventory"
	priceRepo "storefront.GO/model/repository/price"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// StockResponse for the stock+price endpoint
type StockResponse struct {
	ProductID string  `json:"productId"`
	Stock     int     `json:"stock"`
	Price     float64 `json:"price"`
	SalePrice float64 `json:"salePrice"`
}

// getSigningKey returns the shared key used to sign user ids, empty disables the check
func getSigningKey() string {
	return config.GetEnv("REALTIME_SIGNING_KEY", "")
}

// verifyUserSignature validates HMAC-SHA256 signature using constant-time comparison
func verifyUserSignature(userID, signature, key string) bool {
	if key == "" || userID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(userID))
	expected := mac.Sum(nil)
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sig)
}

func setDuration(c echo.Context, start time.Time) int64 {
	duration := time.Since(start).Milliseconds()
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
	return duration
}

// RegisterRealtimeRoutes sets up the low-latency stock and price endpoints
func RegisterRealtimeRoutes(apiGroup *echo.Group, deps *api.Deps) {
	if deps == nil || deps.DB == nil {
		return
	}
	priceR, err := priceRepo.NewPriceRepository(deps.DB)
	if err != nil {
		deps.Logger().Error("realtime: price repository init failed", "error", err)
		return
	}
	inventoryR, err := inventoryRepo.NewInventoryRepository(deps.DB)
	if err != nil {
		deps.Logger().Error("realtime: inventory repository init failed", "error", err)
		return
	}

	g := apiGroup.Group("/realtime")

	// GET /api/realtime/stock?productId=XXX
	g.GET("/stock", func(c echo.Context) error {
		start := time.Now()

		productID := c.QueryParam("productId")
		if productID == "" {
			return api.Fail(c, http.StatusBadRequest, "productId required")
		}

		var prices priceRepo.PriceResult
		var priceFound bool
		var stock int
		var stockFound bool

		// Parallel fetch using errgroup
		eg := new(errgroup.Group)
		eg.Go(func() error {
			prices, priceFound = priceR.GetPrices(productID)
			return nil
		})
		eg.Go(func() error {
			stock, stockFound = inventoryR.GetTotalStock(productID)
			return nil
		})
		_ = eg.Wait()

		setDuration(c, start)
		if !priceFound && !stockFound {
			return api.Fail(c, http.StatusNotFound, "product not found")
		}
		effective, _ := priceR.GetEffectivePrice(productID)
		return api.OK(c, StockResponse{
			ProductID: productID,
			Stock:     stock,
			Price:     effective,
			SalePrice: prices.SalePrice,
		})
	})

	// GET /api/realtime/stock/batch?productIds=a,b,c
	g.GET("/stock/batch", func(c echo.Context) error {
		start := time.Now()
		var ids []string
		for _, id := range strings.Split(c.QueryParam("productIds"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return api.Fail(c, http.StatusBadRequest, "productIds required")
		}
		stock, err := inventoryR.BatchGetStock(ids)
		setDuration(c, start)
		if err != nil {
			return api.Fail(c, http.StatusInternalServerError, err.Error())
		}
		return api.OK(c, stock)
	})

	// GET /api/realtime/cart-subtotal?userId=XXX, signed with X-User-Sig when a key is configured
	g.GET("/cart-subtotal", func(c echo.Context) error {
		start := time.Now()

		userID := c.QueryParam("userId")
		if userID == "" {
			return api.Fail(c, http.StatusBadRequest, "userId required")
		}
		if key := getSigningKey(); key != "" && !verifyUserSignature(userID, c.Request().Header.Get("X-User-Sig"), key) {
			return api.Fail(c, http.StatusUnauthorized, "invalid signature")
		}

		subtotal, err := priceR.GetCartSubtotal(userID)
		setDuration(c, start)
		if err != nil {
			return api.Fail(c, http.StatusInternalServerError, err.Error())
		}
		return api.OK(c, echo.Map{"userId": userID, "subtotal": subtotal})
	})
}
