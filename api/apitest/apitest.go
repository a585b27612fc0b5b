// Package apitest builds API dependencies over a throwaway SQLite database.
package apitest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	cartRepo "storefront.GO/model/repository/cart"
	productRepo "storefront.GO/model/repository/product"
	"storefront.GO/model/testdb"
	cartService "storefront.GO/service/cart"
	productService "storefront.GO/service/product"
	searchService "storefront.GO/service/search"
)

// Deps wires services over a fresh database. Search runs on the SQL fallback.
func Deps(t testing.TB) *api.Deps {
	t.Helper()
	db := testdb.Open(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := productRepo.NewProductRepository(db)
	products := productService.NewService(repo, cache.NewCache(), events.NopPublisher{}, log)
	carts := cartService.NewService(cartRepo.NewCartRepository(db), cartService.NoopCache{}, log)
	products.SetCartInvalidator(carts)
	return &api.Deps{
		DB:       db,
		Log:      log,
		Products: products,
		Carts:    carts,
		Search:   searchService.NewService(nil, "", repo, log),
	}
}

// Mount returns an Echo instance with module registered under /api.
func Mount(deps *api.Deps, module api.ModuleFunc) *echo.Echo {
	e := echo.New()
	module(e.Group("/api"), deps)
	return e
}

// Do serves one request. A non-empty body is sent as JSON.
func Do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Envelope is the decoded response body with Data left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Decode parses rec's body and, when into is non-nil, its data field.
func Decode(t testing.TB, rec *httptest.ResponseRecorder, into interface{}) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if into != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, into); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

// StatusOK fails the test unless rec has status 200.
func StatusOK(t testing.TB, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
