package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newServer(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("/api")
	g.Use(mw)
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	g.GET("/shop/products", ok)
	g.GET("/admin/products", ok)
	return e
}

func do(e *echo.Echo, path, authz string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestBasicAuth_SkipsShopRoutes(t *testing.T) {
	e := newServer(basicAuth("admin", "secret", buildSkipper([]string{"/api/shop/"})))

	if code := do(e, "/api/shop/products", ""); code != http.StatusOK {
		t.Errorf("shop route status = %d, want 200", code)
	}
	if code := do(e, "/api/admin/products", ""); code != http.StatusUnauthorized {
		t.Errorf("admin route without creds = %d, want 401", code)
	}
	creds := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	if code := do(e, "/api/admin/products", creds); code != http.StatusOK {
		t.Errorf("admin route with creds = %d, want 200", code)
	}
}

func TestKeyAuth_EmptyKeyRejectsEverything(t *testing.T) {
	e := newServer(keyAuth("", buildSkipper(nil)))
	if code := do(e, "/api/admin/products", "Bearer "); code == http.StatusOK {
		t.Errorf("empty key accepted, status = %d", code)
	}
}

func TestKeyAuth_ValidKey(t *testing.T) {
	e := newServer(keyAuth("k3y", buildSkipper(nil)))
	if code := do(e, "/api/admin/products", "Bearer k3y"); code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", code)
	}
}
