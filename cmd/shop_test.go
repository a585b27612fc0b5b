package cmd

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"storefront.GO/api/apitest"
	cartApi "storefront.GO/api/cart"
	productApi "storefront.GO/api/product"
	"storefront.GO/model/entity"
	"storefront.GO/model/testdb"
)

func TestShopCommands(t *testing.T) {
	deps := apitest.Deps(t)
	tee := &entity.Product{Title: "Cotton Tee", Category: "men", Brand: "nike", Price: 20, TotalStock: 2}
	dress := &entity.Product{Title: "Summer Dress", Category: "women", Brand: "zara", Price: 50, TotalStock: 5}
	testdb.SeedProducts(t, deps.DB, tee, dress)

	e := echo.New()
	g := e.Group("/api")
	productApi.RegisterProductRoutes(g, deps)
	cartApi.RegisterCartRoutes(g, deps)
	srv := httptest.NewServer(e)
	defer srv.Close()

	t.Setenv("SHOP_API_URL", srv.URL)
	t.Setenv("REDIS_ADDR", "")

	run := func(args ...string) string {
		t.Helper()
		out := &bytes.Buffer{}
		rootCmd.SetOut(out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs(args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	out := run("shop:browse", "--filter", "category=men")
	if !strings.Contains(out, "?category=men") || !strings.Contains(out, "Cotton Tee") || strings.Contains(out, "Summer Dress") {
		t.Errorf("browse output:\n%s", out)
	}

	out = run("shop:add", "--user", "u1", "--product", tee.ID)
	if !strings.Contains(out, "Cotton Tee") || !strings.Contains(out, "subtotal 20.00") {
		t.Errorf("add output:\n%s", out)
	}
}
