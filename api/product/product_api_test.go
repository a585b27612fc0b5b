package product

import (
	"net/http"
	"testing"

	"storefront.GO/api/apitest"
	"storefront.GO/model/entity"
	"storefront.GO/model/testdb"
)

func seed(t *testing.T) (*entity.Product, *entity.Product, *entity.Product) {
	return &entity.Product{Title: "Runner", Category: "footwear", Brand: "nike", Price: 90, TotalStock: 3},
		&entity.Product{Title: "Tee", Category: "men", Brand: "adidas", Price: 20, TotalStock: 5},
		&entity.Product{Title: "Cap", Category: "accessories", Brand: "nike", Price: 15, TotalStock: 2}
}

func TestListFiltered(t *testing.T) {
	deps := apitest.Deps(t)
	a, b, c := seed(t)
	testdb.SeedProducts(t, deps.DB, a, b, c)
	e := apitest.Mount(deps, RegisterProductRoutes)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Cap", "Tee", "Runner"}},
		{"?sortBy=price-hightolow", []string{"Runner", "Tee", "Cap"}},
		{"?brand=nike&sortBy=title-atoz", []string{"Cap", "Runner"}},
		{"?category=men,footwear&sortBy=title-ztoa", []string{"Tee", "Runner"}},
		{"?brand=nike&category=men", nil},
		{"?sortBy=bogus", []string{"Cap", "Tee", "Runner"}},
	}
	for _, tt := range tests {
		rec := apitest.Do(e, http.MethodGet, "/api/shop/products"+tt.query, "")
		apitest.StatusOK(t, rec)
		var got []entity.Product
		env := apitest.Decode(t, rec, &got)
		if !env.Success {
			t.Fatalf("%q: success = false", tt.query)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%q: got %d products, want %d", tt.query, len(got), len(tt.want))
		}
		for i, title := range tt.want {
			if got[i].Title != title {
				t.Errorf("%q: [%d] = %s, want %s", tt.query, i, got[i].Title, title)
			}
		}
	}
}

func TestDetails(t *testing.T) {
	deps := apitest.Deps(t)
	a, _, _ := seed(t)
	testdb.SeedProducts(t, deps.DB, a)
	e := apitest.Mount(deps, RegisterProductRoutes)

	rec := apitest.Do(e, http.MethodGet, "/api/shop/products/"+a.ID, "")
	apitest.StatusOK(t, rec)
	var got entity.Product
	apitest.Decode(t, rec, &got)
	if got.ID != a.ID || got.Title != "Runner" {
		t.Errorf("details = %+v", got)
	}

	rec = apitest.Do(e, http.MethodGet, "/api/shop/products/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing product status = %d", rec.Code)
	}
	if env := apitest.Decode(t, rec, nil); env.Success || env.Message != "Product not found!" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestAdminCRUD(t *testing.T) {
	deps := apitest.Deps(t)
	e := apitest.Mount(deps, RegisterProductRoutes)

	rec := apitest.Do(e, http.MethodPost, "/api/admin/products",
		`{"title":"Hoodie","category":"men","brand":"puma","price":50,"salePrice":40,"totalStock":7}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created entity.Product
	apitest.Decode(t, rec, &created)
	if created.ID == "" || created.SalePrice != 40 {
		t.Fatalf("created = %+v", created)
	}

	rec = apitest.Do(e, http.MethodPost, "/api/admin/products", `{"title":"No price"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid payload status = %d", rec.Code)
	}
	rec = apitest.Do(e, http.MethodPost, "/api/admin/products", `{"title":"Neg","price":-1,"totalStock":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative price status = %d", rec.Code)
	}

	// Warm the details cache so the update must invalidate it.
	apitest.StatusOK(t, apitest.Do(e, http.MethodGet, "/api/shop/products/"+created.ID, ""))

	rec = apitest.Do(e, http.MethodPut, "/api/admin/products/"+created.ID,
		`{"title":"Hoodie v2","price":55,"totalStock":6}`)
	apitest.StatusOK(t, rec)

	rec = apitest.Do(e, http.MethodGet, "/api/shop/products/"+created.ID, "")
	var got entity.Product
	apitest.Decode(t, rec, &got)
	if got.Title != "Hoodie v2" || got.TotalStock != 6 {
		t.Errorf("after update = %+v", got)
	}

	rec = apitest.Do(e, http.MethodPut, "/api/admin/products/nope", `{"title":"x","price":1,"totalStock":1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d", rec.Code)
	}

	rec = apitest.Do(e, http.MethodGet, "/api/admin/products", "")
	var all []entity.Product
	apitest.Decode(t, rec, &all)
	if len(all) != 1 {
		t.Errorf("list = %d products", len(all))
	}

	apitest.StatusOK(t, apitest.Do(e, http.MethodDelete, "/api/admin/products/"+created.ID, ""))
	rec = apitest.Do(e, http.MethodDelete, "/api/admin/products/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
}
