package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"storefront.GO/core/events"
	"storefront.GO/model/entity"
	productRepo "storefront.GO/model/repository/product"
	"storefront.GO/model/testdb"
)

type esRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeES serves handler behind the product header the v8 client checks for.
func fakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*elasticsearch.Client, func() []esRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []esRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, esRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, func() []esRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]esRequest(nil), seen...)
	}
}

func seed(t *testing.T) (*productRepo.ProductRepository, []*entity.Product) {
	t.Helper()
	db := testdb.Open(t)
	ps := []*entity.Product{
		{Title: "Running Shoe", Brand: "nike", Category: "footwear", Price: 90, TotalStock: 4},
		{Title: "Trail Shoe", Brand: "salomon", Category: "footwear", Price: 120, TotalStock: 2},
		{Title: "Denim Jacket", Brand: "levi", Category: "men", Price: 70, TotalStock: 1},
	}
	testdb.SeedProducts(t, db, ps...)
	return productRepo.NewProductRepository(db), ps
}

func TestSearch_SQLFallbackWithoutClient(t *testing.T) {
	repo, _ := seed(t)
	svc := NewService(nil, "products", repo, nil)
	if svc.Enabled() {
		t.Fatal("Enabled without client")
	}

	got, err := svc.Search(context.Background(), "  shoe ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Running Shoe" || got[1].Title != "Trail Shoe" {
		t.Errorf("Search(shoe) = %+v", got)
	}

	got, _ = svc.Search(context.Background(), "   ")
	if got == nil || len(got) != 0 {
		t.Errorf("blank keyword = %v, want empty", got)
	}
}

func TestSearch_Elasticsearch(t *testing.T) {
	repo, ps := seed(t)
	client, requests := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		// Second hit first, plus an id that no longer exists and a numeric sku.
		resp := map[string]interface{}{
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": 3},
				"hits": []map[string]interface{}{
					{"_source": map[string]interface{}{"id": ps[1].ID, "title": "Trail Shoe", "sku": 1234, "price": 120}},
					{"_source": map[string]interface{}{"id": "gone", "title": "Ghost"}},
					{"_source": map[string]interface{}{"id": ps[0].ID, "title": "Running Shoe", "totalStock": "4"}},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	svc := NewService(client, "storefront_products", repo, nil)
	got, err := svc.Search(context.Background(), "shoe")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].ID != ps[1].ID || got[1].ID != ps[0].ID {
		t.Fatalf("Search order = %+v", got)
	}
	if got[0].TotalStock != 2 {
		t.Errorf("stock should come from DB, got %d", got[0].TotalStock)
	}

	reqs := requests()
	if len(reqs) != 1 || !strings.HasSuffix(reqs[0].Path, "/storefront_products/_search") {
		t.Fatalf("requests = %+v", reqs)
	}
	if !strings.Contains(reqs[0].Body, `"title^3"`) || !strings.Contains(reqs[0].Body, `"shoe"`) {
		t.Errorf("query body = %s", reqs[0].Body)
	}
}

func TestSearch_ElasticsearchErrorFallsBack(t *testing.T) {
	repo, _ := seed(t)
	client, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	svc := NewService(client, "storefront_products", repo, nil)
	got, err := svc.Search(context.Background(), "denim")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Denim Jacket" {
		t.Errorf("fallback = %+v", got)
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := decodeDocument(map[string]interface{}{
		"id": "abc", "sku": 42.0, "price": "19.5", "totalStock": 3.0, "salePrice": 10,
	})
	if err != nil {
		t.Fatalf("decodeDocument: %v", err)
	}
	if doc.ID != "abc" || doc.SKU != "42" || doc.Price != 19.5 || doc.TotalStock != 3 || doc.SalePrice != 10 {
		t.Errorf("decoded = %+v", doc)
	}
}

func TestIndexer_NoClientIsNoop(t *testing.T) {
	repo, ps := seed(t)
	ix := NewIndexer(nil, "products", repo, nil)
	if n, err := ix.Reindex(context.Background(), 10); err != nil || n != 0 {
		t.Errorf("Reindex = %d,%v", n, err)
	}
	if err := ix.HandleEvent(context.Background(), events.ProductChanged{Action: events.ActionUpsert, ProductID: ps[0].ID}); err != nil {
		t.Errorf("HandleEvent: %v", err)
	}
}

func TestIndexer_Reindex(t *testing.T) {
	repo, ps := seed(t)
	client, requests := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		case strings.HasSuffix(r.URL.Path, "/_bulk"):
			_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		}
	})
	ix := NewIndexer(client, "storefront_products", repo, nil)

	n, err := ix.Reindex(context.Background(), 2)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != len(ps) {
		t.Errorf("Reindex sent %d, want %d", n, len(ps))
	}

	var bulks int
	var body strings.Builder
	for _, r := range requests() {
		if strings.HasSuffix(r.Path, "/_bulk") {
			bulks++
			body.WriteString(r.Body)
		}
	}
	if bulks != 2 {
		t.Errorf("bulk requests = %d, want 2", bulks)
	}
	for _, p := range ps {
		if !strings.Contains(body.String(), p.ID) {
			t.Errorf("bulk body missing %s", p.ID)
		}
	}
}

func TestIndexer_HandleEvent(t *testing.T) {
	repo, ps := seed(t)
	client, requests := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	ix := NewIndexer(client, "storefront_products", repo, nil)
	ctx := context.Background()

	if err := ix.HandleEvent(ctx, events.ProductChanged{Action: events.ActionUpsert, ProductID: ps[0].ID}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ix.HandleEvent(ctx, events.ProductChanged{Action: events.ActionDelete, ProductID: "gone"}); err != nil {
		t.Fatalf("delete missing doc: %v", err)
	}
	// Upsert of a product that no longer exists turns into a delete.
	if err := ix.HandleEvent(ctx, events.ProductChanged{Action: events.ActionUpsert, ProductID: "gone"}); err != nil {
		t.Fatalf("upsert missing product: %v", err)
	}

	reqs := requests()
	if len(reqs) != 3 {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].Method != http.MethodPut || !strings.Contains(reqs[0].Path, "/_doc/"+ps[0].ID) {
		t.Errorf("index request = %+v", reqs[0])
	}
	if !strings.Contains(reqs[0].Body, `"Running Shoe"`) {
		t.Errorf("index body = %s", reqs[0].Body)
	}
	if reqs[1].Method != http.MethodDelete || reqs[2].Method != http.MethodDelete {
		t.Errorf("delete requests = %+v", reqs[1:])
	}
}

func TestSearchRequest(t *testing.T) {
	b, err := searchRequest(`red "tee"`, 20)
	if err != nil {
		t.Fatalf("searchRequest: %v", err)
	}
	var got struct {
		Size  int `json:"size"`
		Query struct {
			MultiMatch struct {
				Query  string   `json:"query"`
				Fields []string `json:"fields"`
			} `json:"multi_match"`
		} `json:"query"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	if got.Size != 20 || got.Query.MultiMatch.Query != `red "tee"` {
		t.Errorf("body = %s", b)
	}
	if len(got.Query.MultiMatch.Fields) != 4 || got.Query.MultiMatch.Fields[0] != "title^3" {
		t.Errorf("fields = %v", got.Query.MultiMatch.Fields)
	}
}
