// Package httpstore implements storefront.Store against the shop HTTP API.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
	"storefront.GO/storefront"
)

// Client talks to a storefront server rooted at BaseURL (no trailing /api).
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

var _ storefront.Store = (*Client)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type lineRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
}

// do sends the request and decodes the envelope. Non-2xx responses that still
// carry an envelope are returned without error so callers see success=false.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, err)
	}
	return &env, resp.StatusCode, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (storefront.Result, error) {
	env, _, err := c.do(ctx, method, path, body)
	if err != nil {
		return storefront.Result{}, err
	}
	return storefront.Result{Success: env.Success, Message: env.Message}, nil
}

// fetch decodes data of a successful envelope into out.
func (c *Client) fetch(ctx context.Context, path string, out any) (int, error) {
	env, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return status, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return status, fmt.Errorf("GET %s: %s", path, msg)
	}
	if len(env.Data) == 0 {
		return status, nil
	}
	return status, json.Unmarshal(env.Data, out)
}

func (c *Client) UpdateCartQuantity(ctx context.Context, userID, productID string, quantity int) (storefront.Result, error) {
	return c.mutate(ctx, http.MethodPut, "/api/shop/cart/update-cart",
		lineRequest{UserID: userID, ProductID: productID, Quantity: quantity})
}

func (c *Client) DeleteCartItem(ctx context.Context, userID, productID string) (storefront.Result, error) {
	path := "/api/shop/cart/" + url.PathEscape(userID) + "/" + url.PathEscape(productID)
	return c.mutate(ctx, http.MethodDelete, path, nil)
}

func (c *Client) AddToCart(ctx context.Context, userID, productID string, quantity int) (storefront.Result, error) {
	return c.mutate(ctx, http.MethodPost, "/api/shop/cart/add",
		lineRequest{UserID: userID, ProductID: productID, Quantity: quantity})
}

func (c *Client) FetchCartItems(ctx context.Context, userID string) ([]entity.CartLine, error) {
	var cart entity.Cart
	if _, err := c.fetch(ctx, "/api/shop/cart/"+url.PathEscape(userID), &cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (c *Client) FetchAllFilteredProducts(ctx context.Context, sel filter.Selection, sort filter.Sort) ([]entity.Product, error) {
	q := sel.QueryString()
	if sort != "" {
		if q != "" {
			q += "&"
		}
		q += "sortBy=" + url.QueryEscape(string(sort))
	}
	path := "/api/shop/products"
	if q != "" {
		path += "?" + q
	}
	var products []entity.Product
	if _, err := c.fetch(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) FetchProductDetails(ctx context.Context, productID string) (*entity.Product, error) {
	var p entity.Product
	status, err := c.fetch(ctx, "/api/shop/products/"+url.PathEscape(productID), &p)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetSearchResults(ctx context.Context, keyword string) ([]entity.Product, error) {
	var products []entity.Product
	if _, err := c.fetch(ctx, "/api/shop/search/"+url.PathEscape(keyword), &products); err != nil {
		return nil, err
	}
	return products, nil
}
