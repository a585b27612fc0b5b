// Package storefront holds the shopper-side workflows: cart quantity
// reconciliation, add-to-cart, catalog querying and debounced keyword search.
// Workflows reach the server only through a Store and report to a Notifier.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
)

// Result is what a mutating remote operation reports back.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Store is the remote catalog and cart API.
type Store interface {
	UpdateCartQuantity(ctx context.Context, userID, productID string, quantity int) (Result, error)
	DeleteCartItem(ctx context.Context, userID, productID string) (Result, error)
	AddToCart(ctx context.Context, userID, productID string, quantity int) (Result, error)
	FetchCartItems(ctx context.Context, userID string) ([]entity.CartLine, error)
	FetchAllFilteredProducts(ctx context.Context, sel filter.Selection, sort filter.Sort) ([]entity.Product, error)
	// FetchProductDetails returns nil, nil for an unknown id.
	FetchProductDetails(ctx context.Context, productID string) (*entity.Product, error)
	GetSearchResults(ctx context.Context, keyword string) ([]entity.Product, error)
}

var (
	ErrDataMissing      = errors.New("cart or product data is missing")
	ErrIdentityMissing  = errors.New("user or product information missing")
	ErrProductNotFound  = errors.New("product not found in inventory")
	ErrStockLimit       = errors.New("stock limit reached")
	ErrQuantityBelowOne = errors.New("quantity cannot be less than 1")
	ErrUnknownSort      = errors.New("unknown sort criterion")
)

// RemoteError is a failed Store call: either a transport error (Err set) or
// a result with success=false (Err nil, Message from the server).
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Op + ": unsuccessful"
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Description is the best-effort text shown to the shopper.
func (e *RemoteError) Description(fallback string) string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fallback
	}
}

// StockLimitError carries the ceiling that rejected a quantity change.
type StockLimitError struct {
	Stock int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("stock limit reached: only %d available", e.Stock)
}

func (e *StockLimitError) Is(target error) bool {
	return target == ErrStockLimit
}

// checkResult turns a Store mutation outcome into nil or a *RemoteError.
func checkResult(op string, res Result, err error) error {
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	if !res.Success {
		return &RemoteError{Op: op, Message: res.Message}
	}
	return nil
}
