package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront.GO/model/entity"
)

// Direction is a one-step quantity change.
type Direction int

const (
	Decrement Direction = -1
	Increment Direction = 1
)

// Deps bundles what every cart workflow needs.
type Deps struct {
	Store    Store
	Notifier Notifier
	Session  *Session
	Log      *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

// ready reports whether the store and session snapshot are wired.
func (d Deps) ready() bool {
	return d.Store != nil && d.Session != nil
}

func (d Deps) notify(n Notice) {
	if d.Notifier != nil {
		d.Notifier.Notify(n)
	}
}

// refresh re-fetches the cart after a successful mutation. A failed refresh
// leaves the stale cart in place; the mutation itself already succeeded.
func (d Deps) refresh(ctx context.Context) {
	if err := d.Session.RefreshCart(ctx, d.Store); err != nil {
		d.logger().Warn("cart refresh failed", "user_id", d.Session.UserID, "error", err)
	}
}

// CartAdjuster moves a cart line's quantity up or down by one, never sending
// a quantity the stock or the lower bound would reject.
type CartAdjuster struct {
	Deps
}

func NewCartAdjuster(d Deps) *CartAdjuster {
	return &CartAdjuster{Deps: d}
}

// Adjust validates against the session snapshot, then issues at most one update request.
func (a *CartAdjuster) Adjust(ctx context.Context, line entity.CartLine, dir Direction) error {
	if !a.ready() {
		a.notify(failure("Cart or product data is missing.", ""))
		return ErrDataMissing
	}
	cart := a.Session.Cart()
	products := a.Session.Products()
	if cart == nil || cart.Items == nil || products == nil {
		a.notify(failure("Cart or product data is missing.", ""))
		return ErrDataMissing
	}

	if dir == Increment {
		product, ok := a.Session.product(line.ProductID)
		if !ok {
			a.notify(failure("Product not found in inventory.", ""))
			return ErrProductNotFound
		}
		if current, ok := cart.Line(line.ProductID); ok && current.Quantity+1 > product.TotalStock {
			a.notify(failure(fmt.Sprintf("Only %d in stock. Cannot add more to cart.", product.TotalStock), ""))
			return &StockLimitError{Stock: product.TotalStock}
		}
	}

	qty := line.Quantity + int(dir)
	if qty < 1 {
		a.notify(failure("Quantity cannot be less than 1.", ""))
		return ErrQuantityBelowOne
	}

	res, err := a.Store.UpdateCartQuantity(ctx, a.Session.UserID, line.ProductID, qty)
	if err := checkResult("updateCartQuantity", res, err); err != nil {
		var re *RemoteError
		errors.As(err, &re)
		a.notify(failure("Failed to update cart item", re.Description("Please try again.")))
		return err
	}
	a.refresh(ctx)
	a.notify(success("Cart item updated successfully."))
	return nil
}

func (a *CartAdjuster) Increment(ctx context.Context, line entity.CartLine) error {
	return a.Adjust(ctx, line, Increment)
}

func (a *CartAdjuster) Decrement(ctx context.Context, line entity.CartLine) error {
	return a.Adjust(ctx, line, Decrement)
}

// CartRemover deletes a line. No confirmation, no undo.
type CartRemover struct {
	Deps
}

func NewCartRemover(d Deps) *CartRemover {
	return &CartRemover{Deps: d}
}

// Remove issues exactly one delete request.
func (r *CartRemover) Remove(ctx context.Context, line entity.CartLine) error {
	if !r.ready() {
		r.notify(failure("Cart or product data is missing.", ""))
		return ErrDataMissing
	}
	res, err := r.Store.DeleteCartItem(ctx, r.Session.UserID, line.ProductID)
	if err := checkResult("deleteCartItem", res, err); err != nil {
		var re *RemoteError
		errors.As(err, &re)
		r.notify(failure("Failed to delete cart item", re.Description("Please try again.")))
		return err
	}
	r.refresh(ctx)
	r.notify(success("Cart item is deleted successfully"))
	return nil
}

// CartAdder adds one unit of a product, merging into an existing line.
type CartAdder struct {
	Deps
}

func NewCartAdder(d Deps) *CartAdder {
	return &CartAdder{Deps: d}
}

// Add checks identity and the stock ceiling against the session cart before
// requesting the add. Both a transport error and success=false are reported.
func (a *CartAdder) Add(ctx context.Context, productID string, totalStock int) error {
	if a.Session == nil || a.Session.UserID == "" || productID == "" {
		a.notify(failure("User or product information missing.", ""))
		return ErrIdentityMissing
	}
	if a.Store == nil {
		a.notify(failure("Cart or product data is missing.", ""))
		return ErrDataMissing
	}
	if current, ok := a.Session.Cart().Line(productID); ok && current.Quantity+1 > totalStock {
		a.notify(failure(fmt.Sprintf("Only %d quantity can be added for this item", totalStock), ""))
		return &StockLimitError{Stock: totalStock}
	}

	res, err := a.Store.AddToCart(ctx, a.Session.UserID, productID, 1)
	if err := checkResult("addToCart", res, err); err != nil {
		var re *RemoteError
		errors.As(err, &re)
		a.notify(failure("Failed to add product to cart", re.Description("An error occurred.")))
		return err
	}
	a.refresh(ctx)
	a.notify(success("Product is added to cart"))
	return nil
}
