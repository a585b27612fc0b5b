package storefront

import (
	"context"
	"sync"

	"storefront.GO/model/entity"
)

// Session is one shopper's view of remote state: the cart and the catalog
// listing last fetched. A nil Cart or Products means it was never loaded.
type Session struct {
	UserID string

	mu       sync.RWMutex
	cart     *entity.Cart
	products []entity.Product
}

func NewSession(userID string) *Session {
	return &Session{UserID: userID}
}

func (s *Session) Cart() *entity.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *Session) SetCart(c *entity.Cart) {
	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

func (s *Session) Products() []entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *Session) SetProducts(p []entity.Product) {
	s.mu.Lock()
	s.products = p
	s.mu.Unlock()
}

// product looks up id in the loaded listing.
func (s *Session) product(id string) (entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

// RefreshCart re-fetches the shopper's cart into the session.
func (s *Session) RefreshCart(ctx context.Context, store Store) error {
	lines, err := store.FetchCartItems(ctx, s.UserID)
	if err != nil {
		return &RemoteError{Op: "fetchCartItems", Err: err}
	}
	if lines == nil {
		lines = []entity.CartLine{}
	}
	s.SetCart(&entity.Cart{UserID: s.UserID, Items: lines})
	return nil
}
