package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"storefront.GO/model/entity"
	cartRepo "storefront.GO/model/repository/cart"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = cartRepo.ErrItemNotFound
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrMissingIdentity = errors.New("user and product ids are required")
)

// StockExceededError reports a quantity above the product's total stock.
type StockExceededError struct {
	Stock     int
	Requested int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("only %d in stock, requested %d", e.Stock, e.Requested)
}

// ErrStockExceeded matches any *StockExceededError via errors.Is.
var ErrStockExceeded = &StockExceededError{}

func (e *StockExceededError) Is(target error) bool {
	_, ok := target.(*StockExceededError)
	return ok
}

type Service struct {
	repo  *cartRepo.CartRepository
	cache Cache
	sfg   singleflight.Group // Prevents cache stampede
	log   *slog.Logger
}

func NewService(repo *cartRepo.CartRepository, cache Cache, log *slog.Logger) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, cache: cache, log: log.With("service", "cart")}
}

// Get returns the user's cart; a user without lines gets an empty cart.
func (s *Service) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("cart cache get failed", "user_id", userID, "error", err)
		}

		lines, err := s.repo.FindLines(userID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		cart = &entity.Cart{UserID: userID, Items: lines}
		if err := s.cache.Set(ctx, userID, cart); err != nil {
			s.log.Warn("cart cache set failed", "user_id", userID, "error", err)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Cart), nil
}

// Add merges qty into the user's line for productID, creating it when absent.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, ErrMissingIdentity
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	err := s.repo.Transaction(func(tx *cartRepo.CartRepository) error {
		stock, found, err := tx.ProductStock(productID)
		if err != nil {
			return err
		}
		if !found {
			return ErrProductNotFound
		}
		item, err := tx.FindItem(userID, productID)
		switch {
		case errors.Is(err, cartRepo.ErrItemNotFound):
			if qty > stock {
				return &StockExceededError{Stock: stock, Requested: qty}
			}
			return tx.Create(&entity.CartItem{UserID: userID, ProductID: productID, Quantity: qty})
		case err != nil:
			return err
		}
		merged := item.Quantity + qty
		if merged > stock {
			return &StockExceededError{Stock: stock, Requested: merged}
		}
		return tx.SetQuantity(userID, productID, merged)
	})
	if err != nil {
		return nil, err
	}
	return s.afterMutation(ctx, userID)
}

// UpdateQuantity sets the line quantity. qty must be within [1, stock].
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, ErrMissingIdentity
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	err := s.repo.Transaction(func(tx *cartRepo.CartRepository) error {
		if _, err := tx.FindItem(userID, productID); err != nil {
			return err
		}
		stock, found, err := tx.ProductStock(productID)
		if err != nil {
			return err
		}
		if !found {
			return ErrProductNotFound
		}
		if qty > stock {
			return &StockExceededError{Stock: stock, Requested: qty}
		}
		return tx.SetQuantity(userID, productID, qty)
	})
	if err != nil {
		return nil, err
	}
	return s.afterMutation(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (*entity.Cart, error) {
	if userID == "" || productID == "" {
		return nil, ErrMissingIdentity
	}
	if err := s.repo.Delete(userID, productID); err != nil {
		return nil, err
	}
	return s.afterMutation(ctx, userID)
}

// InvalidateProducts drops cached carts holding any of productIDs so the next
// Get re-reads lines, prices and stock after a catalog change.
func (s *Service) InvalidateProducts(ctx context.Context, productIDs ...string) error {
	return s.cache.InvalidateProducts(ctx, productIDs...)
}

// afterMutation invalidates the cached cart and reloads it.
func (s *Service) afterMutation(ctx context.Context, userID string) (*entity.Cart, error) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cart cache invalidate failed", "user_id", userID, "error", err)
	}
	s.sfg.Forget(userID)
	return s.Get(ctx, userID)
}
