package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
	productRepo "storefront.GO/model/repository/product"
)

var (
	ErrNotFound       = productRepo.ErrNotFound
	ErrInvalidPayload = errors.New("invalid product payload")
)

const (
	detailTTL = 5 * time.Minute
	// cacheTag groups every cached product detail for bulk invalidation.
	cacheTag = "product"
)

// Input is the admin create/update payload.
type Input struct {
	SKU         string                 `json:"sku"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Image       string                 `json:"image"`
	Category    string                 `json:"category"`
	Brand       string                 `json:"brand"`
	Price       float64                `json:"price"`
	SalePrice   float64                `json:"salePrice"`
	TotalStock  int                    `json:"totalStock"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

func (in Input) apply(p *entity.Product) {
	if in.SKU != "" {
		p.SKU = in.SKU
	}
	p.Title = in.Title
	p.Description = in.Description
	p.Image = in.Image
	p.Category = in.Category
	p.Brand = in.Brand
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.TotalStock = in.TotalStock
	if in.Attributes != nil {
		p.Attributes = datatypes.JSONMap(in.Attributes)
	}
}

// CartInvalidator drops cached carts that show one of the given products.
type CartInvalidator interface {
	InvalidateProducts(ctx context.Context, productIDs ...string) error
}

type Service struct {
	repo   *productRepo.ProductRepository
	cache  *cache.Cache
	carts  CartInvalidator
	events events.Publisher
	sfg    singleflight.Group
	log    *slog.Logger
}

func NewService(repo *productRepo.ProductRepository, c *cache.Cache, pub events.Publisher, log *slog.Logger) *Service {
	if c == nil {
		c = cache.NewCache()
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, cache: c, events: pub, log: log.With("service", "product")}
}

func (s *Service) Repository() *productRepo.ProductRepository {
	return s.repo
}

// SetPublisher swaps the event sink; used once wiring has built the indexer.
func (s *Service) SetPublisher(pub events.Publisher) {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	s.events = pub
}

// SetCartInvalidator registers the cart cache to clear on product changes.
func (s *Service) SetCartInvalidator(c CartInvalidator) {
	s.carts = c
}

func (s *Service) List(ctx context.Context) ([]entity.Product, error) {
	return s.repo.FindAll()
}

// ListFiltered returns products matching sel ordered by sort. Unknown sorts use the default.
func (s *Service) ListFiltered(ctx context.Context, sel filter.Selection, sort filter.Sort) ([]entity.Product, error) {
	if !sort.Valid() {
		sort = filter.DefaultSort
	}
	products, err := s.repo.FindFiltered(sel, sort)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Details loads one product through the in-process cache. Concurrent misses
// for the same id share a single query.
func (s *Service) Details(ctx context.Context, id string) (*entity.Product, error) {
	if v, ok := s.cache.GetN(cacheTag, id); ok {
		p := v.(entity.Product)
		return &p, nil
	}
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		p, err := s.repo.FindByID(id)
		if err != nil {
			return nil, err
		}
		s.cache.SetN([]interface{}{cacheTag, id}, *p, detailTTL, []string{cacheTag})
		return *p, nil
	})
	if err != nil {
		return nil, err
	}
	p := v.(entity.Product)
	return &p, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*entity.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := &entity.Product{}
	in.apply(p)
	if err := s.repo.Create(p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.changed(ctx, events.ActionUpsert, p.ID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*entity.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	s.changed(ctx, events.ActionUpsert, id)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.changed(ctx, events.ActionDelete, id)
	return nil
}

// Invalidate drops cached details for ids, or every product when ids is empty.
func (s *Service) Invalidate(ids ...string) {
	if len(ids) == 0 {
		s.cache.DeleteByTag(cacheTag)
		return
	}
	for _, id := range ids {
		s.cache.DeleteN(cacheTag, id)
	}
}

// changed invalidates product and cart caches and publishes the event.
// Cache and publish failures are logged; the mutation itself has already succeeded.
func (s *Service) changed(ctx context.Context, action events.Action, ids ...string) {
	s.Invalidate(ids...)
	if s.carts != nil && len(ids) > 0 {
		if err := s.carts.InvalidateProducts(ctx, ids...); err != nil {
			s.log.Warn("cart cache invalidate failed", "product_ids", ids, "error", err)
		}
	}
	for _, id := range ids {
		ev := events.ProductChanged{Action: action, ProductID: id, At: time.Now().UTC()}
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn("publish product event failed", "product_id", id, "error", err)
		}
	}
}

func validateInput(in Input) error {
	switch {
	case in.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidPayload)
	case in.Price < 0 || in.SalePrice < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidPayload)
	case in.TotalStock < 0:
		return fmt.Errorf("%w: totalStock must not be negative", ErrInvalidPayload)
	}
	return nil
}
