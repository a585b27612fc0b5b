package storefront

import (
	"context"
	"sync"

	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
)

// Catalog coordinates the listing page: filter selection, sort criterion,
// product details and add-to-cart. Every filter or sort change fetches once.
type Catalog struct {
	Deps
	sessions SessionStore
	adder    *CartAdder

	mu          sync.Mutex
	category    string
	filters     filter.Selection
	sort        filter.Sort
	query       string
	details     *entity.Product
	detailsOpen bool
}

// NewCatalog uses an in-memory session store when sessions is nil and an
// anonymous session when d.Session is nil.
func NewCatalog(d Deps, sessions SessionStore) *Catalog {
	if sessions == nil {
		sessions = NewMemorySessionStore()
	}
	if d.Session == nil {
		d.Session = NewSession("")
	}
	return &Catalog{
		Deps:     d,
		sessions: sessions,
		adder:    NewCartAdder(d),
		filters:  filter.Selection{},
		sort:     filter.DefaultSort,
	}
}

// Mount runs on first display and on every category navigation: the sort
// resets to the default and filters are rehydrated from the session.
func (c *Catalog) Mount(ctx context.Context, category string) error {
	sel, err := LoadFilters(ctx, c.sessions)
	if err != nil {
		c.logger().Warn("ignoring unreadable session filters", "error", err)
		sel = filter.Selection{}
	}
	c.mu.Lock()
	c.category = category
	c.sort = filter.DefaultSort
	c.filters = sel
	c.query = sel.QueryString()
	c.mu.Unlock()
	return c.fetch(ctx)
}

// ToggleFilter adds or removes option in section, persists and mirrors the
// selection, then fetches.
func (c *Catalog) ToggleFilter(ctx context.Context, section, option string) error {
	c.mu.Lock()
	c.filters = c.filters.Toggle(section, option)
	sel := c.filters.Clone()
	c.query = sel.QueryString()
	c.mu.Unlock()

	if err := SaveFilters(ctx, c.sessions, sel); err != nil {
		c.logger().Warn("persist filters failed", "error", err)
	}
	return c.fetch(ctx)
}

func (c *Catalog) SetSort(ctx context.Context, sort filter.Sort) error {
	if !sort.Valid() {
		return ErrUnknownSort
	}
	c.mu.Lock()
	c.sort = sort
	c.mu.Unlock()
	return c.fetch(ctx)
}

func (c *Catalog) fetch(ctx context.Context) error {
	c.mu.Lock()
	sel, sort := c.filters.Clone(), c.sort
	c.mu.Unlock()

	if c.Store == nil {
		c.notify(failure("Failed to load products", ""))
		return ErrDataMissing
	}
	products, err := c.Store.FetchAllFilteredProducts(ctx, sel, sort)
	if err != nil {
		re := &RemoteError{Op: "fetchAllFilteredProducts", Err: err}
		c.notify(failure("Failed to load products", re.Description("Please try again.")))
		return re
	}
	if products == nil {
		products = []entity.Product{}
	}
	c.Session.SetProducts(products)
	return nil
}

// ViewDetails loads a product; a non-nil record opens the details view.
func (c *Catalog) ViewDetails(ctx context.Context, productID string) (*entity.Product, error) {
	if c.Store == nil {
		c.notify(failure("Failed to load product details", ""))
		return nil, ErrDataMissing
	}
	p, err := c.Store.FetchProductDetails(ctx, productID)
	if err != nil {
		re := &RemoteError{Op: "fetchProductDetails", Err: err}
		c.notify(failure("Failed to load product details", re.Description("Please try again.")))
		return nil, re
	}
	c.mu.Lock()
	c.details = p
	if p != nil {
		c.detailsOpen = true
	}
	c.mu.Unlock()
	return p, nil
}

// CloseDetails hides the details view. The record is kept until the next ViewDetails.
func (c *Catalog) CloseDetails() {
	c.mu.Lock()
	c.detailsOpen = false
	c.mu.Unlock()
}

// AddToCart delegates to the add-to-cart workflow.
func (c *Catalog) AddToCart(ctx context.Context, productID string, totalStock int) error {
	return c.adder.Add(ctx, productID, totalStock)
}

// Filters returns a copy of the current selection.
func (c *Catalog) Filters() filter.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Clone()
}

func (c *Catalog) Sort() filter.Sort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// Query is the mirrored page query string, e.g. "brand=nike&category=men,women".
func (c *Catalog) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Catalog) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

func (c *Catalog) Products() []entity.Product {
	return c.Session.Products()
}

// Details returns the last loaded record and whether the details view is open.
func (c *Catalog) Details() (*entity.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.details, c.detailsOpen
}
