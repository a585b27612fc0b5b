package storefront

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"storefront.GO/model/entity"
	"storefront.GO/model/filter"
)

// fakeStore emulates the server: an in-memory catalog and cart with call counters.
type fakeStore struct {
	mu       sync.Mutex
	products []entity.Product
	lines    map[string][]entity.CartLine
	calls    map[string]int
	keywords []string
	lastSel  filter.Selection
	lastSort filter.Sort

	// failWith makes the named op return this error.
	failWith map[string]error
	// rejectWith makes the named mutation return success=false with this message.
	rejectWith map[string]string
	// searchGate, when set, blocks GetSearchResults until it receives.
	searchGate chan struct{}
}

func newFakeStore(products ...entity.Product) *fakeStore {
	return &fakeStore{
		products:   products,
		lines:      make(map[string][]entity.CartLine),
		calls:      make(map[string]int),
		failWith:   make(map[string]error),
		rejectWith: make(map[string]string),
	}
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) begin(op string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.rejectWith[op], f.failWith[op]
}

func (f *fakeStore) setLine(userID string, line entity.CartLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lines[userID] {
		if l.ProductID == line.ProductID {
			f.lines[userID][i] = line
			return
		}
	}
	f.lines[userID] = append(f.lines[userID], line)
}

func (f *fakeStore) UpdateCartQuantity(_ context.Context, userID, productID string, quantity int) (Result, error) {
	if msg, err := f.begin("updateCartQuantity"); err != nil || msg != "" {
		return Result{Message: msg}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lines[userID] {
		if l.ProductID == productID {
			f.lines[userID][i].Quantity = quantity
			return Result{Success: true}, nil
		}
	}
	return Result{Message: "Cart item not present!"}, nil
}

func (f *fakeStore) DeleteCartItem(_ context.Context, userID, productID string) (Result, error) {
	if msg, err := f.begin("deleteCartItem"); err != nil || msg != "" {
		return Result{Message: msg}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.lines[userID]
	for i, l := range lines {
		if l.ProductID == productID {
			f.lines[userID] = append(lines[:i:i], lines[i+1:]...)
			return Result{Success: true}, nil
		}
	}
	return Result{Message: "Cart item not present!"}, nil
}

func (f *fakeStore) AddToCart(_ context.Context, userID, productID string, quantity int) (Result, error) {
	if msg, err := f.begin("addToCart"); err != nil || msg != "" {
		return Result{Message: msg}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lines[userID] {
		if l.ProductID == productID {
			f.lines[userID][i].Quantity += quantity
			return Result{Success: true}, nil
		}
	}
	for _, p := range f.products {
		if p.ID == productID {
			f.lines[userID] = append(f.lines[userID], entity.CartLine{ProductID: p.ID, Quantity: quantity, Title: p.Title, TotalStock: p.TotalStock})
			return Result{Success: true}, nil
		}
	}
	return Result{Message: "Product not found"}, nil
}

func (f *fakeStore) FetchCartItems(_ context.Context, userID string) ([]entity.CartLine, error) {
	if _, err := f.begin("fetchCartItems"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.CartLine{}, f.lines[userID]...), nil
}

func (f *fakeStore) FetchAllFilteredProducts(_ context.Context, sel filter.Selection, s filter.Sort) ([]entity.Product, error) {
	if _, err := f.begin("fetchAllFilteredProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSel, f.lastSort = sel.Clone(), s
	var out []entity.Product
	for _, p := range f.products {
		if matches(sel, p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if s == filter.SortPriceHighToLow {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out, nil
}

func matches(sel filter.Selection, p entity.Product) bool {
	check := func(opts []string, v string) bool {
		if len(opts) == 0 {
			return true
		}
		for _, o := range opts {
			if o == v {
				return true
			}
		}
		return false
	}
	return check(sel[filter.SectionCategory], p.Category) && check(sel[filter.SectionBrand], p.Brand)
}

func (f *fakeStore) FetchProductDetails(_ context.Context, productID string) (*entity.Product, error) {
	if _, err := f.begin("fetchProductDetails"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == productID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetSearchResults(_ context.Context, keyword string) ([]entity.Product, error) {
	_, err := f.begin("getSearchResults")
	f.mu.Lock()
	f.keywords = append(f.keywords, keyword)
	gate := f.searchGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return []entity.Product{{ID: "hit-" + keyword, Title: keyword}}, nil
}

func (f *fakeStore) searchedKeywords() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keywords...)
}

var errTransport = errors.New("connection refused")

// fakeClock collects scheduled functions; tests fire them explicitly.
type fakeClock struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// fireAll runs every timer that was scheduled and not stopped, including
// stopped ones when force is set (a timer that already fired concurrently).
func (c *fakeClock) fireAll(force bool) int {
	c.mu.Lock()
	timers := c.pending
	c.pending = nil
	c.mu.Unlock()
	n := 0
	for _, t := range timers {
		if t.fired || (t.stopped && !force) {
			continue
		}
		t.fired = true
		t.f()
		n++
	}
	return n
}

func (c *fakeClock) scheduled() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.pending...)
}
