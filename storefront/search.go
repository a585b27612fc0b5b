package storefront

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"storefront.GO/model/entity"
)

const (
	// DefaultSearchDelay is how long typing must pause before a search is sent.
	DefaultSearchDelay = time.Second
	// minKeywordLen is exclusive: a trimmed keyword must be longer to search.
	minKeywordLen = 3
)

// Timer is the part of *time.Timer the search needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it via StdAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// StdAfterFunc wraps time.AfterFunc.
func StdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SearchOutcome is reported once per search request that was not superseded.
type SearchOutcome struct {
	Keyword string
	Results []entity.Product
	Err     error
}

type SearchOptions struct {
	Delay     time.Duration
	AfterFunc AfterFunc
	// OnResult, when set, is called after each applied outcome.
	OnResult func(SearchOutcome)
	Log      *slog.Logger
}

// KeywordSearch debounces keystrokes into search requests. Each keystroke
// cancels the pending request; a response for a superseded keystroke is dropped.
// Safe for concurrent use.
type KeywordSearch struct {
	store    Store
	notifier Notifier
	opts     SearchOptions

	mu      sync.Mutex
	gen     uint64
	timer   Timer
	keyword string
	query   string
	results []entity.Product
}

func NewKeywordSearch(store Store, notifier Notifier, opts SearchOptions) *KeywordSearch {
	if opts.Delay <= 0 {
		opts.Delay = DefaultSearchDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = StdAfterFunc
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &KeywordSearch{store: store, notifier: notifier, opts: opts, results: []entity.Product{}}
}

// Type handles the keyword after a keystroke. Keywords longer than three
// characters (trimmed) search after the delay; shorter ones clear results now.
func (s *KeywordSearch) Type(ctx context.Context, keyword string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.keyword = keyword

	if utf8.RuneCountInString(strings.TrimSpace(keyword)) > minKeywordLen {
		gen := s.gen
		s.timer = s.opts.AfterFunc(s.opts.Delay, func() { s.fire(ctx, gen) })
		return
	}
	s.query = keywordQuery(keyword)
	s.results = []entity.Product{}
}

func (s *KeywordSearch) fire(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	keyword := s.keyword
	s.query = keywordQuery(keyword)
	s.mu.Unlock()

	results, err := s.store.GetSearchResults(ctx, keyword)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.opts.Log.Debug("dropping superseded search response", "keyword", keyword)
		return
	}
	if err == nil {
		if results == nil {
			results = []entity.Product{}
		}
		s.results = results
	}
	s.mu.Unlock()

	if err != nil {
		err = &RemoteError{Op: "getSearchResults", Err: err}
		if s.notifier != nil {
			s.notifier.Notify(failure("Search failed", err.Error()))
		}
	}
	if s.opts.OnResult != nil {
		s.opts.OnResult(SearchOutcome{Keyword: keyword, Results: results, Err: err})
	}
}

// ResetResults clears results locally; nothing is sent to the store.
func (s *KeywordSearch) ResetResults() {
	s.mu.Lock()
	s.results = []entity.Product{}
	s.mu.Unlock()
}

// Stop cancels any pending search.
func (s *KeywordSearch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *KeywordSearch) Results() []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Query is the mirrored page query string, "keyword=<kw>".
func (s *KeywordSearch) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *KeywordSearch) Keyword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword
}

func keywordQuery(keyword string) string {
	return url.Values{"keyword": {keyword}}.Encode()
}
