package screen

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/pkg/logger"
)

// maxSearchResults caps the displayed result list
const maxSearchResults = 10

// SearchState is the symbol-lookup state for the autocomplete box
type SearchState struct {
	Query   string           `json:"query"`
	Results []ranking.Symbol `json:"results"`
	Open    bool             `json:"open"`
	Loading bool             `json:"loading"`
}

// SymbolSearcher is the outbound lookup dependency
type SymbolSearcher func(ctx context.Context, query, market string) ([]ranking.Symbol, error)

// SearchCoordinator debounces free-text input into at most one in-flight
// symbol lookup per settled input, with the same latest-wins epoch
// discipline as the fetch coordinator, applied to its own lifecycle.
// ⭐ SSOT: 종목 검색 상태 전이는 이 코디네이터에서만
type SearchCoordinator struct {
	searcher SymbolSearcher
	logger   *logger.Logger
	debounce time.Duration

	// marketFn supplies the market scope for lookups; may be nil
	marketFn func() string

	// onSelect receives the chosen symbol; the follow-on quote fetch is
	// the receiver's business and its failure never touches search state
	onSelect func(ranking.Symbol)

	mu    sync.Mutex
	state SearchState
	epoch uint64
	timer *time.Timer

	// onChange fires after every state transition, outside the lock
	onChange func(SearchState)
}

// NewSearchCoordinator creates a coordinator with the given debounce window
func NewSearchCoordinator(searcher SymbolSearcher, debounce time.Duration, log *logger.Logger) *SearchCoordinator {
	return &SearchCoordinator{
		searcher: searcher,
		logger:   log,
		debounce: debounce,
	}
}

// WithMarketScope sets the market supplier for lookups
func (c *SearchCoordinator) WithMarketScope(fn func() string) *SearchCoordinator {
	c.marketFn = fn
	return c
}

// OnSelect registers the selection callback
func (c *SearchCoordinator) OnSelect(fn func(ranking.Symbol)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSelect = fn
}

// OnStateChange registers the state change callback
func (c *SearchCoordinator) OnStateChange(fn func(SearchState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// OnQueryChanged handles one keystroke worth of input change. Empty input
// clears and closes synchronously without issuing a request; otherwise the
// lookup fires once the input has settled for the debounce window, the
// window restarting on every change.
func (c *SearchCoordinator) OnQueryChanged(text string) {
	c.mu.Lock()

	c.state.Query = text
	// Every input change invalidates whatever was pending or in flight
	c.epoch++

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if text == "" {
		c.state.Results = nil
		c.state.Open = false
		c.state.Loading = false
		c.mu.Unlock()
		c.notify()
		return
	}

	captured := c.epoch
	c.timer = time.AfterFunc(c.debounce, func() {
		c.issue(captured, text)
	})
	c.mu.Unlock()
}

// Select closes the list and hands the symbol to the selection callback
func (c *SearchCoordinator) Select(sym ranking.Symbol) {
	c.mu.Lock()
	c.state.Open = false
	onSelect := c.onSelect
	c.mu.Unlock()

	c.notify()

	if onSelect != nil {
		onSelect(sym)
	}
}

// Close closes the result list without clearing the query
func (c *SearchCoordinator) Close() {
	c.mu.Lock()
	c.state.Open = false
	c.mu.Unlock()

	c.notify()
}

// Stop cancels any pending debounce and invalidates in-flight lookups
func (c *SearchCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State returns a copy of the current search state
func (c *SearchCoordinator) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateCopyLocked()
}

// issue runs when the debounce window elapses
func (c *SearchCoordinator) issue(captured uint64, text string) {
	c.mu.Lock()
	if captured != c.epoch {
		// Input changed while the timer was firing
		c.mu.Unlock()
		return
	}
	c.state.Loading = true
	c.mu.Unlock()

	c.notify()

	market := ""
	if c.marketFn != nil {
		market = c.marketFn()
	}

	results, err := c.searcher(context.Background(), text, market)

	c.mu.Lock()

	if captured != c.epoch {
		c.mu.Unlock()
		c.logger.WithField("query", text).Debug("Stale search response discarded")
		return
	}

	c.state.Loading = false

	if err != nil {
		// Non-disruptive: log and leave the previous list/closed state alone
		c.mu.Unlock()
		c.logger.WithError(err).Warn("Symbol search failed")
		c.notify()
		return
	}

	// Truncate for display
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	c.state.Results = results
	c.state.Open = true
	c.mu.Unlock()

	c.notify()
}

func (c *SearchCoordinator) stateCopyLocked() SearchState {
	copied := c.state
	copied.Results = make([]ranking.Symbol, len(c.state.Results))
	copy(copied.Results, c.state.Results)
	return copied
}

// notify calls the registered callback with a fresh state copy, outside
// the lock so subscribers may read coordinator state freely
func (c *SearchCoordinator) notify() {
	c.mu.Lock()
	fn := c.onChange
	state := c.stateCopyLocked()
	c.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}
