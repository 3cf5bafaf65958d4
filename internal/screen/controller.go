package screen

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/internal/risk"
	"github.com/wonny/kscreener/pkg/logger"
)

// Row is a ranked item decorated with the local sizing preview. Preview is
// set only while the risk view is enabled; when the server already computed
// risk fields those take display precedence and the preview is a fallback.
type Row struct {
	ranking.Item
	Preview *risk.SizingPreview `json:"preview,omitempty"`
}

// Snapshot is the read-only view handed to presentation
type Snapshot struct {
	Filters         FilterState    `json:"filters"`
	Fetch           FetchState     `json:"fetch"`
	Rows            []Row          `json:"rows"`
	Search          SearchState    `json:"search"`
	Quote           *ranking.Quote `json:"quote,omitempty"`
	RiskViewEnabled bool           `json:"risk_view_enabled"`
}

// QuoteFetcher is the single-quote lookup dependency
type QuoteFetcher func(ctx context.Context, code string) (*ranking.Quote, error)

// Controller is the composition root of the screening dashboard: it owns
// the canonical filter state, wires the query builder into the fetch
// coordinator, and wires symbol selection into the quote lookup.
// ⭐ SSOT: 필터 상태 변이는 이 컨트롤러에서만
type Controller struct {
	fetch  *FetchCoordinator
	search *SearchCoordinator
	quotes QuoteFetcher
	logger *logger.Logger

	mu      sync.Mutex
	filters FilterState
	quote   *ranking.Quote

	subMu sync.Mutex
	subs  []func(Snapshot)
}

// NewController wires the coordinators together
func NewController(
	fetcher TopListFetcher,
	searcher SymbolSearcher,
	quotes QuoteFetcher,
	refreshInterval, searchDebounce time.Duration,
	log *logger.Logger,
) *Controller {
	c := &Controller{
		quotes:  quotes,
		logger:  log,
		filters: DefaultFilters(),
	}

	c.fetch = NewFetchCoordinator(fetcher, refreshInterval, log)
	c.search = NewSearchCoordinator(searcher, searchDebounce, log).
		WithMarketScope(c.searchMarket)

	c.fetch.OnStateChange(func(FetchState) { c.publish() })
	c.search.OnStateChange(func(SearchState) { c.publish() })
	c.search.OnSelect(c.onSymbolSelected)

	return c
}

// Start issues the initial fetch and begins the periodic refresh
func (c *Controller) Start() {
	c.fetch.OnFiltersChanged(c.Filters())
	c.fetch.Start()
}

// Stop tears down both coordinators
func (c *Controller) Stop() {
	c.fetch.Stop()
	c.search.Stop()
}

// Filters returns the canonical filter state
func (c *Controller) Filters() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// UpdateFilters validates and stores a new filter state, then explicitly
// notifies the fetch coordinator. Invalid states are rejected and nothing
// changes; the data-flow direction is an explicit contract, not a
// scheduling side effect.
func (c *Controller) UpdateFilters(next FilterState) error {
	if err := next.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.filters = next
	c.mu.Unlock()

	c.fetch.OnFiltersChanged(next)
	c.publish()
	return nil
}

// RefreshNow re-fetches the ranked list unconditionally
func (c *Controller) RefreshNow() {
	c.fetch.RefreshNow()
}

// OnSearchInput forwards one input change to the search coordinator
func (c *Controller) OnSearchInput(text string) {
	c.search.OnQueryChanged(text)
}

// SelectSymbol picks a search result
func (c *Controller) SelectSymbol(sym ranking.Symbol) {
	c.search.Select(sym)
}

// Subscribe registers a snapshot listener; fired on every state change
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subs = append(c.subs, fn)
}

// Snapshot assembles the read-only view for presentation
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	filters := c.filters
	quote := c.quote
	c.mu.Unlock()

	fetchState := c.fetch.State()
	enabled := filters.RiskViewEnabled()

	rows := make([]Row, 0, len(fetchState.Items))
	for _, item := range fetchState.Items {
		row := Row{Item: item}
		if enabled {
			if preview, ok := risk.Compute(item.Price, filters.Risk); ok {
				row.Preview = preview
			}
		}
		rows = append(rows, row)
	}

	return Snapshot{
		Filters:         filters,
		Fetch:           fetchState,
		Rows:            rows,
		Search:          c.search.State(),
		Quote:           quote,
		RiskViewEnabled: enabled,
	}
}

// onSymbolSelected runs the follow-on quote lookup. Failures are logged
// and never disturb the search or fetch state.
func (c *Controller) onSymbolSelected(sym ranking.Symbol) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	quote, err := c.quotes(ctx, sym.Code)
	if err != nil {
		c.logger.WithError(err).WithField("code", sym.Code).Warn("Quote lookup failed")
		return
	}

	c.mu.Lock()
	c.quote = quote
	c.mu.Unlock()

	c.publish()
}

// searchMarket scopes symbol lookups to the selected market; ALL means no scope
func (c *Controller) searchMarket() string {
	f := c.Filters()
	if f.Market == MarketAll {
		return ""
	}
	return string(f.Market)
}

// publish fans the current snapshot out to subscribers
func (c *Controller) publish() {
	snap := c.Snapshot()

	c.subMu.Lock()
	subs := make([]func(Snapshot), len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
