package screen

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/pkg/logger"
)

// FetchStatus is the lifecycle state of the ranked-list resource
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusSuccess FetchStatus = "success"
	StatusError   FetchStatus = "error"
)

// 실패는 종류 구분 없이 하나의 메시지로 수렴
const fetchErrMessage = "조회에 실패했습니다. 잠시 후 다시 시도해주세요."

// FetchState is the authoritative state of the current ranked list.
// Epoch is the concurrency-control field: a response applies only while
// the epoch it captured at issue time is still current.
type FetchState struct {
	Status FetchStatus    `json:"status"`
	Items  []ranking.Item `json:"items"`
	AsOf   time.Time      `json:"asof"`
	Err    string         `json:"error,omitempty"`
	Epoch  uint64         `json:"epoch"`
}

// TopListFetcher is the outbound dependency of the coordinator
type TopListFetcher func(ctx context.Context, params url.Values) (*ranking.TopListResponse, error)

// FetchCoordinator owns the async lifecycle of the "current ranked list":
// fetch on filter change, manual refresh, periodic refresh, and
// stale-response suppression via a monotonic epoch counter.
// ⭐ SSOT: 랭킹 목록 상태 전이는 이 코디네이터에서만
type FetchCoordinator struct {
	fetcher  TopListFetcher
	logger   *logger.Logger
	interval time.Duration

	mu           sync.Mutex
	state        FetchState
	epoch        uint64
	currentQuery QuerySpec
	inflightKey  string // canonical key of the loading request, "" when none
	appliedKey   string // canonical key of the last successfully applied query
	started      bool
	stopped      bool

	// onChange fires after every applied state transition, outside the
	// coordinator lock
	onChange func(FetchState)

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewFetchCoordinator creates a coordinator with the given refresh interval
func NewFetchCoordinator(fetcher TopListFetcher, interval time.Duration, log *logger.Logger) *FetchCoordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &FetchCoordinator{
		fetcher:  fetcher,
		logger:   log,
		interval: interval,
		state:    FetchState{Status: StatusIdle},
		ctx:      ctx,
		cancel:   cancel,
		stopCh:   make(chan struct{}),
	}
}

// OnStateChange registers the state change callback. Must be set before Start.
func (c *FetchCoordinator) OnStateChange(fn func(FetchState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Start launches the periodic refresh loop
func (c *FetchCoordinator) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.refreshLoop()
}

// Stop cancels the periodic refresh. After Stop returns no further
// periodic trigger fires and late responses are discarded.
func (c *FetchCoordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.stopped = true
	// Bump the epoch so responses already in flight can no longer apply
	c.epoch++
	c.mu.Unlock()

	close(c.stopCh)
	c.cancel()
	c.wg.Wait()

	c.logger.Info("Fetch coordinator stopped")
}

// OnFiltersChanged records the new query and triggers a fetch, unless an
// identical query is already loading or already the last applied success.
// The short-circuit avoids redundant requests and loading flicker when a
// mutation re-derives the same query.
func (c *FetchCoordinator) OnFiltersChanged(filters FilterState) {
	query := BuildQuery(filters)
	key := query.Key()

	c.mu.Lock()
	c.currentQuery = query

	if key == c.inflightKey || key == c.appliedKey {
		c.mu.Unlock()
		c.logger.WithField("query", key).Debug("Fetch deduplicated")
		return
	}

	issued := c.issueLocked(query)
	c.mu.Unlock()

	if issued {
		c.notify()
	}
}

// RefreshNow fetches the current query unconditionally
func (c *FetchCoordinator) RefreshNow() {
	c.mu.Lock()
	issued := c.issueLocked(c.currentQuery)
	c.mu.Unlock()

	if issued {
		c.notify()
	}
}

// State returns a copy of the current fetch state
func (c *FetchCoordinator) State() FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateCopyLocked()
}

// issueLocked transitions to loading and dispatches the request.
// Caller holds c.mu; the caller notifies when true is returned.
func (c *FetchCoordinator) issueLocked(query QuerySpec) bool {
	if c.stopped {
		return false
	}

	c.epoch++
	captured := c.epoch
	key := query.Key()

	c.inflightKey = key
	c.state.Status = StatusLoading
	c.state.Err = ""
	c.state.Epoch = captured

	c.logger.WithFields(map[string]interface{}{
		"query": key,
		"epoch": captured,
	}).Debug("Fetch issued")

	go c.fetch(captured, query)
	return true
}

// fetch runs the request and applies the result under the epoch guard
func (c *FetchCoordinator) fetch(captured uint64, query QuerySpec) {
	resp, err := c.fetcher(c.ctx, query.Values())

	c.mu.Lock()

	if captured != c.epoch {
		// Superseded by a newer request; discard without touching state
		c.mu.Unlock()
		c.logger.WithFields(map[string]interface{}{
			"captured": captured,
			"current":  c.epoch,
		}).Debug("Stale fetch response discarded")
		return
	}

	c.inflightKey = ""

	if err != nil {
		// All failure kinds collapse to one generic outcome; the next
		// trigger (manual or periodic) gets a fresh attempt.
		c.state.Status = StatusError
		c.state.Items = nil
		c.state.Err = fetchErrMessage
		c.appliedKey = ""
	} else {
		c.state.Status = StatusSuccess
		c.state.Items = resp.Items
		c.state.AsOf = resp.AsOf
		c.state.Err = ""
		c.appliedKey = query.Key()
	}

	c.mu.Unlock()

	if err != nil {
		c.logger.WithError(err).Warn("Ranked list fetch failed")
	}
	c.notify()
}

// refreshLoop fires RefreshNow on a fixed interval until Stop
func (c *FetchCoordinator) refreshLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.RefreshNow()
		}
	}
}

func (c *FetchCoordinator) stateCopyLocked() FetchState {
	copied := c.state
	copied.Items = make([]ranking.Item, len(c.state.Items))
	copy(copied.Items, c.state.Items)
	return copied
}

// notify calls the registered callback with a fresh state copy. Runs
// outside the lock so subscribers may read coordinator state freely.
func (c *FetchCoordinator) notify() {
	c.mu.Lock()
	fn := c.onChange
	state := c.stateCopyLocked()
	c.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}
