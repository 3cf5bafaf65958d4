package screen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/pkg/logger"
)

type controllerHarness struct {
	controller *Controller
	fetchCalls chan fetchCall
	quoteErr   error

	mu         sync.Mutex
	quoteCalls []string
}

func newControllerHarness(t *testing.T) *controllerHarness {
	t.Helper()

	h := &controllerHarness{}

	fetcher, fetchCalls := newCallFetcher()
	h.fetchCalls = fetchCalls

	searcher := func(ctx context.Context, query, market string) ([]ranking.Symbol, error) {
		return symbolsOf("005930"), nil
	}

	quotes := func(ctx context.Context, code string) (*ranking.Quote, error) {
		h.mu.Lock()
		h.quoteCalls = append(h.quoteCalls, code)
		h.mu.Unlock()

		if h.quoteErr != nil {
			return nil, h.quoteErr
		}
		return &ranking.Quote{Code: code, Price: 71_000}, nil
	}

	h.controller = NewController(fetcher, searcher, quotes, time.Hour, testDebounce, logger.NewNop())
	return h
}

func TestControllerStartIssuesInitialFetch(t *testing.T) {
	h := newControllerHarness(t)

	h.controller.Start()
	defer h.controller.Stop()

	call := waitCall(t, h.fetchCalls)
	assert.False(t, call.params.Has("market"), "default ALL market omitted")
	call.reply <- fetchReply{resp: respOf("005930")}
}

func TestControllerRejectsInvalidFilters(t *testing.T) {
	h := newControllerHarness(t)

	bad := DefaultFilters()
	bad.MinPrice, bad.MaxPrice = i64(5000), i64(1000)

	err := h.controller.UpdateFilters(bad)
	require.Error(t, err)

	// Rejected mutation leaves filters untouched and issues nothing
	assert.Equal(t, DefaultFilters(), h.controller.Filters())
	assertNoCall(t, h.fetchCalls)
}

func TestControllerUpdateFiltersTriggersFetch(t *testing.T) {
	h := newControllerHarness(t)

	next := DefaultFilters()
	next.Market = MarketKOSPI
	next.MinValue = f64(500)

	require.NoError(t, h.controller.UpdateFilters(next))

	call := waitCall(t, h.fetchCalls)
	assert.Equal(t, "KOSPI", call.params.Get("market"))
	assert.Equal(t, "500", call.params.Get("min_value"))
	call.reply <- fetchReply{resp: respOf("005930")}
}

func TestControllerSnapshotPreviews(t *testing.T) {
	h := newControllerHarness(t)

	withRisk := DefaultFilters()
	withRisk.Risk.AccountSize = 10_000_000
	require.NoError(t, h.controller.UpdateFilters(withRisk))

	call := waitCall(t, h.fetchCalls)
	call.reply <- fetchReply{resp: respOf("005930")}

	require.Eventually(t, func() bool {
		return h.controller.Snapshot().Fetch.Status == StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	snap := h.controller.Snapshot()
	assert.True(t, snap.RiskViewEnabled)
	require.Len(t, snap.Rows, 1)

	preview := snap.Rows[0].Preview
	require.NotNil(t, preview)
	assert.Equal(t, int64(100_000), preview.AllowedLoss)
	assert.Equal(t, int64(100), preview.MaxShares) // cap bound at 10,000 won
}

func TestControllerSnapshotNoPreviewWithoutAccountSize(t *testing.T) {
	h := newControllerHarness(t)

	require.NoError(t, h.controller.UpdateFilters(DefaultFilters()))

	call := waitCall(t, h.fetchCalls)
	call.reply <- fetchReply{resp: respOf("005930")}

	require.Eventually(t, func() bool {
		return h.controller.Snapshot().Fetch.Status == StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	snap := h.controller.Snapshot()
	assert.False(t, snap.RiskViewEnabled)
	require.Len(t, snap.Rows, 1)
	assert.Nil(t, snap.Rows[0].Preview, "no sizing column without account size")
}

func TestControllerSelectionFetchesQuote(t *testing.T) {
	h := newControllerHarness(t)

	h.controller.SelectSymbol(ranking.Symbol{Code: "005930"})

	require.Eventually(t, func() bool {
		return h.controller.Snapshot().Quote != nil
	}, 2*time.Second, 10*time.Millisecond)

	quote := h.controller.Snapshot().Quote
	assert.Equal(t, "005930", quote.Code)
	assert.Equal(t, int64(71_000), quote.Price)
}

func TestControllerQuoteFailureIsSilent(t *testing.T) {
	h := newControllerHarness(t)
	h.quoteErr = errors.New("404")

	h.controller.SelectSymbol(ranking.Symbol{Code: "999999"})

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.quoteCalls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Logged only; nothing else changes
	assert.Nil(t, h.controller.Snapshot().Quote)
	assert.False(t, h.controller.Snapshot().Search.Open)
}

func TestControllerSubscribe(t *testing.T) {
	h := newControllerHarness(t)

	snaps := make(chan Snapshot, 16)
	h.controller.Subscribe(func(s Snapshot) { snaps <- s })

	require.NoError(t, h.controller.UpdateFilters(DefaultFilters()))

	call := waitCall(t, h.fetchCalls)
	call.reply <- fetchReply{resp: respOf("005930")}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if s.Fetch.Status == StatusSuccess {
				require.Len(t, s.Rows, 1)
				return
			}
		case <-deadline:
			t.Fatal("never observed a success snapshot")
		}
	}
}

func TestControllerSearchScopesToSelectedMarket(t *testing.T) {
	h := newControllerHarness(t)

	scoped := DefaultFilters()
	scoped.Market = MarketKOSDAQ
	require.NoError(t, h.controller.UpdateFilters(scoped))

	call := waitCall(t, h.fetchCalls)
	call.reply <- fetchReply{resp: respOf("005930")}

	assert.Equal(t, "KOSDAQ", h.controller.searchMarket())

	all := DefaultFilters()
	require.NoError(t, h.controller.UpdateFilters(all))
	call = waitCall(t, h.fetchCalls)
	call.reply <- fetchReply{resp: respOf("005930")}

	assert.Equal(t, "", h.controller.searchMarket(), "ALL maps to unscoped lookup")
}
