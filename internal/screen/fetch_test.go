package screen

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kscreener/internal/external/ranking"
	"github.com/wonny/kscreener/pkg/logger"
)

// fetchCall lets a test hold a request open and resolve it at will,
// so completion order can be forced
type fetchCall struct {
	params url.Values
	reply  chan fetchReply
}

type fetchReply struct {
	resp *ranking.TopListResponse
	err  error
}

func newCallFetcher() (TopListFetcher, chan fetchCall) {
	calls := make(chan fetchCall, 16)
	fn := func(ctx context.Context, params url.Values) (*ranking.TopListResponse, error) {
		call := fetchCall{params: params, reply: make(chan fetchReply, 1)}
		calls <- call
		r := <-call.reply
		return r.resp, r.err
	}
	return fn, calls
}

func waitCall(t *testing.T, calls chan fetchCall) fetchCall {
	t.Helper()
	select {
	case call := <-calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch call")
		return fetchCall{}
	}
}

func assertNoCall(t *testing.T, calls chan fetchCall) {
	t.Helper()
	select {
	case call := <-calls:
		t.Fatalf("unexpected fetch call: %v", call.params)
	case <-time.After(80 * time.Millisecond):
	}
}

func respOf(codes ...string) *ranking.TopListResponse {
	items := make([]ranking.Item, 0, len(codes))
	for i, code := range codes {
		items = append(items, ranking.Item{Rank: i + 1, Code: code, Price: 10_000})
	}
	return &ranking.TopListResponse{AsOf: time.Now(), Items: items}
}

func waitStatus(t *testing.T, states chan FetchState, want FetchStatus) FetchState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if s.Status == want {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
			return FetchState{}
		}
	}
}

func newTestCoordinator(t *testing.T, interval time.Duration) (*FetchCoordinator, chan fetchCall, chan FetchState) {
	t.Helper()

	fetcher, calls := newCallFetcher()
	c := NewFetchCoordinator(fetcher, interval, logger.NewNop())

	states := make(chan FetchState, 64)
	c.OnStateChange(func(s FetchState) { states <- s })

	return c, calls, states
}

func TestFetchSuccess(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	c.OnFiltersChanged(DefaultFilters())

	call := waitCall(t, calls)
	assert.Equal(t, "value", call.params.Get("sort_by"))

	waitStatus(t, states, StatusLoading)

	call.reply <- fetchReply{resp: respOf("005930", "000660")}

	final := waitStatus(t, states, StatusSuccess)
	require.Len(t, final.Items, 2)
	assert.Equal(t, "005930", final.Items[0].Code)
	assert.Empty(t, final.Err)
}

func TestFetchRaceLatestWins(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	filtersA := DefaultFilters()
	filtersB := DefaultFilters()
	filtersB.MinPrice = i64(1000)

	c.OnFiltersChanged(filtersA)
	callA := waitCall(t, calls)

	c.OnFiltersChanged(filtersB)
	callB := waitCall(t, calls)

	// B resolves first and is applied
	callB.reply <- fetchReply{resp: respOf("B-WINNER")}
	final := waitStatus(t, states, StatusSuccess)
	assert.Equal(t, "B-WINNER", final.Items[0].Code)

	// A resolves late and must be silently discarded
	callA.reply <- fetchReply{resp: respOf("A-LOSER")}
	time.Sleep(80 * time.Millisecond)

	state := c.State()
	assert.Equal(t, StatusSuccess, state.Status)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "B-WINNER", state.Items[0].Code)
}

func TestFetchRaceErrorResponseAlsoDiscarded(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	filtersA := DefaultFilters()
	filtersB := DefaultFilters()
	filtersB.MinValue = f64(500)

	c.OnFiltersChanged(filtersA)
	callA := waitCall(t, calls)

	c.OnFiltersChanged(filtersB)
	callB := waitCall(t, calls)

	callB.reply <- fetchReply{resp: respOf("KEEP")}
	waitStatus(t, states, StatusSuccess)

	// A failing late must not flip the state to error
	callA.reply <- fetchReply{err: errors.New("boom")}
	time.Sleep(80 * time.Millisecond)

	state := c.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, "KEEP", state.Items[0].Code)
}

func TestFetchDeduplication(t *testing.T) {
	c, calls, _ := newTestCoordinator(t, time.Hour)

	filters := DefaultFilters()

	// Identical query while loading: exactly one request
	c.OnFiltersChanged(filters)
	call := waitCall(t, calls)

	c.OnFiltersChanged(filters)
	assertNoCall(t, calls)

	// Identical query after success: still no request
	call.reply <- fetchReply{resp: respOf("005930")}
	time.Sleep(20 * time.Millisecond)

	c.OnFiltersChanged(filters)
	assertNoCall(t, calls)
}

func TestFetchDifferentQueryNotDeduplicated(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	c.OnFiltersChanged(DefaultFilters())
	call := waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}
	waitStatus(t, states, StatusSuccess)

	changed := DefaultFilters()
	changed.Market = MarketKOSDAQ
	c.OnFiltersChanged(changed)

	call = waitCall(t, calls)
	assert.Equal(t, "KOSDAQ", call.params.Get("market"))
}

func TestRefreshNowBypassesDeduplication(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	c.OnFiltersChanged(DefaultFilters())
	call := waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}
	waitStatus(t, states, StatusSuccess)

	c.RefreshNow()
	call = waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}
	waitStatus(t, states, StatusSuccess)
}

func TestFetchErrorClearsItems(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	c.OnFiltersChanged(DefaultFilters())
	call := waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}
	waitStatus(t, states, StatusSuccess)

	c.RefreshNow()
	call = waitCall(t, calls)
	call.reply <- fetchReply{err: errors.New("connection refused")}

	final := waitStatus(t, states, StatusError)
	assert.Empty(t, final.Items, "error must clear items, never show stale data")
	assert.NotEmpty(t, final.Err)
}

func TestFetchErrorThenSameQueryRetries(t *testing.T) {
	c, calls, states := newTestCoordinator(t, time.Hour)

	filters := DefaultFilters()

	c.OnFiltersChanged(filters)
	call := waitCall(t, calls)
	call.reply <- fetchReply{err: errors.New("boom")}
	waitStatus(t, states, StatusError)

	// The failed query was never applied, so re-deriving it fetches again
	c.OnFiltersChanged(filters)
	call = waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}
	waitStatus(t, states, StatusSuccess)
}

func TestPeriodicRefresh(t *testing.T) {
	c, calls, _ := newTestCoordinator(t, 30*time.Millisecond)

	c.OnFiltersChanged(DefaultFilters())
	call := waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}

	c.Start()

	// Periodic trigger fires without any filter change
	call = waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}
}

func TestStopCancelsPeriodicRefresh(t *testing.T) {
	c, calls, _ := newTestCoordinator(t, 30*time.Millisecond)

	c.OnFiltersChanged(DefaultFilters())
	call := waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}

	c.Start()
	call = waitCall(t, calls)
	call.reply <- fetchReply{resp: respOf("005930")}

	c.Stop()

	// A tick may have raced with Stop; drain anything already issued
	for {
		select {
		case call := <-calls:
			call.reply <- fetchReply{err: errors.New("shutting down")}
			continue
		case <-time.After(20 * time.Millisecond):
		}
		break
	}

	// No leaked recurring trigger after teardown
	assertNoCall(t, calls)
}

func TestStopDiscardsInFlightResponse(t *testing.T) {
	c, calls, _ := newTestCoordinator(t, time.Hour)

	c.OnFiltersChanged(DefaultFilters())
	call := waitCall(t, calls)

	c.Start()
	c.Stop()

	call.reply <- fetchReply{resp: respOf("LATE")}
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, c.State().Items)
}
