package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"waqf/internal/msx"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExchange serves canned bodies for each MSX surface and counts hits.
// An empty body answers 500.
type fakeExchange struct {
	securityInfo, search, page, board string
	delay                             time.Duration

	securityInfoHits, searchHits, pageHits, boardHits atomic.Int32
}

func (f *fakeExchange) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	var body string
	switch {
	case r.URL.Path == msx.SecurityInfoPath:
		f.securityInfoHits.Add(1)
		body = f.securityInfo
	case r.URL.Path == msx.SearchPath:
		f.searchHits.Add(1)
		body = f.search
	case r.URL.Path == msx.EquitiesPath:
		f.boardHits.Add(1)
		body = f.board
	case strings.HasPrefix(r.URL.Path, msx.EquitiesPath+"/"):
		f.pageHits.Add(1)
		body = f.page
	}
	if body == "" {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}
	w.Write([]byte(body))
}

func newTestResolver(t *testing.T, f *fakeExchange, overrides OverrideProvider, board bool, timeouts StageTimeouts) *Resolver {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	client := msx.NewClient(server.URL, "ar", log)
	return NewResolver(log, DefaultStrategies(client, overrides, timeouts, board, log)...)
}

func TestResolve_StructuredEndpointStopsCascade(t *testing.T) {
	f := &fakeExchange{
		securityInfo: `{"ClosePrice": 0.466}`,
		search:       `[{"ClosePrice": 9}]`,
		page:         `"ClosePrice": "1.5"`,
	}
	r := newTestResolver(t, f, MapOverrides{"OQEP_PRICE": "0.5"}, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.466", p.String())
	assert.Equal(t, int32(1), f.securityInfoHits.Load())
	assert.Equal(t, int32(0), f.searchHits.Load())
	assert.Equal(t, int32(0), f.pageHits.Load())
}

func TestResolve_ProbesCandidateFieldsInOrder(t *testing.T) {
	f := &fakeExchange{securityInfo: `{"ClosePrice": null, "LastTradePrice": "n/a", "close": "0.471", "price": 3}`}
	r := newTestResolver(t, f, nil, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("0.471")))
}

func TestResolve_FallsThroughToSearch(t *testing.T) {
	f := &fakeExchange{
		securityInfo: `{"Symbol": "OQPI"}`,
		search:       `[{"Symbol": "OQPI", "LastTrade": "0.102"}, {"ClosePrice": 7}]`,
	}
	r := newTestResolver(t, f, nil, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQPI")
	require.True(t, ok)
	assert.Equal(t, "0.102", p.String())
	assert.Equal(t, int32(1), f.searchHits.Load())
	assert.Equal(t, int32(0), f.pageHits.Load())
}

func TestResolve_SearchRequiresArray(t *testing.T) {
	f := &fakeExchange{
		securityInfo: `[{"ClosePrice": 0.2}]`,
		search:       `{"ClosePrice": 0.3}`,
		page:         `<td data-field="ClosePrice">0.401</td>`,
	}
	r := newTestResolver(t, f, nil, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.401", p.String())
}

func TestResolve_PageRejectsImplausibleValue(t *testing.T) {
	f := &fakeExchange{
		page: `<div><span data-field="close">150</span>
			<script>var q = {"ClosePrice": "0.455"};</script></div>`,
	}
	r := newTestResolver(t, f, nil, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.455", p.String())
	assert.Equal(t, int32(1), f.pageHits.Load())
}

func TestResolve_PageOnlyImplausibleFallsToOverride(t *testing.T) {
	f := &fakeExchange{page: `<span class="close-price">150</span>`}
	r := newTestResolver(t, f, MapOverrides{"OQEP_PRICE": "0.47"}, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.47", p.String())
}

func TestResolve_PageLabel(t *testing.T) {
	f := &fakeExchange{page: `<table><tr><th>سعر الإغلاق</th><td>0.118</td></tr></table>`}
	r := newTestResolver(t, f, nil, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQPI")
	require.True(t, ok)
	assert.Equal(t, "0.118", p.String())
}

func TestResolve_AllNetworkStagesFailUsesOverride(t *testing.T) {
	f := &fakeExchange{}
	r := newTestResolver(t, f, MapOverrides{"OQEP_PRICE": "0.466"}, false, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "oqep")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("0.466")))
	assert.Equal(t, int32(1), f.securityInfoHits.Load())
	assert.Equal(t, int32(1), f.searchHits.Load())
	assert.Equal(t, int32(1), f.pageHits.Load())
}

func TestResolve_NothingAvailable(t *testing.T) {
	r := newTestResolver(t, &fakeExchange{}, MapOverrides{"OQEP_PRICE": "-1"}, false, DefaultTimeouts)

	_, ok := r.Resolve(context.Background(), "OQEP")
	assert.False(t, ok)
}

func TestResolve_StageTimeoutFallsThrough(t *testing.T) {
	f := &fakeExchange{securityInfo: `{"ClosePrice": 0.5}`, delay: time.Second}
	timeouts := StageTimeouts{SecurityInfo: 20 * time.Millisecond, Search: 20 * time.Millisecond, Page: 20 * time.Millisecond}
	r := newTestResolver(t, f, MapOverrides{"OQEP_PRICE": "0.44"}, false, timeouts)

	start := time.Now()
	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.44", p.String())
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestResolve_MarketBoardDisabledByDefault(t *testing.T) {
	f := &fakeExchange{board: boardHTML}
	r := newTestResolver(t, f, nil, false, DefaultTimeouts)

	_, ok := r.Resolve(context.Background(), "OQEP")
	assert.False(t, ok)
	assert.Equal(t, int32(0), f.boardHits.Load())
}

const boardHTML = `<html><body><table>
<tr><th>#</th><th>Symbol</th><th>Name</th><th>Close</th></tr>
<tr><td>1</td><td>BKMB</td><td>Bank Muscat</td><td>0.282</td><td>0.280</td></tr>
<tr><td>2</td><td>OQEP</td><td>OQ Exploration &amp; Production</td><td>0.466</td><td>0.460</td></tr>
</table></body></html>`

func TestResolve_MarketBoardRow(t *testing.T) {
	f := &fakeExchange{board: boardHTML}
	r := newTestResolver(t, f, MapOverrides{"OQEP_PRICE": "0.1"}, true, DefaultTimeouts)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.466", p.String())
	assert.Equal(t, int32(1), f.boardHits.Load())
}

func TestResolve_RecoversPanickingStage(t *testing.T) {
	log := logrus.New()
	r := NewResolver(log,
		Strategy{Name: "broken", Price: func(context.Context, string) (decimal.Decimal, bool) {
			panic("boom")
		}},
		OverrideStrategy(MapOverrides{"OQEP_PRICE": "0.45"}, log),
	)

	p, ok := r.Resolve(context.Background(), "OQEP")
	require.True(t, ok)
	assert.Equal(t, "0.45", p.String())
}

func TestResolve_IgnoresNonPositiveStrategyResult(t *testing.T) {
	log := logrus.New()
	var calls int
	r := NewResolver(log,
		Strategy{Name: "zero", Price: func(context.Context, string) (decimal.Decimal, bool) {
			calls++
			return decimal.Zero, true
		}},
	)
	_, ok := r.Resolve(context.Background(), "OQEP")
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}
