package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleAlert/internal/analyzer"
	"CandleAlert/internal/fetcher"
	"CandleAlert/internal/model"
	"CandleAlert/internal/scheduler"
	"CandleAlert/internal/store"
)

var testSymbols = []string{"RELIANCE", "TCS", "SBIN", "VEDL"}

// monthlySeries builds one bar per (open, close) pair, one month apart.
func monthlySeries(pairs ...[2]float64) []model.OHLCV {
	start := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 0, len(pairs))
	for i, p := range pairs {
		o, c := p[0], p[1]
		hi, lo := o, c
		if c > hi {
			hi, lo = c, o
		}
		bars = append(bars, model.OHLCV{
			Date:   start.AddDate(0, i, 0),
			Open:   o,
			High:   hi + 1,
			Low:    lo - 1,
			Close:  c,
			Volume: 1_000_000,
		})
	}
	return bars
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mock := fetcher.NewMockFetcher()
	mock.Bars = map[string][]model.OHLCV{
		// last pair: red then green engulfing, strength (104-100)/100 = 4%
		"RELIANCE": monthlySeries([2]float64{90, 100}, [2]float64{100, 95}, [2]float64{95, 104}),
		// last pair: green then red engulfing, strength (200-190)/200 = 5%
		"TCS": monthlySeries([2]float64{210, 200}, [2]float64{200, 210}, [2]float64{210, 190}),
		// two greens, no reversal
		"SBIN": monthlySeries([2]float64{500, 510}, [2]float64{510, 520}, [2]float64{520, 530}),
	}
	mock.Fail = map[string]bool{"VEDL": true}

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	a := analyzer.New(mock)
	sched := scheduler.NewScheduler(a, st, testSymbols)
	srv := httptest.NewServer(New(a, st, sched, testSymbols).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func request(t *testing.T, srv *httptest.Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func data(t *testing.T, out map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := out["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", out)
	return d
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "healthy", data(t, out)["status"])
}

func TestStockDetail(t *testing.T) {
	srv := newTestServer(t)

	// lowercase path gets normalized
	code, out := request(t, srv, http.MethodGet, "/api/stocks/reliance", nil)
	require.Equal(t, http.StatusOK, code)

	analysis := data(t, out)["analysis"].(map[string]interface{})
	assert.Equal(t, "RELIANCE", analysis["symbol"])
	assert.Equal(t, "UP", analysis["trend"])

	sig, ok := analysis["latest_signal"].(map[string]interface{})
	require.True(t, ok, "expected a latest signal")
	assert.Equal(t, "BUY", sig["type"])
	assert.InDelta(t, 4.0, sig["strength"].(float64), 1e-9)

	chart := data(t, out)["chart_data"].(map[string]interface{})
	assert.Len(t, chart["candles"], 3)
}

func TestStockDetailUnavailable(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodGet, "/api/stocks/VEDL", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestScanThenQueries(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodPost, "/api/scan", map[string][]string{"stocks": testSymbols})
	require.Equal(t, http.StatusOK, code)

	summary := data(t, out)["summary"].(map[string]interface{})
	assert.EqualValues(t, 4, summary["total_requested"])
	assert.EqualValues(t, 3, summary["total_scanned"])
	assert.EqualValues(t, 1, summary["buy_signals_count"])
	assert.EqualValues(t, 1, summary["sell_signals_count"])
	assert.EqualValues(t, 1, summary["error_count"])

	code, out = request(t, srv, http.MethodGet, "/api/stocks?signal=BUY", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(t, out)["total"])
	stocks := data(t, out)["stocks"].([]interface{})
	require.Len(t, stocks, 1)
	assert.Equal(t, "RELIANCE", stocks[0].(map[string]interface{})["symbol"])

	code, out = request(t, srv, http.MethodGet, "/api/alerts?type=SELL", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(t, out)["total"])
	alerts := data(t, out)["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "TCS", alerts[0].(map[string]interface{})["symbol"])

	code, out = request(t, srv, http.MethodGet, "/api/alerts/export", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, data(t, out)["total"])

	code, out = request(t, srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(t, out)["buy_signals"])
	assert.EqualValues(t, 1, data(t, out)["sell_signals"])

	code, out = request(t, srv, http.MethodGet, "/api/scan/progress", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "manual", data(t, out)["scan_type"])
	assert.EqualValues(t, 3, data(t, out)["total_stocks"])
}

func TestAlertsRejectBadDate(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodGet, "/api/alerts?start_date=notadate", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
}

func TestChart(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodGet, "/api/chart/TCS", nil)
	require.Equal(t, http.StatusOK, code)

	d := data(t, out)
	assert.Equal(t, "TCS", d["symbol"])
	candles := d["candles"].([]interface{})
	require.Len(t, candles, 3)
	last := candles[2].(map[string]interface{})
	assert.Equal(t, "red", last["color"])
	assert.Equal(t, "2025-09-01", last["date"])
}

func TestStockList(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodGet, "/api/stock-list", nil)
	require.Equal(t, http.StatusOK, code)
	list := out["data"].([]interface{})
	require.Len(t, list, len(testSymbols))
	assert.Equal(t, "RELIANCE", list[0])
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	code, _ := request(t, srv, http.MethodPost, "/api/settings",
		map[string]interface{}{"alert_email": "ops@example.com", "min_strength": 2.5})
	require.Equal(t, http.StatusOK, code)

	code, out := request(t, srv, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, code)
	d := data(t, out)
	assert.Equal(t, "ops@example.com", d["alert_email"])
	assert.Equal(t, "2.5", d["min_strength"])
}

func TestSettingsRejectEmptyBody(t *testing.T) {
	srv := newTestServer(t)

	code, out := request(t, srv, http.MethodPost, "/api/settings", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, out["success"])
}
