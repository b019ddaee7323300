package fetcher

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartJSON(timestamps []int64, opens, highs, lows, closes, volumes []string) string {
	join := func(vals []string) string {
		out := ""
		for i, v := range vals {
			if i > 0 {
				out += ","
			}
			out += v
		}
		return out
	}
	tsOut := ""
	for i, ts := range timestamps {
		if i > 0 {
			tsOut += ","
		}
		tsOut += fmt.Sprintf("%d", ts)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		tsOut, join(opens), join(highs), join(lows), join(closes), join(volumes))
}

func newYahooAgainst(url string) *YahooFetcher {
	f := NewYahooFetcher("")
	f.BaseURL = url
	return f
}

func TestYahooFetcher_DecodesAndSortsBars(t *testing.T) {
	nov := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		// Out of order on purpose; fetcher must sort ascending.
		fmt.Fprint(w, chartJSON(
			[]int64{dec.Unix(), nov.Unix()},
			[]string{"460.0", "500.0"},
			[]string{"525.0", "505.0"},
			[]string{"455.0", "445.0"},
			[]string{"520.0", "450.0"},
			[]string{"2000000", "1500000"},
		))
	}))
	defer srv.Close()

	f := newYahooAgainst(srv.URL)
	bars, err := f.FetchMonthlyBars("RELIANCE", nov.AddDate(0, -1, 0), dec.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", gotPath, "NSE suffix applied at the adapter boundary")
	assert.True(t, bars[0].Date.Before(bars[1].Date))
	assert.Equal(t, 500.0, bars[0].Open)
	assert.Equal(t, 520.0, bars[1].Close)
	assert.Equal(t, int64(2000000), bars[1].Volume)
}

func TestYahooFetcher_SkipsNullBarsAndClampsRange(t *testing.T) {
	oct := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	nov := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(
			[]int64{oct.Unix(), nov.Unix(), dec.Unix()},
			[]string{"400.0", "null", "460.0"},
			[]string{"410.0", "null", "525.0"},
			[]string{"390.0", "null", "455.0"},
			[]string{"405.0", "null", "520.0"},
			[]string{"1000000", "null", "2000000"},
		))
	}))
	defer srv.Close()

	f := newYahooAgainst(srv.URL)
	// Range starts in November: October is clamped, November is a null bar.
	bars, err := f.FetchMonthlyBars("TCS", nov, dec.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, dec, bars[0].Date)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	f := newYahooAgainst(srv.URL)
	_, err := f.FetchMonthlyBars("BOGUS", time.Now().AddDate(-1, 0, 0), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFetcher_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newYahooAgainst(srv.URL)
	_, err := f.FetchMonthlyBars("RELIANCE", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestYahooFetcher_SymbolMapping(t *testing.T) {
	f := NewYahooFetcher("")
	assert.Equal(t, "RELIANCE.NS", f.yahooSymbol("RELIANCE"))
	assert.Equal(t, "^NSEI", f.yahooSymbol("NIFTY50"))
}
