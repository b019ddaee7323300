package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CandleAlert/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance public chart API.
type YahooFetcher struct {
	Client       *http.Client
	BaseURL      string
	SymbolSuffix string            // exchange suffix appended to bare symbols (".NS" for NSE)
	SymbolMap    map[string]string // overrides for symbols that don't follow the suffix rule
}

// NewYahooFetcher creates a new Yahoo Finance fetcher for NSE symbols.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL:      "https://query1.finance.yahoo.com",
		SymbolSuffix: ".NS",
		SymbolMap: map[string]string{
			"NIFTY50":   "^NSEI",
			"BANKNIFTY": "^NSEBANK",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooSymbol maps a bare tracked symbol to Yahoo's ticker convention.
func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol + f.SymbolSuffix
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// FetchMonthlyBars fetches monthly bars for symbol in [start, end).
func (f *YahooFetcher) FetchMonthlyBars(symbol string, start, end time.Time) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1mo&period1=%d&period2=%d",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), start.Unix(), end.Unix())

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch %s: %v", ErrDataUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", ErrDataUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo %s: status %d", ErrDataUnavailable, symbol, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", ErrDataUnavailable, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error for %s: %s", ErrDataUnavailable, symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no bars returned for %s", ErrDataUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no quote data for %s", ErrDataUnavailable, symbol)
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (trading halts etc.)
		}
		bars = append(bars, model.OHLCV{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	bars = dedupeByDate(bars)
	bars = clampRange(bars, start, end)

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no bars in range for %s", ErrDataUnavailable, symbol)
	}
	return bars, nil
}

// dedupeByDate drops bars whose calendar date repeats; Yahoo occasionally
// returns the running month twice. Input must be sorted ascending.
func dedupeByDate(bars []model.OHLCV) []model.OHLCV {
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && sameDay(b.Date, bars[i-1].Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func clampRange(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(start) || !b.Date.Before(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}
