package fetcher

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"CandleAlert/internal/model"
)

// MockFetcher generates a deterministic synthetic monthly series per symbol,
// for offline development and testing. The same symbol and range always yield
// the same bars. Bars, if set, override generation for the listed symbols.
type MockFetcher struct {
	Bars map[string][]model.OHLCV
	// Fail lists symbols whose fetch returns ErrDataUnavailable.
	Fail map[string]bool
}

// NewMockFetcher creates a generator-backed mock fetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{}
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchMonthlyBars returns synthetic bars on the first of each month in [start, end).
func (m *MockFetcher) FetchMonthlyBars(symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if m.Fail[symbol] {
		return nil, fmt.Errorf("%w: mock: %s configured to fail", ErrDataUnavailable, symbol)
	}
	if fixed, ok := m.Bars[symbol]; ok {
		return fixed, nil
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: mock: empty range for %s", ErrDataUnavailable, symbol)
	}

	rng := rand.New(rand.NewSource(symbolSeed(symbol)))
	price := 100 + rng.Float64()*2900 // base price 100-3000, like real NSE large caps

	var bars []model.OHLCV
	d := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if d.Before(start) {
		d = d.AddDate(0, 1, 0)
	}
	for ; d.Before(end); d = d.AddDate(0, 1, 0) {
		changePct := rng.NormFloat64() * 0.08
		open := price
		closep := open * (1 + changePct)
		high := math.Max(open, closep) * (1 + math.Abs(rng.NormFloat64())*0.02)
		low := math.Min(open, closep) * (1 - math.Abs(rng.NormFloat64())*0.02)
		bars = append(bars, model.OHLCV{
			Date:   d,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closep),
			Volume: 1_000_000 + rng.Int63n(49_000_000),
		})
		price = closep
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: mock: no months in range for %s", ErrDataUnavailable, symbol)
	}
	return bars, nil
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
