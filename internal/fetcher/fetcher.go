package fetcher

import (
	"errors"
	"time"

	"CandleAlert/internal/model"
)

// ErrDataUnavailable indicates the source has no usable bars for the requested
// symbol and range (unknown symbol, network failure, empty result).
var ErrDataUnavailable = errors.New("data unavailable")

// Fetcher defines the interface for fetching monthly candlestick data.
// Bars are returned sorted by date ascending with no duplicate dates;
// gaps are acceptable. The range is [start, end).
type Fetcher interface {
	FetchMonthlyBars(symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
