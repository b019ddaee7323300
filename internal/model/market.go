package model

import "time"

// OHLCV represents a single monthly candlestick bar.
type OHLCV struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// CandleColor classifies a candle's direction.
type CandleColor string

const (
	ColorGreen   CandleColor = "green"
	ColorRed     CandleColor = "red"
	ColorNeutral CandleColor = "neutral" // doji: close == open
)

// Candle is an OHLCV bar plus fields derived from the bar and its predecessor.
type Candle struct {
	OHLCV
	Color          CandleColor `json:"color"`
	PriceChange    float64     `json:"price_change"`
	PriceChangePct float64     `json:"price_change_pct"`

	// Predecessor data; zero values with HasPrev=false for the first bar of a series.
	HasPrev   bool        `json:"has_prev"`
	PrevOpen  float64     `json:"prev_open,omitempty"`
	PrevClose float64     `json:"prev_close,omitempty"`
	PrevColor CandleColor `json:"prev_color,omitempty"`
}

// IsGreen reports whether the candle closed above its open.
func (c Candle) IsGreen() bool { return c.Color == ColorGreen }

// IsRed reports whether the candle closed below its open.
func (c Candle) IsRed() bool { return c.Color == ColorRed }
