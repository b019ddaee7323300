package analyzer

import (
	"errors"
	"fmt"

	"CandleAlert/internal/model"
)

// ErrMalformedBar indicates a fetched bar violates the OHLCV invariants
// (non-positive price, negative volume, out-of-order or duplicate date).
var ErrMalformedBar = errors.New("malformed bar")

// classify returns the candle color for an open/close pair.
// A doji (close == open) is neutral: it is never treated as green or red.
func classify(open, closep float64) model.CandleColor {
	switch {
	case closep > open:
		return model.ColorGreen
	case closep < open:
		return model.ColorRed
	default:
		return model.ColorNeutral
	}
}

// Enrich derives per-candle attributes from a date-ascending OHLCV series.
// It is pure: the input is not mutated and the output has the same length.
// The first candle carries no predecessor fields.
func Enrich(bars []model.OHLCV) ([]model.Candle, error) {
	candles := make([]model.Candle, 0, len(bars))
	for i, b := range bars {
		if err := validateBar(b); err != nil {
			return nil, fmt.Errorf("bar %d (%s): %w", i, b.Date.Format("2006-01-02"), err)
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return nil, fmt.Errorf("bar %d (%s): %w: date not after previous bar", i, b.Date.Format("2006-01-02"), ErrMalformedBar)
		}

		c := model.Candle{
			OHLCV:       b,
			Color:       classify(b.Open, b.Close),
			PriceChange: b.Close - b.Open,
		}
		c.PriceChangePct = c.PriceChange / b.Open * 100
		if i > 0 {
			prev := bars[i-1]
			c.HasPrev = true
			c.PrevOpen = prev.Open
			c.PrevClose = prev.Close
			c.PrevColor = classify(prev.Open, prev.Close)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func validateBar(b model.OHLCV) error {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("%w: non-positive price", ErrMalformedBar)
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: negative volume", ErrMalformedBar)
	}
	if b.Date.IsZero() {
		return fmt.Errorf("%w: zero date", ErrMalformedBar)
	}
	return nil
}
