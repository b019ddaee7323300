package analyzer

import (
	"fmt"

	"CandleAlert/internal/model"
)

// Detect classifies one (previous, current) candle pair.
//
// BUY:  current green, previous red, current close above previous open.
// SELL: current red, previous green, current close below previous open.
// Anything else, including either side being a doji, yields nil. The two
// rules are mutually exclusive because green and red are.
func Detect(symbol string, prev, cur model.Candle) *model.Signal {
	if cur.IsGreen() && prev.IsRed() && cur.Close > prev.Open {
		return &model.Signal{
			Symbol:       symbol,
			Type:         model.SignalBuy,
			Date:         cur.Date,
			CurrentOpen:  cur.Open,
			CurrentClose: cur.Close,
			PrevOpen:     prev.Open,
			PrevClose:    prev.Close,
			Strength:     (cur.Close - prev.Open) / prev.Open * 100,
			Reason: fmt.Sprintf("%s green candle closed at ₹%.2f, above %s red candle's open of ₹%.2f",
				monthName(cur.Date), cur.Close, monthName(prev.Date), prev.Open),
		}
	}
	if cur.IsRed() && prev.IsGreen() && cur.Close < prev.Open {
		return &model.Signal{
			Symbol:       symbol,
			Type:         model.SignalSell,
			Date:         cur.Date,
			CurrentOpen:  cur.Open,
			CurrentClose: cur.Close,
			PrevOpen:     prev.Open,
			PrevClose:    prev.Close,
			Strength:     (prev.Open - cur.Close) / prev.Open * 100,
			Reason: fmt.Sprintf("%s red candle closed at ₹%.2f, below %s green candle's open of ₹%.2f",
				monthName(cur.Date), cur.Close, monthName(prev.Date), prev.Open),
		}
	}
	return nil
}

// DetectAll applies Detect to every consecutive pair of the series.
// Pairs are evaluated independently; signals are never combined.
func DetectAll(symbol string, candles []model.Candle) []model.Signal {
	var signals []model.Signal
	for i := 1; i < len(candles); i++ {
		if s := Detect(symbol, candles[i-1], candles[i]); s != nil {
			signals = append(signals, *s)
		}
	}
	return signals
}
