// Package analyzer implements the monthly engulfing-reversal scan pipeline:
// fetch -> enrich -> detect for one symbol, and a batch scan over many.
package analyzer

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"CandleAlert/internal/fetcher"
	"CandleAlert/internal/model"
)

// ErrInsufficientHistory indicates fewer than two usable candles exist,
// so no pair can be evaluated.
var ErrInsufficientHistory = errors.New("insufficient history")

// contextMonths is how many extra months before the comparison window are
// fetched so the historical signal list has something to walk.
const contextMonths = 6

// Analyzer runs the fetch -> enrich -> detect pipeline for single symbols
// and batches of symbols. It holds no mutable state across analyses.
type Analyzer struct {
	Fetcher fetcher.Fetcher

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates an Analyzer over the given data source.
func New(f fetcher.Fetcher) *Analyzer {
	return &Analyzer{Fetcher: f, now: time.Now}
}

// Analyze runs the full pipeline for one symbol. Failures from the data
// source, enrichment, or short history never propagate: they are converted
// into a result with Err set.
func (a *Analyzer) Analyze(symbol string) model.AnalysisResult {
	now := a.now()
	res := model.AnalysisResult{Symbol: symbol, AnalyzedAt: now}

	prevMonth, curMonth := lastTwoCompleteMonths(now)
	start := prevMonth.AddDate(0, -contextMonths, 0)
	end := curMonth.AddDate(0, 1, 0) // exclusive: first day of the running month

	bars, err := a.Fetcher.FetchMonthlyBars(symbol, start, end)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	candles, err := Enrich(bars)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if len(candles) < 2 {
		res.Err = fmt.Errorf("%w: %d candle(s) for %s", ErrInsufficientHistory, len(candles), symbol).Error()
		return res
	}

	prev, cur, mode := resolvePair(candles, prevMonth, curMonth)
	if mode == model.WindowLastTwoRows {
		log.Printf("[WARN] %s: no bars for %s/%s, falling back to last two rows",
			symbol, monthName(prevMonth), monthName(curMonth))
	}

	latest := candles[len(candles)-1]
	res.LatestPrice = latest.Close
	res.Trend = trendOf(latest)
	res.PriceChangePct = latest.PriceChangePct
	res.LatestSignal = Detect(symbol, prev, cur)
	res.Signals = DetectAll(symbol, candles)
	res.Candles = candles
	res.WindowMode = mode
	return res
}

// resolvePair picks the comparison pair for the latest signal: the bars of the
// two most recent complete months when both exist, otherwise the last two bars.
func resolvePair(candles []model.Candle, prevMonth, curMonth time.Time) (prev, cur model.Candle, mode model.WindowMode) {
	var prevC, curC *model.Candle
	for i := range candles {
		if sameMonth(candles[i].Date, prevMonth) {
			prevC = &candles[i]
		}
		if sameMonth(candles[i].Date, curMonth) {
			curC = &candles[i]
		}
	}
	if prevC != nil && curC != nil {
		return *prevC, *curC, model.WindowCompleteMonths
	}
	n := len(candles)
	return candles[n-2], candles[n-1], model.WindowLastTwoRows
}

func trendOf(c model.Candle) model.Trend {
	switch c.Color {
	case model.ColorGreen:
		return model.TrendUp
	case model.ColorRed:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

// Scan analyzes every symbol sequentially. A per-symbol failure is recorded
// and never stops the batch. Buy and sell lists hold only symbols whose
// latest signal classified, ordered by strength descending then symbol.
func (a *Analyzer) Scan(symbols []string) *model.ScanResult {
	started := time.Now()
	res := &model.ScanResult{
		ScanTime:       a.now(),
		TotalRequested: len(symbols),
	}

	for _, symbol := range symbols {
		r := a.Analyze(symbol)
		if !r.OK() {
			res.Failed++
			res.Errors = append(res.Errors, model.ScanError{Symbol: symbol, Message: r.Err})
			log.Printf("[WARN] scan %s: %s", symbol, r.Err)
			continue
		}
		res.Succeeded++
		res.AllResults = append(res.AllResults, r)
		if r.LatestSignal == nil {
			continue
		}
		switch r.LatestSignal.Type {
		case model.SignalBuy:
			res.BuySignals = append(res.BuySignals, r)
		case model.SignalSell:
			res.SellSignals = append(res.SellSignals, r)
		}
	}

	sortByStrength(res.BuySignals)
	sortByStrength(res.SellSignals)
	res.Duration = time.Since(started)
	return res
}

// sortByStrength orders results by signal strength descending,
// ties broken by symbol ascending for determinism.
func sortByStrength(results []model.AnalysisResult) {
	sort.Slice(results, func(i, j int) bool {
		si, sj := results[i].LatestSignal, results[j].LatestSignal
		if si.Strength != sj.Strength {
			return si.Strength > sj.Strength
		}
		return results[i].Symbol < results[j].Symbol
	})
}
