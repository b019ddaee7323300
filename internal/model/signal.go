package model

import "time"

// SignalType indicates the direction of a reversal signal.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// Trend is the coarse direction of the latest candle.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)

// WindowMode records how the comparison pair for the latest signal was chosen.
type WindowMode string

const (
	// WindowCompleteMonths means the two most recent complete calendar months were compared.
	WindowCompleteMonths WindowMode = "complete-months"
	// WindowLastTwoRows means the series lacked both complete months and the
	// last two available bars were compared instead.
	WindowLastTwoRows WindowMode = "last-two-rows"
)

// Signal is a classified reversal over one (previous, current) candle pair.
type Signal struct {
	Symbol       string     `json:"symbol"`
	Type         SignalType `json:"type"`
	Date         time.Time  `json:"date"`
	CurrentOpen  float64    `json:"current_open"`
	CurrentClose float64    `json:"current_close"`
	PrevOpen     float64    `json:"prev_open"`
	PrevClose    float64    `json:"prev_close"`
	Strength     float64    `json:"strength"` // percent move past the previous open
	Reason       string     `json:"reason"`
}

// AnalysisResult is the per-symbol output of one scan.
type AnalysisResult struct {
	Symbol         string     `json:"symbol"`
	LatestPrice    float64    `json:"latest_price"`
	Trend          Trend      `json:"trend"`
	PriceChangePct float64    `json:"price_change_pct"`
	LatestSignal   *Signal    `json:"latest_signal,omitempty"`
	Signals        []Signal   `json:"signals,omitempty"` // every historical pair that classified
	Candles        []Candle   `json:"candles,omitempty"`
	WindowMode     WindowMode `json:"window_mode,omitempty"`
	AnalyzedAt     time.Time  `json:"analyzed_at"`
	Err            string     `json:"error,omitempty"`
}

// OK reports whether the analysis succeeded.
func (r AnalysisResult) OK() bool { return r.Err == "" }

// ScanError pairs a symbol with its failure description.
type ScanError struct {
	Symbol  string `json:"symbol"`
	Message string `json:"message"`
}

// ScanResult aggregates one batch run over a list of symbols.
type ScanResult struct {
	ScanTime       time.Time        `json:"scan_time"`
	TotalRequested int              `json:"total_requested"`
	Succeeded      int              `json:"succeeded"`
	Failed         int              `json:"failed"`
	AllResults     []AnalysisResult `json:"all_results"`
	BuySignals     []AnalysisResult `json:"buy_signals"`
	SellSignals    []AnalysisResult `json:"sell_signals"`
	Errors         []ScanError      `json:"errors"`
	Duration       time.Duration    `json:"duration"`
}
