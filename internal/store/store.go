// Package store persists scan results and serves the query surface behind
// the REST API: tracked stocks, alerts, settings, and scan history.
package store

import (
	"time"

	"CandleAlert/internal/model"
)

// StockRow is the persisted snapshot of one tracked stock.
type StockRow struct {
	ID             int64      `json:"id"`
	Symbol         string     `json:"symbol"`
	CurrentPrice   float64    `json:"current_price"`
	Trend          string     `json:"current_trend"`
	LastSignalType string     `json:"last_signal_type,omitempty"`
	LastSignalDate *time.Time `json:"last_signal_date,omitempty"`
	PriceChangePct float64    `json:"price_change_pct"`
	LastUpdated    time.Time  `json:"last_updated"`
}

// AlertRow is one persisted signal.
type AlertRow struct {
	ID           int64     `json:"id"`
	Symbol       string    `json:"symbol"`
	Type         string    `json:"alert_type"`
	SignalDate   time.Time `json:"signal_date"`
	CurrentClose float64   `json:"current_close"`
	CurrentOpen  float64   `json:"current_open"`
	PrevOpen     float64   `json:"prev_open"`
	PrevClose    float64   `json:"prev_close"`
	Strength     float64   `json:"strength"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScanRow records one scan run.
type ScanRow struct {
	ID              int64     `json:"id"`
	ScanType        string    `json:"scan_type"` // "manual" or "scheduled"
	TotalStocks     int       `json:"total_stocks"`
	BuySignals      int       `json:"buy_signals"`
	SellSignals     int       `json:"sell_signals"`
	Errors          int       `json:"errors"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// StockFilter narrows and pages ListStocks.
type StockFilter struct {
	Trend   string
	Signal  string
	Page    int
	PerPage int
}

// AlertFilter narrows and pages ListAlerts. A non-positive PerPage disables
// pagination (used by export).
type AlertFilter struct {
	Type    string
	Symbol  string
	Start   time.Time
	End     time.Time
	Page    int
	PerPage int
}

// DashboardData aggregates the landing-page summary.
type DashboardData struct {
	TotalStocks  int        `json:"total_stocks"`
	BuyAlerts    int        `json:"buy_signals"`
	SellAlerts   int        `json:"sell_signals"`
	RecentAlerts []AlertRow `json:"recent_alerts"`
	TopBuy       []AlertRow `json:"top_buy_signals"`
	TopSell      []AlertRow `json:"top_sell_signals"`
	LastScan     *ScanRow   `json:"last_scan,omitempty"`
}

// Store persists scan outcomes and answers the API's queries.
type Store interface {
	SaveScan(res *model.ScanResult, scanType string) error
	ListStocks(f StockFilter) ([]StockRow, int, error)
	ListAlerts(f AlertFilter) ([]AlertRow, int, error)
	Dashboard() (*DashboardData, error)
	LastScan() (*ScanRow, error)
	GetSettings() (map[string]string, error)
	PutSettings(values map[string]string) error
	Close() error
}
