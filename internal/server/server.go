// Package server exposes the REST API consumed by the dashboard: scan
// triggers, stock and alert queries, chart series, and settings.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"CandleAlert/internal/analyzer"
	"CandleAlert/internal/model"
	"CandleAlert/internal/scheduler"
	"CandleAlert/internal/store"
)

// Server wires the analyzer, store, and scheduler behind HTTP handlers.
type Server struct {
	Analyzer  *analyzer.Analyzer
	Store     store.Store
	Scheduler *scheduler.Scheduler
	Symbols   []string
}

// New creates a Server.
func New(a *analyzer.Analyzer, st store.Store, sched *scheduler.Scheduler, symbols []string) *Server {
	return &Server{Analyzer: a, Store: st, Scheduler: sched, Symbols: symbols}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/stocks", s.handleListStocks)
	mux.HandleFunc("GET /api/stocks/{symbol}", s.handleStockDetail)
	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("GET /api/alerts/export", s.handleExportAlerts)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/scan/progress", s.handleScanProgress)
	mux.HandleFunc("GET /api/chart/{symbol}", s.handleChart)
	mux.HandleFunc("GET /api/stock-list", s.handleStockList)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handlePutSettings)
	return mux
}

// envelope is the uniform response shape: {"success": ..., "data"/"error": ...}.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func ok(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	d, err := s.Store.Dashboard()
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	if d.TotalStocks == 0 {
		d.TotalStocks = len(s.Symbols)
	}
	ok(w, d)
}

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.StockFilter{
		Trend:   q.Get("trend"),
		Signal:  q.Get("signal"),
		Page:    intParam(q.Get("page"), 1),
		PerPage: intParam(q.Get("per_page"), 50),
	}
	stocks, total, err := s.Store.ListStocks(f)
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, map[string]interface{}{
		"stocks":       stocks,
		"total":        total,
		"pages":        pageCount(total, f.PerPage),
		"current_page": f.Page,
	})
}

func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	res := s.Analyzer.Analyze(symbol)
	if !res.OK() {
		fail(w, http.StatusNotFound, res.Err)
		return
	}
	ok(w, map[string]interface{}{
		"analysis":   res,
		"chart_data": chartData(res),
	})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	f, err := alertFilter(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, total, err := s.Store.ListAlerts(f)
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, map[string]interface{}{
		"alerts":       alerts,
		"total":        total,
		"pages":        pageCount(total, f.PerPage),
		"current_page": f.Page,
	})
}

func (s *Server) handleExportAlerts(w http.ResponseWriter, r *http.Request) {
	f := store.AlertFilter{Type: strings.ToUpper(r.URL.Query().Get("type"))}
	alerts, total, err := s.Store.ListAlerts(f)
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, map[string]interface{}{
		"alerts":      alerts,
		"total":       total,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// scanRequest is the optional POST /api/scan body.
type scanRequest struct {
	Stocks []string `json:"stocks"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil {
		// An empty or invalid body means "scan the configured list".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	res, err := s.Scheduler.RunScan("manual", req.Stocks)
	if errors.Is(err, scheduler.ErrScanInProgress) {
		fail(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, map[string]interface{}{
		"summary": map[string]int{
			"total_requested":    res.TotalRequested,
			"total_scanned":      res.Succeeded,
			"buy_signals_count":  len(res.BuySignals),
			"sell_signals_count": len(res.SellSignals),
			"error_count":        len(res.Errors),
		},
		"duration_seconds": res.Duration.Seconds(),
		"buy_signals":      topN(res.BuySignals, 10),
		"sell_signals":     topN(res.SellSignals, 10),
		"errors":           res.Errors,
	})
}

func (s *Server) handleScanProgress(w http.ResponseWriter, _ *http.Request) {
	last, err := s.Store.LastScan()
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, last)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	res := s.Analyzer.Analyze(symbol)
	if !res.OK() {
		fail(w, http.StatusNotFound, res.Err)
		return
	}
	ok(w, chartData(res))
}

func (s *Server) handleStockList(w http.ResponseWriter, _ *http.Request) {
	ok(w, s.Symbols)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := s.Store.GetSettings()
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || len(raw) == 0 {
		fail(w, http.StatusBadRequest, "no data provided")
		return
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if str, isStr := v.(string); isStr {
			values[k] = str
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			fail(w, http.StatusBadRequest, "unencodable value for "+k)
			return
		}
		values[k] = string(b)
	}

	if err := s.Store.PutSettings(values); err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ok(w, map[string]string{"message": "settings updated"})
}

// chartData shapes an analysis for candlestick charting.
func chartData(res model.AnalysisResult) map[string]interface{} {
	candles := make([]map[string]interface{}, 0, len(res.Candles))
	for _, c := range res.Candles {
		candles = append(candles, map[string]interface{}{
			"date":   c.Date.Format("2006-01-02"),
			"open":   c.Open,
			"high":   c.High,
			"low":    c.Low,
			"close":  c.Close,
			"volume": c.Volume,
			"color":  c.Color,
		})
	}
	return map[string]interface{}{
		"symbol":  res.Symbol,
		"candles": candles,
		"signals": res.Signals,
	}
}

func alertFilter(r *http.Request) (store.AlertFilter, error) {
	q := r.URL.Query()
	f := store.AlertFilter{
		Type:    strings.ToUpper(q.Get("type")),
		Symbol:  strings.ToUpper(q.Get("symbol")),
		Page:    intParam(q.Get("page"), 1),
		PerPage: intParam(q.Get("per_page"), 50),
	}
	for name, dst := range map[string]*time.Time{"start_date": &f.Start, "end_date": &f.End} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return f, errors.New("invalid " + name + ": " + v)
			}
			*dst = t
		}
	}
	return f, nil
}

func topN(results []model.AnalysisResult, n int) []model.AnalysisResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

func intParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func pageCount(total, perPage int) int {
	if perPage < 1 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
