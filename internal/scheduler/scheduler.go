// Package scheduler owns the cron-driven monthly scan and the guarantee that
// at most one scan runs at a time.
package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"CandleAlert/internal/analyzer"
	"CandleAlert/internal/model"
	"CandleAlert/internal/store"
)

// ErrScanInProgress is returned when a scan is requested while another is running.
var ErrScanInProgress = errors.New("a scan is already in progress")

// Scheduler runs the monthly scan on a cron schedule and serves manual triggers.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analyzer.Analyzer
	Store    store.Store
	Symbols  []string

	mu sync.Mutex // held for the duration of a scan
}

// NewScheduler creates a Scheduler over the configured symbol list.
func NewScheduler(a *analyzer.Analyzer, st store.Store, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: a,
		Store:    st,
		Symbols:  symbols,
	}
}

// Register adds the scheduled monthly scan.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scheduledScan); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScan executes one batch scan and persists the outcome. A nil or empty
// symbols argument scans the configured list. Overlapping calls are refused
// with ErrScanInProgress rather than queued.
func (s *Scheduler) RunScan(scanType string, symbols []string) (*model.ScanResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.mu.Unlock()

	if len(symbols) == 0 {
		symbols = s.Symbols
	}
	log.Printf("[INFO] running %s scan over %d symbols", scanType, len(symbols))

	res := s.Analyzer.Scan(symbols)
	if err := s.Store.SaveScan(res, scanType); err != nil {
		log.Printf("[ERROR] save scan: %v", err)
	}

	log.Printf("[INFO] %s scan done in %v: %d scanned, %d buy, %d sell, %d errors",
		scanType, res.Duration, res.Succeeded, len(res.BuySignals), len(res.SellSignals), len(res.Errors))
	return res, nil
}

func (s *Scheduler) scheduledScan() {
	if _, err := s.RunScan("scheduled", nil); err != nil {
		log.Printf("[WARN] scheduled scan skipped: %v", err)
	}
}
