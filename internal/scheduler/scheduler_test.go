package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"CandleAlert/internal/analyzer"
	"CandleAlert/internal/fetcher"
	"CandleAlert/internal/model"
	"CandleAlert/internal/store"
)

// blockingStore lets a test hold a scan open to provoke overlap.
type blockingStore struct {
	store.NoopStore
	enter chan struct{}
	exit  chan struct{}
	saved []string
	mu    sync.Mutex
}

func (b *blockingStore) SaveScan(_ *model.ScanResult, scanType string) error {
	b.mu.Lock()
	b.saved = append(b.saved, scanType)
	b.mu.Unlock()
	if b.enter != nil {
		b.enter <- struct{}{}
		<-b.exit
	}
	return nil
}

func newTestScheduler(st store.Store) *Scheduler {
	a := analyzer.New(fetcher.NewMockFetcher())
	return NewScheduler(a, st, []string{"RELIANCE", "TCS"})
}

func TestRunScan_PersistsResult(t *testing.T) {
	bs := &blockingStore{}
	s := newTestScheduler(bs)

	res, err := s.RunScan("manual", nil)
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}
	if res.TotalRequested != 2 {
		t.Errorf("expected configured symbols to be scanned, got %d", res.TotalRequested)
	}
	if len(bs.saved) != 1 || bs.saved[0] != "manual" {
		t.Errorf("expected one manual save, got %v", bs.saved)
	}
}

func TestRunScan_ExplicitSymbolsOverrideConfig(t *testing.T) {
	s := newTestScheduler(&blockingStore{})
	res, err := s.RunScan("manual", []string{"INFY"})
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}
	if res.TotalRequested != 1 {
		t.Errorf("expected 1 symbol, got %d", res.TotalRequested)
	}
}

func TestRunScan_RefusesOverlap(t *testing.T) {
	bs := &blockingStore{enter: make(chan struct{}), exit: make(chan struct{})}
	s := newTestScheduler(bs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.RunScan("manual", nil); err != nil {
			t.Errorf("first scan failed: %v", err)
		}
	}()

	<-bs.enter // first scan is now mid-save, lock held
	if _, err := s.RunScan("manual", nil); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("expected ErrScanInProgress, got %v", err)
	}
	close(bs.exit)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first scan never finished")
	}

	// Lock released: a new scan works again.
	bs.enter, bs.exit = nil, nil
	if _, err := s.RunScan("scheduled", nil); err != nil {
		t.Errorf("scan after release failed: %v", err)
	}
}

func TestRegister_BadCronSpec(t *testing.T) {
	s := newTestScheduler(&blockingStore{})
	if err := s.Register("not a cron spec"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.Register("0 30 3 1 * *"); err != nil {
		t.Errorf("valid six-field spec rejected: %v", err)
	}
}
