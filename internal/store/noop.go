package store

import "CandleAlert/internal/model"

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveScan(_ *model.ScanResult, _ string) error   { return nil }
func (n *NoopStore) ListStocks(_ StockFilter) ([]StockRow, int, error) { return nil, 0, nil }
func (n *NoopStore) ListAlerts(_ AlertFilter) ([]AlertRow, int, error) { return nil, 0, nil }
func (n *NoopStore) Dashboard() (*DashboardData, error)             { return &DashboardData{}, nil }
func (n *NoopStore) LastScan() (*ScanRow, error)                    { return nil, nil }
func (n *NoopStore) GetSettings() (map[string]string, error)        { return map[string]string{}, nil }
func (n *NoopStore) PutSettings(_ map[string]string) error          { return nil }
func (n *NoopStore) Close() error                                   { return nil }
