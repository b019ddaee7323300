package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CandleAlert/internal/model"
)

// SQLiteStore persists scan data to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writers serialized and makes ":memory:" share
	// one database across the pool.
	db.SetMaxOpenConns(1)

	// WAL mode so dashboard reads don't block scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol           TEXT NOT NULL UNIQUE,
			current_price    REAL,
			current_trend    TEXT,
			last_signal_type TEXT,
			last_signal_date INTEGER,
			price_change_pct REAL,
			last_updated     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stocks_updated ON stocks(last_updated)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol        TEXT NOT NULL,
			alert_type    TEXT NOT NULL,
			signal_date   INTEGER NOT NULL,
			current_close REAL,
			current_open  REAL,
			prev_open     REAL,
			prev_close    REAL,
			strength      REAL,
			reason        TEXT,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,

		`CREATE TABLE IF NOT EXISTS settings (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			key        TEXT NOT NULL UNIQUE,
			value      TEXT,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS scan_history (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_type        TEXT,
			total_stocks     INTEGER,
			buy_signals      INTEGER,
			sell_signals     INTEGER,
			errors           INTEGER,
			duration_seconds REAL,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_created ON scan_history(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveScan records the batch outcome: one scan_history row, a stock upsert per
// analyzed symbol, and an alert per latest signal, in a single transaction.
func (s *SQLiteStore) SaveScan(res *model.ScanResult, scanType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	_, err = tx.Exec(`INSERT INTO scan_history
		(scan_type, total_stocks, buy_signals, sell_signals, errors, duration_seconds, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		scanType, res.Succeeded, len(res.BuySignals), len(res.SellSignals),
		len(res.Errors), res.Duration.Seconds(), now,
	)
	if err != nil {
		return fmt.Errorf("insert scan history: %w", err)
	}

	for _, r := range res.AllResults {
		var sigType sql.NullString
		var sigDate sql.NullInt64
		if r.LatestSignal != nil {
			sigType = sql.NullString{String: string(r.LatestSignal.Type), Valid: true}
			sigDate = sql.NullInt64{Int64: r.LatestSignal.Date.Unix(), Valid: true}
		}
		_, err = tx.Exec(`INSERT INTO stocks
			(symbol, current_price, current_trend, last_signal_type, last_signal_date, price_change_pct, last_updated)
			VALUES (?,?,?,?,?,?,?)
			ON CONFLICT(symbol) DO UPDATE SET
				current_price    = excluded.current_price,
				current_trend    = excluded.current_trend,
				last_signal_type = COALESCE(excluded.last_signal_type, stocks.last_signal_type),
				last_signal_date = COALESCE(excluded.last_signal_date, stocks.last_signal_date),
				price_change_pct = excluded.price_change_pct,
				last_updated     = excluded.last_updated`,
			r.Symbol, r.LatestPrice, string(r.Trend), sigType, sigDate, r.PriceChangePct, now,
		)
		if err != nil {
			return fmt.Errorf("upsert stock %s: %w", r.Symbol, err)
		}

		if r.LatestSignal == nil {
			continue
		}
		sig := r.LatestSignal
		_, err = tx.Exec(`INSERT INTO alerts
			(symbol, alert_type, signal_date, current_close, current_open, prev_open, prev_close, strength, reason, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			sig.Symbol, string(sig.Type), sig.Date.Unix(),
			sig.CurrentClose, sig.CurrentOpen, sig.PrevOpen, sig.PrevClose,
			sig.Strength, sig.Reason, now,
		)
		if err != nil {
			return fmt.Errorf("insert alert %s: %w", sig.Symbol, err)
		}
	}

	return tx.Commit()
}

// ListStocks returns a page of tracked stocks plus the unpaged total.
func (s *SQLiteStore) ListStocks(f StockFilter) ([]StockRow, int, error) {
	where, args := "1=1", []interface{}{}
	if f.Trend != "" {
		where += " AND current_trend = ?"
		args = append(args, f.Trend)
	}
	if f.Signal != "" {
		where += " AND last_signal_type = ?"
		args = append(args, f.Signal)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM stocks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stocks: %w", err)
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	rows, err := s.db.Query(
		`SELECT id, symbol, current_price, current_trend, last_signal_type, last_signal_date, price_change_pct, last_updated
		 FROM stocks WHERE `+where+` ORDER BY last_updated DESC, symbol ASC LIMIT ? OFFSET ?`,
		append(args, perPage, (page-1)*perPage)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var out []StockRow
	for rows.Next() {
		var r StockRow
		var sigType sql.NullString
		var sigDate sql.NullInt64
		var updated int64
		if err := rows.Scan(&r.ID, &r.Symbol, &r.CurrentPrice, &r.Trend, &sigType, &sigDate, &r.PriceChangePct, &updated); err != nil {
			return nil, 0, fmt.Errorf("scan stock row: %w", err)
		}
		r.LastSignalType = sigType.String
		if sigDate.Valid {
			t := time.Unix(sigDate.Int64, 0).UTC()
			r.LastSignalDate = &t
		}
		r.LastUpdated = time.Unix(updated, 0).UTC()
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// ListAlerts returns a page of alerts plus the unpaged total.
func (s *SQLiteStore) ListAlerts(f AlertFilter) ([]AlertRow, int, error) {
	where, args := "1=1", []interface{}{}
	if f.Type != "" {
		where += " AND alert_type = ?"
		args = append(args, f.Type)
	}
	if f.Symbol != "" {
		where += " AND symbol = ?"
		args = append(args, f.Symbol)
	}
	if !f.Start.IsZero() {
		where += " AND signal_date >= ?"
		args = append(args, f.Start.Unix())
	}
	if !f.End.IsZero() {
		where += " AND signal_date <= ?"
		args = append(args, f.End.Unix())
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM alerts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	q := `SELECT id, symbol, alert_type, signal_date, current_close, current_open, prev_open, prev_close, strength, reason, created_at
	      FROM alerts WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if f.PerPage > 0 {
		page, perPage := normalizePage(f.Page, f.PerPage)
		q += " LIMIT ? OFFSET ?"
		args = append(args, perPage, (page-1)*perPage)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	out, err := scanAlertRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Dashboard aggregates the landing-page summary in one call.
func (s *SQLiteStore) Dashboard() (*DashboardData, error) {
	d := &DashboardData{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM stocks").Scan(&d.TotalStocks); err != nil {
		return nil, fmt.Errorf("count stocks: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM alerts WHERE alert_type = 'BUY'").Scan(&d.BuyAlerts); err != nil {
		return nil, fmt.Errorf("count buy alerts: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM alerts WHERE alert_type = 'SELL'").Scan(&d.SellAlerts); err != nil {
		return nil, fmt.Errorf("count sell alerts: %w", err)
	}

	var err error
	if d.RecentAlerts, err = s.topAlerts("", "created_at DESC, id DESC", 10); err != nil {
		return nil, err
	}
	if d.TopBuy, err = s.topAlerts("BUY", "strength DESC, symbol ASC", 5); err != nil {
		return nil, err
	}
	if d.TopSell, err = s.topAlerts("SELL", "strength DESC, symbol ASC", 5); err != nil {
		return nil, err
	}
	if d.LastScan, err = s.LastScan(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SQLiteStore) topAlerts(alertType, order string, limit int) ([]AlertRow, error) {
	where, args := "1=1", []interface{}{}
	if alertType != "" {
		where = "alert_type = ?"
		args = append(args, alertType)
	}
	rows, err := s.db.Query(
		`SELECT id, symbol, alert_type, signal_date, current_close, current_open, prev_open, prev_close, strength, reason, created_at
		 FROM alerts WHERE `+where+` ORDER BY `+order+` LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("query top alerts: %w", err)
	}
	defer rows.Close()
	return scanAlertRows(rows)
}

// LastScan returns the most recent scan row, or nil if none exists.
func (s *SQLiteStore) LastScan() (*ScanRow, error) {
	var r ScanRow
	var created int64
	err := s.db.QueryRow(
		`SELECT id, scan_type, total_stocks, buy_signals, sell_signals, errors, duration_seconds, created_at
		 FROM scan_history ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&r.ID, &r.ScanType, &r.TotalStocks, &r.BuySignals, &r.SellSignals, &r.Errors, &r.DurationSeconds, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last scan: %w", err)
	}
	r.CreatedAt = time.Unix(created, 0).UTC()
	return &r, nil
}

// GetSettings returns all settings as a key/value map.
func (s *SQLiteStore) GetSettings() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// PutSettings upserts the given settings.
func (s *SQLiteStore) PutSettings(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	for k, v := range values {
		_, err := s.db.Exec(`INSERT INTO settings (key, value, updated_at) VALUES (?,?,?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now,
		)
		if err != nil {
			return fmt.Errorf("upsert setting %s: %w", k, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func scanAlertRows(rows *sql.Rows) ([]AlertRow, error) {
	var out []AlertRow
	for rows.Next() {
		var r AlertRow
		var sigDate, created int64
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Type, &sigDate, &r.CurrentClose, &r.CurrentOpen,
			&r.PrevOpen, &r.PrevClose, &r.Strength, &r.Reason, &created); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		r.SignalDate = time.Unix(sigDate, 0).UTC()
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	return page, perPage
}
