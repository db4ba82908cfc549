package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the refresh journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refresh_log (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			source         TEXT,
			numerator      TEXT,
			denominator    TEXT,
			period1        INTEGER,
			period2        INTEGER,
			granularity    TEXT,
			outcome        TEXT,
			error          TEXT,
			points_aligned INTEGER,
			days           INTEGER,
			last_ratio     REAL,
			duration_ms    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_log(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO refresh_log
		(id, timestamp, source, numerator, denominator, period1, period2, granularity,
		 outcome, error, points_aligned, days, last_ratio, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, at.Unix(), evt.Source, evt.Numerator, evt.Denominator,
		evt.From.Unix(), evt.To.Unix(), evt.Granularity,
		evt.Outcome, evt.Error, evt.PointsAligned, evt.Days, evt.LastRatio,
		evt.Duration.Milliseconds(),
	)
	return err
}

// Recent returns the newest events first.
func (r *SQLiteRecorder) Recent(limit int) ([]RefreshEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, timestamp, source, numerator, denominator, period1, period2,
		granularity, outcome, error, points_aligned, days, last_ratio, duration_ms
		FROM refresh_log ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query refresh log: %w", err)
	}
	defer rows.Close()

	var out []RefreshEvent
	for rows.Next() {
		var (
			e                 RefreshEvent
			ts, p1, p2, durMs int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Source, &e.Numerator, &e.Denominator, &p1, &p2,
			&e.Granularity, &e.Outcome, &e.Error, &e.PointsAligned, &e.Days, &e.LastRatio, &durMs); err != nil {
			return nil, fmt.Errorf("scan refresh log: %w", err)
		}
		e.At = time.Unix(ts, 0)
		e.From = time.Unix(p1, 0)
		e.To = time.Unix(p2, 0)
		e.Duration = time.Duration(durMs) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
