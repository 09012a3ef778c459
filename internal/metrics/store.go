// Package metrics records request and feedback events in SQLite and
// aggregates them for the backoffice dashboard.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists usage events in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the metrics database at the given path.
// Sets WAL mode and creates the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating metrics directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening metrics database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running metrics migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS requests (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ip         TEXT NOT NULL,
			endpoint   TEXT NOT NULL,
			case_id    INTEGER,
			timestamp  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_ip ON requests(ip)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ip         TEXT NOT NULL,
			case_id    INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			vote       INTEGER NOT NULL,
			timestamp  TEXT NOT NULL,
			UNIQUE(case_id, session_id)
		)`,
	}
	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// LogRequest records one API request. caseID is nil for endpoints that
// are not case invocations.
func (s *Store) LogRequest(ctx context.Context, ip, endpoint string, caseID *int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (ip, endpoint, case_id, timestamp) VALUES (?, ?, ?, ?)`,
		ip, endpoint, caseID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

// SaveFeedback records a vote (1 or -1) for a case within a session.
// A repeated vote from the same session replaces the earlier one.
func (s *Store) SaveFeedback(ctx context.Context, ip string, caseID int, sessionID string, vote int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (ip, case_id, session_id, vote, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(case_id, session_id) DO UPDATE SET
			vote = excluded.vote,
			ip = excluded.ip,
			timestamp = excluded.timestamp`,
		ip, caseID, sessionID, vote, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}
	return nil
}

// IPStat is the request count for one client address.
type IPStat struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// CaseStat aggregates requests and votes for one case. PctPositive is
// nil when the case has no votes yet.
type CaseStat struct {
	CaseID      int      `json:"case_id"`
	Requests    int      `json:"requests"`
	Positive    int      `json:"positive"`
	Negative    int      `json:"negative"`
	PctPositive *float64 `json:"pct_positive"`
}

// DayStat is the request count for one calendar day.
type DayStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the aggregated dashboard view.
type Summary struct {
	TotalRequests    int        `json:"total_requests"`
	UniqueIPs        int        `json:"unique_ips"`
	IPStats          []IPStat   `json:"ip_stats"`
	CaseStats        []CaseStat `json:"case_stats"`
	Timeline         []DayStat  `json:"timeline"`
	TotalPositivePct *float64   `json:"total_positive_pct"`
}

// Summarize computes the dashboard aggregates: totals, the most active
// client addresses, per-case vote shares and a 30-day request timeline.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT ip) FROM requests`)
	if err := row.Scan(&sum.TotalRequests, &sum.UniqueIPs); err != nil {
		return nil, fmt.Errorf("counting requests: %w", err)
	}

	ipStats, err := s.ipStats(ctx, 20)
	if err != nil {
		return nil, err
	}
	sum.IPStats = ipStats

	caseStats, err := s.caseStats(ctx)
	if err != nil {
		return nil, err
	}
	sum.CaseStats = caseStats

	timeline, err := s.timeline(ctx, 30)
	if err != nil {
		return nil, err
	}
	sum.Timeline = timeline

	totalPct, err := s.totalPositivePct(ctx)
	if err != nil {
		return nil, err
	}
	sum.TotalPositivePct = totalPct

	return sum, nil
}

func (s *Store) ipStats(ctx context.Context, limit int) ([]IPStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ip, COUNT(*) AS cnt FROM requests GROUP BY ip ORDER BY cnt DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ip stats: %w", err)
	}
	defer rows.Close()

	stats := []IPStat{}
	for rows.Next() {
		var st IPStat
		if err := rows.Scan(&st.IP, &st.Count); err != nil {
			return nil, fmt.Errorf("scanning ip stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *Store) caseStats(ctx context.Context) ([]CaseStat, error) {
	requests := map[int]int{}
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, COUNT(*) FROM requests WHERE case_id IS NOT NULL GROUP BY case_id`)
	if err != nil {
		return nil, fmt.Errorf("counting case requests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning case requests: %w", err)
		}
		requests[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	positive := map[int]int{}
	negative := map[int]int{}
	voteRows, err := s.db.QueryContext(ctx,
		`SELECT case_id,
			SUM(CASE WHEN vote = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN vote = -1 THEN 1 ELSE 0 END)
		FROM feedback GROUP BY case_id`)
	if err != nil {
		return nil, fmt.Errorf("counting feedback: %w", err)
	}
	defer voteRows.Close()
	for voteRows.Next() {
		var id, pos, neg int
		if err := voteRows.Scan(&id, &pos, &neg); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		positive[id] = pos
		negative[id] = neg
	}
	if err := voteRows.Err(); err != nil {
		return nil, err
	}

	stats := make([]CaseStat, 0, 7)
	for id := 1; id <= 7; id++ {
		st := CaseStat{
			CaseID:   id,
			Requests: requests[id],
			Positive: positive[id],
			Negative: negative[id],
		}
		if votes := st.Positive + st.Negative; votes > 0 {
			pct := roundPct(float64(st.Positive) / float64(votes) * 100)
			st.PctPositive = &pct
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *Store) timeline(ctx context.Context, days int) ([]DayStat, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(timestamp, 1, 10) AS date, COUNT(*)
		FROM requests WHERE timestamp >= ?
		GROUP BY date ORDER BY date`, since)
	if err != nil {
		return nil, fmt.Errorf("building timeline: %w", err)
	}
	defer rows.Close()

	stats := []DayStat{}
	for rows.Next() {
		var st DayStat
		if err := rows.Scan(&st.Date, &st.Count); err != nil {
			return nil, fmt.Errorf("scanning timeline day: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *Store) totalPositivePct(ctx context.Context) (*float64, error) {
	var pos, total sql.NullInt64
	row := s.db.QueryRowContext(ctx,
		`SELECT SUM(CASE WHEN vote = 1 THEN 1 ELSE 0 END), COUNT(*) FROM feedback`)
	if err := row.Scan(&pos, &total); err != nil {
		return nil, fmt.Errorf("counting total feedback: %w", err)
	}
	if total.Int64 == 0 {
		return nil, nil
	}
	pct := roundPct(float64(pos.Int64) / float64(total.Int64) * 100)
	return &pct, nil
}

func roundPct(v float64) float64 {
	return math.Round(v*10) / 10
}
