package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dtnitsch/linkcheck/models"
)

// InsertURL returns the ID for a URL, creating the row on first
// sight. Duplicate URLs share one ID.
func (db *DB) InsertURL(rawURL string) (int64, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL %q: %w", rawURL, err)
	}

	_, err = db.Exec(
		`INSERT INTO urls (url, scheme, host) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		rawURL, parsed.Scheme, parsed.Hostname(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert URL: %w", err)
	}

	var id int64
	if err := db.QueryRow("SELECT url_id FROM urls WHERE url = ?", rawURL).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up URL ID: %w", err)
	}
	return id, nil
}

// BeginRun opens a run row and returns its ID.
func (db *DB) BeginRun() (int64, error) {
	result, err := db.Exec("INSERT INTO runs DEFAULT VALUES")
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun stamps the run's end time and counters.
func (db *DB) FinishRun(runID int64, total, successful, failed, excluded, cached int) error {
	_, err := db.Exec(
		`UPDATE runs SET finished_at = ?, total = ?, successful = ?, failed = ?, excluded = ?, cached = ?
		 WHERE run_id = ?`,
		time.Now(), total, successful, failed, excluded, cached, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordCheck stores one verdict under a run.
func (db *DB) RecordCheck(runID int64, resp models.Response) error {
	urlID, err := db.InsertURL(resp.URL)
	if err != nil {
		return err
	}
	var code interface{}
	if resp.Status.Code > 0 {
		code = resp.Status.Code
	}
	var errKind interface{}
	if resp.Status.Err != "" {
		errKind = string(resp.Status.Err)
	}
	_, err = db.Exec(
		`INSERT INTO checks (run_id, url_id, source, status, code, error) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, urlID, resp.Source, resp.Status.Label(), code, errKind,
	)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}
	return nil
}

// Run is one pipeline invocation's summary row.
type Run struct {
	RunID      int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Total      int
	Successful int
	Failed     int
	Excluded   int
	Cached     int
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT run_id, started_at, finished_at, total, successful, failed, excluded, cached
		 FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Successful, &r.Failed, &r.Excluded, &r.Cached); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CheckRecord is one historical verdict row.
type CheckRecord struct {
	URL       string
	Source    string
	Status    string
	Code      int
	Error     string
	CheckedAt time.Time
}

// RunChecks returns the verdicts recorded under a run.
func (db *DB) RunChecks(runID int64) ([]CheckRecord, error) {
	rows, err := db.Query(
		`SELECT u.url, c.source, c.status, COALESCE(c.code, 0), COALESCE(c.error, ''), c.checked_at
		 FROM checks c JOIN urls u ON u.url_id = c.url_id
		 WHERE c.run_id = ? ORDER BY c.check_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run checks: %w", err)
	}
	defer rows.Close()

	var records []CheckRecord
	for rows.Next() {
		var rec CheckRecord
		if err := rows.Scan(&rec.URL, &rec.Source, &rec.Status, &rec.Code, &rec.Error, &rec.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LastStatus returns the most recent verdict for a URL across runs,
// or ok=false when the URL has never been checked.
func (db *DB) LastStatus(rawURL string) (CheckRecord, bool, error) {
	var rec CheckRecord
	err := db.QueryRow(
		`SELECT u.url, c.source, c.status, COALESCE(c.code, 0), COALESCE(c.error, ''), c.checked_at
		 FROM checks c JOIN urls u ON u.url_id = c.url_id
		 WHERE u.url = ? ORDER BY c.check_id DESC LIMIT 1`,
		rawURL,
	).Scan(&rec.URL, &rec.Source, &rec.Status, &rec.Code, &rec.Error, &rec.CheckedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CheckRecord{}, false, nil
		}
		return CheckRecord{}, false, err
	}
	return rec, true, nil
}
