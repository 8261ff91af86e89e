package console

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/panyam/sigplot/core"
)

// SampleArchive persists appended samples in DuckDB so data that slides
// out of the in-memory window survives for later inspection
type SampleArchive struct {
	mu         sync.RWMutex
	db         *sql.DB
	dbPath     string
	insertStmt *sql.Stmt
}

// NewSampleArchive creates a new DuckDB-backed sample archive
func NewSampleArchive(dataDir string) (*SampleArchive, error) {
	if dataDir == "" {
		dataDir = "/tmp/sigplot"
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	dbPath := filepath.Join(dataDir, "samples.duckdb")

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB at %s: %w", dbPath, err)
	}

	// DuckDB works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	archive := &SampleArchive{
		db:     db,
		dbPath: dbPath,
	}

	if err := archive.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := archive.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return archive, nil
}

// initSchema creates the time-series optimized schema
func (a *SampleArchive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		ts TIMESTAMP,        -- Sample timestamp
		session_id VARCHAR,  -- Session the sample arrived through
		signal VARCHAR,      -- Signal name
		value DOUBLE         -- Raw sample value
	);

	CREATE INDEX IF NOT EXISTS idx_signal_time ON samples(signal, ts);
	CREATE INDEX IF NOT EXISTS idx_session_time ON samples(session_id, ts);
	`

	_, err := a.db.Exec(schema)
	return err
}

func (a *SampleArchive) prepareStatements() error {
	insertSQL := `
	INSERT INTO samples (ts, session_id, signal, value)
	VALUES (?, ?, ?, ?)
	`

	stmt, err := a.db.Prepare(insertSQL)
	if err != nil {
		return err
	}

	a.insertStmt = stmt
	return nil
}

// Record stores a whole batch.  The batch is written in one transaction
// so a half-archived append cannot occur.
func (a *SampleArchive) Record(sessionID string, batch map[string][]core.Sample) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive batch: %w", err)
	}

	stmt := tx.Stmt(a.insertStmt)
	for signal, samples := range batch {
		for _, s := range samples {
			ts := time.UnixMilli(s.TimestampMs).UTC()
			if _, err := stmt.Exec(ts, sessionID, signal, s.Value); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to archive sample for %s: %w", signal, err)
			}
		}
	}

	return tx.Commit()
}

// Query retrieves archived samples for one signal from a given time on
func (a *SampleArchive) Query(signal string, sinceMs int64) ([]core.Sample, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	query := `
	SELECT ts, value
	FROM samples
	WHERE signal = ? AND ts >= ?
	ORDER BY ts
	`

	rows, err := a.db.Query(query, signal, time.UnixMilli(sinceMs).UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query archived samples: %w", err)
	}
	defer rows.Close()

	var samples []core.Sample
	for rows.Next() {
		var ts time.Time
		var value float64
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		samples = append(samples, core.Sample{TimestampMs: ts.UnixMilli(), Value: value})
	}

	return samples, rows.Err()
}

// SampleBucket represents aggregated values for one time bucket
type SampleBucket struct {
	BucketMs int64   `json:"bucketMs"` // Bucket start in epoch milliseconds
	Avg      float64 `json:"avg"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Count    int64   `json:"count"`
}

// QueryBuckets returns bucketed aggregations for one signal, for views
// far wider than the live window
func (a *SampleArchive) QueryBuckets(signal string, sinceMs int64, bucketMs int64) ([]SampleBucket, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if bucketMs <= 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %d", bucketMs)
	}

	query := `
	SELECT
		time_bucket(INTERVAL '%d milliseconds', ts) as bucket,
		avg(value) as avg_value,
		min(value) as min_value,
		max(value) as max_value,
		count(*) as sample_count
	FROM samples
	WHERE signal = ? AND ts >= ?
	GROUP BY bucket
	ORDER BY bucket
	`

	formattedQuery := fmt.Sprintf(query, bucketMs)
	rows, err := a.db.Query(formattedQuery, signal, time.UnixMilli(sinceMs).UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []SampleBucket
	for rows.Next() {
		var b SampleBucket
		var bucket time.Time
		if err := rows.Scan(&bucket, &b.Avg, &b.Min, &b.Max, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}
		b.BucketMs = bucket.UnixMilli()
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// SignalArchiveStat summarizes one signal's archived samples
type SignalArchiveStat struct {
	Signal   string `json:"signal"`
	Samples  int64  `json:"samples"`
	LatestMs int64  `json:"latestMs"`
}

// ArchiveSummary reports what the archive holds
type ArchiveSummary struct {
	TotalSamples int64               `json:"totalSamples"`
	Signals      int64               `json:"signals"`
	Sessions     int64               `json:"sessions"`
	EarliestMs   int64               `json:"earliestMs,omitempty"`
	LatestMs     int64               `json:"latestMs,omitempty"`
	Path         string              `json:"path"`
	PerSignal    []SignalArchiveStat `json:"perSignal"`
}

// Summary returns archive-wide statistics
func (a *SampleArchive) Summary() (ArchiveSummary, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	summary := ArchiveSummary{Path: a.dbPath}

	query := `
	SELECT
		count(*) as total_samples,
		count(DISTINCT signal) as unique_signals,
		count(DISTINCT session_id) as unique_sessions,
		min(ts) as earliest,
		max(ts) as latest
	FROM samples
	`

	var earliest, latest sql.NullTime
	row := a.db.QueryRow(query)
	if err := row.Scan(&summary.TotalSamples, &summary.Signals, &summary.Sessions, &earliest, &latest); err != nil {
		return summary, fmt.Errorf("failed to get archive stats: %w", err)
	}
	if earliest.Valid {
		summary.EarliestMs = earliest.Time.UnixMilli()
	}
	if latest.Valid {
		summary.LatestMs = latest.Time.UnixMilli()
	}

	perSignal := `
	SELECT signal, count(*) as samples, max(ts) as latest
	FROM samples
	GROUP BY signal
	ORDER BY signal
	`

	rows, err := a.db.Query(perSignal)
	if err != nil {
		return summary, fmt.Errorf("failed to get per-signal stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat SignalArchiveStat
		var latest time.Time
		if err := rows.Scan(&stat.Signal, &stat.Samples, &latest); err != nil {
			return summary, fmt.Errorf("failed to scan signal stats: %w", err)
		}
		stat.LatestMs = latest.UnixMilli()
		summary.PerSignal = append(summary.PerSignal, stat)
	}

	return summary, rows.Err()
}

// Close closes the database connection and cleans up resources
func (a *SampleArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.insertStmt != nil {
		a.insertStmt.Close()
	}

	return a.db.Close()
}
