package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webcrawl/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl runs, pages, and
// images. It manages connection pooling and schema creation.
//
// Design decision: We use a single database file across runs rather than
// one file per run. Cross-run queries (history, dedup analysis) stay
// simple, and SQLite handles the volume easily at crawl scale.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended: image workers insert records while the
	// history command may be reading.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB under dbDir.
// With CreateIfNotExists the directory and database file are created as
// needed; without it, a missing database is an error.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "webcrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single pooled connection avoids
	// SQLITE_BUSY churn from concurrent image workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run with its final statistics
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		pages_crawled INTEGER NOT NULL DEFAULT 0,
		texts_saved INTEGER NOT NULL DEFAULT 0,
		images_downloaded INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		storage_dir TEXT,
		interrupted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per crawled page; re-crawling a URL for the same seed
	-- refreshes the row
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		depth INTEGER NOT NULL DEFAULT 0,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		content_hash TEXT,
		text_path TEXT,
		UNIQUE(url, seed_url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_seed ON pages(seed_url);

	-- One row per persisted image
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		page_url TEXT NOT NULL,
		seed_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		content_hash TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		stored_path TEXT,
		exif_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_images_hash ON images(content_hash);
	CREATE INDEX IF NOT EXISTS idx_images_seed ON images(seed_url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is one row of the runs table, as listed by the history
// command.
type RunSummary struct {
	ID          int64
	SeedURL     string
	StartedAt   time.Time
	Elapsed     time.Duration
	Stats       model.CrawlStats
	StorageDir  string
	Interrupted bool
}

// InsertRun appends a run summary row and returns its ID.
func (cdb *CrawlDB) InsertRun(ctx context.Context, report *model.RunReport) (int64, error) {
	query := `
	INSERT INTO runs (seed_url, started_at, elapsed_ms, pages_crawled, texts_saved, images_downloaded, errors, storage_dir, interrupted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	interrupted := 0
	if report.Interrupted {
		interrupted = 1
	}

	result, err := cdb.db.ExecContext(ctx, query,
		report.SeedURL,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Elapsed.Milliseconds(),
		report.Stats.PagesCrawled,
		report.Stats.TextsSaved,
		report.Stats.ImagesDownloaded,
		report.Stats.Errors,
		report.StorageDir,
		interrupted,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// ListRuns returns run summaries, newest first. An empty seedURL lists
// runs for every seed.
func (cdb *CrawlDB) ListRuns(ctx context.Context, seedURL string) ([]RunSummary, error) {
	query := `
	SELECT id, seed_url, started_at, elapsed_ms, pages_crawled, texts_saved, images_downloaded, errors, storage_dir, interrupted
	FROM runs
	`
	args := make([]any, 0, 1)
	if seedURL != "" {
		query += " WHERE seed_url = ?"
		args = append(args, seedURL)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var rs RunSummary
		var startedAt string
		var elapsedMS int64
		var interrupted int

		err := rows.Scan(
			&rs.ID,
			&rs.SeedURL,
			&startedAt,
			&elapsedMS,
			&rs.Stats.PagesCrawled,
			&rs.Stats.TextsSaved,
			&rs.Stats.ImagesDownloaded,
			&rs.Stats.Errors,
			&rs.StorageDir,
			&interrupted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rs.StartedAt = parseTimestamp(startedAt)
		rs.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		rs.Interrupted = interrupted != 0
		results = append(results, rs)
	}

	return results, rows.Err()
}

// PageRecord represents a stored page row.
type PageRecord struct {
	ID          int64
	URL         string
	SeedURL     string
	Timestamp   time.Time
	Depth       int
	StatusCode  int
	ContentType string
	Title       string
	ContentHash string
	TextPath    string
}

// InsertPageRecord inserts or refreshes a page record.
// Uses UPSERT keyed on (url, seed_url).
func (cdb *CrawlDB) InsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, seed_url, depth, status_code, content_type, title, content_hash, text_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, seed_url) DO UPDATE SET
		depth = excluded.depth,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		content_hash = excluded.content_hash,
		text_path = excluded.text_path,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := cdb.db.ExecContext(ctx, query,
		record.URL,
		record.SeedURL,
		record.Depth,
		record.StatusCode,
		record.ContentType,
		record.Title,
		record.ContentHash,
		record.TextPath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by URL and seed.
// Returns (nil, nil) when no record exists.
func (cdb *CrawlDB) GetPageRecord(ctx context.Context, url, seedURL string) (*PageRecord, error) {
	query := `
	SELECT id, url, seed_url, timestamp, depth, status_code, content_type, title, content_hash, text_path
	FROM pages
	WHERE url = ? AND seed_url = ?
	`

	var record PageRecord
	var timestamp string

	err := cdb.db.QueryRowContext(ctx, query, url, seedURL).Scan(
		&record.ID,
		&record.URL,
		&record.SeedURL,
		&timestamp,
		&record.Depth,
		&record.StatusCode,
		&record.ContentType,
		&record.Title,
		&record.ContentHash,
		&record.TextPath,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	return &record, nil
}

// ImageRecord represents a stored image row.
type ImageRecord struct {
	ID          int64
	URL         string
	PageURL     string
	SeedURL     string
	Timestamp   time.Time
	ContentHash string
	Size        int64
	StoredPath  string
	EXIFSummary string
}

// InsertImageRecord inserts a new image record.
func (cdb *CrawlDB) InsertImageRecord(ctx context.Context, record *ImageRecord) (int64, error) {
	query := `
	INSERT INTO images (url, page_url, seed_url, content_hash, size, stored_path, exif_summary)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		record.URL,
		record.PageURL,
		record.SeedURL,
		record.ContentHash,
		record.Size,
		record.StoredPath,
		record.EXIFSummary,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image record: %w", err)
	}

	return result.LastInsertId()
}

// ListImagesByHash returns the image records sharing a content hash,
// oldest first. Useful for spotting the same asset served from many
// URLs.
func (cdb *CrawlDB) ListImagesByHash(ctx context.Context, hash string) ([]ImageRecord, error) {
	query := `
	SELECT id, url, page_url, seed_url, timestamp, content_hash, size, stored_path, exif_summary
	FROM images
	WHERE content_hash = ?
	ORDER BY timestamp ASC, id ASC
	`

	rows, err := cdb.db.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var results []ImageRecord
	for rows.Next() {
		var rec ImageRecord
		var timestamp string

		err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&rec.PageURL,
			&rec.SeedURL,
			&timestamp,
			&rec.ContentHash,
			&rec.Size,
			&rec.StoredPath,
			&rec.EXIFSummary,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}

		rec.Timestamp = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// Recorder returns a run-scoped recorder binding records to seedURL.
// It satisfies the crawler's Recorder interface.
func (cdb *CrawlDB) Recorder(seedURL string) *RunRecorder {
	return &RunRecorder{db: cdb, seedURL: seedURL}
}

// RunRecorder records pages and images for one crawl run.
type RunRecorder struct {
	db      *CrawlDB
	seedURL string
}

// RecordPage stores one crawled page.
func (r *RunRecorder) RecordPage(ctx context.Context, page *model.Page, textPath string) error {
	_, err := r.db.InsertPageRecord(ctx, &PageRecord{
		URL:         page.URL,
		SeedURL:     r.seedURL,
		Depth:       page.Depth,
		StatusCode:  page.StatusCode,
		ContentType: page.ContentType,
		Title:       page.Title,
		ContentHash: page.Hash,
		TextPath:    textPath,
	})
	return err
}

// RecordImage stores one persisted image.
func (r *RunRecorder) RecordImage(ctx context.Context, img *model.Image, exifSummary string) error {
	_, err := r.db.InsertImageRecord(ctx, &ImageRecord{
		URL:         img.URL,
		PageURL:     img.PageURL,
		SeedURL:     r.seedURL,
		ContentHash: img.Hash,
		Size:        int64(len(img.Data)),
		StoredPath:  img.StoredPath,
		EXIFSummary: exifSummary,
	})
	return err
}

// timestampFormats contains the timestamp formats SQLite may return.
// The order matters: more specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats, returning zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
