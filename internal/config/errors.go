package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). Callers can use errors.Is()
// for programmatic handling while each message stays human-readable.
var (
	// ErrNoSeed is returned when no seed URL was provided.
	ErrNoSeed = errors.New("no seed URL specified: provide at least one URL as an argument")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when the depth bound is negative.
	// Depth 0 crawls only the seed page.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between page fetches.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidImageWorkers is returned when the image concurrency is not
	// positive. One worker degenerates to sequential downloads, which is valid.
	ErrInvalidImageWorkers = errors.New("invalid image workers: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size cap is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one report format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
