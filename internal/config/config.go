package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where applicable they mirror the CLI flag
// defaults so the zero-configuration invocation behaves predictably.
const (
	// DefaultMaxPages is the maximum number of pages to crawl per run.
	// This bounds the run even on page graphs with cycles.
	DefaultMaxPages = 10

	// DefaultMaxDepth is the maximum BFS depth from the seed URL.
	// Depth 0 is the seed page itself.
	DefaultMaxDepth = 2

	// DefaultTimeout applies to each HTTP request individually (pages and
	// images alike), not to the overall run.
	DefaultTimeout = 10 * time.Second

	// DefaultCrawlDelay is the politeness pause between successive page
	// fetches. It bounds the request rate against the target origin and
	// does not apply to the image workers within one page.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultImageWorkers is the number of concurrent image downloads per
	// page. The image phase of a page never exceeds this many requests in
	// flight.
	DefaultImageWorkers = 5

	// DefaultUserAgent identifies webcrawl in HTTP requests. A descriptive
	// User-Agent lets site operators identify crawler traffic in their logs.
	DefaultUserAgent = "webcrawl/1.0 (+https://github.com/nao1215/webcrawl)"

	// DefaultMaxBodySize limits the response body size read per request.
	// 5MB covers most HTML pages and images while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "webcrawl"
)

// Config holds all configuration options for webcrawl.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, StoreConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without benefit.
type Config struct {
	// Seeds is the list of seed URLs to crawl. Each seed is crawled as an
	// independent sequential run.
	Seeds []string

	// MaxPages bounds the number of pages dequeued and processed per run.
	MaxPages int

	// MaxDepth bounds the BFS depth. Links found on a page at MaxDepth are
	// never enqueued.
	MaxDepth int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// CrawlDelay is the pause between successive page fetches.
	CrawlDelay time.Duration

	// ImageWorkers is the image download concurrency per page.
	ImageWorkers int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// OutputDir is the base directory the run directory is created under.
	// Empty means the user's desktop (falling back to the home directory),
	// matching where users expect ad-hoc crawl output to land.
	OutputDir string

	// MatchScheme also requires the URL scheme to match the seed's when
	// filtering same-origin links. By default only the network authority
	// (host and port) is compared, so an http page may enqueue https links
	// on the same host.
	MatchScheme bool

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is an explicit path to the .webcrawl config file.
	// Empty means search the current directory and then the home directory.
	ConfigFilePath string

	// Hosts holds per-host overrides loaded from the config file.
	Hosts *File

	// JSONReport switches the run report to JSON output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport switches the run report to Markdown output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the run report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the SQLite crawl database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB controls whether pages, images, and run summaries are
	// recorded in the crawl database.
	SaveToDB bool
}

// NewConfig creates a Config populated with defaults.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. The constructor also documents what
// the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxPages:     DefaultMaxPages,
		MaxDepth:     DefaultMaxDepth,
		Timeout:      DefaultTimeout,
		CrawlDelay:   DefaultCrawlDelay,
		ImageWorkers: DefaultImageWorkers,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for webcrawl.
// On Linux: ~/.local/share/webcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DesktopDir returns the user's desktop directory, or "" when the
// platform does not define one.
func DesktopDir() string {
	return xdg.UserDirs.Desktop
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any crawling begins.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.ImageWorkers <= 0 {
		return ErrInvalidImageWorkers
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
