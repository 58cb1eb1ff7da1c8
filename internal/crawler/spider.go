package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/webcrawl/internal/model"
)

// Storage persists crawl artifacts. *store.Store is the production
// implementation; tests substitute in-memory fakes.
type Storage interface {
	// Root returns the run directory path.
	Root() string

	// SaveText persists extracted page text and returns the written path.
	SaveText(pageURL string, ts time.Time, text string) (string, error)

	// SaveImage persists raw image bytes and returns the written path.
	SaveImage(imgURL string, ts time.Time, data []byte) (string, error)
}

// Recorder receives crawl records for the database. A nil Recorder
// disables recording; record failures never fail the crawl.
type Recorder interface {
	// RecordPage stores one crawled page and the path its text went to.
	RecordPage(ctx context.Context, page *model.Page, textPath string) error

	// RecordImage stores one persisted image and its EXIF summary.
	RecordImage(ctx context.Context, img *model.Image, exifSummary string) error
}

// Spider crawls same-origin web pages breadth-first from a seed URL,
// persisting page text and images as it goes.
//
// It owns all run-scoped state: the frontier queue, the visited-URL set,
// the run statistics, and (through its ImageDownloader) the seen-image
// hash set. The main loop is single-threaded and strictly sequential
// across pages; a page is fully processed, images included, before the
// next is dequeued. No lock guards the visited set because only the
// orchestrator goroutine touches it.
type Spider struct {
	// fetcher retrieves pages and images.
	fetcher *Fetcher

	// storage persists text and image artifacts.
	storage Storage

	// recorder receives page records. May be nil.
	recorder Recorder

	// downloader runs the per-page image phase. Created at Crawl time so
	// its hash set is scoped to exactly one run.
	downloader *ImageDownloader

	// logger receives progress and error output.
	logger *slog.Logger

	// maxDepth limits how deep to crawl from the seed.
	// 0 means only the seed page.
	maxDepth int

	// maxPages limits the number of pages dequeued and processed.
	maxPages int

	// delay is the politeness pause between successive page fetches.
	// It never delays image workers within a page.
	delay time.Duration

	// imageWorkers bounds image download concurrency per page.
	imageWorkers int

	// matchScheme extends the same-origin check to the URL scheme.
	matchScheme bool

	// ignorePatterns are URL path patterns never enqueued.
	ignorePatterns []string

	// followPatterns, when set, restrict enqueuing to matching paths.
	followPatterns []string

	// visited tracks normalized URLs already dequeued or processed.
	// Grows monotonically; lifetime is one crawl run.
	visited map[string]bool

	// stats accumulates the run counters.
	stats model.CrawlStats
}

// crawlTarget is one frontier entry: a URL and the depth it was
// discovered at. Created on discovery, consumed exactly once on dequeue.
type crawlTarget struct {
	url   string
	depth int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed page, 1 = seed plus directly linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to process.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the politeness delay between page fetches.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithImageWorkers sets the image download concurrency per page.
func WithImageWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.imageWorkers = n
		}
	}
}

// WithSpiderMatchScheme extends the same-origin link filter to require
// matching URL schemes.
func WithSpiderMatchScheme(match bool) SpiderOption {
	return func(s *Spider) {
		s.matchScheme = match
	}
}

// WithLogger sets the logger used for progress and error output.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the database recorder for pages and images.
func WithRecorder(r Recorder) SpiderOption {
	return func(s *Spider) {
		s.recorder = r
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are enqueued.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// NewSpider creates a Spider fetching through fetcher and persisting
// through storage.
func NewSpider(fetcher *Fetcher, storage Storage, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:      fetcher,
		storage:      storage,
		logger:       slog.Default(),
		maxDepth:     2,
		maxPages:     10,
		delay:        1 * time.Second,
		imageWorkers: 5,
		visited:      make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl runs the breadth-first traversal from seedURL and returns the
// accumulated run statistics.
//
// Per-URL failures (network errors, non-2xx statuses, unparseable
// pages) are counted and skipped; they never terminate the run. An
// error return means the seed URL was invalid or the context was
// cancelled, and the stats cover whatever completed before that.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (model.CrawlStats, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return s.stats, fmt.Errorf("invalid seed URL: %w", err)
	}
	if seed.Scheme == "" {
		seed.Scheme = "http"
	}
	if seed.Scheme != "http" && seed.Scheme != "https" {
		return s.stats, fmt.Errorf("unsupported seed URL scheme %q", seed.Scheme)
	}

	// The downloader and its hash set are scoped to this run.
	s.downloader = NewImageDownloader(s.fetcher, s.storage, s.imageWorkers, s.logger, s.recorder)

	frontier := []crawlTarget{{url: seed.String(), depth: 0}}
	processed := 0

	for len(frontier) > 0 && processed < s.maxPages {
		select {
		case <-ctx.Done():
			return s.stats, ctx.Err()
		default:
		}

		item := frontier[0]
		frontier = frontier[1:]

		// Duplicate enqueues happen when two sibling pages link to the
		// same target; the dequeue-time check makes processing
		// at-most-once regardless.
		key := normalizeURL(item.url)
		if s.visited[key] {
			continue
		}
		s.visited[key] = true
		processed++

		links, ok := s.processPage(ctx, item)
		if !ok {
			continue
		}

		// Links found on a page at maxDepth are never enqueued.
		if item.depth < s.maxDepth {
			for _, link := range links {
				if !s.visited[normalizeURL(link)] && s.shouldCrawl(link) {
					frontier = append(frontier, crawlTarget{url: link, depth: item.depth + 1})
				}
			}
		}

		if s.delay > 0 && len(frontier) > 0 {
			select {
			case <-ctx.Done():
				return s.stats, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return s.stats, nil
}

// processPage fetches, extracts, and persists one page, then runs the
// image phase. It returns the same-origin links discovered on the page
// and whether the page succeeded; failed pages contribute no links and
// skip the politeness pause.
func (s *Spider) processPage(ctx context.Context, item crawlTarget) ([]string, bool) {
	s.logger.Info("crawling page", "url", item.url, "depth", item.depth)

	page, err := s.fetcher.Fetch(ctx, item.url)
	if err != nil {
		s.stats.Errors++
		s.logger.Warn("page fetch failed", "url", item.url, "error", err)
		return nil, false
	}
	if !page.OK() {
		s.stats.Errors++
		s.logger.Warn("page fetch failed", "url", item.url,
			"error", &StatusError{URL: item.url, StatusCode: page.StatusCode})
		return nil, false
	}
	if !page.IsHTML() {
		// A page URL serving non-HTML cannot be extracted; treat it the
		// same as an unparseable body.
		s.stats.Errors++
		s.logger.Warn("page is not HTML", "url", item.url, "contentType", page.ContentType)
		return nil, false
	}

	parser, err := NewParser(item.url, WithMatchScheme(s.matchScheme))
	if err != nil {
		s.stats.Errors++
		return nil, false
	}
	result, err := parser.Parse(strings.NewReader(page.Body))
	if err != nil {
		s.stats.Errors++
		s.logger.Warn("page parse failed", "url", item.url, "error", err)
		return nil, false
	}

	page.Depth = item.depth
	page.Title = result.Title
	s.stats.PagesCrawled++

	textPath, err := s.storage.SaveText(page.URL, time.Now(), result.Text)
	if err != nil {
		s.stats.Errors++
		s.logger.Warn("failed to save text", "url", item.url, "error", err)
	} else {
		s.stats.TextsSaved++
		s.logger.Info("saved text", "url", item.url, "path", filepath.Base(textPath))
	}

	if s.recorder != nil {
		if err := s.recorder.RecordPage(ctx, page, textPath); err != nil {
			s.logger.Warn("failed to record page", "url", item.url, "error", err)
		}
	}

	// Image phase: bounded fan-out, blocks until every worker for this
	// page is done.
	s.stats.ImagesDownloaded += s.downloader.DownloadAll(ctx, page.URL, result.Images)

	return result.InternalLinks, true
}

// Stats returns the statistics accumulated so far. Useful for reporting
// a partial run after an interrupt.
func (s *Spider) Stats() model.CrawlStats {
	return s.stats
}

// shouldCrawl checks a URL against the ignore/follow pattern filters.
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// normalizeURL normalizes a URL for visited-set membership.
// Fragments never change content, scheme and host are case-insensitive,
// and an empty path is the same page as "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// matchPattern checks a URL path against a glob pattern.
// Supports "/prefix/*" subtree patterns, "*.ext" extension patterns, and
// standard filepath.Match globs.
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}
