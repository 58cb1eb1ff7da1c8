package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webcrawl/internal/imagemeta"
	"github.com/nao1215/webcrawl/internal/model"
)

// ImageDownloader fetches the images referenced by a page with bounded
// concurrency and deduplicates them by content hash across the run.
//
// Design decision: Deduplication is keyed on the image bytes, not the
// URL. The same logo served from three different URLs is stored once;
// two URLs serving different bytes are stored twice.
type ImageDownloader struct {
	// fetcher performs the image GETs with the same timeout and user
	// agent as page fetches.
	fetcher *Fetcher

	// storage persists accepted image bytes.
	storage Storage

	// recorder receives a record per persisted image. May be nil.
	recorder Recorder

	// logger is used for per-image progress and rejection output.
	logger *slog.Logger

	// workers bounds the number of concurrent image fetches per page.
	workers int

	// seen is the run-scoped set of image content hashes.
	// Guarded by mu: the check-and-insert is a single critical section
	// so two workers can never both persist identical bytes.
	mu   sync.Mutex
	seen map[string]bool
}

// NewImageDownloader creates an ImageDownloader for one crawl run.
// The hash set it owns lives exactly as long as the run.
func NewImageDownloader(fetcher *Fetcher, storage Storage, workers int, logger *slog.Logger, recorder Recorder) *ImageDownloader {
	if workers <= 0 {
		workers = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageDownloader{
		fetcher:  fetcher,
		storage:  storage,
		recorder: recorder,
		logger:   logger,
		workers:  workers,
		seen:     make(map[string]bool),
	}
}

// downloadOutcome is what one worker reports back for one image URL.
type downloadOutcome struct {
	url       string
	saved     bool
	duplicate bool
}

// DownloadAll fetches every URL in imageURLs and returns the number of
// images persisted. The call blocks until every worker for this page has
// finished; no image fetch outlives the page that referenced it.
//
// Design decision: Workers report outcomes through a channel drained
// after the pool barrier rather than mutating shared counters. Only the
// hash set needs a lock, and only for its check-and-insert.
func (d *ImageDownloader) DownloadAll(ctx context.Context, pageURL string, imageURLs []string) int {
	if len(imageURLs) == 0 {
		return 0
	}

	results := make(chan downloadOutcome, len(imageURLs))

	g := &errgroup.Group{}
	g.SetLimit(d.workers)
	for _, imgURL := range imageURLs {
		imgURL := imgURL
		g.Go(func() error {
			results <- d.download(ctx, pageURL, imgURL)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors
	close(results)

	saved := 0
	for outcome := range results {
		if outcome.saved {
			saved++
		}
	}
	return saved
}

// download fetches, validates, deduplicates, and persists one image.
// Every failure mode is non-fatal: a rejected or failed image is skipped
// and the crawl moves on.
func (d *ImageDownloader) download(ctx context.Context, pageURL, imgURL string) downloadOutcome {
	resp, err := d.fetcher.Fetch(ctx, imgURL)
	if err != nil {
		d.logger.Debug("image fetch failed", "url", imgURL, "error", err)
		return downloadOutcome{url: imgURL}
	}

	img := &model.Image{
		URL:         imgURL,
		PageURL:     pageURL,
		ContentType: resp.ContentType,
		Data:        resp.Raw,
	}

	if !resp.OK() || !img.IsImage() {
		d.logger.Debug("image rejected",
			"url", imgURL,
			"status", resp.StatusCode,
			"contentType", resp.ContentType,
		)
		return downloadOutcome{url: imgURL}
	}

	img.ComputeHash()

	d.mu.Lock()
	if d.seen[img.Hash] {
		d.mu.Unlock()
		d.logger.Debug("skipping duplicate image", "url", imgURL, "hash", img.Hash)
		return downloadOutcome{url: imgURL, duplicate: true}
	}
	d.seen[img.Hash] = true
	d.mu.Unlock()

	path, err := d.storage.SaveImage(imgURL, time.Now(), img.Data)
	if err != nil {
		// Release the hash so identical bytes from another URL can still
		// be persisted later in the run.
		d.mu.Lock()
		delete(d.seen, img.Hash)
		d.mu.Unlock()
		d.logger.Warn("failed to save image", "url", imgURL, "error", err)
		return downloadOutcome{url: imgURL}
	}
	img.StoredPath = path

	var metaSummary string
	if meta, err := imagemeta.Extract(img.Data); err == nil {
		metaSummary = meta.String()
		d.logger.Debug("image metadata", "url", imgURL, "exif", metaSummary)
	}

	if d.recorder != nil {
		if err := d.recorder.RecordImage(ctx, img, metaSummary); err != nil {
			d.logger.Warn("failed to record image", "url", imgURL, "error", err)
		}
	}

	d.logger.Info("downloaded image", "url", imgURL, "path", path, "bytes", len(img.Data))
	return downloadOutcome{url: imgURL, saved: true}
}
