package model

// CrawlStats accumulates counters over one crawl run.
// All counters grow monotonically and are read once at the end of the run.
//
// Design decision: The stats are owned and mutated only by the single
// orchestrator goroutine. Image workers report their outcomes back to the
// orchestrator, which folds them in after the per-page barrier, so no
// locking is needed here.
type CrawlStats struct {
	// PagesCrawled is the number of pages successfully fetched and parsed.
	PagesCrawled int `json:"pages_crawled"`

	// TextsSaved is the number of text files persisted. It is incremented
	// for every successfully extracted page, even when the text is empty.
	TextsSaved int `json:"texts_saved"`

	// ImagesDownloaded is the number of unique images persisted.
	// Duplicate content (by hash) is not counted.
	ImagesDownloaded int `json:"images_downloaded"`

	// Errors is the number of per-URL failures: network errors, non-2xx
	// page responses, timeouts, and unparseable pages. Rejected image
	// downloads are not errors.
	Errors int `json:"errors"`
}
