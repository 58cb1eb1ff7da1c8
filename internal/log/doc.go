// Package log provides the structured logger used throughout webcrawl.
//
// It wraps log/slog with a handler that truncates oversized attribute
// values. Crawl logs routinely carry page snippets, long URLs, and link
// lists; without a cap a single record can span many terminal lines and
// bury the progress output the crawl is supposed to show.
package log
