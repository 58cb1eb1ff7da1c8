// Package main provides the entry point for the webcrawl CLI.
//
// webcrawl is a bounded web crawler that stays on the seed's origin,
// saves the visible text of every page it visits, and downloads the
// images those pages reference, skipping duplicates by content hash.
//
// Usage:
//
//	webcrawl crawl <url>
//	webcrawl history
//
// See --help for all available options.
package main

// main is the entry point for webcrawl.
func main() {
	Execute()
}
