// Package model defines the core data structures shared across webcrawl.
//
// The types here are plain data holders: crawled pages, downloaded images,
// run statistics, and the final run report. Behavior is limited to small
// helpers (content hashing, content-type checks, size caps) so the types
// stay usable from every layer without import cycles.
package model
