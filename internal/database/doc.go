// Package database provides SQLite-backed storage for crawl history.
//
// Every run appends a summary row, and each crawled page and persisted
// image gets a record pointing at its on-disk artifact. The database is
// a catalogue over the file store, not a replacement for it: the text
// and image bytes live under the run directory, the database answers
// "what did past runs fetch, and where did it go".
package database
