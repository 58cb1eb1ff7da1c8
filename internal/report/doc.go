// Package report renders crawl run summaries in multiple formats.
//
// The SimpleWriter produces the human-readable terminal summary printed
// after every run. JSONWriter and MarkdownWriter produce machine- and
// documentation-friendly output for the --json and --markdown flags.
// All writers implement the Writer interface so the command layer can
// combine them with MultiWriter.
package report
