package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/webcrawl/internal/model"
)

// SimpleWriter outputs a human-readable run summary.
// This is the format printed to the terminal after every crawl.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the run summary in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	sb.WriteString("CRAWL COMPLETE\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Seed URL:          %s\n", report.SeedURL))
	sb.WriteString(fmt.Sprintf("Started:           %s\n", report.StartedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Elapsed:           %s\n", report.Elapsed.Round(10*time.Millisecond)))
	if report.Interrupted {
		sb.WriteString("Status:            INTERRUPTED (partial results)\n")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Pages crawled:     %d\n", report.Stats.PagesCrawled))
	sb.WriteString(fmt.Sprintf("Texts saved:       %d\n", report.Stats.TextsSaved))
	sb.WriteString(fmt.Sprintf("Images downloaded: %d\n", report.Stats.ImagesDownloaded))
	sb.WriteString(fmt.Sprintf("Errors:            %d\n", report.Stats.Errors))
	sb.WriteString("\n")

	if report.StorageDir != "" {
		sb.WriteString(fmt.Sprintf("Data saved to:     %s\n", report.StorageDir))
	}
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}
