package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/webcrawl/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.SeedURL + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.String()},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")

	md.H2("Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(report.Stats.PagesCrawled)},
			{"Texts saved", strconv.Itoa(report.Stats.TextsSaved)},
			{"Images downloaded", strconv.Itoa(report.Stats.ImagesDownloaded)},
			{"Errors", strconv.Itoa(report.Stats.Errors)},
		},
	})
	md.PlainText("")

	if report.Stats.Errors > 0 {
		md.Warningf("%d error(s) occurred during the crawl. Some pages may be missing.", report.Stats.Errors)
		md.PlainText("")
	} else {
		md.Tip("The crawl completed without errors.")
		md.PlainText("")
	}

	if report.StorageDir != "" {
		md.H2("Storage")
		md.PlainText("")
		md.PlainTextf("Texts and images were saved under `%s`.", report.StorageDir)
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webcrawl](https://github.com/nao1215/webcrawl)*")

	return len(md.String()), md.Build()
}

// statusText returns the status text based on report state.
func (w *MarkdownWriter) statusText(report *model.RunReport) string {
	if report.Interrupted {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Complete"
}
