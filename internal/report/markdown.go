package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
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

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFindings(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *ScanReport) {
	md.H1("Portalscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Start URL", report.StartURL},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Crawl Status", w.statusText(report)},
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Pages Archived", strconv.Itoa(report.PagesSucceeded)},
			{"Pages Failed", strconv.Itoa(report.PagesFailed)},
		},
	})
	md.PlainText("")
}

// statusText renders the crawl status with a severity marker.
func (w *MarkdownWriter) statusText(report *ScanReport) string {
	switch report.Status {
	case "complete":
		return "✅ Complete"
	case "partial":
		return "⚠️ Partial (page budget reached)"
	case "aborted":
		return "⚠️ Aborted"
	default:
		return "❌ " + string(report.Status)
	}
}

// writeSummary writes the per-detector summary with a distribution chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *ScanReport) {
	md.H2("Findings Summary")
	md.PlainText("")

	if !report.HasFindings() {
		md.Tip("No payment identifiers were detected in this archive.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Detectors())+1)
	for _, detector := range report.Detectors() {
		rows = append(rows, []string{detector, strconv.Itoa(len(report.FindingsFor(detector)))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(report.Findings)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Detector", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report)

	md.Importantf(
		"%d payment identifier(s) were extracted from %d archived page(s). Review each value before acting on it.",
		len(report.Findings), report.PagesSucceeded,
	)
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for detector distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *ScanReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Detector"),
		piechart.WithShowData(true),
	)

	for _, detector := range report.Detectors() {
		chart.LabelAndIntValue(detector, uint64(len(report.FindingsFor(detector))))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFindings writes all findings grouped by detector.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *ScanReport) {
	md.H2("Findings")
	md.PlainText("")

	if !report.HasFindings() {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	for _, detector := range report.Detectors() {
		findings := report.FindingsFor(detector)

		md.PlainText("### " + detector)
		md.PlainText("")

		rows := make([][]string, len(findings))
		for i, f := range findings {
			rows[i] = []string{
				"`" + truncateString(f.Value, 50) + "`",
				truncateString(f.SourceURL, 60),
				truncateString(f.Context, 80),
			}
		}

		md.Table(markdown.TableSet{
			Header: []string{"Value", "Source", "Context"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// truncateString shortens a string to maxLen, adding an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
