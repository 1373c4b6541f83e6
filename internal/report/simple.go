package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether detectors with no findings are shown.
	showEmpty bool

	// verbose enables context snippets in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with context snippets.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        PORTALSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:        %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Start URL:     %s\n", report.StartURL))
	sb.WriteString(fmt.Sprintf("Generated:     %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Crawl Status:  %s\n", report.Status))
	sb.WriteString(fmt.Sprintf("Pages:         %d visited, %d archived, %d failed\n",
		report.PagesVisited, report.PagesSucceeded, report.PagesFailed))
	sb.WriteString("\n")
}

// writeSummary writes the per-detector summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *ScanReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !report.HasFindings() {
		sb.WriteString("  No payment identifiers detected\n\n")
		return
	}

	for _, detector := range report.Detectors() {
		sb.WriteString(fmt.Sprintf("  %-18s %d\n", detector+":", len(report.FindingsFor(detector))))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %-18s %d\n", "TOTAL:", len(report.Findings)))
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by detector.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *ScanReport) {
	if !report.HasFindings() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, detector := range report.Detectors() {
		findings := report.FindingsFor(detector)
		sb.WriteString(fmt.Sprintf("[%s]\n", detector))
		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("  * %s\n", f.Value))
			sb.WriteString(fmt.Sprintf("    Source: %s\n", f.SourceURL))
			if w.verbose && f.Context != "" {
				sb.WriteString(fmt.Sprintf("    Context: %s\n", f.Context))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by portalscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
