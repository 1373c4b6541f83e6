// Package report renders archive-scan results for humans and tools:
// plain text for the terminal, JSON for integration, and Markdown for
// sharing.
//
// The extraction_results.json written into the run directory remains the
// canonical machine output; the writers here are presentation only and
// never feed back into the archive.
package report
