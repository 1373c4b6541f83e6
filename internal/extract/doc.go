// Package extract implements the offline pattern extraction engine: it
// walks the archived pages of a completed mapping run and applies a battery
// of detectors for payment identifiers (cryptocurrency addresses, IBANs,
// labeled beneficiary and bank names).
//
// Extraction is strictly read-only with respect to the archive: the engine
// reads mapping.json and the saved HTML artifacts, and its only output is
// the findings slice the caller persists to extraction_results.json.
//
// Pages are scanned concurrently, but the merged findings are ordered by
// visit index, then detector, then match position, so scanning the same
// archive twice yields byte-identical results.
package extract
