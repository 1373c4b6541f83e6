// Package model defines the core data structures shared across portalscan:
// the site map produced by the archival crawler, the per-page snapshot
// entries it contains, and the findings emitted by the offline extraction
// engine.
//
// These structures define the on-disk contract between the two phases of
// the pipeline (record now, extract later), so their JSON shapes are part
// of the public interface and must remain stable.
package model
