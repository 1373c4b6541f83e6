// Package database provides SQLite-based storage for run history:
// one row per mapping run plus the findings of each archive scan.
//
// The history database is an index over the run directories, not a
// replacement for them: mapping.json stays the source of truth for a run,
// and the database exists so "which runs touched this portal" and "where
// did this IBAN appear before" are one query instead of a walk over every
// archive on disk.
package database
