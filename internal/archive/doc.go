// Package archive owns the on-disk run directory: where a mapping run
// stores its site map and page artifacts, and how the offline scanner reads
// them back.
//
// Layout of one run directory:
//
//	<data-dir>/<run-id>/
//	  map/
//	    mapping.json              site map, flushed after every page
//	    extraction_results.json   findings, written by scan-archive
//	    pages/
//	      0.html  0.png           artifacts named by visit index
//	      1.html  ...
//
// All paths stored inside mapping.json are relative to the run directory,
// so an archive can be moved or copied and scanned elsewhere.
//
// mapping.json and extraction_results.json are written atomically
// (write-new-then-rename), so a reader never observes a torn file even if
// the crawler dies mid-run.
package archive
