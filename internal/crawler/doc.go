// Package crawler implements the archival crawler: a bounded-frontier,
// breadth-first traversal of an authenticated web portal that records a
// durable snapshot of every page it visits.
//
// The package is organized around four pieces:
//
//   - Scope policy (scope.go): pure same-origin vs allow-external decisions
//     over normalized URLs.
//   - Link extractor (extractor.go): rendered DOM to normalized, absolute,
//     crawlable URLs.
//   - Frontier (frontier.go): the FIFO task queue and visited set that make
//     the traversal terminate and keep its order deterministic.
//   - Crawler (crawler.go): the orchestrator loop driving fetch, record,
//     and expansion, with a consecutive-failure circuit breaker.
//
// The crawl is single-threaded by design: one authenticated browser session
// is shared across all fetches, so navigations execute strictly
// sequentially and no locking is needed around the frontier state.
package crawler
