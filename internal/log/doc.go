// Package log provides secure logging for portalscan.
//
// A mapping run necessarily handles live credentials and an authenticated
// browser session, so every log record passes through a sanitizing slog
// handler that masks credential-like attribute keys and token-shaped values
// before they reach the underlying handler.
package log
