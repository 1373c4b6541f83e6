// Package main provides the entry point for the portalscan CLI.
//
// Portalscan maps authenticated web portals into durable archives and
// extracts payment identifiers from the archived pages offline.
//
// Usage:
//
//	portalscan map https://portal.example.com --email user@example.com
//	portalscan scan-archive ~/.local/share/portalscan/20260826-153012-a3f9
//
// See --help for all available options.
package main

// main is the entry point for portalscan.
func main() {
	Execute()
}
