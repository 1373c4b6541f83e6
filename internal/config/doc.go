// Package config holds the configuration for portalscan.
//
// Configuration flows one way: cobra flags populate a flat Config struct,
// Validate() is called once before any work starts, and the struct is passed
// down via dependency injection. An optional YAML file (.portalscan) adds
// per-portal overrides such as login selectors and crawl patterns.
package config
