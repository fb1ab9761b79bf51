// Package config provides 12-factor configuration for the reader service.
//
// Configuration is loaded from environment variables with defaults. The
// server's -port flag overrides PORT.
//
// Sections:
//   - Server: listen host and port
//   - Logging: level and output format
//   - RateLimit: per-IP inbound limit
//   - Storage: SQLite path for book sources
//   - Sources: directory seeded at startup
//   - Fetch: outbound timeout, redirects, retries, user agent, rate
//   - Search, Crawl, Content: pipeline tuning
//
// Example:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("listening on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
