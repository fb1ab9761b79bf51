// Package main is the entry point for the ReaderOS book source server.
//
// The server stores book sources (per-site rule documents) in SQLite and
// uses them to search, read book details, crawl tables of contents and
// fetch chapter text from the configured sites.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	DB_PATH=/var/lib/reader/sources.sqlite SOURCES_DIR=./sources ./server -port 3001
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
