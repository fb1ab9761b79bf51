// Package source stores book sources: one rule record per site, keyed by
// bookSourceUrl, carrying the search URL template and the four rule
// documents (search, book info, toc, content).
//
// Payloads are kept as generic objects so keys this package does not know
// about survive import and update. Source is the typed view used by the
// extraction services.
//
// Files may be JSON, YAML or TOML, optionally gzip-compressed. The Seeder
// imports every matching file under a directory at startup.
package source
