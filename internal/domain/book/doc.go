// Package book runs the reader's fetch and extract pipelines: searching
// sources, reading book detail pages, crawling paginated tables of
// contents, and extracting chapter text.
//
// Extraction never fails: malformed rules and documents yield empty
// fields. Fetch failures are reported as *FetchError so callers can tell
// "nothing found" from "could not fetch". Fan-out search isolates those
// failures per source.
package book
