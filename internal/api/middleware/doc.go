// Package middleware holds the reader API's gin middleware: CORS, per-IP
// rate limiting, request ids and access logging.
package middleware
