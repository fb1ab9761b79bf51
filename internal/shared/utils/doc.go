// Package utils holds request parameter validation shared by the REST and
// WebSocket handlers.
package utils
