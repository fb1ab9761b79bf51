// Package server wires configuration, storage, the fetch client, the book
// service and the HTTP/WebSocket API into one runnable server.
package server
