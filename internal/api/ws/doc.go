// Package ws streams search results over a WebSocket.
//
// Message Types (Client → Server):
//   - search: {"type":"search","keyword":"..","page":1,"sourceId":".."}
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: sent once after the upgrade, carries the connection id
//   - results: one per searched source, as soon as that source completes;
//     failed sources report an empty list
//   - complete: every source has reported
//   - pong
//   - error: invalid request or unknown source
//
// Example Usage:
//
//	handler := ws.NewHandler(bookService, metrics, tracer, logger)
//	router.GET("/api/search/stream", handler.HandleConnection)
package ws
