// Package http implements the reader REST API on gin.
//
// Routes:
//
//	GET    /api/health
//	GET    /api/stats
//	POST   /api/sources/import        JSON, YAML, TOML or gzip body, or multipart "file"
//	GET    /api/sources               ?group&enabled&search
//	GET    /api/sources/:id           id is the URL-escaped bookSourceUrl
//	PUT    /api/sources/:id
//	DELETE /api/sources/:id
//	DELETE /api/sources               {"ids": [...]}
//	GET    /api/search                ?keyword&sourceId&page
//	GET    /api/book/info             ?sourceId&bookUrl
//	GET    /api/book/toc              ?sourceId&tocUrl
//	GET    /api/book/content          ?sourceId&chapterUrl
//	POST   /api/rules/test
//
// Errors are returned as {"error": "..."} with 400 for missing parameters,
// 404 for unknown sources and 502 when the upstream site cannot be fetched.
package http
