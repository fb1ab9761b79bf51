package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/book"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/urls"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteURL = "http://site.test"

const siteSource = `{
  "bookSourceUrl": "http://site.test",
  "bookSourceName": "Site",
  "bookSourceGroup": "web",
  "searchUrl": "http://site.test/search?q={{key}}&p={{page}}",
  "ruleSearch": {
    "bookList": "@css:.book-list > li",
    "name": "@css:.name@text",
    "bookUrl": "@css:a@href"
  },
  "ruleBookInfo": {
    "name": "@css:h1@text",
    "tocUrl": "@css:a.toc@href"
  },
  "ruleToc": {
    "chapterList": "@css:#list dd",
    "chapterName": "@css:a@text",
    "chapterUrl": "@css:a@href",
    "nextTocUrl": "@css:a.next@href"
  },
  "ruleContent": {
    "content": "@css:#content@text",
    "title": "@css:h1@text"
  }
}`

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, spec string, _ map[string]string) (*client.Response, error) {
	body, ok := f.pages[spec]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &client.Response{URL: spec, FinalURL: spec, Body: body, Status: http.StatusOK}, nil
}

type stubBreakers map[string]resilience.State

func (s stubBreakers) BreakerStates() map[string]resilience.State { return s }

func setupTestRouter(t *testing.T) (*gin.Engine, *source.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := source.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	manager := source.NewManager(store, nil)

	fetcher := &stubFetcher{pages: map[string]string{
		siteURL + "/search?q=dune&p=1": `<ul class="book-list"><li><span class="name">Dune</span><a href="/b/1">x</a></li></ul>`,
		siteURL + "/b/1":               `<h1>Dune</h1><a class="toc" href="/b/1/toc">toc</a>`,
		siteURL + "/b/1/toc":           `<dl id="list"><dd><a href="/c/1">One</a></dd></dl><a class="next" href="/b/1/toc2">n</a>`,
		siteURL + "/b/1/toc2":          `<dl id="list"><dd><a href="/c/2">Two</a></dd></dl>`,
		siteURL + "/c/1":               `<h1>One</h1><div id="content">Once upon a time</div>`,
	}}
	books := book.NewService(manager, fetcher, book.Config{SearchConcurrency: 2, TocMaxPages: 20}, nil)

	handlers := NewHandlers(manager, books, stubBreakers{"site.test": resilience.StateOpen}, monitoring.NewMetrics(), nil)
	router := gin.New()
	router.UseRawPath = true
	router.UnescapePathValues = false
	handlers.Register(router)
	return router, manager
}

func do(router http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func importSite(t *testing.T, router http.Handler) {
	t.Helper()
	w := do(router, http.MethodPost, "/api/sources/import", []byte(siteSource), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthAndRoot(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = do(router, http.MethodGet, "/", nil, "")
	assert.Equal(t, "online", decodeBody(t, w)["status"])
}

func TestImportSources(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("json body", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/sources/import",
			[]byte(`[{"bookSourceUrl":"http://a"},{"bookSourceName":"bad"}]`), "application/json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"imported":1,"duplicates":0,"errors":[{"index":1,"reason":"missing bookSourceUrl"}]}`,
			w.Body.String())
	})

	t.Run("yaml body", func(t *testing.T) {
		body := "sources:\n  - bookSourceUrl: http://y\n    bookSourceName: Y\n"
		w := do(router, http.MethodPost, "/api/sources/import", []byte(body), "application/yaml")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decodeBody(t, w)["imported"])
	})

	t.Run("multipart file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "sources.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(`{"bookSourceUrl":"http://a","bookSourceName":"again"}`))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		w := do(router, http.MethodPost, "/api/sources/import", buf.Bytes(), mw.FormDataContentType())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"imported":1,"duplicates":1,"errors":[]}`, w.Body.String())
	})

	t.Run("empty body", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/sources/import", nil, "application/json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 0, decodeBody(t, w)["imported"])
	})

	t.Run("malformed", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/sources/import", []byte(`[{"bookSourceUrl":`), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSourceCRUD(t *testing.T) {
	router, _ := setupTestRouter(t)
	importSite(t, router)
	id := urls.EncodeSourceID(siteURL)

	w := do(router, http.MethodGet, "/api/sources?enabled=true&group=web", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)["sources"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, siteURL, list[0].(map[string]any)["bookSourceUrl"])

	w = do(router, http.MethodGet, "/api/sources?enabled=0", nil, "")
	assert.Empty(t, decodeBody(t, w)["sources"])

	w = do(router, http.MethodGet, "/api/sources/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Site", decodeBody(t, w)["bookSourceName"])

	w = do(router, http.MethodPut, "/api/sources/"+id,
		[]byte(`{"bookSourceName":"Renamed","bookSourceUrl":"http://elsewhere"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody(t, w)
	assert.Equal(t, "Renamed", updated["bookSourceName"])
	assert.Equal(t, siteURL, updated["bookSourceUrl"])

	w = do(router, http.MethodPut, "/api/sources/"+id, []byte(`{"bookSourceType":1}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPut, "/api/sources/"+urls.EncodeSourceID("http://missing"), []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"source not found"}`, w.Body.String())

	w = do(router, http.MethodDelete, "/api/sources/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	w = do(router, http.MethodDelete, "/api/sources/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/sources/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSources(t *testing.T) {
	router, manager := setupTestRouter(t)
	_, err := manager.Import(context.Background(), []any{
		map[string]any{"bookSourceUrl": "http://a"},
		map[string]any{"bookSourceUrl": "http://b"},
		map[string]any{"bookSourceUrl": "http://c"},
	})
	require.NoError(t, err)

	body := `{"ids":["` + urls.EncodeSourceID("http://a") + `","http://b","http://zzz"]}`
	w := do(router, http.MethodDelete, "/api/sources", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":2}`, w.Body.String())

	summaries, err := manager.List(context.Background(), source.Filter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "http://c", summaries[0].URL)
}

func TestSearch(t *testing.T) {
	router, _ := setupTestRouter(t)
	importSite(t, router)

	w := do(router, http.MethodGet, "/api/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"keyword is required"}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/search?keyword=dune", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["hasMore"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "Dune", first["name"])
	assert.Equal(t, siteURL+"/b/1", first["bookUrl"])
	assert.Equal(t, siteURL, first["sourceId"])

	w = do(router, http.MethodGet, "/api/search?keyword=nothing", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["results"])

	w = do(router, http.MethodGet, "/api/search?keyword=dune&sourceId=http://missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)
	importSite(t, router)
	q := "?sourceId=" + siteURL

	t.Run("info", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/book/info"+q+"&bookUrl="+siteURL+"/b/1", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "Dune", body["name"])
		assert.Equal(t, siteURL+"/b/1/toc", body["tocUrl"])
	})

	t.Run("toc follows pagination", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/book/toc"+q+"&tocUrl="+siteURL+"/b/1/toc", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		chapters := decodeBody(t, w)["chapters"].([]any)
		require.Len(t, chapters, 2)
		assert.Equal(t, "Two", chapters[1].(map[string]any)["name"])
	})

	t.Run("content", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/book/content"+q+"&chapterUrl="+siteURL+"/c/1", nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "One", body["title"])
		assert.Equal(t, "Once upon a time", body["content"])
		assert.Nil(t, body["nextContentUrl"])
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			target string
			status int
		}{
			{"/api/book/info?bookUrl=" + siteURL + "/b/1", http.StatusBadRequest},
			{"/api/book/toc" + q, http.StatusBadRequest},
			{"/api/book/content?sourceId=http://missing&chapterUrl=" + siteURL + "/c/1", http.StatusNotFound},
			{"/api/book/content" + q + "&chapterUrl=" + siteURL + "/gone", http.StatusBadGateway},
			{"/api/book/toc" + q + "&tocUrl=" + siteURL + "/gone", http.StatusBadGateway},
		}
		for _, tt := range tests {
			w := do(router, http.MethodGet, tt.target, nil, "")
			assert.Equal(t, tt.status, w.Code, tt.target)
			assert.NotEmpty(t, decodeBody(t, w)["error"])
		}
	})
}

func TestTestRule(t *testing.T) {
	router, _ := setupTestRouter(t)

	body := `{"content":"<ul><li><a href=\"/1\">A</a></li><li><a href=\"/2\">B</a></li></ul>","rule":"tag.a@href","all":true,"baseUrl":"http://x/","resolveUrl":true}`
	w := do(router, http.MethodPost, "/api/rules/test", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"engine":"jsoup-default","values":["http://x/1","http://x/2"],"count":2}`, w.Body.String())

	body = `{"content":"{\"list\":[{\"n\":\"a\"},{\"n\":\"b\"}]}","list":"$.list","fields":{"name":"n"}}`
	w = do(router, http.MethodPost, "/api/rules/test", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"engine":"jsonpath","items":[{"name":"a"},{"name":"b"}],"count":2}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/rules/test", []byte(`{"content":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/rules/test", []byte(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	router, _ := setupTestRouter(t)
	do(router, http.MethodGet, "/api/health", nil, "")

	w := do(router, http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, map[string]any{"site.test": "open"}, body["breakers"])
	assert.Contains(t, body, "metrics")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusOf(book.ErrMissingParam))
	assert.Equal(t, http.StatusBadRequest, statusOf(source.ErrUnsupportedType))
	assert.Equal(t, http.StatusNotFound, statusOf(source.ErrNotFound))
	assert.Equal(t, http.StatusBadGateway, statusOf(&book.FetchError{URL: "u", Err: errors.New("boom")}))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
	assert.Equal(t, http.StatusBadRequest, statusOf(source.ErrInvalidSource))
}
