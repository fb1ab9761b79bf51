package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// Search runs a keyword search across one or all enabled sources
func (h *Handlers) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		badRequest(c, "keyword is required")
		return
	}
	if err := utils.ValidateKeyword(keyword); err != nil {
		badRequest(c, err.Error())
		return
	}
	sourceID := strings.TrimSpace(c.Query("sourceId"))

	done := h.tracked.Track("book", "search")
	results, err := h.books.Search(c.Request.Context(), keyword, sourceID, pageParam(c))
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"hasMore": false,
	})
}

// BookInfo returns a book's detail page fields
func (h *Handlers) BookInfo(c *gin.Context) {
	sourceID, bookURL, ok := requireParams(c, "bookUrl")
	if !ok {
		return
	}

	done := h.tracked.Track("book", "info")
	info, err := h.books.Info(c.Request.Context(), sourceID, bookURL)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// BookToc returns the full chapter list, following toc pagination
func (h *Handlers) BookToc(c *gin.Context) {
	sourceID, tocURL, ok := requireParams(c, "tocUrl")
	if !ok {
		return
	}

	done := h.tracked.Track("book", "toc")
	chapters, err := h.books.Toc(c.Request.Context(), sourceID, tocURL)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters})
}

// BookContent returns one chapter's text
func (h *Handlers) BookContent(c *gin.Context) {
	sourceID, chapterURL, ok := requireParams(c, "chapterUrl")
	if !ok {
		return
	}

	done := h.tracked.Track("book", "content")
	content, err := h.books.Content(c.Request.Context(), sourceID, chapterURL)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// requireParams reads sourceId and the named URL parameter, answering 400
// when either is blank.
func requireParams(c *gin.Context, urlParam string) (string, string, bool) {
	sourceID := strings.TrimSpace(c.Query("sourceId"))
	target := strings.TrimSpace(c.Query(urlParam))
	if sourceID == "" || target == "" {
		badRequest(c, "sourceId and "+urlParam+" are required")
		return "", "", false
	}
	if err := utils.ValidateURL(target, urlParam, true); err != nil {
		badRequest(c, err.Error())
		return "", "", false
	}
	return sourceID, target, true
}

// pageParam parses ?page, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
