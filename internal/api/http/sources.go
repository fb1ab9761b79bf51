package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/urls"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds an import upload.
const maxImportBytes = 2 << 20

// ImportSources accepts a source file as a multipart "file" field or as the
// raw request body.
func (h *Handlers) ImportSources(c *gin.Context) {
	done := h.tracked.Track("sources", "import")

	data, name, err := readImport(c)
	if err != nil {
		done(err)
		badRequest(c, err.Error())
		return
	}

	items := []any{}
	if len(bytes.TrimSpace(data)) > 0 {
		items, err = source.ParseSources(data, name)
		if err != nil {
			done(err)
			badRequest(c, err.Error())
			return
		}
	}

	result, err := h.sources.Import(c.Request.Context(), items)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// readImport returns the upload and a file name whose extension hints at
// its format.
func readImport(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing file field: %w", err)
		}
		f, err := header.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("import exceeds %d bytes", maxImportBytes)
		}
		return nil, "", err
	}
	return data, "upload" + extensionFor(c.ContentType()), nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case strings.HasSuffix(mediaType, "json"):
		return ".json"
	case strings.HasSuffix(mediaType, "yaml"):
		return ".yaml"
	case strings.HasSuffix(mediaType, "toml"):
		return ".toml"
	case strings.HasSuffix(mediaType, "gzip"):
		return ".gz"
	default:
		return ""
	}
}

// ListSources lists source summaries
func (h *Handlers) ListSources(c *gin.Context) {
	filter := source.Filter{
		Group:  c.Query("group"),
		Search: c.Query("search"),
	}
	if raw, ok := c.GetQuery("enabled"); ok {
		enabled := raw == "true" || raw == "1"
		filter.Enabled = &enabled
	}

	done := h.tracked.Track("sources", "list")
	summaries, err := h.sources.List(c.Request.Context(), filter)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": summaries})
}

// GetSource returns the full stored source
func (h *Handlers) GetSource(c *gin.Context) {
	payload, err := h.sources.Get(c.Request.Context(), sourceID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// UpdateSource shallow-merges the JSON body into a stored source
func (h *Handlers) UpdateSource(c *gin.Context) {
	patch := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	done := h.tracked.Track("sources", "update")
	updated, err := h.sources.Update(c.Request.Context(), sourceID(c), patch)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteSource removes one source
func (h *Handlers) DeleteSource(c *gin.Context) {
	if err := h.sources.Delete(c.Request.Context(), sourceID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": 1})
}

// DeleteSources removes every source named in {"ids": [...]}
func (h *Handlers) DeleteSources(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	if err := utils.ValidateIDs(req.IDs); err != nil {
		badRequest(c, err.Error())
		return
	}

	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		ids = append(ids, urls.DecodeSourceID(id))
	}

	done := h.tracked.Track("sources", "delete_many")
	n, err := h.sources.DeleteMany(c.Request.Context(), ids)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// sourceID decodes the :id path segment. The router keeps raw paths so an
// escaped "/" inside the id does not split the segment.
func sourceID(c *gin.Context) string {
	return urls.DecodeSourceID(c.Param("id"))
}
