package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/book"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var fetchErr *book.FetchError
	switch {
	case errors.Is(err, book.ErrMissingParam),
		errors.Is(err, source.ErrInvalidSource),
		errors.Is(err, source.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": message}. Server errors are logged
// and their detail withheld.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	switch status {
	case http.StatusNotFound:
		message = source.ErrNotFound.Error()
	case http.StatusInternalServerError:
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
