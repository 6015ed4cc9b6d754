package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snapfeed/snapfeed/internal/service"
)

// statusFor maps core error kinds to HTTP status codes. Mismatch maps
// to 401, a long-standing quirk clients depend on.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindBadInput:
		return http.StatusBadRequest
	case service.KindMismatch:
		return http.StatusUnauthorized
	case service.KindUnauthenticated, service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortError renders a core error as its HTTP status
func (r *Router) abortError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		r.logger.Error("Unclassified handler error",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
