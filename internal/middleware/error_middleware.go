package middleware

import (
	"net/http"

	"ummah-chat/internal/transport/httpdto"
	"ummah-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler turns errors attached via c.Error into the uniform JSON
// envelope, unless a handler already wrote its own response.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.ErrorCtx(c.Request.Context(), "request error", zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
	}
}
