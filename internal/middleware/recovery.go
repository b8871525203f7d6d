package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/pkg/apperror"
)

// Recovery returns a middleware that recovers from panics and logs them.
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"user_id", UserID(c),
					"stack", string(debug.Stack()),
				)

				httpresp.Error(c, string(apperror.Internal), "internal server error", http.StatusInternalServerError)
			}
		}()

		c.Next()
	}
}
