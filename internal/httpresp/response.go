// Package httpresp writes the JSON error envelope shared by every handler.
package httpresp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/pkg/apperror"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ErrorResponse represents the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a stable machine-readable code and a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Error writes an error envelope and aborts the request.
func Error(c *gin.Context, code, message string, status int) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// BadRequest writes a 400 INVALID_REQUEST envelope.
func BadRequest(c *gin.Context, message string) {
	Error(c, string(apperror.Validation), message, http.StatusBadRequest)
}

// FromError maps a domain error to its HTTP status. Errors outside the
// taxonomy are logged with keysAndValues and reported as 500.
func FromError(c *gin.Context, logger *zap.SugaredLogger, err error, op string, keysAndValues ...interface{}) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		Error(c, appErr.Code, err.Error(), apperror.HTTPStatus(appErr.Kind))
		return
	}
	logger.Errorw("error "+op, append(keysAndValues, "error", err)...)
	Error(c, string(apperror.Internal), "internal server error", http.StatusInternalServerError)
}

// Pagination reads page and limit query parameters. page starts at 1.
func Pagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
