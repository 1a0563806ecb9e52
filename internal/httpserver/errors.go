package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// writeError writes a structured ErrorResponse with the given status
// (teacher pkg/api/errors.go mapServiceError, generalized since gin has no
// echo.HTTPError equivalent to return from a handler).
func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func writeValidationError(c *gin.Context, verr *validationError) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: verr.msg, Field: verr.field})
}

// isTimeout reports whether err stems from the request-scoped timeout
// context expiring (spec.md §6 "timeouts as 504").
func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || (ctx.Err() == context.DeadlineExceeded)
}
