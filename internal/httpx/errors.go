package httpx

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the single error shape every endpoint returns: an HTTP status,
// a machine-readable code and a human-readable message.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: message}
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation", Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: message}
}

func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal", Message: message}
}

// Respond writes err as the JSON response body.
func Respond(ctx *gin.Context, err *Error) {
	ctx.JSON(err.Status, err)
}

// Abort writes err and stops the handler chain; for middleware.
func Abort(ctx *gin.Context, err *Error) {
	ctx.AbortWithStatusJSON(err.Status, err)
}
