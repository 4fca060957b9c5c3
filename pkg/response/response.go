package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds surfaced to callers. Kinds are stable; messages are not.
const (
	KindInvalidRequest      = "invalid_request"
	KindAlreadyPassed       = "already_passed"
	KindNoAttemptsRemaining = "no_attempts_remaining"
	KindNotFound            = "not_found"
	KindConflict            = "conflict"
	KindUnauthorized        = "unauthorized"
	KindForbidden           = "forbidden"
	KindPersistenceFailure  = "persistence_failure"
)

// Body is the standard API response envelope. Errors carry a stable
// machine-readable kind plus a human-readable message.
type Body struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with the given kind and message.
func BadRequest(c *gin.Context, kind, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, ErrorKind: kind, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, ErrorKind: KindUnauthorized, Error: err})
}

// Forbidden sends 403 with the given kind and message.
func Forbidden(c *gin.Context, kind, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, ErrorKind: kind, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, ErrorKind: KindNotFound, Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, ErrorKind: KindConflict, Error: err})
}

// Internal sends 500. Raw persistence errors are logged by callers, never
// included in the message.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, ErrorKind: KindPersistenceFailure, Error: err})
}
