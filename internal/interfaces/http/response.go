package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respond writes a success envelope
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// fail maps a service error to its HTTP status and writes the failure
// envelope. Unclassified errors become 500 with a generic message so
// internals never leak to clients.
func fail(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case apperr.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
	case apperr.IsForbidden(err):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case apperr.IsInvalidState(err):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}

// badRequest writes a 400 failure for malformed request bodies or params
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// idParam parses the :id path parameter
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
