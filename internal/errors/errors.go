package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Messages shared by several handlers
const (
	MsgNotFound     = "Not found"
	MsgUnauthorized = "Unauthorized"
	MsgInternal     = "Internal server error"
)

// APIError represents a standardized API error response
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(status int, message string) *APIError {
	return &APIError{
		Status:  status,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.Status, err)
}

// AbortWithError sends an error response and stops the handler chain
func AbortWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.Status, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context) {
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, MsgUnauthorized))
}

// NotFound sends a 404 response. Resources the caller may not see also use it.
func NotFound(c *gin.Context) {
	RespondWithError(c, NewAPIError(http.StatusNotFound, MsgNotFound))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, NewAPIError(http.StatusBadRequest, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context) {
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, MsgInternal))
}
