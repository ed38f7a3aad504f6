package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

// RequireIDParam parses the :id path parameter. A value that is not a
// positive integer cannot name a resource, so it is answered with 404.
func RequireIDParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.AbortWithError(c, apierrors.NewAPIError(http.StatusNotFound, apierrors.MsgNotFound))
			return
		}

		c.Set(constants.ContextKeyResourceID, id)
		c.Next()
	}
}

// GetResourceID returns the id parsed by RequireIDParam
func GetResourceID(c *gin.Context) uint64 {
	return c.GetUint64(constants.ContextKeyResourceID)
}
