package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

// RequestIdentity is the verified caller of a request. UserID is nil for
// anonymous requests and for requests with an invalid token.
type RequestIdentity struct {
	UserID *uint64
}

// Authenticated reports whether the request carried a valid token.
func (i RequestIdentity) Authenticated() bool {
	return i.UserID != nil
}

// Identify decodes the bearer token once and stores the RequestIdentity.
// It never rejects a request; RequireAuth does that.
func Identify(tokens auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := RequestIdentity{}

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if subject, err := tokens.Subject(token); err == nil {
				if userID, err := auth.ParseUserID(subject); err == nil {
					identity.UserID = &userID
				}
			}
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a verified caller
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated() {
			apierrors.AbortWithError(c, apierrors.NewAPIError(http.StatusUnauthorized, apierrors.MsgUnauthorized))
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Identify, or an anonymous one
func IdentityFrom(c *gin.Context) RequestIdentity {
	v, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return RequestIdentity{}
	}
	identity, _ := v.(RequestIdentity)
	return identity
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	identity := IdentityFrom(c)
	if identity.UserID == nil {
		return 0, false
	}
	return *identity.UserID, true
}
