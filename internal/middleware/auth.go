package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/services"
)

// Name of the HTTP-only cookie carrying the Google ID token.
const CredentialCookie = "google_id_token"

const contextUserKey = "ytfeed.google_id"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// RequireAuth verifies the credential cookie, provisions the user row on
// first sight, and injects the verified google id into the request context.
// Any failure is a uniform 401 with no state change.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, err := c.Cookie(CredentialCookie)
		if err != nil || idToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		claims, err := am.authService.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		if _, err := am.authService.ResolveUser(c.Request.Context(), claims); err != nil {
			am.log.Error("Failed to resolve user", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error resolving user"})
			return
		}
		c.Set(contextUserKey, claims.Sub)
		c.Next()
	}
}

// UserID returns the verified google id set by RequireAuth.
func UserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(contextUserKey)
	if !ok {
		return "", false
	}
	googleID, ok := id.(string)
	return googleID, ok && googleID != ""
}
