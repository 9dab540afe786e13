package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytfeed/ytfeed-backend/internal/logger"
	"github.com/ytfeed/ytfeed-backend/internal/middleware"
	"github.com/ytfeed/ytfeed-backend/internal/services"
)

const (
	stateCookie         = "oauth_state"
	stateCookieMaxAge   = 600
	credentialExpirySec = 30 * 24 * 60 * 60
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

// Login sends the browser to Google's consent screen with a random state
// value pinned in a short-lived cookie.
func (ah *AuthHandler) Login(c *gin.Context) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		ah.log.Error("Failed to generate oauth state", "error", err)
		respondMessage(c, http.StatusInternalServerError, "Error starting login")
		return
	}
	state := hex.EncodeToString(buf)
	c.SetCookie(stateCookie, state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, ah.authService.AuthCodeURL(state))
}

// GoogleAuth handles the OAuth callback: state check, code exchange, and the
// persistent credential cookie.
func (ah *AuthHandler) GoogleAuth(c *gin.Context) {
	wantState, err := c.Cookie(stateCookie)
	if err != nil || wantState == "" || c.Query("state") != wantState {
		respondMessage(c, http.StatusUnauthorized, "Authentication failed")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		respondMessage(c, http.StatusUnauthorized, "Authentication failed")
		return
	}
	idToken, err := ah.authService.Exchange(c.Request.Context(), code)
	if err != nil {
		ah.log.Error("Authorization code exchange failed", "error", err)
		respondMessage(c, http.StatusUnauthorized, "Authentication failed")
		return
	}

	c.SetCookie(middleware.CredentialCookie, idToken, credentialExpirySec, "/", "", false, true)
	respondMessage(c, http.StatusOK, "Login successful")
}

// GetUser is the session probe: verified claims, or 401.
func (ah *AuthHandler) GetUser(c *gin.Context) {
	idToken, err := c.Cookie(middleware.CredentialCookie)
	if err != nil || idToken == "" {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	claims, err := ah.authService.VerifyIDToken(c.Request.Context(), idToken)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	if _, err := ah.authService.ResolveUser(c.Request.Context(), claims); err != nil {
		ah.log.Error("Failed to resolve user", "error", err)
		respondMessage(c, http.StatusInternalServerError, "Error resolving user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": claims})
}

// Logout clears the credential cookie.
func (ah *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.CredentialCookie, "", -1, "/", "", false, true)
	respondMessage(c, http.StatusOK, "Logout successful")
}
