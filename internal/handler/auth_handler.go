package handler

import (
	"net/http"
	"strings"

	"docscan-gateway/internal/domain"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService domain.AuthService
	config      domain.Config
	logger      domain.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService domain.AuthService, config domain.Config, logger domain.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		config:      config,
		logger:      logger,
	}
}

// GetSession returns the validated session of the current request.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": session.UserID,
		"email":   session.Email,
	})
}

// Logout revokes the current session with the auth provider.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	if err := h.authService.Logout(token); err != nil {
		h.logger.Error("Logout failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// GetAuthConfig returns the public auth settings the login page needs. Served
// without authentication.
func (h *AuthHandler) GetAuthConfig(w http.ResponseWriter, r *http.Request) {
	redirectTo := strings.TrimSuffix(h.config.GetSiteURL(), "/") + h.config.GetLoginRedirect()

	writeJSON(w, http.StatusOK, map[string]string{
		"google_client_id": h.config.GetGoogleClientID(),
		"login_redirect":   redirectTo,
		"authorize_url":    h.authService.AuthorizeURL(redirectTo),
	})
}
