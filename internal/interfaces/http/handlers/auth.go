// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	sessions *session.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *session.Service) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
	}
}

// sessionView is what the browser sees of its session. The token stays server side.
type sessionView struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *session.User `json:"user"`
}

func viewOf(store *session.Store) sessionView {
	snap := store.Snapshot()
	return sessionView{IsAuthenticated: snap.IsAuthenticated, User: snap.User}
}

// GetSession handles GET /auth/session. A token close to expiry is
// refreshed first. The login and message query flags left by the Google
// redirect flow are echoed back as a notification.
func (h *AuthHandler) GetSession(c *gin.Context) {
	store := middleware.SessionFromContext(c)

	err := h.sessions.RefreshIfExpiring(c.Request.Context(), store, session.RefreshWindow)
	if errors.Is(err, session.ErrSessionExpired) {
		respondNotify(c, http.StatusOK, "Session retrieved successfully", viewOf(store),
			Notification{Type: NotifyWarning, Message: "Your session has expired, please log in again"})
		return
	}

	view := viewOf(store)

	switch c.Query("login") {
	case "success":
		respondNotify(c, http.StatusOK, "Session retrieved successfully", view,
			Notification{Type: NotifySuccess, Message: "Logged in successfully"})
		return
	case "failed":
		message := c.Query("message")
		if message == "" {
			message = "Google login failed"
		}
		respondNotify(c, http.StatusOK, "Session retrieved successfully", view,
			Notification{Type: NotifyError, Message: message})
		return
	}

	respondOK(c, http.StatusOK, "Session retrieved successfully", view)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req session.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	store := middleware.SessionFromContext(c)
	if _, err := h.sessions.Login(c.Request.Context(), store, req); err != nil {
		if errors.Is(err, session.ErrInvalidResponse) {
			respondError(c, http.StatusBadGateway, err.Error())
			return
		}
		respondBackendError(c, err, "Login failed")
		return
	}

	respondNotify(c, http.StatusOK, "Login successful", viewOf(store),
		Notification{Type: NotifySuccess, Message: "Logged in successfully"})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	store := middleware.SessionFromContext(c)
	h.sessions.Logout(c.Request.Context(), store)

	respondNotify(c, http.StatusOK, "Logged out successfully", viewOf(store),
		Notification{Type: NotifyInfo, Message: "You have been logged out"})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	store := middleware.SessionFromContext(c)

	if _, err := h.sessions.Refresh(c.Request.Context(), store); err != nil {
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			respondError(c, http.StatusUnauthorized, "Authentication required")
		case errors.Is(err, session.ErrSessionExpired):
			respondError(c, http.StatusUnauthorized, err.Error())
		default:
			respondBackendError(c, err, "Failed to refresh session")
		}
		return
	}

	respondOK(c, http.StatusOK, "Session refreshed successfully", viewOf(store))
}
