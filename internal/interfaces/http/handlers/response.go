// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// GenericErrorMessage is shown when the backend could not be reached
const GenericErrorMessage = "Something went wrong. Please try again."

// Notification kinds
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyWarning = "warning"
	NotifyInfo    = "info"
)

// Notification is a user-facing toast
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondNotify(c *gin.Context, status int, message string, data interface{}, n Notification) {
	body := gin.H{"message": message, "notification": n}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":        message,
		"notification": Notification{Type: NotifyError, Message: message},
	})
}

func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":        "Invalid request data",
		"details":      err.Error(),
		"notification": Notification{Type: NotifyError, Message: "Please check the form and try again."},
	})
}

// respondBackendError maps a failed backend call onto a response.
// Transport failures get the generic message; backend refusals carry the
// backend's own message when it gave one.
func respondBackendError(c *gin.Context, err error, fallback string) {
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		respondError(c, http.StatusInternalServerError, fallback)
		return
	}

	switch {
	case apiErr.IsTransport():
		respondError(c, http.StatusBadGateway, GenericErrorMessage)
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		respondError(c, apiErr.StatusCode, backend.MessageOf(err, fallback))
	default:
		respondError(c, http.StatusBadGateway, backend.MessageOf(err, fallback))
	}
}

// respondSessionBackendError is respondBackendError for calls made with the
// stored token: a 401 means the token is dead, so the session is cleared.
func respondSessionBackendError(c *gin.Context, err error, fallback string) {
	if backend.IsUnauthorized(err) {
		if store := middleware.SessionFromContext(c); store != nil && store.IsAuthenticated() {
			store.Logout(c.Request.Context())
			respondError(c, http.StatusUnauthorized, "Your session has expired, please log in again")
			return
		}
	}
	respondBackendError(c, err, fallback)
}

// sessionToken returns the stored token for the request, if any
func sessionToken(c *gin.Context) string {
	if store := middleware.SessionFromContext(c); store != nil {
		return store.Token()
	}
	return ""
}
