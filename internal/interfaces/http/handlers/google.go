// internal/interfaces/http/handlers/google.go
package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/identity"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// GoogleHandler handles the Google sign-in endpoints
type GoogleHandler struct {
	bridge    *identity.Bridge
	publicURL string
}

// NewGoogleHandler creates a new Google sign-in handler
func NewGoogleHandler(bridge *identity.Bridge, cfg *config.Config) *GoogleHandler {
	return &GoogleHandler{
		bridge:    bridge,
		publicURL: strings.TrimRight(cfg.App.PublicURL, "/"),
	}
}

// SignIn handles GET /auth/google. Browsers get the prompt page or a
// redirect; API clients asking for JSON get the action itself.
func (h *GoogleHandler) SignIn(c *gin.Context) {
	action, err := h.bridge.SignIn(c.Request.Context())
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			respondError(c, http.StatusServiceUnavailable, "Google login is not available")
			return
		}
		respondError(c, http.StatusInternalServerError, identity.DefaultErrorMessage)
		return
	}

	if wantsJSON(c) {
		respondOK(c, http.StatusOK, "Google sign-in ready", action)
		return
	}

	if action.Prompt == nil {
		c.Redirect(http.StatusFound, action.RedirectURL)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := promptPage.Execute(c.Writer, action.Prompt); err != nil {
		_ = c.Error(err)
	}
}

type credentialRequest struct {
	Credential string `json:"credential" form:"credential"`
	CSRFToken  string `json:"-" form:"g_csrf_token"`
}

// Callback handles POST /auth/google/callback. Form posts come from Google
// Identity Services and end in a redirect back to the shop; JSON posts
// come from the storefront's own script.
func (h *GoogleHandler) Callback(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	formPost := c.ContentType() != gin.MIMEJSON
	if formPost {
		cookie, _ := c.Cookie(identity.CSRFCookieName)
		if err := identity.VerifyCSRF(cookie, req.CSRFToken); err != nil {
			h.finish(c, true, err.Error(), http.StatusBadRequest)
			return
		}
	}

	store := middleware.SessionFromContext(c)
	if _, err := h.bridge.Resolve(c.Request.Context(), req.Credential, store); err != nil {
		message, status := backend.MessageOf(err, identity.DefaultErrorMessage), statusFor(err)
		switch {
		case errors.Is(err, identity.ErrCredentialRequired):
			message = "Missing Google credential"
		case errors.Is(err, session.ErrInvalidResponse):
			message, status = session.ErrInvalidResponse.Error(), http.StatusBadGateway
		}
		h.finish(c, formPost, message, status)
		return
	}

	if formPost {
		c.Redirect(http.StatusSeeOther, h.publicURL+"/?login=success")
		return
	}
	respondNotify(c, http.StatusOK, "Login successful", viewOf(store),
		Notification{Type: NotifySuccess, Message: "Logged in successfully"})
}

// googleSignOutView tells the page to call google.accounts.id.disableAutoSelect
type googleSignOutView struct {
	sessionView
	DisableAutoSelect bool `json:"disableAutoSelect"`
}

// SignOut handles POST /auth/google/logout
func (h *GoogleHandler) SignOut(c *gin.Context) {
	store := middleware.SessionFromContext(c)
	h.bridge.SignOut(c.Request.Context(), store)

	respondNotify(c, http.StatusOK, "Logged out successfully",
		googleSignOutView{sessionView: viewOf(store), DisableAutoSelect: true},
		Notification{Type: NotifyInfo, Message: "You have been logged out"})
}

// Status handles GET /auth/google/status
func (h *GoogleHandler) Status(c *gin.Context) {
	respondOK(c, http.StatusOK, "Google sign-in status", h.bridge.Status())
}

func (h *GoogleHandler) finish(c *gin.Context, formPost bool, message string, status int) {
	if formPost {
		q := url.Values{}
		q.Set("login", "failed")
		q.Set("message", message)
		c.Redirect(http.StatusSeeOther, h.publicURL+"/?"+q.Encode())
		return
	}
	respondError(c, status, message)
}

// statusFor maps a failed exchange: unreachable or broken backends are a
// gateway problem, everything else is a refused login
func statusFor(err error) int {
	if backend.IsTransport(err) || backend.StatusOf(err) >= 500 {
		return http.StatusBadGateway
	}
	return http.StatusUnauthorized
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

var promptPage = template.Must(template.New("google-prompt").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Sign in with Google</title>
    <script src="{{.ScriptURL}}" async defer></script>
</head>
<body style="font-family: Arial, sans-serif; display: flex; justify-content: center; padding-top: 80px;">
    <div id="g_id_onload"
         data-client_id="{{.ClientID}}"
         data-login_uri="{{.LoginURI}}"
         data-nonce="{{.Nonce}}"
         data-auto_prompt="true"
         data-itp_support="true">
    </div>
    <div class="g_id_signin" data-type="standard" data-text="signin_with"></div>
</body>
</html>
`))
