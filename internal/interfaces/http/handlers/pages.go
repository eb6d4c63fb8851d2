// internal/interfaces/http/handlers/pages.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/pages"
)

// PagesHandler handles informational pages and the contact form
type PagesHandler struct {
	pages *pages.Service
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(pagesService *pages.Service) *PagesHandler {
	return &PagesHandler{
		pages: pagesService,
	}
}

// ListPages handles GET /pages
func (h *PagesHandler) ListPages(c *gin.Context) {
	respondOK(c, http.StatusOK, "Pages retrieved successfully", h.pages.List())
}

// GetPage handles GET /pages/:slug
func (h *PagesHandler) GetPage(c *gin.Context) {
	page, err := h.pages.Get(c.Param("slug"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Page not found")
		return
	}

	respondOK(c, http.StatusOK, "Page retrieved successfully", page)
}

// SubmitContact handles POST /pages/contact
func (h *PagesHandler) SubmitContact(c *gin.Context) {
	var req pages.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.pages.SubmitContact(c.Request.Context(), req); err != nil {
		if errors.Is(err, pages.ErrInvalidContact) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to send your message. Please try again later.")
		return
	}

	respondNotify(c, http.StatusOK, "Message sent successfully", nil,
		Notification{Type: NotifySuccess, Message: "Thanks! We will get back to you soon."})
}
