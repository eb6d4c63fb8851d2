// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
)

// CatalogHandler handles product and category endpoints
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalogService,
	}
}

// GetProducts handles GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var filter catalog.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondInvalid(c, err)
		return
	}
	filter.FocusSearch = c.Query("focus") == "search"

	listing, err := h.catalog.Browse(c.Request.Context(), filter)
	if err != nil {
		respondBackendError(c, err, "Failed to load products")
		return
	}

	respondOK(c, http.StatusOK, "Products retrieved successfully", listing)
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondBackendError(c, err, "Failed to load product")
		return
	}

	respondOK(c, http.StatusOK, "Product retrieved successfully", product)
}

// GetCategories handles GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondBackendError(c, err, "Failed to load categories")
		return
	}

	respondOK(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// CreateReview handles POST /products/:id/reviews
func (h *CatalogHandler) CreateReview(c *gin.Context) {
	var req catalog.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	err := h.catalog.SubmitReview(c.Request.Context(), sessionToken(c), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrLoginRequired):
			respondError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, catalog.ErrInvalidRating), errors.Is(err, catalog.ErrCommentRequired):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "Product not found")
		default:
			respondSessionBackendError(c, err, "Failed to submit review")
		}
		return
	}

	respondNotify(c, http.StatusCreated, "Review submitted successfully", nil,
		Notification{Type: NotifySuccess, Message: "Thanks for your review!"})
}
